// Package lzw implements the GIF-flavored LZW decompressor: variable code
// width, a (prefix, suffix) dictionary capped at 4096 entries, and the
// bug-compatible code-width growth rule real-world GIF streams depend on.
//
// It is grounded the same way the teacher's internal/bitio readers are: a
// small bit accumulator fed from an underlying byte source, decoded one
// symbol at a time into an output buffer, with growth/reset handled by an
// explicit state machine rather than recursion.
package lzw

import (
	"github.com/deepteams/gifcore/internal/bitio"
	"github.com/deepteams/gifcore/internal/container"
)

// maxDictSize is the largest LZW code-table size GIF ever needs (12-bit
// codes).
const maxDictSize = 4096

const nullCode = -1

// Status reports whether the requested pixel count was fully produced.
type Status uint8

const (
	StatusOK Status = iota
	StatusFormatError
	StatusPartialDecode
)

// Decode seeks r to frame.BufferFrameStart, reads the LZW minimum code size,
// and decompresses exactly iw*ih indexed pixels into dst (dst must have
// len(dst) >= iw*ih). On a truncated or corrupt stream it fills the
// remainder of dst with zero and returns StatusPartialDecode.
func Decode(r *bitio.Reader, frame *container.Frame, dst []byte) Status {
	if !r.Seek(frame.BufferFrameStart) {
		return StatusFormatError
	}
	dataSize, ok := r.ReadU8()
	if !ok || dataSize < 2 || dataSize > 8 {
		return StatusFormatError
	}

	sub := container.NewSubBlockReader(r)

	clear := 1 << dataSize
	eoi := clear + 1

	var prefix [maxDictSize]uint16
	var suffix [maxDictSize]byte
	var pixelStack [maxDictSize + 1]byte

	codeSize := int(dataSize) + 1
	codeMask := (1 << codeSize) - 1
	available := clear + 2
	oldCode := nullCode
	first := byte(0)

	for i := 0; i < clear; i++ {
		prefix[i] = 0
		suffix[i] = byte(i)
	}

	nPix := frame.IW * frame.IH
	outPos := 0
	stackTop := 0

	var datum, bits int
	blockPos, blockLen := 0, 0
	block := sub.Block()

	nextByte := func() (byte, bool) {
		for blockPos >= blockLen {
			n, ok := sub.ReadBlock()
			if !ok {
				return 0, false
			}
			if n == 0 {
				return 0, false
			}
			blockLen = n
			blockPos = 0
		}
		b := block[blockPos]
		blockPos++
		return b, true
	}

	partial := false

decodeLoop:
	for outPos < nPix {
		for bits < codeSize {
			b, ok := nextByte()
			if !ok {
				partial = true
				break decodeLoop
			}
			datum |= int(b) << bits
			bits += 8
		}

		code := datum & codeMask
		datum >>= codeSize
		bits -= codeSize

		switch {
		case code == clear:
			codeSize = int(dataSize) + 1
			codeMask = (1 << codeSize) - 1
			available = clear + 2
			oldCode = nullCode
			continue

		case code == eoi:
			break decodeLoop

		case code > available:
			partial = true
			break decodeLoop
		}

		if oldCode == nullCode {
			pixelStack[stackTop] = suffix[code]
			stackTop++
			oldCode = code
			first = byte(code)
		} else {
			inCode := code
			if code >= available {
				pixelStack[stackTop] = first
				stackTop++
				code = oldCode
			}
			for code >= clear {
				pixelStack[stackTop] = suffix[code]
				stackTop++
				code = int(prefix[code])
			}
			first = suffix[code] & 0xFF
			pixelStack[stackTop] = first
			stackTop++

			if available < maxDictSize {
				prefix[available] = uint16(oldCode)
				suffix[available] = first
				available++
				if available&codeMask == 0 && available < maxDictSize {
					codeSize++
					codeMask += available
				}
			}
			oldCode = inCode
		}

		// The stack must always be fully drained before the next code is
		// read: it's rebuilt from scratch each iteration, and a leftover
		// pixel would be emitted after (out of order with) the next code's
		// expansion.
		for stackTop > 0 && outPos < nPix {
			stackTop--
			dst[outPos] = pixelStack[stackTop]
			outPos++
		}
		continue
	}

	// Defensive drain: the loop above empties the stack after every code,
	// so on every exit (EOI, truncation, or nPix reached) it is already
	// empty or the output is already full.
	for stackTop > 0 && outPos < nPix {
		stackTop--
		dst[outPos] = pixelStack[stackTop]
		outPos++
	}

	for outPos < nPix {
		dst[outPos] = 0
		outPos++
	}

	if partial {
		return StatusPartialDecode
	}
	return StatusOK
}
