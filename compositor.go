package gifcore

import (
	"github.com/deepteams/gifcore/internal/container"
)

// compositeState carries the pieces of decoder state the compositor needs
// that outlive a single frame: the previous frame, its rectangle, and the
// DISPOSE_PREVIOUS snapshot. This mirrors the teacher's AnimDecoder, which
// keeps a currFrame/prevFrameDisposed pair across NextFrame calls instead of
// recomputing the whole canvas from frame zero every time.
type compositeState struct {
	prevFrame        *container.Frame
	hasPrevSnapshot  bool
	snapshot         []uint32 // W*H, valid only once hasPrevSnapshot is true
	firstTransparent bool
}

// composite renders frame's indexed pixels into dst (length w*h, at
// downsampled size wOut x hOut) applying the previous frame's disposal
// first. anyPrevious reports whether ANY frame in the stream declares
// DISPOSE_PREVIOUS, precomputed once by the facade (spec §4.5 step 5).
func composite(
	hdr *Header,
	frame *container.Frame,
	isFirstFrame bool,
	indexed []byte,
	dst []uint32,
	wOut, hOut, sample int,
	st *compositeState,
	anyPrevious bool,
) container.Status {
	active := activeColorTable(hdr, frame)
	if active == nil {
		return container.StatusFormatError
	}

	table := *active
	if frame.Transparency {
		table[frame.TransIndex] = 0
	}

	applyPreviousDisposal(hdr, frame, isFirstFrame, dst, wOut, hOut, sample, st)

	compositeFrameInto(frame, indexed, &table, dst, wOut, hOut, sample)

	if isFirstFrame {
		for _, p := range dst {
			if p == 0 {
				st.firstTransparent = true
				break
			}
		}
	}

	if anyPrevious && (frame.Dispose == container.DisposeNone) {
		if st.snapshot == nil || len(st.snapshot) != len(dst) {
			st.snapshot = make([]uint32, len(dst))
		}
		copy(st.snapshot, dst)
		st.hasPrevSnapshot = true
	}

	st.prevFrame = frame
	return container.StatusOK
}

// activeColorTable resolves the palette a frame renders through: its own
// local table if present, else the stream's global table.
func activeColorTable(hdr *Header, frame *container.Frame) *[256]uint32 {
	if frame.LCT != nil {
		return frame.LCT
	}
	return hdr.GCT
}

// applyPreviousDisposal mutates dst in place per spec §4.5 step 3, based on
// the PREVIOUSLY rendered frame (st.prevFrame), not the frame being
// composited now.
func applyPreviousDisposal(hdr *Header, frame *container.Frame, isFirstFrame bool, dst []uint32, wOut, hOut, sample int, st *compositeState) {
	if st.prevFrame == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	switch st.prevFrame.Dispose {
	case container.DisposeNone:
		// leave destination untouched

	case container.DisposeBackground:
		c := hdr.BGColor
		if frame.Transparency {
			c = 0
		}
		if frame.LCT != nil && frame.Transparency && int(frame.TransIndex) == int(hdr.BGIndex) {
			c = 0
		}
		fillRectDown(dst, wOut, hOut, st.prevFrame.IX, st.prevFrame.IY, st.prevFrame.IW, st.prevFrame.IH, sample, c)
		if isFirstFrame {
			st.firstTransparent = true
		}

	case container.DisposePrevious:
		if st.hasPrevSnapshot {
			copyRectDown(dst, st.snapshot, wOut, hOut, st.prevFrame.IX, st.prevFrame.IY, st.prevFrame.IW, st.prevFrame.IH, sample)
		} else {
			fillRectDown(dst, wOut, hOut, st.prevFrame.IX, st.prevFrame.IY, st.prevFrame.IW, st.prevFrame.IH, sample, 0)
		}
	}
}

func fillRectDown(dst []uint32, wOut, hOut, ix, iy, iw, ih, sample int, c uint32) {
	dx0, dy0 := ix/sample, iy/sample
	dw, dh := iw/sample, ih/sample
	for y := dy0; y < dy0+dh && y < hOut; y++ {
		if y < 0 {
			continue
		}
		row := y * wOut
		for x := dx0; x < dx0+dw && x < wOut; x++ {
			if x < 0 {
				continue
			}
			dst[row+x] = c
		}
	}
}

func copyRectDown(dst, src []uint32, wOut, hOut, ix, iy, iw, ih, sample int) {
	dx0, dy0 := ix/sample, iy/sample
	dw, dh := iw/sample, ih/sample
	for y := dy0; y < dy0+dh && y < hOut; y++ {
		if y < 0 {
			continue
		}
		row := y * wOut
		for x := dx0; x < dx0+dw && x < wOut; x++ {
			if x < 0 {
				continue
			}
			dst[row+x] = src[row+x]
		}
	}
}

// interlaceStarts/interlaceSteps implement the 4-pass interlace order of
// spec §4.5 step 4 and the GLOSSARY.
var interlaceStarts = [4]int{0, 4, 2, 1}
var interlaceSteps = [4]int{8, 8, 4, 2}

// rowDecodePosition returns, for each row in final top-to-bottom image
// order, the position at which that row's pixels appear in the LZW
// decoder's sequential output. The LZW Decoder has no notion of
// interlacing (spec §4.4 writes iw*ih bytes in pure stream order); for an
// interlaced frame that stream order IS the 4-pass schedule, so this is the
// inverse of interlaceStarts/interlaceSteps. For a non-interlaced frame
// it's the identity.
func rowDecodePosition(interlace bool, ih int) []int {
	order := make([]int, ih)
	if !interlace {
		for i := range order {
			order[i] = i
		}
		return order
	}
	pos := 0
	for pass := 0; pass < 4; pass++ {
		for sy := interlaceStarts[pass]; sy < ih; sy += interlaceSteps[pass] {
			order[sy] = pos
			pos++
		}
	}
	return order
}

// compositeFrameInto walks frame's rows in final top-to-bottom order,
// resolving each through rowDecodePosition to locate it in the decoder's
// output, downsamples by sample via a 2x2 box average, and writes into
// dst. Reading in final order (rather than decode order) makes
// deinterlacing transparent to the rest of the function and keeps the box
// average operating on physically adjacent output rows even when the
// source was interlaced.
func compositeFrameInto(frame *container.Frame, indexed []byte, table *[256]uint32, dst []uint32, wOut, hOut, sample int) {
	iw, ih := frame.IW, frame.IH
	dx0, dy0 := frame.IX/sample, frame.IY/sample
	dh := ih / sample

	decodeRow := rowDecodePosition(frame.Interlace, ih)

	srcRow := func(finalRow int) []byte {
		if finalRow < 0 || finalRow >= ih {
			return nil
		}
		dr := decodeRow[finalRow]
		return indexed[dr*iw : dr*iw+iw]
	}

	plot := func(finalRow int, dstLineIdx int) {
		dy := dy0 + dstLineIdx
		if dy < 0 || dy >= hOut {
			return
		}
		row := srcRow(finalRow)
		if row == nil {
			return
		}
		nextRow := srcRow(finalRow + 1)
		base := dy * wOut
		for dxi := 0; dxi < iw/sample; dxi++ {
			dx := dx0 + dxi
			if dx < 0 || dx >= wOut {
				continue
			}
			var c uint32
			if sample == 1 {
				c = table[row[dxi]]
			} else {
				c = boxSample(row, nextRow, table, dxi*sample, sample, iw)
			}
			base2 := base + dx
			dst[base2] = c
		}
	}

	for sy := 0; sy < ih; sy += sample {
		dstLine := sy / sample
		if dstLine >= dh {
			continue
		}
		plot(sy, dstLine)
	}
}

// boxSample averages the 2x2 block at columns sx and sx+1 of row and the row
// below it, skipping transparent (zero-mapped) source pixels. For sample > 2
// only those first two columns and two rows of the sample x sample cell are
// read. If every sampled pixel is transparent, the result is transparent.
func boxSample(row, nextRow []byte, table *[256]uint32, sx, sample, iw int) uint32 {
	var rSum, gSum, bSum, total uint32

	addPixel := func(line []byte, x int) {
		if line == nil || x < 0 || x >= iw {
			return
		}
		c := table[line[x]]
		if c == 0 {
			return
		}
		rSum += (c >> 16) & 0xFF
		gSum += (c >> 8) & 0xFF
		bSum += c & 0xFF
		total++
	}

	for dx := 0; dx < sample && dx < 2; dx++ {
		addPixel(row, sx+dx)
		addPixel(nextRow, sx+dx)
	}

	if total == 0 {
		return 0
	}
	return 0xFF000000 | (rSum/total)<<16 | (gSum/total)<<8 | (bSum / total)
}
