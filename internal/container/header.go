// Package container implements the GIF89a/GIF87a stream parser: the
// sub-block reader, the top-down header/content recognizer, and the data
// model (Header, Frame) it produces.
//
// It is modeled on the teacher codec's internal/container package, which
// walks a RIFF/WebP byte buffer chunk by chunk and materializes a Features
// + []FrameInfo pair; here the container is GIF's linear block stream
// instead of RIFF chunks, and NETSCAPE2.0 application-extension sniffing
// takes the place of ANIM/ANMF chunk recognition.
package container

import "github.com/deepteams/gifcore/internal/bitio"

// Status mirrors the core's sticky/non-sticky error taxonomy (spec §7).
type Status uint8

const (
	StatusOK Status = iota
	StatusFormatError
	StatusOpenError
	StatusPartialDecode
)

// Dispose is a frame's disposal method, normalized so raw 0 (UNSPECIFIED)
// reads as DisposeNone.
type Dispose uint8

const (
	DisposeNone Dispose = 1 + iota
	DisposeBackground
	DisposePrevious
)

// LoopForever is the sentinel loop count meaning "loop indefinitely".
const LoopForever = -1

// ARGB is a packed 32-bit ARGB color, alpha always 0xFF for table entries.
type ARGB = uint32

// colorTableLen is the number of entries every materialized color table
// carries, regardless of the declared size in the stream, so rendering never
// needs a per-pixel bounds check.
const colorTableLen = 256

func argb(r, g, b byte) ARGB {
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Frame describes one image block in the stream.
type Frame struct {
	IX, IY, IW, IH int
	Interlace      bool
	Transparency   bool
	TransIndex     byte
	Dispose        Dispose
	DelayMS        uint32
	LCT            *[colorTableLen]ARGB
	// BufferFrameStart is the byte offset of the lzw_min_code_size byte that
	// begins this frame's LZW stream.
	BufferFrameStart int
}

// Header is the immutable result of parsing one GIF stream.
type Header struct {
	Width, Height  int
	GCTFlag        bool
	GCTSize        int
	GCT            *[colorTableLen]ARGB
	BGIndex        byte
	BGColor        ARGB
	PixelAspect    byte
	LoopCount      int // -1 == LoopForever
	Frames         []Frame
	Status         Status
}

// parser holds the mutable state of a single top-down parse.
type parser struct {
	r   *bitio.Reader
	sub *SubBlockReader
	hdr Header

	cur       *Frame // frame under construction, nil between GCE/ID pairs
	sawGCT    bool
	maxFrames int // 0 == unlimited
}

// Parse walks data as a GIF87a/GIF89a stream and returns the parsed Header.
// maxFrames, when nonzero, stops parsing after that many frames have been
// recorded (used by the "is this animated" probe).
func Parse(data []byte, maxFrames int) *Header {
	if len(data) == 0 {
		return &Header{Status: StatusOpenError}
	}

	p := &parser{
		r:         bitio.New(data),
		maxFrames: maxFrames,
		hdr:       Header{LoopCount: 0},
	}
	p.sub = NewSubBlockReader(p.r)

	if !p.readSignature() {
		p.hdr.Status = StatusOpenError
		return &p.hdr
	}
	if !p.readLogicalScreenDescriptor() {
		p.hdr.Status = StatusFormatError
		return &p.hdr
	}

	p.run()
	return &p.hdr
}

func (p *parser) readSignature() bool {
	var sig [6]byte
	if !p.r.ReadBytes(sig[:], 6) {
		return false
	}
	return sig[0] == 'G' && sig[1] == 'I' && sig[2] == 'F'
}

func (p *parser) readLogicalScreenDescriptor() bool {
	w, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	h, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	packed, ok := p.r.ReadU8()
	if !ok {
		return false
	}
	bgIndex, ok := p.r.ReadU8()
	if !ok {
		return false
	}
	pixelAspect, ok := p.r.ReadU8()
	if !ok {
		return false
	}

	p.hdr.Width = int(w)
	p.hdr.Height = int(h)
	p.hdr.PixelAspect = pixelAspect
	p.hdr.BGIndex = bgIndex
	p.hdr.GCTFlag = packed&0x80 != 0
	p.hdr.GCTSize = 2 << (packed & 0x07)

	if p.hdr.GCTFlag {
		table, ok := p.readColorTable(p.hdr.GCTSize)
		if !ok {
			return false
		}
		p.hdr.GCT = table
		p.hdr.BGColor = table[bgIndex]
		p.sawGCT = true
	}
	return true
}

// readColorTable reads n*3 bytes and materializes a zero-padded 256-entry
// ARGB table.
func (p *parser) readColorTable(n int) (*[colorTableLen]ARGB, bool) {
	raw := make([]byte, n*3)
	if !p.r.ReadBytes(raw, n*3) {
		return nil, false
	}
	var table [colorTableLen]ARGB
	for i := 0; i < n; i++ {
		table[i] = argb(raw[i*3], raw[i*3+1], raw[i*3+2])
	}
	return &table, true
}

const (
	blockImageSeparator   = 0x2C
	blockExtension        = 0x21
	blockTrailer          = 0x3B
	extGraphicControl     = 0xF9
	extApplication        = 0xFF
	extComment            = 0xFE
	extPlainText          = 0x01
)

// run drives the content loop of §4.3 item 4 until Trailer, FORMAT_ERROR, or
// (in probe mode) the frame budget is exhausted.
func (p *parser) run() {
	for {
		code, ok := p.r.ReadU8()
		if !ok {
			p.hdr.Status = StatusFormatError
			return
		}

		switch code {
		case blockImageSeparator:
			if p.cur == nil {
				p.cur = &Frame{Dispose: DisposeNone}
			}
			if !p.readImageDescriptor() {
				p.hdr.Status = StatusFormatError
				return
			}
			p.cur = nil
			if p.maxFrames > 0 && len(p.hdr.Frames) >= p.maxFrames {
				return
			}

		case blockExtension:
			sub, ok := p.r.ReadU8()
			if !ok {
				p.hdr.Status = StatusFormatError
				return
			}
			switch sub {
			case extGraphicControl:
				p.cur = &Frame{Dispose: DisposeNone}
				if !p.readGCE() {
					p.hdr.Status = StatusFormatError
					return
				}
			case extApplication:
				if !p.readApplicationExtension() {
					p.hdr.Status = StatusFormatError
					return
				}
			case extComment, extPlainText:
				if !p.sub.SkipBlocks() {
					p.hdr.Status = StatusFormatError
					return
				}
			default:
				if !p.sub.SkipBlocks() {
					p.hdr.Status = StatusFormatError
					return
				}
			}

		case blockTrailer:
			return

		default:
			p.hdr.Status = StatusFormatError
			return
		}
	}
}

func (p *parser) readGCE() bool {
	size, ok := p.r.ReadU8()
	if !ok || size != 4 {
		return false
	}
	packed, ok := p.r.ReadU8()
	if !ok {
		return false
	}
	delay, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	transIndex, ok := p.r.ReadU8()
	if !ok {
		return false
	}
	terminator, ok := p.r.ReadU8()
	if !ok || terminator != 0 {
		return false
	}

	ms := uint32(delay) * 10
	if ms < 20 {
		ms = 100
	}

	dispose := Dispose((packed >> 2) & 0x7)
	if dispose == 0 {
		dispose = DisposeNone
	}

	p.cur.Dispose = dispose
	p.cur.Transparency = packed&0x01 != 0
	p.cur.TransIndex = transIndex
	p.cur.DelayMS = ms
	return true
}

func (p *parser) readImageDescriptor() bool {
	ix, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	iy, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	iw, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	ih, ok := p.r.ReadU16LE()
	if !ok {
		return false
	}
	packed, ok := p.r.ReadU8()
	if !ok {
		return false
	}

	f := p.cur
	f.IX, f.IY, f.IW, f.IH = int(ix), int(iy), int(iw), int(ih)
	f.Interlace = packed&0x40 != 0

	lctFlag := packed&0x80 != 0
	lctSize := 2 << (packed & 0x07)
	if lctFlag {
		table, ok := p.readColorTable(lctSize)
		if !ok {
			return false
		}
		f.LCT = table
	} else if !p.sawGCT {
		return false
	}

	f.BufferFrameStart = p.r.Position()

	litWidth, ok := p.r.ReadU8()
	_ = litWidth
	if !ok {
		return false
	}
	if !p.sub.SkipBlocks() {
		return false
	}

	p.hdr.Frames = append(p.hdr.Frames, *f)
	return true
}

func (p *parser) readApplicationExtension() bool {
	n, ok := p.sub.ReadBlock()
	if !ok {
		return false
	}
	isNetscape := n == 11 && string(p.sub.Block()[:11]) == "NETSCAPE2.0"
	if !isNetscape {
		return p.sub.SkipBlocks()
	}
	return p.readNetscapeExt()
}

func (p *parser) readNetscapeExt() bool {
	for {
		n, ok := p.sub.ReadBlock()
		if !ok {
			return false
		}
		if n == 0 {
			return true
		}
		b := p.sub.Block()
		if n >= 3 && b[0] == 0x01 {
			count := int(b[1]) | int(b[2])<<8
			if count == 0 {
				p.hdr.LoopCount = LoopForever
			} else {
				p.hdr.LoopCount = count
			}
		}
	}
}
