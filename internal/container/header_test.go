package container

import "testing"

// gifBuilder assembles a minimal, well-formed GIF89a byte stream for tests.
// It exists because hand-writing byte literals for every test case would
// bury the actual assertions in binary noise.
type gifBuilder struct {
	buf []byte
}

func newGIFBuilder(w, h int, gct [][3]byte) *gifBuilder {
	b := &gifBuilder{}
	b.buf = append(b.buf, 'G', 'I', 'F', '8', '9', 'a')
	b.u16(w)
	b.u16(h)
	packed := byte(0)
	if len(gct) > 0 {
		packed |= 0x80
		packed |= colorTableSizeBits(len(gct))
	}
	b.buf = append(b.buf, packed, 0, 0)
	for _, c := range gct {
		b.buf = append(b.buf, c[0], c[1], c[2])
	}
	return b
}

func colorTableSizeBits(n int) byte {
	for bits := byte(0); bits < 8; bits++ {
		if 2<<bits >= n {
			return bits
		}
	}
	return 7
}

func (b *gifBuilder) u16(v int) {
	b.buf = append(b.buf, byte(v), byte(v>>8))
}

func (b *gifBuilder) gce(dispose Dispose, transparent bool, transIndex byte, delayCentis int) *gifBuilder {
	b.buf = append(b.buf, blockExtension, extGraphicControl, 4)
	packed := byte(dispose) << 2
	if transparent {
		packed |= 0x01
	}
	b.buf = append(b.buf, packed)
	b.u16(delayCentis)
	b.buf = append(b.buf, transIndex, 0)
	return b
}

func (b *gifBuilder) netscapeLoop(count int) *gifBuilder {
	b.buf = append(b.buf, blockExtension, extApplication, 11)
	b.buf = append(b.buf, []byte("NETSCAPE2.0")...)
	b.buf = append(b.buf, 3, 0x01, byte(count), byte(count>>8), 0)
	return b
}

func (b *gifBuilder) imageNoLCT(ix, iy, iw, ih int, interlace bool, pixels []byte) *gifBuilder {
	b.buf = append(b.buf, blockImageSeparator)
	b.u16(ix)
	b.u16(iy)
	b.u16(iw)
	b.u16(ih)
	packed := byte(0)
	if interlace {
		packed |= 0x40
	}
	b.buf = append(b.buf, packed)
	b.buf = append(b.buf, uncompressedLZW(pixels)...)
	return b
}

func (b *gifBuilder) trailer() []byte {
	b.buf = append(b.buf, blockTrailer)
	return b.buf
}

// uncompressedLZW emits a trivial LZW stream that decodes back to pixels
// exactly: minimum code size 2, one clear code, one literal code per pixel
// (no dictionary code is ever emitted), then EOI. It packs codes LSB-first
// starting at 3 bits (codeSize = minCodeSize+1) and widens them where the
// decoder does: every code after the first adds a dictionary entry, and the
// width grows by one bit once the next free entry reaches 1<<codeSize.
func uncompressedLZW(pixels []byte) []byte {
	const minCodeSize = 2
	clear := 1 << minCodeSize
	eoi := clear + 1
	codeSize := minCodeSize + 1

	var bitBuf []byte
	var acc, nbits int
	emit := func(code int) {
		acc |= code << nbits
		nbits += codeSize
		for nbits >= 8 {
			bitBuf = append(bitBuf, byte(acc))
			acc >>= 8
			nbits -= 8
		}
	}
	emit(clear)
	available := clear + 2
	for i, px := range pixels {
		emit(int(px))
		if i > 0 && available < 4096 {
			available++
			if available == 1<<codeSize && available < 4096 {
				codeSize++
			}
		}
	}
	emit(eoi)
	if nbits > 0 {
		bitBuf = append(bitBuf, byte(acc))
	}

	out := []byte{byte(minCodeSize)}
	for len(bitBuf) > 0 {
		n := len(bitBuf)
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, bitBuf[:n]...)
		bitBuf = bitBuf[n:]
	}
	out = append(out, 0)
	return out
}

func TestParseSingleFrameStatic(t *testing.T) {
	b := newGIFBuilder(2, 2, [][3]byte{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {0, 0, 0}})
	data := b.imageNoLCT(0, 0, 2, 2, false, []byte{0, 1, 2, 3}).trailer()

	hdr := Parse(data, 0)
	if hdr.Status != StatusOK {
		t.Fatalf("Status = %d, want StatusOK", hdr.Status)
	}
	if len(hdr.Frames) != 1 {
		t.Fatalf("len(Frames) = %d, want 1", len(hdr.Frames))
	}
	f := hdr.Frames[0]
	if f.IW != 2 || f.IH != 2 {
		t.Errorf("frame size = %dx%d, want 2x2", f.IW, f.IH)
	}
	if f.Dispose != DisposeNone {
		t.Errorf("Dispose = %d, want DisposeNone (unspecified normalizes to none)", f.Dispose)
	}
}

func TestParseNetscapeLoopForever(t *testing.T) {
	b := newGIFBuilder(1, 1, [][3]byte{{0, 0, 0}, {255, 255, 255}})
	b.netscapeLoop(0)
	data := b.imageNoLCT(0, 0, 1, 1, false, []byte{0}).trailer()

	hdr := Parse(data, 0)
	if hdr.Status != StatusOK {
		t.Fatalf("Status = %d, want StatusOK", hdr.Status)
	}
	if hdr.LoopCount != LoopForever {
		t.Errorf("LoopCount = %d, want LoopForever", hdr.LoopCount)
	}
}

func TestParseNetscapeFiniteLoop(t *testing.T) {
	b := newGIFBuilder(1, 1, [][3]byte{{0, 0, 0}, {255, 255, 255}})
	b.netscapeLoop(5)
	data := b.imageNoLCT(0, 0, 1, 1, false, []byte{0}).trailer()

	hdr := Parse(data, 0)
	if hdr.LoopCount != 5 {
		t.Errorf("LoopCount = %d, want 5", hdr.LoopCount)
	}
}

func TestParseGCEDelayNormalization(t *testing.T) {
	b := newGIFBuilder(1, 1, [][3]byte{{0, 0, 0}, {255, 255, 255}})
	b.gce(DisposeNone, false, 0, 1) // 1 centisecond -> below the 20ms floor
	data := b.imageNoLCT(0, 0, 1, 1, false, []byte{0}).trailer()

	hdr := Parse(data, 0)
	if hdr.Frames[0].DelayMS != 100 {
		t.Errorf("DelayMS = %d, want 100 (sub-20ms delays normalize to 100ms)", hdr.Frames[0].DelayMS)
	}
}

func TestParseGCETransparency(t *testing.T) {
	b := newGIFBuilder(1, 1, [][3]byte{{0, 0, 0}, {255, 255, 255}})
	b.gce(DisposeBackground, true, 1, 10)
	data := b.imageNoLCT(0, 0, 1, 1, false, []byte{0}).trailer()

	hdr := Parse(data, 0)
	f := hdr.Frames[0]
	if !f.Transparency || f.TransIndex != 1 {
		t.Errorf("Transparency/TransIndex = %v/%d, want true/1", f.Transparency, f.TransIndex)
	}
	if f.Dispose != DisposeBackground {
		t.Errorf("Dispose = %d, want DisposeBackground", f.Dispose)
	}
}

func TestParseNoColorTableIsFormatError(t *testing.T) {
	b := newGIFBuilder(1, 1, nil)
	data := b.imageNoLCT(0, 0, 1, 1, false, []byte{0}).trailer()

	hdr := Parse(data, 0)
	if hdr.Status != StatusFormatError {
		t.Errorf("Status = %d, want StatusFormatError for a frame with neither GCT nor LCT", hdr.Status)
	}
}

func TestParseEmptyInputIsOpenError(t *testing.T) {
	hdr := Parse(nil, 0)
	if hdr.Status != StatusOpenError {
		t.Errorf("Status = %d, want StatusOpenError", hdr.Status)
	}
}

func TestParseBadSignatureIsOpenError(t *testing.T) {
	hdr := Parse([]byte("NOTAGIF89a...."), 0)
	if hdr.Status != StatusOpenError {
		t.Errorf("Status = %d, want StatusOpenError", hdr.Status)
	}
}

func TestParseMaxFramesStopsEarly(t *testing.T) {
	b := newGIFBuilder(1, 1, [][3]byte{{0, 0, 0}, {255, 255, 255}})
	b.imageNoLCT(0, 0, 1, 1, false, []byte{0})
	b.imageNoLCT(0, 0, 1, 1, false, []byte{1})
	data := b.trailer()

	hdr := Parse(data, 1)
	if len(hdr.Frames) != 1 {
		t.Errorf("len(Frames) = %d, want 1 with maxFrames=1", len(hdr.Frames))
	}
}
