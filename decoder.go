// Package gifcore decodes animated GIF streams into a sequence of composited
// ARGB rasters, advancing frame-by-frame the way an on-screen animation
// would rather than decoding every frame up front.
//
// The package is organized the way the teacher codec organizes a WebP
// decode: low-level bit/container parsing lives under internal/, the public
// surface is a single facade type (Decoder here, AnimDecoder there) that
// owns a sync.Mutex and serializes every mutating call, and pixel buffers
// flow through a pluggable BufferProvider so callers that decode many GIFs
// can recycle allocations.
package gifcore

import (
	"sync"

	"github.com/deepteams/gifcore/internal/bitio"
	"github.com/deepteams/gifcore/internal/container"
	"github.com/deepteams/gifcore/internal/lzw"
	"github.com/deepteams/gifcore/raster"
)

// Header re-exports the parsed stream header so callers never need to
// import internal/container directly.
type Header = container.Header

// Frame re-exports the parsed per-frame descriptor.
type Frame = container.Frame

// Status is the core's sticky/non-sticky result taxonomy (spec §7): OK and
// PARTIAL_DECODE are transient and only ever describe the most recent
// get_current_frame call, while FORMAT_ERROR and OPEN_ERROR latch until the
// Decoder's next Read.
type Status uint8

const (
	StatusOK Status = iota
	StatusFormatError
	StatusOpenError
	StatusPartialDecode
)

// Decoder is the frame-advance facade described by spec §4.6. All mutating
// methods are safe for concurrent use; none of them perform I/O or block on
// anything but the internal mutex, so holding it never stalls a caller
// behind network or disk latency.
type Decoder struct {
	mu sync.Mutex

	provider raster.BufferProvider
	sample   int

	hdr *Header
	raw []byte

	frameIndex int
	loopIndex  int
	status     Status

	anyPrevious bool
	compState   compositeState

	indexedScratch []byte
	outRaster      *raster.Raster
}

// NewDecoder constructs a Decoder with the given BufferProvider (nil selects
// raster.DefaultProvider) and downsample factor (must be a power of two;
// sample<=0 is treated as 1).
func NewDecoder(provider raster.BufferProvider, sample int) *Decoder {
	if provider == nil {
		provider = raster.DefaultProvider{}
	}
	if sample <= 0 {
		sample = 1
	}
	return &Decoder{
		provider:   provider,
		sample:     sample,
		status:     StatusOK,
		frameIndex: -1,
	}
}

// Read parses buf as a complete GIF stream, replacing any previously loaded
// stream. It always returns the resulting Status; FORMAT_ERROR and
// OPEN_ERROR latch until the next successful Read.
func (d *Decoder) Read(buf []byte) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseOutputLocked()
	d.hdr = nil
	d.raw = nil
	d.frameIndex = -1
	d.loopIndex = 0
	d.compState = compositeState{}
	d.anyPrevious = false

	hdr := container.Parse(buf, 0)
	d.hdr = hdr
	d.raw = buf
	d.status = mapStatus(hdr.Status)

	if d.status == StatusOK {
		for i := range hdr.Frames {
			if hdr.Frames[i].Dispose == container.DisposePrevious {
				d.anyPrevious = true
				break
			}
		}
	}
	return d.status
}

func mapStatus(s container.Status) Status {
	switch s {
	case container.StatusFormatError:
		return StatusFormatError
	case container.StatusOpenError:
		return StatusOpenError
	case container.StatusPartialDecode:
		return StatusPartialDecode
	default:
		return StatusOK
	}
}

// FrameCount returns the number of frames successfully parsed, even if the
// stream as a whole ended in FORMAT_ERROR (spec §4.6: frames already parsed
// before a truncation remain visible).
func (d *Decoder) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil {
		return 0
	}
	return len(d.hdr.Frames)
}

// LoopCount returns the stream's declared loop count, or LoopForever.
func (d *Decoder) LoopCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil {
		return 0
	}
	return d.hdr.LoopCount
}

// Width and Height report the logical screen size, downsampled by the
// configured sample factor.
func (d *Decoder) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil {
		return 0
	}
	return d.hdr.Width / d.sample
}

func (d *Decoder) Height() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil {
		return 0
	}
	return d.hdr.Height / d.sample
}

// CurrentFrameIndex returns the index of the frame get_current_frame would
// currently render.
func (d *Decoder) CurrentFrameIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frameIndex
}

// LoopIndex returns how many full loops through the frame sequence have
// completed.
func (d *Decoder) LoopIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loopIndex
}

// Delay returns the normalized delay, in milliseconds, of frame i.
func (d *Decoder) Delay(i int) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil || i < 0 || i >= len(d.hdr.Frames) {
		return 0
	}
	return d.hdr.Frames[i].DelayMS
}

// NextDelay returns the delay of the frame that would become current after
// the next Advance call.
func (d *Decoder) NextDelay() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil || len(d.hdr.Frames) == 0 {
		return 0
	}
	next := d.frameIndex + 1
	if next >= len(d.hdr.Frames) {
		next = 0
	}
	return d.hdr.Frames[next].DelayMS
}

// Advance moves to the next frame, wrapping to 0 when it reaches the end.
// Reaching the end also increments the loop index and, once loop_index
// exceeds a finite loop_count, refuses to wrap further: the frame pointer is
// left at the last frame and Advance returns false. A stream whose loop
// count is LoopForever never hits that ceiling.
func (d *Decoder) Advance() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil || len(d.hdr.Frames) == 0 {
		return false
	}
	n := len(d.hdr.Frames)
	if d.frameIndex == n-1 {
		d.loopIndex++
		if d.hdr.LoopCount != container.LoopForever && d.loopIndex > d.hdr.LoopCount {
			return false
		}
	}
	d.frameIndex = (d.frameIndex + 1) % n
	return true
}

// SetFrameIndex jumps directly to frame i, or to -1 to return to the
// pre-advance state (so a subsequent Advance lands back on frame 0). It
// invalidates any DISPOSE_PREVIOUS snapshot and forces the next
// GetCurrentFrame to recomposite from scratch, since arbitrary seeks break
// the incremental prevFrame chain.
func (d *Decoder) SetFrameIndex(i int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hdr == nil || i < -1 || i >= len(d.hdr.Frames) {
		return false
	}
	d.frameIndex = i
	d.compState = compositeState{}
	return true
}

// ResetFrameIndex returns to the pre-advance state (frame pointer -1)
// without touching the loop index, so a subsequent Advance reproduces a
// freshly-constructed decoder's first frame.
func (d *Decoder) ResetFrameIndex() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frameIndex = -1
	d.compState = compositeState{}
}

// ResetLoopIndex zeroes the loop counter without touching frame position.
func (d *Decoder) ResetLoopIndex() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loopIndex = 0
}

// Clear releases the current output raster back to the provider and drops
// the loaded stream, returning the Decoder to its zero-value-equivalent
// state.
func (d *Decoder) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseOutputLocked()
	if d.indexedScratch != nil {
		d.provider.ReleaseBytes(d.indexedScratch)
		d.indexedScratch = nil
	}
	d.hdr = nil
	d.raw = nil
	d.frameIndex = -1
	d.loopIndex = 0
	d.compState = compositeState{}
}

func (d *Decoder) releaseOutputLocked() {
	if d.outRaster != nil {
		d.provider.ReleaseRaster(d.outRaster)
		d.outRaster = nil
	}
}

// GetCurrentFrame decodes and composites the frame at the current frame
// index, returning the resulting Raster. The frame is decoded again on every
// call and composited over the canvas the previous call left (after applying
// that frame's disposal); the returned status describes only this call, so a
// PARTIAL_DECODE reported here never sticks past this one invocation (spec §7). The returned Raster is owned by the
// Decoder until the next GetCurrentFrame, Clear, or Read call; copy Pix out
// before then if it must outlive that.
func (d *Decoder) GetCurrentFrame() (*raster.Raster, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hdr == nil || d.status == StatusFormatError || d.status == StatusOpenError {
		return nil, d.status
	}
	if len(d.hdr.Frames) == 0 {
		return nil, StatusFormatError
	}
	if d.frameIndex < 0 {
		return nil, StatusFormatError
	}

	frame := &d.hdr.Frames[d.frameIndex]

	need := frame.IW * frame.IH
	if cap(d.indexedScratch) < need {
		if d.indexedScratch != nil {
			d.provider.ReleaseBytes(d.indexedScratch)
		}
		d.indexedScratch = d.provider.ObtainBytes(need)
	}
	indexed := d.indexedScratch[:need]

	r := bitio.New(d.raw)
	lzwStatus := lzw.Decode(r, frame, indexed)

	outW, outH := d.hdr.Width/d.sample, d.hdr.Height/d.sample
	if d.outRaster == nil || d.outRaster.Width != outW || d.outRaster.Height != outH {
		d.releaseOutputLocked()
		d.outRaster = d.provider.ObtainRaster(outW, outH, raster.FormatARGB8888)
	}

	isFirst := d.frameIndex == 0 && !d.compState.hasPrevSnapshot && d.compState.prevFrame == nil
	cstatus := composite(d.hdr, frame, isFirst, indexed, d.outRaster.Pix, outW, outH, d.sample, &d.compState, d.anyPrevious)

	result := StatusOK
	switch {
	case cstatus == container.StatusFormatError:
		result = StatusFormatError
		d.status = StatusFormatError
	case lzwStatus == lzw.StatusFormatError:
		// A bad lzw_min_code_size or a failed seek returns here before dst
		// is touched at all, so indexed (and anything already composited
		// from it) cannot be trusted.
		result = StatusFormatError
		d.status = StatusFormatError
	case lzwStatus == lzw.StatusPartialDecode:
		result = StatusPartialDecode
	}

	if d.outRaster.Format == raster.FormatARGB8888 && !frame.Transparency && !d.compState.firstTransparent {
		d.outRaster.Format = raster.FormatRGB565
	}

	return d.outRaster, result
}

// ByteSize estimates the decoder's live allocation in bytes: the raw stream
// buffer, the indexed-pixel scratch, the output raster's pixel backing
// store, and the DISPOSE_PREVIOUS snapshot when one exists. It is an estimate for caller-side memory budgeting, not an exact
// accounting of every small struct.
func (d *Decoder) ByteSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.raw) + cap(d.indexedScratch)
	if d.outRaster != nil {
		n += len(d.outRaster.Pix) * 4
	}
	if d.compState.snapshot != nil {
		n += len(d.compState.snapshot) * 4
	}
	return n
}
