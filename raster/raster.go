// Package raster defines the output pixel buffer and the pluggable
// allocator that backs it and the core's other large scratch arrays.
package raster

// PixelFormat names the two output formats the compositor may choose
// between for opaque-vs-possibly-transparent animations (spec §4.5 step 6).
// The choice is an optimization contract, not a correctness one: callers
// may always treat a Raster as ARGB8888 regardless of Format.
type PixelFormat uint8

const (
	FormatARGB8888 PixelFormat = iota
	FormatRGB565
)

// Raster is a decoded frame: packed ARGB8888 values, row-major, Width*Height
// long. Format records which encoding the compositor intended; Pix is
// always populated with ARGB8888 values regardless.
type Raster struct {
	Width, Height int
	Format        PixelFormat
	Pix           []uint32
}

// BufferProvider is the pluggable allocator for the core's large scratch
// arrays (spec §5 resource policy): indexed-pixel buffers, the int raster
// backing store, and Raster values themselves. A pooling implementation
// lives in internal/pool; DefaultProvider below is the non-pooling
// fallback.
type BufferProvider interface {
	ObtainBytes(size int) []byte
	ReleaseBytes([]byte)

	ObtainInts(size int) []uint32
	ReleaseInts([]uint32)

	ObtainRaster(w, h int, format PixelFormat) *Raster
	ReleaseRaster(*Raster)
}

// DefaultProvider allocates plainly and releases nothing; it exists so
// callers who don't care about pooling can pass nil and get correct
// behavior.
type DefaultProvider struct{}

func (DefaultProvider) ObtainBytes(size int) []byte { return make([]byte, size) }
func (DefaultProvider) ReleaseBytes([]byte)         {}

func (DefaultProvider) ObtainInts(size int) []uint32 { return make([]uint32, size) }
func (DefaultProvider) ReleaseInts([]uint32)         {}

func (DefaultProvider) ObtainRaster(w, h int, format PixelFormat) *Raster {
	return &Raster{Width: w, Height: h, Format: format, Pix: make([]uint32, w*h)}
}
func (DefaultProvider) ReleaseRaster(*Raster) {}
