// Package pool provides a bucketed sync.Pool-backed BufferProvider for
// gifcore's large scratch arrays, adapted directly from the teacher codec's
// internal/pool package (size-classed byte-slice pools to cut allocations in
// decode hot paths). Here the same bucketing backs three call shapes instead
// of one: raw byte scratch (indexed pixels, sub-block scratch), uint32
// scratch (the output raster backing store), and whole Raster values.
package pool

import (
	"sync"

	"github.com/deepteams/gifcore/raster"
)

// Size classes for bucketed byte pools, identical to the teacher's pool.
const (
	size256B = 256
	size1K   = 1024
	size4K   = 4096
	size16K  = 16384
	size64K  = 65536
	size256K = 262144
	size1M   = 1048576
)

var sizes = [7]int{size256B, size1K, size4K, size16K, size64K, size256K, size1M}

func bucketIndex(size int) int {
	switch {
	case size <= size256B:
		return 0
	case size <= size1K:
		return 1
	case size <= size4K:
		return 2
	case size <= size16K:
		return 3
	case size <= size64K:
		return 4
	case size <= size256K:
		return 5
	default:
		return 6
	}
}

// Provider implements raster.BufferProvider with pooled backing storage.
type Provider struct {
	bytePools  [7]sync.Pool
	intPool    sync.Pool
	rasterPool sync.Pool
}

// New creates a Provider with its pools lazily initialized on first use.
func New() *Provider {
	p := &Provider{}
	for i := range p.bytePools {
		sz := sizes[i]
		p.bytePools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
	p.intPool = sync.Pool{New: func() any { var s []uint32; return &s }}
	p.rasterPool = sync.Pool{New: func() any { return &raster.Raster{} }}
	return p
}

func (p *Provider) ObtainBytes(size int) []byte {
	idx := bucketIndex(size)
	bp := p.bytePools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		return b
	}
	return b[:size]
}

func (p *Provider) ReleaseBytes(b []byte) {
	c := cap(b)
	if c < size256B {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	p.bytePools[idx].Put(&b)
}

func (p *Provider) ObtainInts(size int) []uint32 {
	sp := p.intPool.Get().(*[]uint32)
	s := *sp
	if cap(s) < size {
		return make([]uint32, size)
	}
	return s[:size]
}

func (p *Provider) ReleaseInts(s []uint32) {
	p.intPool.Put(&s)
}

func (p *Provider) ObtainRaster(w, h int, format raster.PixelFormat) *raster.Raster {
	r := p.rasterPool.Get().(*raster.Raster)
	r.Width, r.Height, r.Format = w, h, format
	r.Pix = p.ObtainInts(w * h)
	return r
}

func (p *Provider) ReleaseRaster(r *raster.Raster) {
	p.ReleaseInts(r.Pix)
	r.Pix = nil
	p.rasterPool.Put(r)
}
