package container

import "github.com/deepteams/gifcore/internal/bitio"

// subBlockScratch is the maximum size of a single GIF data sub-block: a
// length byte followed by at most 255 data bytes.
const subBlockScratch = 256

// SubBlockReader reads GIF variable-length data sub-blocks: a length byte n
// followed by exactly n data bytes, repeated until a zero-length block
// terminates the chain. It owns a small scratch buffer so callers never
// allocate per block.
type SubBlockReader struct {
	r   *bitio.Reader
	buf [subBlockScratch]byte
}

// NewSubBlockReader wraps r for sub-block reads.
func NewSubBlockReader(r *bitio.Reader) *SubBlockReader {
	return &SubBlockReader{r: r}
}

// ReadBlock reads one sub-block into the scratch buffer and returns its
// length (0 marks the terminator). ok is false only on a truncated stream.
func (s *SubBlockReader) ReadBlock() (n int, ok bool) {
	sz, ok := s.r.ReadU8()
	if !ok {
		return 0, false
	}
	if sz == 0 {
		return 0, true
	}
	if !s.r.ReadBytes(s.buf[:], int(sz)) {
		return 0, false
	}
	return int(sz), true
}

// Block returns the whole scratch buffer; after a ReadBlock call that
// returned n, its first n bytes hold that sub-block's data.
func (s *SubBlockReader) Block() []byte { return s.buf[:] }

// SkipBlocks discards sub-blocks until the terminator (or a truncated
// stream, reported via ok=false).
func (s *SubBlockReader) SkipBlocks() (ok bool) {
	for {
		sz, ok := s.r.ReadU8()
		if !ok {
			return false
		}
		if sz == 0 {
			return true
		}
		if !s.r.Skip(int(sz)) {
			return false
		}
	}
}
