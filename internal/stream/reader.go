package stream

import (
	"encoding/binary"
	"fmt"
)

// Reader is a forward-only cursor over a fixed byte buffer. It provides
// big-endian integer reads, raw spans, and position queries, and it
// records the first error encountered so callers can chain reads and
// check once.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader creates a Reader over buf. The buffer is not copied; the
// caller must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset from the start of the buffer.
func (r *Reader) Pos() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Error returns the first error that occurred during reading, if any.
func (r *Reader) Error() error {
	return r.err
}

// recordError records the first error encountered and pins the cursor so
// subsequent reads fail immediately.
func (r *Reader) recordError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// need checks that n more bytes are available.
func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if len(r.buf)-r.off < n {
		r.recordError(fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEnd, n, r.off, len(r.buf)-r.off))
		return false
	}
	return true
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (byte, error) {
	if !r.need(1) {
		return 0, r.err
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if !r.need(2) {
		return 0, r.err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// ReadInt16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	if !r.need(4) {
		return 0, r.err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return int32(v), nil
}

// ReadBytes reads a span of exactly n bytes. The returned slice aliases
// the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		r.recordError(fmt.Errorf("%w: negative span length %d", ErrMalformedRecord, n))
		return nil, r.err
	}
	if !r.need(n) {
		return nil, r.err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Peek returns up to n upcoming bytes without advancing the cursor. It
// returns fewer than n bytes near the end of the buffer.
func (r *Reader) Peek(n int) []byte {
	if r.err != nil {
		return nil
	}
	end := r.off + n
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return r.buf[r.off:end]
}
