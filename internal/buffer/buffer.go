package buffer

import (
	"errors"
	"io"
)

// Default capacities for the per-connection buffers.
const (
	RequestSize  = 2 << 20 // 2MB, one read from the client
	ResponseSize = 4 << 20 // 4MB, headers plus file bytes
)

var ErrBufferFull = errors.New("buffer full")

// Buffer is a byte slice with a hard capacity. Writes never grow it past
// that capacity; an append that does not fit fails with ErrBufferFull and
// leaves the contents untouched.
type Buffer struct {
	buf []byte
}

// New creates an empty buffer holding at most capacity bytes
func New(capacity int) *Buffer {
	return &Buffer{
		buf: make([]byte, 0, capacity),
	}
}

func (b *Buffer) Len() int       { return len(b.buf) }
func (b *Buffer) Cap() int       { return cap(b.buf) }
func (b *Buffer) Available() int { return cap(b.buf) - len(b.buf) }
func (b *Buffer) Bytes() []byte  { return b.buf }
func (b *Buffer) Reset()         { b.buf = b.buf[:0] }

// Append copies p into the buffer or fails without writing anything
func (b *Buffer) Append(p []byte) error {
	if len(p) > b.Available() {
		return ErrBufferFull
	}
	b.buf = append(b.buf, p...)
	return nil
}

// AppendString is Append for strings
func (b *Buffer) AppendString(s string) error {
	if len(s) > b.Available() {
		return ErrBufferFull
	}
	b.buf = append(b.buf, s...)
	return nil
}

// ReadOnce performs exactly one Read into the free space of the buffer.
func (b *Buffer) ReadOnce(r io.Reader) (int, error) {
	if b.Available() == 0 {
		return 0, ErrBufferFull
	}
	n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
	if n > 0 {
		b.buf = b.buf[:len(b.buf)+n]
	}
	return n, err
}

// ReadFrom reads from r into the free space until EOF. If the buffer fills
// up while r still has data, ErrBufferFull is returned along with the
// bytes read so far.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if b.Available() == 0 {
			// Probe for one more byte to tell "exactly full" from "too small"
			var probe [1]byte
			n, err := r.Read(probe[:])
			if n > 0 {
				return total, ErrBufferFull
			}
			if err == io.EOF {
				return total, nil
			}
			if err != nil {
				return total, err
			}
			continue
		}

		n, err := b.ReadOnce(r)
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
