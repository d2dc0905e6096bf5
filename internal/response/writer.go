package response

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Brownie44l1/staticd/internal/buffer"
	"github.com/Brownie44l1/staticd/internal/headers"
)

var (
	ErrResponseTooLarge = errors.New("response too large for buffer")
	ErrIncomplete       = errors.New("incomplete response body")
)

// writerState tracks what's been written so far
type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Writer assembles one HTTP response into a bounded buffer. Nothing is
// sent anywhere; the connection handler writes the buffer out once the
// response is complete.
type Writer struct {
	dst           *buffer.Buffer
	state         writerState
	contentLength int64 // -1 means unknown
}

// NewWriter creates a new response writer
func NewWriter(dst *buffer.Buffer) *Writer {
	return &Writer{
		dst:           dst,
		state:         stateStart,
		contentLength: -1,
	}
}

// WriteStatusLine writes the HTTP status line
func (w *Writer) WriteStatusLine(code StatusCode) error {
	if w.state != stateStart {
		return fmt.Errorf("status line already written")
	}

	if err := w.dst.AppendString("HTTP/1.1 " + code.String() + "\r\n"); err != nil {
		return err
	}

	w.state = stateStatusWritten
	return nil
}

// WriteHeaders writes all HTTP headers and the blank line after them
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("must write status line before headers")
	}

	if cl, ok := h.Get("Content-Length"); ok {
		if length, err := strconv.ParseInt(cl, 10, 64); err == nil {
			w.contentLength = length
		}
	}

	if err := h.AppendTo(w.dst); err != nil {
		return err
	}

	w.state = stateHeadersWritten
	return nil
}

// WriteBody writes a body held in memory
func (w *Writer) WriteBody(data []byte) error {
	if w.state != stateHeadersWritten {
		return fmt.Errorf("must write headers before body")
	}

	if err := w.dst.Append(data); err != nil {
		return err
	}

	w.state = stateBodyWritten
	return nil
}

// ReadBodyFrom copies exactly the announced Content-Length bytes from r.
// A body that does not fit is ErrResponseTooLarge; a reader that fails or
// ends early is ErrIncomplete.
func (w *Writer) ReadBodyFrom(r io.Reader) (int64, error) {
	if w.state != stateHeadersWritten {
		return 0, fmt.Errorf("must write headers before body")
	}
	if w.contentLength < 0 {
		return 0, fmt.Errorf("body from reader needs a Content-Length")
	}

	if w.contentLength > int64(w.dst.Available()) {
		return 0, fmt.Errorf("%w: %d byte body, %d bytes free", ErrResponseTooLarge, w.contentLength, w.dst.Available())
	}

	n, err := w.dst.ReadFrom(r)
	if errors.Is(err, buffer.ErrBufferFull) {
		return n, fmt.Errorf("%w: body grew past %d bytes", ErrResponseTooLarge, w.contentLength)
	}
	if err != nil {
		return n, fmt.Errorf("%w: read %d of %d bytes: %v", ErrIncomplete, n, w.contentLength, err)
	}
	if n != w.contentLength {
		return n, fmt.Errorf("%w: body was %d bytes, announced %d", ErrIncomplete, n, w.contentLength)
	}

	w.state = stateBodyWritten
	return n, nil
}
