package response

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-git/go-billy/v5"

	"github.com/Brownie44l1/staticd/internal/buffer"
	"github.com/Brownie44l1/staticd/internal/headers"
)

// FileSystem is the read-only view of the served tree
type FileSystem interface {
	Open(filename string) (billy.File, error)
	Stat(filename string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
}

// Result describes the response a Builder produced
type Result struct {
	Status StatusCode
	// File actually opened; differs from the request only after a
	// case-insensitive match.
	File          string
	ContentLength int64
}

// Builder turns a decoded path into a complete response
type Builder struct {
	FS              FileSystem
	CaseInsensitive bool
}

// Build writes the response for path into dst. Any failure to open the
// file becomes the fixed 404 response. A returned error means dst does
// not hold a response that may be sent.
func (b *Builder) Build(dst *buffer.Buffer, path, contentType string) (Result, error) {
	f, name, err := b.open(path)
	if err != nil {
		return Result{Status: StatusNotFound, File: path}, WriteNotFound(dst)
	}
	defer f.Close()

	info, err := b.FS.Stat(name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: stat %s: %v", ErrIncomplete, name, err)
	}
	if info.IsDir() {
		return Result{Status: StatusNotFound, File: name}, WriteNotFound(dst)
	}

	if err := WriteFound(dst, contentType, info.Size(), f); err != nil {
		return Result{}, err
	}
	return Result{Status: StatusOK, File: name, ContentLength: info.Size()}, nil
}

func (b *Builder) open(path string) (billy.File, string, error) {
	f, err := b.FS.Open(path)
	if err == nil || !b.CaseInsensitive {
		return f, path, err
	}

	name, ok := FindCaseInsensitive(b.FS, path)
	if !ok {
		return nil, "", err
	}
	f, err = b.FS.Open(name)
	return f, name, err
}

// WriteFound writes a 200 response whose body is size bytes read from body
func WriteFound(dst *buffer.Buffer, contentType string, size int64, body io.Reader) error {
	w := NewWriter(dst)
	if err := w.WriteStatusLine(StatusOK); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseTooLarge, err)
	}

	h := headers.New()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	if err := w.WriteHeaders(h); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseTooLarge, err)
	}

	_, err := w.ReadBodyFrom(body)
	return err
}

// WriteNotFound writes the fixed 404 response
func WriteNotFound(dst *buffer.Buffer) error {
	return WriteError(dst, StatusNotFound)
}

// WriteError writes a text/plain response whose body is the status itself,
// e.g. "404 Not Found". No Content-Length is sent; the connection is
// closed after the body.
func WriteError(dst *buffer.Buffer, code StatusCode) error {
	w := NewWriter(dst)
	if err := w.WriteStatusLine(code); err != nil {
		return err
	}

	h := headers.New()
	h.Set("Content-Type", "text/plain")
	if err := w.WriteHeaders(h); err != nil {
		return err
	}

	return w.WriteBody([]byte(code.String()))
}
