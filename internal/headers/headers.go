package headers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Brownie44l1/staticd/internal/buffer"
)

var ErrInvalidHeader = errors.New("invalid header")

// Headers is an ordered set of response header fields. Lookups ignore
// case; serialization keeps the name as it was first set and the order
// fields were added in.
type Headers struct {
	fields []field
}

type field struct {
	name  string
	value string
}

func New() *Headers {
	return &Headers{}
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	if i := h.index(key); i != -1 {
		return h.fields[i].value, true
	}
	return "", false
}

// Set replaces the value of an existing header in place, or appends it
func (h *Headers) Set(key, value string) {
	if i := h.index(key); i != -1 {
		h.fields[i].value = value
		return
	}
	h.fields = append(h.fields, field{name: key, value: value})
}


// AppendTo writes every field as "Name: value\r\n" followed by the blank
// line that ends the header block.
func (h *Headers) AppendTo(b *buffer.Buffer) error {
	for _, f := range h.fields {
		if err := validate(f); err != nil {
			return err
		}
		if err := b.AppendString(f.name + ": " + f.value + "\r\n"); err != nil {
			return err
		}
	}
	return b.AppendString("\r\n")
}

func (h *Headers) index(key string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.name, key) {
			return i
		}
	}
	return -1
}

func validate(f field) error {
	if f.name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidHeader)
	}
	for i := 0; i < len(f.name); i++ {
		if !isValidHeaderChar(f.name[i]) {
			return fmt.Errorf("%w: invalid character in name: %q", ErrInvalidHeader, f.name[i])
		}
	}
	// No response splitting
	if strings.ContainsAny(f.value, "\r\n") {
		return fmt.Errorf("%w: line break in value of %s", ErrInvalidHeader, f.name)
	}
	return nil
}

func isValidHeaderChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
