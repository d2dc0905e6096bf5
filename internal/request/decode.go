package request

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidEscape = errors.New("invalid percent escape")

// DecodePath replaces every %XX escape with the byte it encodes. A '%'
// with fewer than two characters after it is kept literally, and '+' is
// not treated as a space.
func DecodePath(s string) (string, error) {
	if strings.IndexByte(s, '%') == -1 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' || i+2 >= len(s) {
			b.WriteByte(s[i])
			continue
		}

		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidEscape, s[i:i+3], i)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}

	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
