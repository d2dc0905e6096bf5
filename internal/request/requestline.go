package request

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrUnknownParser    = errors.New("unknown request line parser")
)

// LineParser extracts the requested resource from a raw request buffer.
// The returned path has its leading slash stripped and is still
// percent-encoded.
type LineParser interface {
	ParseRequestLine(buf []byte) (string, error)
}

// Parser names accepted by NewLineParser
const (
	ParserRegexp    = "regexp"
	ParserTokenizer = "tokenizer"
)

// NewLineParser returns the parser registered under name
func NewLineParser(name string) (LineParser, error) {
	switch name {
	case "", ParserRegexp:
		return NewRegexpParser(), nil
	case ParserTokenizer:
		return Tokenizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
}

var requestLinePattern = regexp.MustCompile(`GET /([^ \r\n]*) HTTP/1\.1`)

// RegexpParser matches the first occurrence of "GET /<path> HTTP/1.1"
// anywhere in the buffer.
type RegexpParser struct {
	re *regexp.Regexp
}

func NewRegexpParser() *RegexpParser {
	return &RegexpParser{re: requestLinePattern}
}

func (p *RegexpParser) ParseRequestLine(buf []byte) (string, error) {
	buf = terminate(buf)
	if len(buf) == 0 {
		return "", fmt.Errorf("%w: empty request", ErrMalformedRequest)
	}

	m := p.re.FindSubmatchIndex(buf)
	if m == nil {
		return "", fmt.Errorf("%w: no GET request line", ErrMalformedRequest)
	}
	return string(buf[m[2]:m[3]]), nil
}

// Tokenizer splits the first line into METHOD TARGET VERSION
type Tokenizer struct{}

func (Tokenizer) ParseRequestLine(buf []byte) (string, error) {
	buf = terminate(buf)

	line := buf
	if idx := bytes.IndexByte(buf, '\n'); idx != -1 {
		line = buf[:idx]
	}
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return "", fmt.Errorf("%w: empty request line", ErrMalformedRequest)
	}

	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedRequest, len(parts))
	}

	method, target, version := parts[0], parts[1], parts[2]
	if string(method) != "GET" {
		return "", fmt.Errorf("%w: unsupported method %q", ErrMalformedRequest, method)
	}
	if len(target) == 0 || target[0] != '/' {
		return "", fmt.Errorf("%w: target %q", ErrMalformedRequest, target)
	}
	if string(version) != "HTTP/1.1" {
		return "", fmt.Errorf("%w: unsupported version %q", ErrMalformedRequest, version)
	}

	return string(target[1:]), nil
}

// terminate cuts buf at the first NUL byte
func terminate(buf []byte) []byte {
	if idx := bytes.IndexByte(buf, 0); idx != -1 {
		return buf[:idx]
	}
	return buf
}
