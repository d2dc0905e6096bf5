// Package mime maps file name extensions to Content-Type values.
package mime

import "strings"

const DefaultType = "application/octet-stream"

var types = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// Extension returns the part of name after the last dot. A name with no
// dot, or whose only dot is its first character, has no extension.
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return name[idx+1:]
}

// TypeByExtension returns the content type for ext, ignoring case
func TypeByExtension(ext string) string {
	if t, ok := types[strings.ToLower(ext)]; ok {
		return t
	}
	return DefaultType
}

// TypeByName is TypeByExtension(Extension(name))
func TypeByName(name string) string {
	return TypeByExtension(Extension(name))
}
