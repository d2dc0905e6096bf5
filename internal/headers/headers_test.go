package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/staticd/internal/buffer"
)

func TestHeadersGetSet(t *testing.T) {
	h := New()
	h.Set("Content-Type", "text/html")

	// Lookups ignore case
	val, ok := h.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/html", val)

	// Set replaces in place
	h.Set("CONTENT-TYPE", "text/plain")
	val, ok = h.Get("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", val)

	_, ok = h.Get("Content-Length")
	assert.False(t, ok)
}

func TestHeadersSetKeepsOriginalName(t *testing.T) {
	h := New()
	h.Set("Content-Type", "text/html")
	h.Set("content-type", "text/plain")

	b := buffer.New(64)
	require.NoError(t, h.AppendTo(b))
	assert.Equal(t, "Content-Type: text/plain\r\n\r\n", string(b.Bytes()))
}

func TestHeadersAppendToKeepsOrder(t *testing.T) {
	h := New()
	h.Set("Content-Type", "text/html")
	h.Set("Content-Length", "12")

	b := buffer.New(128)
	require.NoError(t, h.AppendTo(b))
	assert.Equal(t, "Content-Type: text/html\r\nContent-Length: 12\r\n\r\n", string(b.Bytes()))
}

func TestHeadersAppendToEmpty(t *testing.T) {
	b := buffer.New(8)
	require.NoError(t, New().AppendTo(b))
	assert.Equal(t, "\r\n", string(b.Bytes()))
}

func TestHeadersAppendToBufferFull(t *testing.T) {
	h := New()
	h.Set("Content-Type", "application/octet-stream")

	b := buffer.New(10)
	err := h.AppendTo(b)
	assert.ErrorIs(t, err, buffer.ErrBufferFull)
}

func TestHeadersRejectInvalidFields(t *testing.T) {
	cases := []struct{ name, value string }{
		{"", "x"},
		{"Bad Name", "x"},
		{"Bad:Name", "x"},
		{"X-Split", "a\r\nInjected: yes"},
	}

	for _, c := range cases {
		h := New()
		h.Set(c.name, c.value)
		err := h.AppendTo(buffer.New(256))
		assert.ErrorIs(t, err, ErrInvalidHeader, "field %q: %q", c.name, c.value)
	}
}
