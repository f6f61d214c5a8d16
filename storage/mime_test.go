package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveContentTypeKnownExtensions(t *testing.T) {
	assert.Equal(t, "video/mp4", ResolveContentType("a.mp4", "application/octet-stream"))
	assert.Equal(t, "video/mp4", ResolveContentType("A.MP4", "application/octet-stream"))
	assert.Equal(t, "image/png", ResolveContentType("logo.png", "text/plain"))
	assert.Equal(t, "application/pdf", ResolveContentType("syllabus.pdf", ""))
}

func TestResolveContentTypeFallback(t *testing.T) {
	assert.Equal(t, "application/octet-stream",
		ResolveContentType("file.unknownext", "application/octet-stream"))
	assert.Equal(t, "application/octet-stream",
		ResolveContentType("noextension", "application/octet-stream"))
	assert.Equal(t, "application/octet-stream",
		ResolveContentType("trailingdot.", "application/octet-stream"))
}
