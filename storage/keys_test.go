package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyUniqueness(t *testing.T) {
	// Same name, same folder, same instant: the random id still separates them
	a := GenerateKey("lecture.mp4", "videos")
	b := GenerateKey("lecture.mp4", "videos")
	assert.NotEqual(t, a, b)
}

func TestGenerateKeySanitizesName(t *testing.T) {
	key := GenerateKey("урок 1 (final)?.mp4", "")
	assert.True(t, strings.HasSuffix(key, ".mp4"))
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")
	assert.NotContains(t, key, "?")
}

func TestGenerateKeyFolderPrefix(t *testing.T) {
	key := GenerateKey("a.png", "covers")
	assert.True(t, strings.HasPrefix(key, "covers/"))
	assert.Equal(t, 1, strings.Count(key, "/"))
}

func TestGenerateKeyFolderTraversal(t *testing.T) {
	key := GenerateKey("a.png", "../../etc")
	assert.False(t, strings.Contains(key, ".."))

	key = GenerateKey("a.png", "//covers//")
	assert.True(t, strings.HasPrefix(key, "covers/"))
}

func TestGenerateKeyNoFolder(t *testing.T) {
	key := GenerateKey("a.png", "")
	assert.False(t, strings.Contains(key, "/"))
}
