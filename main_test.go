package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestBodyLimitFitsPlatformInt(t *testing.T) {
	limit := requestBodyLimit()
	assert.Greater(t, limit, 0)
	assert.LessOrEqual(t, int64(limit), int64(math.MaxInt))
	// Large enough for the uploads the app is built for
	assert.GreaterOrEqual(t, limit, 2*1024*1024*1024-1)
}
