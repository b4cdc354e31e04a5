package wayland

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextConfigureZeroFallsBackToOutputSize(t *testing.T) {
	w, h, changed := nextConfigure(false, 0, 0, 1920, 1080, 0, 0)
	assert.True(t, changed)
	assert.Equal(t, int32(1920), w)
	assert.Equal(t, int32(1080), h)
}

func TestNextConfigureFirstSizeApplies(t *testing.T) {
	w, h, changed := nextConfigure(false, 0, 0, 1920, 1080, 2560, 1440)
	assert.True(t, changed)
	assert.Equal(t, int32(2560), w)
	assert.Equal(t, int32(1440), h)
}

func TestNextConfigureRepeatIsIdempotent(t *testing.T) {
	w, h, changed := nextConfigure(true, 2560, 1440, 2560, 1440, 2560, 1440)
	assert.False(t, changed)
	assert.Equal(t, int32(2560), w)
	assert.Equal(t, int32(1440), h)

	// A zero-sized repeat resolves to the current output size and is still
	// a no-op.
	_, _, changed = nextConfigure(true, 2560, 1440, 2560, 1440, 0, 0)
	assert.False(t, changed)
}

func TestNextConfigureResize(t *testing.T) {
	w, h, changed := nextConfigure(true, 1920, 1080, 1920, 1080, 2560, 1440)
	assert.True(t, changed)
	assert.Equal(t, int32(2560), w)
	assert.Equal(t, int32(1440), h)
}
