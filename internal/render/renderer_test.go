package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A surface torn down by the compositor hands out a nil renderer until the
// scheduler drops it; reading state through it must not panic.
func TestNilRendererAccessors(t *testing.T) {
	var r *Renderer
	assert.Nil(t, r.Media())
	assert.False(t, r.HasNewFrame())
}

func TestEmptyRendererHasNoFrame(t *testing.T) {
	r := &Renderer{}
	assert.Nil(t, r.Media())
	assert.False(t, r.HasNewFrame())
}
