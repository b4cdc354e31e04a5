package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverFitUVMatchingAspect(t *testing.T) {
	uv := CoverFitUV(1920, 1080, 1920, 1080)
	assert.InDelta(t, 0, uv.UMin, 1e-6)
	assert.InDelta(t, 0, uv.VMin, 1e-6)
	assert.InDelta(t, 1, uv.UMax, 1e-6)
	assert.InDelta(t, 1, uv.VMax, 1e-6)
}

func TestCoverFitUVWideMediaCropsSides(t *testing.T) {
	// 2:1 media on a 1:1 output scales to fit height and crops half the
	// width, a quarter on each side.
	uv := CoverFitUV(1000, 1000, 2000, 1000)
	assert.InDelta(t, 0.25, uv.UMin, 1e-6)
	assert.InDelta(t, 0.75, uv.UMax, 1e-6)
	assert.InDelta(t, 0, uv.VMin, 1e-6)
	assert.InDelta(t, 1, uv.VMax, 1e-6)
}

func TestCoverFitUVTallMediaCropsTopBottom(t *testing.T) {
	uv := CoverFitUV(1000, 1000, 1000, 2000)
	assert.InDelta(t, 0, uv.UMin, 1e-6)
	assert.InDelta(t, 1, uv.UMax, 1e-6)
	assert.InDelta(t, 0.25, uv.VMin, 1e-6)
	assert.InDelta(t, 0.75, uv.VMax, 1e-6)
}

func TestCoverFitUVCentered(t *testing.T) {
	// The crop window is symmetric regardless of aspect mismatch.
	cases := []struct{ ow, oh, mw, mh int32 }{
		{1920, 1080, 3840, 1080},
		{1920, 1080, 1280, 720},
		{1080, 1920, 1920, 1080},
		{2560, 1440, 640, 480},
	}
	for _, c := range cases {
		uv := CoverFitUV(c.ow, c.oh, c.mw, c.mh)
		assert.InDelta(t, uv.UMin, 1-uv.UMax, 1e-6)
		assert.InDelta(t, uv.VMin, 1-uv.VMax, 1e-6)
		assert.LessOrEqual(t, uv.UMin, uv.UMax)
		assert.LessOrEqual(t, uv.VMin, uv.VMax)
	}
}

func TestCoverFitUVUnknownMediaSize(t *testing.T) {
	assert.Equal(t, fullUV, CoverFitUV(1920, 1080, 0, 0))
	assert.Equal(t, fullUV, CoverFitUV(1920, 1080, -1, 1080))
	assert.Equal(t, fullUV, CoverFitUV(0, 0, 1920, 1080))
}

func TestQuadVerticesWindsTextureDownward(t *testing.T) {
	v := quadVertices(UVRect{UMin: 0.1, VMin: 0.2, UMax: 0.9, VMax: 0.8})

	// Top-left corner carries (UMin, VMin), bottom-left (UMin, VMax).
	assert.Equal(t, float32(-1), v[0])
	assert.Equal(t, float32(1), v[1])
	assert.Equal(t, float32(0.1), v[2])
	assert.Equal(t, float32(0.2), v[3])

	assert.Equal(t, float32(-1), v[4])
	assert.Equal(t, float32(-1), v[5])
	assert.Equal(t, float32(0.1), v[6])
	assert.Equal(t, float32(0.8), v[7])
}
