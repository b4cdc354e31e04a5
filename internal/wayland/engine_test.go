package wayland

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shaderpaper/shaderpaper/internal/media"
)

func TestSwapIntervalFor(t *testing.T) {
	assert.Equal(t, 1, swapIntervalFor(true, 0))
	assert.Equal(t, 1, swapIntervalFor(true, 60))
	assert.Equal(t, 1, swapIntervalFor(false, 0))
	assert.Equal(t, 0, swapIntervalFor(false, 60))
}

func TestAudioFollowsChange(t *testing.T) {
	shader := media.NewShaderType("wave.glsl")
	video := media.NewVideoType("clip.mp4", "")

	// A video change always drives the soundtrack.
	assert.True(t, audioFollowsChange(video, false))
	assert.True(t, audioFollowsChange(video, true))

	// A non-video change only silences audio once no surface renders
	// video anymore.
	assert.True(t, audioFollowsChange(shader, false))
	assert.False(t, audioFollowsChange(shader, true))
}

// Switching one monitor to a shader while another keeps its video must not
// flip the loop out of video mode or touch the soundtrack.
func TestShaderOnOneMonitorKeepsVideoState(t *testing.T) {
	shader := media.NewShaderType("wave.glsl")

	stillVideo := true
	assert.Equal(t, 1, swapIntervalFor(stillVideo, 60))
	assert.False(t, audioFollowsChange(shader, stillVideo))
}

func TestFrameTargetPacing(t *testing.T) {
	base := 16 * time.Millisecond

	// Images idle at half rate whether paced by vsync or a forced fps.
	assert.Equal(t, 32*time.Millisecond, frameTarget(media.KindImage, 0, base, false))
	assert.Equal(t, 66*time.Millisecond, frameTarget(media.KindImage, 30, 33*time.Millisecond, false))

	// A forced fps fixes the cadence for animated content.
	assert.Equal(t, 33*time.Millisecond, frameTarget(media.KindShader, 30, 33*time.Millisecond, false))
	assert.Equal(t, 33*time.Millisecond, frameTarget(media.KindVideo, 30, 33*time.Millisecond, true))

	// Unforced video backs off while no frame is due.
	assert.Equal(t, 16*time.Millisecond, frameTarget(media.KindVideo, 0, base, true))
	assert.Equal(t, 33*time.Millisecond, frameTarget(media.KindVideo, 0, base, false))

	// Shaders ride vblank.
	assert.Equal(t, 16*time.Millisecond, frameTarget(media.KindShader, 0, base, false))
}
