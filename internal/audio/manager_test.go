package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderpaper/shaderpaper/internal/media"
)

type fakeProcess struct {
	killed bool
	waited bool
}

func (p *fakeProcess) Kill() error { p.killed = true; return nil }
func (p *fakeProcess) Wait() error { p.waited = true; return nil }

type fakeRunner struct {
	spawned []string
	procs   []*fakeProcess
}

func (r *fakeRunner) run(name string, args ...string) (Process, error) {
	r.spawned = append(r.spawned, args[len(args)-1])
	p := &fakeProcess{}
	r.procs = append(r.procs, p)
	return p, nil
}

func newTestManager(globalMute bool) (*Manager, *fakeRunner) {
	runner := &fakeRunner{}
	return NewManagerWithPlayer(NewPlayerWithRunner(runner.run), globalMute), runner
}

func TestManagerPlaysVideoAudio(t *testing.T) {
	m, runner := newTestManager(false)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	assert.Equal(t, []string{"/tmp/a.mp4"}, runner.spawned)
	assert.True(t, m.IsPlaying())
}

func TestManagerMutedVideoThenUnmutedSamePath(t *testing.T) {
	m, runner := newTestManager(false)

	// A muted change must not spawn a player, and the mute must stick
	// until a later change clears it.
	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), true))
	assert.Empty(t, runner.spawned)
	assert.False(t, m.IsPlaying())

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	assert.Equal(t, []string{"/tmp/a.mp4"}, runner.spawned)
	assert.True(t, m.IsPlaying())
}

func TestManagerGlobalMuteWins(t *testing.T) {
	m, runner := newTestManager(true)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	assert.Empty(t, runner.spawned)
	assert.False(t, m.IsPlaying())

	require.NoError(t, m.HandleVideoRestart())
	assert.Empty(t, runner.spawned, "restart must stay silent under global mute")
}

func TestManagerSamePathDoesNotRespawn(t *testing.T) {
	m, runner := newTestManager(false)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	assert.Len(t, runner.spawned, 1)
}

func TestManagerSwitchingVideoKillsPreviousPlayer(t *testing.T) {
	m, runner := newTestManager(false)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/b.mp4", ""), false))

	require.Len(t, runner.procs, 2)
	assert.True(t, runner.procs[0].killed)
	assert.True(t, runner.procs[0].waited, "dead player must be reaped, not left as a zombie")
	assert.False(t, runner.procs[1].killed)
	assert.Equal(t, []string{"/tmp/a.mp4", "/tmp/b.mp4"}, runner.spawned)
}

func TestManagerNonVideoStopsAudio(t *testing.T) {
	m, runner := newTestManager(false)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	require.NoError(t, m.HandleChange(media.NewImageType("/tmp/a.png", ""), false))

	require.Len(t, runner.procs, 1)
	assert.True(t, runner.procs[0].killed)
	assert.False(t, m.IsPlaying())

	require.NoError(t, m.HandleVideoRestart())
	assert.Len(t, runner.procs, 1, "no video is current, restart must not spawn")
}

func TestManagerRestartOnVideoLoop(t *testing.T) {
	m, runner := newTestManager(false)

	require.NoError(t, m.HandleChange(media.NewVideoType("/tmp/a.mp4", ""), false))
	require.NoError(t, m.HandleVideoRestart())

	require.Len(t, runner.procs, 2)
	assert.True(t, runner.procs[0].killed)
	assert.Equal(t, []string{"/tmp/a.mp4", "/tmp/a.mp4"}, runner.spawned)
}

func TestDecodeStereo(t *testing.T) {
	// Two frames: L=1 R=-1, L=256 R=2.
	data := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x01, 0x02, 0x00, 0xAA}
	s := decodeStereo(data)

	require.Len(t, s.Left, 2, "trailing partial frame is dropped")
	assert.Equal(t, int16(1), s.Left[0])
	assert.Equal(t, int16(-1), s.Right[0])
	assert.Equal(t, int16(256), s.Left[1])
	assert.Equal(t, int16(2), s.Right[1])

	u := s.Uniform()
	assert.Equal(t, float32(-1), u[0], "uniform x is the right channel")
	assert.Equal(t, float32(1), u[1])
}

func TestStereoSampleUniformNil(t *testing.T) {
	var s *StereoSample
	assert.Equal(t, [2]float32{}, s.Uniform())
}
