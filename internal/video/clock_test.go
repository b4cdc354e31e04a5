package video

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTime is a controllable wall clock for pacing tests.
type fakeTime struct {
	t time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) Now() time.Time          { return f.t }
func (f *fakeTime) Advance(d time.Duration) { f.t = f.t.Add(d) }

func (f *fakeTime) AdvanceSeconds(secs float64) {
	f.Advance(time.Duration(secs * float64(time.Second)))
}

func TestClockPTSPacing(t *testing.T) {
	ft := newFakeTime()
	// 25 fps stream, 1/12800 time base, 2s duration.
	c := NewClock(25, 1.0/12800, 2, 0, ft.Now)

	// First PTS is non-zero; display times are relative to it.
	c.ObservePTS(5120)
	assert.True(t, c.ShouldPresent(5120, true), "first frame is due immediately")
	c.FramePresented()

	// Next frame is 512 PTS units (40ms) later.
	next := int64(5120 + 512)
	assert.False(t, c.ShouldPresent(next, true))

	ft.Advance(39 * time.Millisecond)
	assert.False(t, c.ShouldPresent(next, true))

	ft.Advance(2 * time.Millisecond)
	assert.True(t, c.ShouldPresent(next, true))
}

func TestClockForcedFPSIgnoresPTS(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(25, 1.0/12800, 2, 10, ft.Now)

	// PTS says 40ms cadence but forced 10fps schedules frame N at N*100ms.
	c.ObservePTS(0)
	require.True(t, c.ShouldPresent(0, true))
	c.FramePresented()

	ft.Advance(50 * time.Millisecond)
	assert.False(t, c.ShouldPresent(512, true), "PTS due but forced schedule is not")

	ft.Advance(50 * time.Millisecond)
	assert.True(t, c.ShouldPresent(512, true))
	c.FramePresented()

	ft.Advance(100 * time.Millisecond)
	assert.True(t, c.ShouldPresent(99999999, true), "PTS value is irrelevant under a forced rate")
}

func TestClockMissingPTSFallsBackToStreamRate(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(50, 1.0/1000, 0, 0, ft.Now)

	require.True(t, c.ShouldPresent(0, false))
	c.FramePresented()

	assert.False(t, c.ShouldPresent(0, false))
	ft.Advance(20 * time.Millisecond)
	assert.True(t, c.ShouldPresent(0, false), "frame 1 is due at 1/50s")
}

func TestClockLoopDriftBound(t *testing.T) {
	ft := newFakeTime()
	const duration = 2.0 // seconds per loop
	c := NewClock(25, 1.0/12800, duration, 0, ft.Now)

	// Simulate K loops where decode of the last frame runs late by 30ms
	// each iteration. The restart anchor must keep total schedule error
	// bounded by a single loop's lateness instead of accumulating K*30ms.
	const loops = 10
	for k := 1; k <= loops; k++ {
		ft.AdvanceSeconds(duration + 0.030)
		c.Restart()

		elapsed := ft.Now().Sub(c.Start()).Seconds()
		ideal := float64(k) * duration
		drift := elapsed - ideal
		assert.InDelta(t, 0, drift, 0.031, "loop %d drift out of bounds", k)
	}

	assert.Equal(t, uint64(loops), c.LoopCount())
	assert.Equal(t, uint64(0), c.FrameCount(), "frame counter resets per loop")
}

func TestClockRestartForgetsFirstPTS(t *testing.T) {
	ft := newFakeTime()
	c := NewClock(25, 1.0/12800, 2, 0, ft.Now)

	c.ObservePTS(9000)
	c.FramePresented()
	ft.AdvanceSeconds(2)
	c.Restart()

	// After a loop the stream delivers its first PTS again; it must be
	// treated as the new zero point, not offset by the previous run.
	c.ObservePTS(9000)
	assert.True(t, c.ShouldPresent(9000, true))
	c.FramePresented()
	assert.False(t, c.ShouldPresent(9000+512, true))
}

func TestClockForcedFPSLoopDuration(t *testing.T) {
	ft := newFakeTime()
	// Unknown container duration; forced 20fps with 60 presented frames
	// gives an expected loop of 3s.
	c := NewClock(25, 1.0/12800, 0, 20, ft.Now)

	for i := 0; i < 60; i++ {
		c.FramePresented()
	}
	ft.AdvanceSeconds(3.1)
	c.Restart()

	elapsed := ft.Now().Sub(c.Start()).Seconds()
	assert.InDelta(t, 3.0, elapsed, 1e-9)
}
