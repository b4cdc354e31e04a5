package video

import "time"

// Clock decides when a decoded frame becomes the presented frame. It is pure
// bookkeeping over an injected wall clock so pacing can be tested without a
// decoder.
//
// Scheduled display time for a frame is derived from its PTS relative to the
// first PTS observed since the last restart. A forced FPS override instead
// schedules frame N at N/forcedFPS, ignoring container timestamps entirely.
type Clock struct {
	now func() time.Time

	fps       float64 // detected stream rate, used when a frame has no PTS
	forcedFPS float64 // 0 disables the override
	timeBase  float64 // seconds per PTS unit
	duration  float64 // container duration in seconds, 0 when unknown

	start       time.Time
	firstPTS    int64
	hasFirstPTS bool
	frameCount  uint64
	loopCount   uint64
}

// NewClock builds a clock for a stream with the given detected fps, PTS time
// base and duration. now defaults to time.Now.
func NewClock(fps, timeBase, duration, forcedFPS float64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	c := &Clock{
		now:       now,
		fps:       fps,
		forcedFPS: forcedFPS,
		timeBase:  timeBase,
		duration:  duration,
	}
	c.start = c.now()
	return c
}

// PlaybackTime is seconds of wall clock elapsed since playback start,
// adjusted across loop restarts.
func (c *Clock) PlaybackTime() float64 {
	return c.now().Sub(c.start).Seconds()
}

// ObservePTS records the first PTS seen since the last restart; display
// times are computed relative to it.
func (c *Clock) ObservePTS(pts int64) {
	if !c.hasFirstPTS {
		c.firstPTS = pts
		c.hasFirstPTS = true
	}
}

// ShouldPresent reports whether the frame carrying pts (hasPTS false when
// the container assigned none) is due for display.
func (c *Clock) ShouldPresent(pts int64, hasPTS bool) bool {
	playback := c.PlaybackTime()

	if c.forcedFPS > 0 {
		return playback >= float64(c.frameCount)/c.forcedFPS
	}
	if hasPTS {
		return playback >= c.ptsToTime(pts)
	}
	return playback >= float64(c.frameCount)/c.fps
}

// FramePresented advances the monotonic frame counter.
func (c *Clock) FramePresented() {
	c.frameCount++
}

// Restart accounts for an end-of-stream loop. The playback start is moved to
// now − loops×expected_duration so pacing does not accumulate drift across
// iterations.
func (c *Clock) Restart() {
	c.loopCount++

	expected := c.expectedLoopDuration()
	c.start = c.now().Add(-time.Duration(float64(c.loopCount) * expected * float64(time.Second)))

	c.frameCount = 0
	c.hasFirstPTS = false
}

// Start returns the current playback start anchor.
func (c *Clock) Start() time.Time { return c.start }

// FrameCount returns frames presented since the last restart.
func (c *Clock) FrameCount() uint64 { return c.frameCount }

// LoopCount returns completed loops since construction.
func (c *Clock) LoopCount() uint64 { return c.loopCount }

func (c *Clock) ptsToTime(pts int64) float64 {
	if c.hasFirstPTS {
		pts -= c.firstPTS
	}
	return float64(pts) * c.timeBase
}

func (c *Clock) expectedLoopDuration() float64 {
	switch {
	case c.forcedFPS > 0:
		return float64(c.frameCount) / c.forcedFPS
	case c.duration > 0:
		return c.duration
	default:
		return float64(c.frameCount) / c.fps
	}
}
