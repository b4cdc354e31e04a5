package wayland

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/audio"
	"github.com/shaderpaper/shaderpaper/internal/ipc"
	"github.com/shaderpaper/shaderpaper/internal/media"
)

// Config carries the daemon options the scheduler needs.
type Config struct {
	// FPS > 0 forces software pacing at that rate and overrides video
	// timestamps; 0 lets vsync and container timing drive.
	FPS int

	// Layer is the layer-shell layer name: background, bottom, top or
	// overlay.
	Layer string

	// FifoPath optionally names a PCM pipe feeding the fifo shader
	// uniform.
	FifoPath string

	// Mute suppresses all video audio regardless of per-change flags.
	Mute bool

	Initial media.Type
}

// Scheduler owns the render loop: it applies media changes from the
// command socket, paces frames, keeps swap intervals matched to the content
// and feeds the audio manager.
type Scheduler struct {
	display *Display
	cfg     Config

	surfaces map[string]*Surface
	audio    *audio.Manager
	fifo     *audio.FIFOReader

	changes <-chan ipc.MediaChange
	stop    chan struct{}

	hasVideo      bool
	lastLoopCount uint64

	mu      sync.Mutex
	current media.Type
}

// NewScheduler creates one surface per output and prepares the loop. It
// fails when no output can be configured.
func NewScheduler(display *Display, cfg Config, changes <-chan ipc.MediaChange) (*Scheduler, error) {
	s := &Scheduler{
		display:  display,
		cfg:      cfg,
		surfaces: make(map[string]*Surface),
		audio:    audio.NewManager(cfg.Mute),
		changes:  changes,
		stop:     make(chan struct{}, 1),
		current:  cfg.Initial,
		hasVideo: cfg.Initial.IsVideo(),
	}

	layer := LayerForName(cfg.Layer)
	forcedFPS := float64(cfg.FPS)

	for _, out := range display.Outputs() {
		surf, err := display.CreateSurface(out, layer, cfg.Initial, forcedFPS)
		if err != nil {
			log.Errorf("skipping output %s: %v", out.Name(), err)
			continue
		}
		s.surfaces[surf.OutputName()] = surf
	}
	if len(s.surfaces) == 0 {
		return nil, fmt.Errorf("no output could be configured")
	}

	if cfg.FifoPath != "" {
		fifo, err := audio.OpenFIFO(cfg.FifoPath)
		if err != nil {
			log.Warnf("fifo unavailable, shaders get no audio samples: %v", err)
		} else {
			s.fifo = fifo
		}
	}

	s.applySwapIntervals()

	if s.hasVideo {
		if err := s.audio.HandleChange(cfg.Initial, false); err != nil {
			log.Warnf("initial audio start failed: %v", err)
		}
	}

	log.Infof("render loop ready on %d outputs", len(s.surfaces))
	return s, nil
}

// swapIntervalFor picks the EGL swap interval: video content syncs to
// vblank so decode pacing stays smooth, a forced fps without video turns
// vsync off and paces in software, everything else rides vblank.
func swapIntervalFor(hasVideo bool, fps int) int {
	if !hasVideo && fps > 0 {
		return 0
	}
	return 1
}

func (s *Scheduler) applySwapIntervals() {
	interval := swapIntervalFor(s.hasVideo, s.cfg.FPS)
	for _, surf := range s.surfaces {
		if !surf.Ready() {
			continue
		}
		if err := surf.makeCurrent(); err != nil {
			log.Errorf("making %s current: %v", surf.OutputName(), err)
			continue
		}
		s.display.egl.swapInterval(interval)
	}
	log.Debugf("swap interval set to %d (video %v, fps %d)", interval, s.hasVideo, s.cfg.FPS)
}

// CurrentMedia implements ipc.StatusSource.
func (s *Scheduler) CurrentMedia() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.String()
}

// MonitorNames implements ipc.StatusSource.
func (s *Scheduler) MonitorNames() []string {
	names := make([]string, 0, len(s.surfaces))
	for name := range s.surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequestStop implements ipc.StatusSource. Safe from any goroutine.
func (s *Scheduler) RequestStop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

// Run drives the render loop until RequestStop. Must run on the thread that
// called Connect.
func (s *Scheduler) Run() error {
	baseFrame := 16 * time.Millisecond
	if s.cfg.FPS > 0 {
		baseFrame = time.Second / time.Duration(s.cfg.FPS)
	}

	for {
		frameStart := time.Now()

		select {
		case <-s.stop:
			log.Info("stopping render loop")
			s.shutdown()
			return nil
		case change := <-s.changes:
			s.applyChange(change)
		default:
		}

		anyVideoFrame, err := s.renderAll()
		if err != nil {
			s.shutdown()
			return err
		}

		s.checkVideoLoop()

		if err := s.display.Roundtrip(); err != nil {
			s.shutdown()
			return err
		}

		s.sleepRemainder(frameStart, baseFrame, anyVideoFrame)
	}
}

// applyChange swaps media on the targeted surfaces and updates audio and
// swap intervals. A failed load leaves the previous content running.
func (s *Scheduler) applyChange(change ipc.MediaChange) {
	log.Infof("applying media change: %s", change.Type)

	targets := s.targetSurfaces(change.Monitors)
	if len(targets) == 0 {
		log.Errorf("no matching monitors for %v, media unchanged", change.Monitors)
		return
	}

	applied := false
	for _, surf := range targets {
		if !surf.Ready() {
			continue
		}
		if err := surf.makeCurrent(); err != nil {
			log.Errorf("making %s current: %v", surf.OutputName(), err)
			continue
		}
		if err := surf.Renderer().SetMedia(change.Type); err != nil {
			log.Errorf("media change on %s failed: %v", surf.OutputName(), err)
			continue
		}
		applied = true
	}
	if !applied {
		return
	}

	stillVideo := s.anyVideoSurface()
	if stillVideo != s.hasVideo {
		s.hasVideo = stillVideo
		s.applySwapIntervals()
	}

	if audioFollowsChange(change.Type, stillVideo) {
		if err := s.audio.HandleChange(change.Type, change.Mute); err != nil {
			log.Warnf("audio change failed: %v", err)
		}
		s.lastLoopCount = 0
	}

	s.mu.Lock()
	s.current = change.Type
	s.mu.Unlock()
}

// audioFollowsChange reports whether a media change should be forwarded to
// the audio manager. A video change carries its own soundtrack; a non-video
// change silences audio only once no surface renders video anymore, so
// switching one monitor to a shader leaves another monitor's video audible.
func audioFollowsChange(change media.Type, anySurfaceVideo bool) bool {
	return change.IsVideo() || !anySurfaceVideo
}

// anyVideoSurface reports whether any live surface currently renders video.
func (s *Scheduler) anyVideoSurface() bool {
	for _, surf := range s.surfaces {
		r := surf.Renderer()
		if r == nil {
			continue
		}
		if obj := r.Media(); obj != nil && obj.IsVideo() {
			return true
		}
	}
	return false
}

// targetSurfaces resolves a monitor set, warning about unknown names. An
// empty set means all surfaces.
func (s *Scheduler) targetSurfaces(monitors []string) []*Surface {
	if len(monitors) == 0 {
		targets := make([]*Surface, 0, len(s.surfaces))
		for _, surf := range s.surfaces {
			targets = append(targets, surf)
		}
		return targets
	}

	var targets []*Surface
	var missing []string
	for _, name := range monitors {
		if surf, ok := s.surfaces[name]; ok {
			targets = append(targets, surf)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		log.Warnf("unknown monitors %v (have %v)", missing, s.MonitorNames())
	}
	return targets
}

// renderAll draws every ready surface and reports whether any video
// presented a new frame this pass. Surfaces the compositor tore down since
// the last pass are dropped here instead of being drawn.
func (s *Scheduler) renderAll() (bool, error) {
	fifo := s.readFifo()

	pruned := false
	anyVideoFrame := false
	for name, surf := range s.surfaces {
		if surf.Destroyed() {
			log.Infof("surface on %s gone, dropping it from the loop", name)
			delete(s.surfaces, name)
			pruned = true
			continue
		}
		if err := surf.RenderFrame(fifo); err != nil {
			return false, fmt.Errorf("rendering %s: %w", surf.OutputName(), err)
		}
		if surf.Renderer().HasNewFrame() {
			anyVideoFrame = true
		}
	}

	if pruned {
		if stillVideo := s.anyVideoSurface(); stillVideo != s.hasVideo {
			s.hasVideo = stillVideo
			s.applySwapIntervals()
			if !stillVideo {
				s.audio.Stop()
			}
		}
	}
	return anyVideoFrame, nil
}

func (s *Scheduler) readFifo() *[2]float32 {
	if s.fifo == nil {
		return nil
	}
	sample, err := s.fifo.ReadSample()
	if err != nil {
		log.Warnf("fifo read failed, disabling: %v", err)
		_ = s.fifo.Close()
		s.fifo = nil
		return nil
	}
	if sample == nil {
		return nil
	}
	u := sample.Uniform()
	return &u
}

// checkVideoLoop restarts the soundtrack when any surface's video wrapped
// around since the last pass.
func (s *Scheduler) checkVideoLoop() {
	if !s.hasVideo {
		return
	}
	for _, surf := range s.surfaces {
		obj := surf.Renderer().Media()
		if obj == nil || !obj.IsVideo() {
			continue
		}
		if loops := obj.LoopCount(); loops > s.lastLoopCount {
			s.lastLoopCount = loops
			if err := s.audio.HandleVideoRestart(); err != nil {
				log.Warnf("audio restart failed: %v", err)
			}
		}
		break
	}
}

// frameTarget picks how long one pass should take. Images idle at half
// rate since nothing animates, a forced fps fixes the cadence, and video
// without one polls fast only while frames are flowing.
func frameTarget(kind media.Kind, fps int, base time.Duration, videoFrame bool) time.Duration {
	if kind == media.KindImage {
		return base * 2
	}
	if fps > 0 {
		return base
	}
	if kind == media.KindVideo && !videoFrame {
		return 33 * time.Millisecond
	}
	return 16 * time.Millisecond
}

func (s *Scheduler) sleepRemainder(frameStart time.Time, baseFrame time.Duration, anyVideoFrame bool) {
	s.mu.Lock()
	kind := s.current.Kind
	s.mu.Unlock()

	target := frameTarget(kind, s.cfg.FPS, baseFrame, anyVideoFrame)
	if elapsed := time.Since(frameStart); elapsed < target {
		time.Sleep(target - elapsed)
	}
}

func (s *Scheduler) shutdown() {
	s.audio.Stop()
	if s.fifo != nil {
		_ = s.fifo.Close()
		s.fifo = nil
	}
	for name, surf := range s.surfaces {
		s.display.dropSurface(surf)
		delete(s.surfaces, name)
	}
}
