package audio

import (
	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/media"
)

// Manager decides when the audio player runs. A global mute from
// configuration and a per-change mute combine with OR; switching to
// non-video content always stops playback.
type Manager struct {
	player     *Player
	globalMute bool
	muted      bool
	videoPath  string
}

// NewManager builds a manager. globalMute suppresses all playback
// regardless of per-change flags.
func NewManager(globalMute bool) *Manager {
	log.Infof("audio manager ready (global mute %v)", globalMute)
	return &Manager{player: NewPlayer(), globalMute: globalMute}
}

// NewManagerWithPlayer builds a manager around an existing player, used by
// tests with a fake process runner.
func NewManagerWithPlayer(player *Player, globalMute bool) *Manager {
	return &Manager{player: player, globalMute: globalMute}
}

// HandleChange reacts to a media change: video content starts or mutes its
// soundtrack, anything else stops playback.
func (m *Manager) HandleChange(t media.Type, mediaMute bool) error {
	if t.IsVideo() {
		m.videoPath = t.Path
		return m.setAudio(t.Path, mediaMute)
	}
	m.videoPath = ""
	m.Stop()
	return nil
}

// HandleVideoRestart restarts the soundtrack when the video loops, so audio
// stays aligned with the picture.
func (m *Manager) HandleVideoRestart() error {
	if m.videoPath == "" || m.globalMute || m.muted {
		return nil
	}
	log.Infof("restarting audio for video loop: %s", m.videoPath)
	m.player.Stop()
	return m.player.Play(m.videoPath)
}

func (m *Manager) setAudio(path string, mediaMute bool) error {
	effectiveMute := m.globalMute || mediaMute

	log.Infof("video audio %s (mute %v)", path, effectiveMute)

	if effectiveMute {
		if m.player.IsPlaying() {
			m.player.Stop()
		}
		m.muted = true
		return nil
	}

	if m.player.IsPlayingPath(path) {
		log.Debugf("audio already playing %s", path)
		return nil
	}

	m.muted = false
	return m.player.Play(path)
}

// Stop halts playback and clears the mute latch.
func (m *Manager) Stop() {
	m.player.Stop()
	m.muted = false
}

// IsPlaying reports whether audio is audible right now.
func (m *Manager) IsPlaying() bool {
	return m.player.IsPlaying() && !m.muted
}
