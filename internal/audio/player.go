// Package audio plays a video's soundtrack through an external ffplay
// process and reads visualizer samples from a PCM FIFO.
package audio

import (
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"
)

// CommandRunner spawns the audio process. Swappable in tests.
type CommandRunner func(name string, args ...string) (Process, error)

// Process is the running audio player.
type Process interface {
	Kill() error
	Wait() error
}

func execRunner(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execProcess{cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p execProcess) Kill() error { return p.cmd.Process.Kill() }
func (p execProcess) Wait() error { return p.cmd.Wait() }

// Player runs one ffplay instance at a time for the current video's audio
// track.
type Player struct {
	run     CommandRunner
	proc    Process
	current string
}

// NewPlayer builds a player spawning real ffplay processes.
func NewPlayer() *Player {
	return &Player{run: execRunner}
}

// NewPlayerWithRunner builds a player with a custom process runner.
func NewPlayerWithRunner(run CommandRunner) *Player {
	return &Player{run: run}
}

// Play stops any running instance and starts ffplay for path.
func (p *Player) Play(path string) error {
	p.Stop()

	log.Infof("starting ffplay for %s", path)
	proc, err := p.run("ffplay", "-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error", path)
	if err != nil {
		log.Warnf("failed to start ffplay for %s: %v", path, err)
		return fmt.Errorf("starting audio player: %w", err)
	}

	p.proc = proc
	p.current = path
	return nil
}

// Stop kills and reaps the current player process, if any.
func (p *Player) Stop() {
	if p.proc != nil {
		log.Debugf("stopping ffplay")
		_ = p.proc.Kill()
		_ = p.proc.Wait()
		p.proc = nil
	}
	p.current = ""
}

// IsPlaying reports whether a player process is running.
func (p *Player) IsPlaying() bool { return p.proc != nil }

// IsPlayingPath reports whether path is the currently playing file.
func (p *Player) IsPlayingPath(path string) bool {
	return p.proc != nil && p.current == path
}
