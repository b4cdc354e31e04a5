// Package ipc is the daemon's control plane: a newline-delimited JSON
// command socket for media changes and a small HTTP status API, both over
// Unix domain sockets in XDG_RUNTIME_DIR.
package ipc

import (
	"errors"
	"os"

	"github.com/shaderpaper/shaderpaper/internal/media"
)

// Command is one line on the command socket. Exactly one field is set; the
// variant name is the JSON key.
type Command struct {
	SetImage  *SetImage  `json:"SetImage,omitempty"`
	SetVideo  *SetVideo  `json:"SetVideo,omitempty"`
	SetShader *SetShader `json:"SetShader,omitempty"`
}

// SetImage displays a static image, optionally through a custom fragment
// shader, on the named monitors or everywhere when Monitors is empty.
type SetImage struct {
	Path     string   `json:"path"`
	Shader   string   `json:"shader,omitempty"`
	Monitors []string `json:"monitors,omitempty"`
}

// SetVideo displays a looping video. Mute suppresses its soundtrack.
type SetVideo struct {
	Path     string   `json:"path"`
	Shader   string   `json:"shader,omitempty"`
	Monitors []string `json:"monitors,omitempty"`
	Mute     bool     `json:"mute,omitempty"`
}

// SetShader displays a pure fragment shader. Path may be "default".
type SetShader struct {
	Path     string   `json:"path"`
	Monitors []string `json:"monitors,omitempty"`
}

// Response is the reply line to each command.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func successResponse() Response { return Response{Status: "success"} }

func errorResponse(msg string) Response { return Response{Status: "error", Message: msg} }

// MediaChange is the decoded form handed to the render scheduler. An empty
// Monitors set targets every output.
type MediaChange struct {
	Type     media.Type
	Monitors []string
	Mute     bool
}

// ToMediaChange validates a command and converts it.
func (c Command) ToMediaChange() (MediaChange, error) {
	switch {
	case c.SetImage != nil:
		if c.SetImage.Path == "" {
			return MediaChange{}, errors.New("SetImage requires a path")
		}
		return MediaChange{
			Type:     media.NewImageType(c.SetImage.Path, c.SetImage.Shader),
			Monitors: c.SetImage.Monitors,
		}, nil
	case c.SetVideo != nil:
		if c.SetVideo.Path == "" {
			return MediaChange{}, errors.New("SetVideo requires a path")
		}
		return MediaChange{
			Type:     media.NewVideoType(c.SetVideo.Path, c.SetVideo.Shader),
			Monitors: c.SetVideo.Monitors,
			Mute:     c.SetVideo.Mute,
		}, nil
	case c.SetShader != nil:
		if c.SetShader.Path == "" {
			return MediaChange{}, errors.New("SetShader requires a path")
		}
		return MediaChange{
			Type:     media.NewShaderType(c.SetShader.Path),
			Monitors: c.SetShader.Monitors,
		}, nil
	}
	return MediaChange{}, errors.New("unknown command")
}

func runtimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// SocketPath is the ndjson command socket.
func SocketPath() string { return runtimeDir() + "/shaderpaper.sock" }

// APISocketPath is the HTTP status socket.
func APISocketPath() string { return runtimeDir() + "/shaderpaper-api.sock" }
