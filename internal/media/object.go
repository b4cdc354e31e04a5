package media

import (
	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
	"github.com/shaderpaper/shaderpaper/internal/video"
)

// Object is live wallpaper content with its GL resources: a compiled shader
// program, an optional texture and for videos a decoder driving it. All
// methods require the creating EGL context to be current.
type Object struct {
	typ     Type
	program *glutil.Program
	texture *glutil.Texture
	decoder *video.Decoder
	width   int32
	height  int32
}

// New loads the content described by t and compiles its program. forcedFPS
// applies to videos only; 0 keeps the container's timing.
func New(t Type, forcedFPS float64) (*Object, error) {
	o := &Object{typ: t}

	switch t.Kind {
	case KindShader:
		program, err := newMediaProgram(t.Path)
		if err != nil {
			return nil, err
		}
		o.program = program

	case KindImage:
		texture, err := loadImageTexture(t.Path)
		if err != nil {
			return nil, err
		}
		program, err := newMediaProgram(t.Shader)
		if err != nil {
			texture.Delete()
			return nil, err
		}
		o.texture = texture
		o.program = program
		o.width = texture.Width
		o.height = texture.Height

	case KindVideo:
		decoder, err := video.NewDecoder(t.Path, forcedFPS)
		if err != nil {
			return nil, err
		}
		program, err := newMediaProgram(t.Shader)
		if err != nil {
			decoder.Close()
			return nil, err
		}
		o.decoder = decoder
		o.texture = decoder.Texture()
		o.program = program
		o.width, o.height = decoder.Dimensions()
	}

	log.Debugf("media ready: %s (%dx%d)", t, o.width, o.height)
	return o, nil
}

// Type returns the content description this object was built from.
func (o *Object) Type() Type { return o.typ }

// Texture returns the media texture, nil for shader-only content.
func (o *Object) Texture() *glutil.Texture { return o.texture }

// Dimensions returns the media size in pixels, (0, 0) for shader-only
// content.
func (o *Object) Dimensions() (int32, int32) { return o.width, o.height }

// Program returns the shader program to bind when drawing this content.
func (o *Object) Program() *glutil.Program { return o.program }

// Update advances the content one render pass and reports whether a new
// frame was uploaded. Shaders and images never produce new frames.
func (o *Object) Update() (bool, error) {
	if o.decoder == nil {
		return false, nil
	}
	return o.decoder.UpdateFrame()
}

// HasNewFrame reports whether the last Update uploaded a frame.
func (o *Object) HasNewFrame() bool {
	return o.decoder != nil && o.decoder.HasNewFrame()
}

// IsVideo reports whether this object paces itself against a decode clock.
func (o *Object) IsVideo() bool { return o.decoder != nil }

// LoopCount returns completed video loops, 0 for non-video content.
func (o *Object) LoopCount() uint64 {
	if o.decoder == nil {
		return 0
	}
	return o.decoder.LoopCount()
}

// Destroy releases the program, texture and decoder. Safe to call more than
// once.
func (o *Object) Destroy() {
	if o.decoder != nil {
		// The decoder owns its streaming texture.
		o.decoder.Close()
		o.decoder = nil
		o.texture = nil
	}
	if o.texture != nil {
		o.texture.Delete()
		o.texture = nil
	}
	if o.program != nil {
		o.program.Delete()
		o.program = nil
	}
}
