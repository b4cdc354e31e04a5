// Package media models the content a wallpaper surface displays and owns the
// GL resources backing it. The three kinds share one interface surface: an
// optional texture, dimensions, a per-frame update and a shader program.
package media

import "fmt"

// Kind enumerates the media variants.
type Kind int

const (
	KindShader Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	}
	return "unknown"
}

// DefaultShaderName selects the built-in fragment shader instead of a file.
const DefaultShaderName = "default"

// Type describes desired wallpaper content. It is an immutable value;
// comparable so callers can detect no-op changes with ==.
//
// For KindShader, Path is the fragment shader file (or DefaultShaderName).
// For KindImage and KindVideo, Path is the media file and Shader optionally
// names a fragment shader applied on top of the media texture; empty means
// the built-in one.
type Type struct {
	Kind   Kind
	Path   string
	Shader string
}

// NewShaderType describes shader-only content.
func NewShaderType(path string) Type {
	return Type{Kind: KindShader, Path: path}
}

// NewImageType describes a static image, optionally with a shader override.
func NewImageType(path, shader string) Type {
	return Type{Kind: KindImage, Path: path, Shader: shader}
}

// NewVideoType describes a looping video, optionally with a shader override.
func NewVideoType(path, shader string) Type {
	return Type{Kind: KindVideo, Path: path, Shader: shader}
}

// IsVideo reports whether the content needs decode pacing.
func (t Type) IsVideo() bool { return t.Kind == KindVideo }

func (t Type) String() string {
	if t.Shader != "" {
		return fmt.Sprintf("%s(%s, shader=%s)", t.Kind, t.Path, t.Shader)
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Path)
}
