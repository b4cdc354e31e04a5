package glutil

import (
	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v3.1/gles2"
)

// GL_TEXTURE_MAX_ANISOTROPY_EXT; not part of core ES2, probed at runtime.
const textureMaxAnisotropy = 0x84FE

// Texture owns a 2D RGBA GL texture. All methods require the owning
// surface's EGL context to be current.
type Texture struct {
	ID     uint32
	Width  int32
	Height int32
}

// NewTexture allocates an empty RGBA texture of the given size, suitable for
// streaming updates via Update.
func NewTexture(width, height int32) *Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, width, height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)

	return &Texture{ID: tex, Width: width, Height: height}
}

// NewTextureFromRGBA uploads tightly packed RGBA pixels. With mipmaps enabled
// the texture gets a full mip chain plus anisotropic filtering when the
// driver supports it.
func NewTextureFromRGBA(width, height int32, pixels []byte, mipmaps bool) *Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if mipmaps {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

		var maxAnisotropy float32
		gl.GetFloatv(textureMaxAnisotropy, &maxAnisotropy)
		if maxAnisotropy > 1.0 {
			anisotropy := min(maxAnisotropy, 16.0)
			gl.TexParameterf(gl.TEXTURE_2D, textureMaxAnisotropy, anisotropy)
			log.Debugf("applied anisotropic filtering %.1f", anisotropy)
		}
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, width, height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	if mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	return &Texture{ID: tex, Width: width, Height: height}
}

// Update streams new RGBA pixel data into the existing allocation without
// reallocating; pixels must match the texture dimensions.
func (t *Texture) Update(pixels []byte) {
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, t.Width, t.Height,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

// Bind binds the texture to the active texture unit.
func (t *Texture) Bind() {
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
}

// Delete releases the underlying GL object. Safe to call more than once.
func (t *Texture) Delete() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}
