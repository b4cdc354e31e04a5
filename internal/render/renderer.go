// Package render draws media content onto an output surface: a textured
// full-screen quad with cover-fit cropping, driven by the media object's
// shader program.
package render

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
	"github.com/shaderpaper/shaderpaper/internal/media"
)

// quadIndices draws the quad as two triangles.
var quadIndices = [6]uint16{0, 1, 2, 2, 3, 0}

// Frame carries the per-pass inputs the scheduler knows and the renderer
// does not.
type Frame struct {
	Width  int32
	Height int32

	// Audio FIFO sample as (right, left), nil when no FIFO is configured
	// or no sample was available this pass.
	Fifo *[2]float32
}

// Renderer owns one surface's quad geometry and current media object. All
// methods require that surface's EGL context to be current.
type Renderer struct {
	vbo       uint32
	ebo       uint32
	start     time.Time
	forcedFPS float64

	current *media.Object

	// Last uploaded geometry inputs; the quad is re-uploaded only when the
	// output or media size changes.
	geomOutputW int32
	geomOutputH int32
	geomMediaW  int32
	geomMediaH  int32
	geomValid   bool
}

// New builds the quad buffers and loads the initial media. forcedFPS
// overrides video timing, 0 keeps container pacing.
func New(initial media.Type, forcedFPS float64) (*Renderer, error) {
	r := &Renderer{start: time.Now(), forcedFPS: forcedFPS}

	gl.ClearColor(0, 0, 0, 1)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	verts := quadVertices(fullUV)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(&verts[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(quadIndices)*2, gl.Ptr(&quadIndices[0]), gl.STATIC_DRAW)

	glutil.CheckError("quad setup")

	if err := r.SetMedia(initial); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// SetMedia replaces the displayed content. The new media is fully built
// before the old one is destroyed; on failure the previous content keeps
// rendering and the error is returned.
func (r *Renderer) SetMedia(t media.Type) error {
	next, err := media.New(t, r.forcedFPS)
	if err != nil {
		log.Errorf("keeping current media, load failed: %v", err)
		return err
	}
	if r.current != nil {
		r.current.Destroy()
	}
	r.current = next
	r.geomValid = false
	return nil
}

// Media returns the current media object, nil before the first successful
// SetMedia. Safe on a nil receiver, which a destroyed surface hands out.
func (r *Renderer) Media() *media.Object {
	if r == nil {
		return nil
	}
	return r.current
}

// HasNewFrame reports whether the last Draw uploaded a new video frame.
// Safe on a nil receiver.
func (r *Renderer) HasNewFrame() bool {
	return r != nil && r.current != nil && r.current.HasNewFrame()
}

// Draw advances the media one pass and renders the quad.
func (r *Renderer) Draw(frame Frame) error {
	if r.current == nil {
		gl.Clear(gl.COLOR_BUFFER_BIT)
		return nil
	}

	if _, err := r.current.Update(); err != nil {
		return err
	}

	program := r.current.Program()
	program.Use()

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Viewport(0, 0, frame.Width, frame.Height)

	shaderTime := float32(math.Mod(time.Since(r.start).Seconds(), 3600))
	setUniform1f(program, "time", shaderTime)
	setUniform1f(program, "u_time", shaderTime)
	setUniform2f(program, "resolution", float32(frame.Width), float32(frame.Height))
	setUniform2f(program, "u_resolution", float32(frame.Width), float32(frame.Height))

	if frame.Fifo != nil {
		setUniform2f(program, "fifo", frame.Fifo[0], frame.Fifo[1])
	}

	if tex := r.current.Texture(); tex != nil {
		gl.ActiveTexture(gl.TEXTURE0)
		tex.Bind()
		if loc := program.UniformLocation("u_media"); loc != -1 {
			gl.Uniform1i(loc, 0)
		}
	}

	mediaW, mediaH := r.current.Dimensions()
	r.updateGeometry(frame.Width, frame.Height, mediaW, mediaH)

	r.drawQuad(program)
	glutil.CheckError("draw")
	return nil
}

func (r *Renderer) drawQuad(program *glutil.Program) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	posLoc := program.AttribLocation("datIn")
	texLoc := program.AttribLocation("texIn")

	gl.VertexAttribPointer(uint32(posLoc), 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(posLoc))
	gl.VertexAttribPointer(uint32(texLoc), 2, gl.FLOAT, false, 4*4, gl.PtrOffset(8))
	gl.EnableVertexAttribArray(uint32(texLoc))

	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_SHORT, gl.PtrOffset(0))

	gl.DisableVertexAttribArray(uint32(posLoc))
	gl.DisableVertexAttribArray(uint32(texLoc))
}

// updateGeometry re-uploads the quad with a cover-fit texture window when
// output or media dimensions change.
func (r *Renderer) updateGeometry(outputW, outputH, mediaW, mediaH int32) {
	if r.geomValid &&
		r.geomOutputW == outputW && r.geomOutputH == outputH &&
		r.geomMediaW == mediaW && r.geomMediaH == mediaH {
		return
	}

	uv := CoverFitUV(outputW, outputH, mediaW, mediaH)
	verts := quadVertices(uv)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(&verts[0]), gl.STATIC_DRAW)

	r.geomOutputW = outputW
	r.geomOutputH = outputH
	r.geomMediaW = mediaW
	r.geomMediaH = mediaH
	r.geomValid = true
}

// Destroy releases the media object and quad buffers.
func (r *Renderer) Destroy() {
	if r.current != nil {
		r.current.Destroy()
		r.current = nil
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
}

// quadVertices interleaves position and texture coordinates for the four
// quad corners. Texture V grows downward.
func quadVertices(uv UVRect) [16]float32 {
	return [16]float32{
		-1, 1, uv.UMin, uv.VMin,
		-1, -1, uv.UMin, uv.VMax,
		1, -1, uv.UMax, uv.VMax,
		1, 1, uv.UMax, uv.VMin,
	}
}

func setUniform1f(p *glutil.Program, name string, v float32) {
	if loc := p.UniformLocation(name); loc != -1 {
		gl.Uniform1f(loc, v)
	}
}

func setUniform2f(p *glutil.Program, name string, x, y float32) {
	if loc := p.UniformLocation(name); loc != -1 {
		gl.Uniform2f(loc, x, y)
	}
}
