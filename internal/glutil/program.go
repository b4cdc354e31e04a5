package glutil

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v3.1/gles2"
)

// Program owns a linked GL shader program. All methods require the owning
// surface's EGL context to be current.
type Program struct {
	ID uint32
}

// NewProgram compiles and links a vertex/fragment pair. On any compile or
// link failure the returned error carries the driver's info log and nothing
// is left allocated or bound.
func NewProgram(vertexSource, fragmentSource string) (*Program, error) {
	vert, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return nil, err
	}
	frag, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		gl.DeleteShader(vert)
		return nil, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	// Shaders are reference counted by the program after attach.
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		infoLog := programInfoLog(program)
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("program link failed: %s", infoLog)
	}

	log.Debugf("compiled and linked shader program %d", program)
	return &Program{ID: program}, nil
}

// Use binds the program as current.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// UniformLocation returns the location of a named uniform, or -1 when the
// shader does not declare it.
func (p *Program) UniformLocation(name string) int32 {
	return gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
}

// AttribLocation returns the location of a named vertex attribute.
func (p *Program) AttribLocation(name string) int32 {
	return gl.GetAttribLocation(p.ID, gl.Str(name+"\x00"))
}

// Delete releases the underlying GL object. Safe to call more than once.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		infoLog := shaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader compilation failed: %s", shaderTypeName(shaderType), infoLog)
	}
	return shader, nil
}

func shaderTypeName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	default:
		return "unknown"
	}
}

func shaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "no info log"
	}
	logText := strings.Repeat("\x00", int(logLength)+1)
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "no info log"
	}
	logText := strings.Repeat("\x00", int(logLength)+1)
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}
