// Package glutil wraps the OpenGL ES objects the renderer allocates in
// narrow owning types. Raw GL handles never escape this package; callers are
// responsible for having the right EGL context current.
package glutil

import (
	"unsafe"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v3.1/gles2"
)

// Init resolves the GL ES entry points through the platform proc-address
// lookup, typically eglGetProcAddress. Must be called once with a current
// context before any other function in this package.
func Init(getProcAddr func(name string) unsafe.Pointer) error {
	return gl.InitWithProcAddrFunc(getProcAddr)
}

// CheckError logs any pending GL error with the given context string. Used
// around state-changing calls in debug paths.
func CheckError(context string) {
	errCode := gl.GetError()
	if errCode == gl.NO_ERROR {
		return
	}

	var name string
	switch errCode {
	case gl.INVALID_ENUM:
		name = "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		name = "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		name = "GL_INVALID_OPERATION"
	case gl.OUT_OF_MEMORY:
		name = "GL_OUT_OF_MEMORY"
	default:
		name = "unknown error"
	}
	log.Errorf("OpenGL error %s (0x%x) after %s", name, errCode, context)
}
