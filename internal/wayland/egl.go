package wayland

/*
#include <stdlib.h>
#include "wayland.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
)

// eglState is the shared EGL display and config. Every output owns its own
// window surface and context; all of them run on the one render thread.
type eglState struct {
	display C.EGLDisplay
	config  C.EGLConfig
}

func (d *Display) initEGL() error {
	dpy := C.eglGetDisplay(C.EGLNativeDisplayType(unsafe.Pointer(d.display)))
	if dpy == 0 {
		return fmt.Errorf("getting EGL display for Wayland connection")
	}
	if C.eglInitialize(dpy, nil, nil) == C.EGL_FALSE {
		return fmt.Errorf("initializing EGL")
	}
	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		return fmt.Errorf("binding OpenGL ES API")
	}

	attribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES2_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfigs C.EGLint
	if C.eglChooseConfig(dpy, &attribs[0], &config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
		return fmt.Errorf("no usable EGL config (RGBA8, ES2, window)")
	}

	d.egl = eglState{display: dpy, config: config}
	return nil
}

func (e *eglState) createContext() (C.EGLContext, error) {
	ctxAttribs := []C.EGLint{
		C.EGL_CONTEXT_CLIENT_VERSION, 2,
		C.EGL_NONE,
	}
	context := C.eglCreateContext(e.display, e.config, nil, &ctxAttribs[0])
	if context == nil {
		return nil, fmt.Errorf("creating EGL context")
	}
	return context, nil
}

func (e *eglState) createWindowSurface(window *C.struct_wl_egl_window) (C.EGLSurface, error) {
	surface := C.eglCreateWindowSurface(e.display, e.config,
		C.EGLNativeWindowType(unsafe.Pointer(window)), nil)
	if surface == nil {
		return nil, fmt.Errorf("creating EGL window surface")
	}
	return surface, nil
}

func (e *eglState) makeCurrent(surface C.EGLSurface, context C.EGLContext) error {
	if C.eglMakeCurrent(e.display, surface, surface, context) == C.EGL_FALSE {
		return fmt.Errorf("eglMakeCurrent failed: 0x%x", uint32(C.eglGetError()))
	}
	return nil
}

func (e *eglState) swapBuffers(surface C.EGLSurface) error {
	if C.eglSwapBuffers(e.display, surface) == C.EGL_FALSE {
		return fmt.Errorf("eglSwapBuffers failed: 0x%x", uint32(C.eglGetError()))
	}
	return nil
}

func (e *eglState) swapInterval(interval int) {
	C.eglSwapInterval(e.display, C.EGLint(interval))
}

func (e *eglState) destroySurface(surface C.EGLSurface) {
	if surface != nil {
		C.eglDestroySurface(e.display, surface)
	}
}

func (e *eglState) destroyContext(context C.EGLContext) {
	if context != nil {
		C.eglDestroyContext(e.display, context)
	}
}

func (e *eglState) terminate() {
	if e.display == 0 {
		return
	}
	C.eglMakeCurrent(e.display, nil, nil, nil)
	C.eglTerminate(e.display)
	e.display = 0
}

// initGL loads the GL ES entry points through EGL. Requires a current
// context; done once after the first surface exists.
func initGL() error {
	return glutil.Init(func(name string) unsafe.Pointer {
		cname := C.CString(name)
		defer C.free(unsafe.Pointer(cname))
		return unsafe.Pointer(C.eglGetProcAddress(cname))
	})
}
