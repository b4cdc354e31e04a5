package wayland

/*
#include <stdlib.h>
#include "wayland.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/media"
	"github.com/shaderpaper/shaderpaper/internal/render"
)

// layerNamespace identifies our surfaces to the compositor.
const layerNamespace = "shaderpaper"

// Surface is one output's wallpaper: a layer-shell surface, its EGL window
// surface and the renderer drawing into it.
type Surface struct {
	display *Display
	output  *Output

	wlSurface  *C.struct_wl_surface
	layerSurf  *C.struct_zwlr_layer_surface_v1
	eglWindow  *C.struct_wl_egl_window
	eglSurface C.EGLSurface
	eglContext C.EGLContext

	renderer *render.Renderer

	configured bool
	width      int32
	height     int32
}

// LayerForName maps a configuration value to a layer-shell layer,
// defaulting to background.
func LayerForName(name string) uint32 {
	switch name {
	case "top":
		return C.ZWLR_LAYER_SHELL_V1_LAYER_TOP
	case "bottom":
		return C.ZWLR_LAYER_SHELL_V1_LAYER_BOTTOM
	case "overlay":
		return C.ZWLR_LAYER_SHELL_V1_LAYER_OVERLAY
	default:
		return C.ZWLR_LAYER_SHELL_V1_LAYER_BACKGROUND
	}
}

// CreateSurface builds a layer surface on out, waits for the compositor's
// configure, then brings up EGL and the renderer with the initial media.
func (d *Display) CreateSurface(out *Output, layer uint32, initial media.Type, forcedFPS float64) (*Surface, error) {
	s := &Surface{display: d, output: out}

	s.wlSurface = C.wl_compositor_create_surface(d.compositor)
	if s.wlSurface == nil {
		return nil, fmt.Errorf("creating wl_surface for output %s", out.Name())
	}

	// Wallpapers never take input; an empty region lets clicks pass
	// through to whatever the compositor puts underneath.
	region := C.wl_compositor_create_region(d.compositor)
	C.wl_surface_set_input_region(s.wlSurface, region)
	C.wl_region_destroy(region)

	namespace := C.CString(layerNamespace)
	defer C.free(unsafe.Pointer(namespace))

	s.layerSurf = C.zwlr_layer_shell_v1_get_layer_surface(
		d.layerShell, s.wlSurface, out.wlOutput, C.uint32_t(layer), namespace)
	if s.layerSurf == nil {
		s.destroy()
		return nil, fmt.Errorf("creating layer surface for output %s", out.Name())
	}

	d.surfacesByLayer[unsafe.Pointer(s.layerSurf)] = s

	C.zwlr_layer_surface_v1_add_listener(s.layerSurf, C.get_layer_surface_listener(),
		unsafe.Pointer(uintptr(d.handle)))

	C.zwlr_layer_surface_v1_set_anchor(s.layerSurf,
		C.ZWLR_LAYER_SURFACE_V1_ANCHOR_TOP|
			C.ZWLR_LAYER_SURFACE_V1_ANCHOR_BOTTOM|
			C.ZWLR_LAYER_SURFACE_V1_ANCHOR_LEFT|
			C.ZWLR_LAYER_SURFACE_V1_ANCHOR_RIGHT)
	C.zwlr_layer_surface_v1_set_exclusive_zone(s.layerSurf, -1)
	C.zwlr_layer_surface_v1_set_size(s.layerSurf, 0, 0)
	C.zwlr_layer_surface_v1_set_keyboard_interactivity(s.layerSurf, 0)
	C.zwlr_layer_surface_v1_set_margin(s.layerSurf, 0, 0, 0, 0)

	if d.compositorVersion >= 3 && out.scale > 1 {
		C.wl_surface_set_buffer_scale(s.wlSurface, C.int(out.scale))
	}

	C.wl_surface_commit(s.wlSurface)

	for i := 0; i < configureRounds && !s.configured; i++ {
		if C.wl_display_roundtrip(d.display) == -1 {
			d.dropSurface(s)
			return nil, fmt.Errorf("display error while configuring output %s", out.Name())
		}
	}
	if !s.configured {
		d.dropSurface(s)
		return nil, fmt.Errorf("compositor never configured layer surface on %s", out.Name())
	}

	log.Infof("surface on %s configured at %dx%d", out.Name(), s.width, s.height)

	bufW, bufH := s.bufferSize()
	s.eglWindow = C.wl_egl_window_create(s.wlSurface, C.int(bufW), C.int(bufH))
	if s.eglWindow == nil {
		d.dropSurface(s)
		return nil, fmt.Errorf("creating wl_egl_window for output %s", out.Name())
	}

	eglSurf, err := d.egl.createWindowSurface(s.eglWindow)
	if err != nil {
		d.dropSurface(s)
		return nil, err
	}
	s.eglSurface = eglSurf

	s.eglContext, err = d.egl.createContext()
	if err != nil {
		d.dropSurface(s)
		return nil, err
	}

	if err := s.makeCurrent(); err != nil {
		d.dropSurface(s)
		return nil, err
	}
	if err := initGL(); err != nil {
		d.dropSurface(s)
		return nil, fmt.Errorf("loading GL ES entry points: %w", err)
	}

	s.renderer, err = render.New(initial, forcedFPS)
	if err != nil {
		d.dropSurface(s)
		return nil, err
	}

	return s, nil
}

// handleConfigure records a new size from the compositor and resizes the
// EGL window. Zero-sized configures keep the previous dimensions.
// Redundant configures are ignored.
func (s *Surface) handleConfigure(width, height int32) {
	w, h, changed := nextConfigure(s.configured, s.width, s.height,
		s.output.width(), s.output.height(), width, height)
	if !changed {
		log.Debugf("configure on %s unchanged at %dx%d", s.output.Name(), w, h)
		return
	}

	s.width = w
	s.height = h
	s.configured = true

	if s.eglWindow != nil {
		bufW, bufH := s.bufferSize()
		log.Infof("resizing %s to %dx%d (buffer %dx%d)", s.output.Name(), w, h, bufW, bufH)
		C.wl_egl_window_resize(s.eglWindow, C.int(bufW), C.int(bufH), 0, 0)
	}
}

// bufferSize is the pixel size of the backing buffer, the logical size
// scaled by the output's integer scale.
func (s *Surface) bufferSize() (int32, int32) {
	w := s.width
	h := s.height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if s.output.scale > 1 {
		w *= s.output.scale
		h *= s.output.scale
	}
	return w, h
}

// OutputName is the connector name this surface covers.
func (s *Surface) OutputName() string { return s.output.Name() }

// Renderer exposes the surface's renderer for media updates.
func (s *Surface) Renderer() *render.Renderer { return s.renderer }

// Ready reports whether the surface can be drawn to.
func (s *Surface) Ready() bool {
	return s.configured && s.eglSurface != nil
}

// Destroyed reports whether the compositor tore this surface down, either
// by removing its output or by closing the layer surface.
func (s *Surface) Destroyed() bool {
	return s.wlSurface == nil
}

// makeCurrent binds this surface's EGL context for the calling thread.
func (s *Surface) makeCurrent() error {
	return s.display.egl.makeCurrent(s.eglSurface, s.eglContext)
}

// RenderFrame makes this surface current, draws one frame and presents it.
func (s *Surface) RenderFrame(fifo *[2]float32) error {
	if !s.Ready() {
		return nil
	}
	if err := s.makeCurrent(); err != nil {
		return err
	}

	bufW, bufH := s.bufferSize()
	if err := s.renderer.Draw(render.Frame{Width: bufW, Height: bufH, Fifo: fifo}); err != nil {
		return err
	}
	return s.display.egl.swapBuffers(s.eglSurface)
}

// dropSurface unregisters and destroys a surface in one step.
func (d *Display) dropSurface(s *Surface) {
	if s.layerSurf != nil {
		delete(d.surfacesByLayer, unsafe.Pointer(s.layerSurf))
	}
	s.destroy()
}

func (s *Surface) destroy() {
	if s.renderer != nil {
		if s.eglSurface != nil {
			// GL deletes need the context current.
			_ = s.makeCurrent()
		}
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.eglSurface != nil {
		s.display.egl.destroySurface(s.eglSurface)
		s.eglSurface = nil
	}
	if s.eglContext != nil {
		s.display.egl.destroyContext(s.eglContext)
		s.eglContext = nil
	}
	if s.eglWindow != nil {
		C.wl_egl_window_destroy(s.eglWindow)
		s.eglWindow = nil
	}
	if s.layerSurf != nil {
		C.zwlr_layer_surface_v1_destroy(s.layerSurf)
		s.layerSurf = nil
	}
	if s.wlSurface != nil {
		C.wl_surface_destroy(s.wlSurface)
		s.wlSurface = nil
	}
	s.configured = false
}
