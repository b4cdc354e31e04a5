// Package wayland owns the compositor session: registry and output
// discovery, one layer-shell surface per output with its EGL surface, and
// the scheduler driving the render loop.
package wayland

/*
#cgo LDFLAGS: -lwayland-client -lwayland-egl -lEGL
#include <stdlib.h>
#include "wayland.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/charmbracelet/log"
)

// configureRounds bounds how many dispatch round trips the initial layer
// surface handshake may take before giving up.
const configureRounds = 32

// Output is one compositor output as seen through wl_output and, when the
// compositor offers it, zxdg_output_v1.
type Output struct {
	id       uint32
	wlOutput *C.struct_wl_output
	xdg      *C.struct_zxdg_output_v1

	name     string
	xdgName  string
	scale    int32
	modeW    int32
	modeH    int32
	logicalW int32
	logicalH int32
	done     bool
}

// Name prefers the xdg-output name, which is the stable connector name
// compositors expose to users (DP-1, HDMI-A-1).
func (o *Output) Name() string {
	if o.xdgName != "" {
		return o.xdgName
	}
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("output-%d", o.id)
}

// Display is the Wayland connection plus the globals this daemon binds.
// All methods must run on the locked render thread.
type Display struct {
	display    *C.struct_wl_display
	registry   *C.struct_wl_registry
	compositor *C.struct_wl_compositor
	layerShell *C.struct_zwlr_layer_shell_v1
	xdgManager *C.struct_zxdg_output_manager_v1

	compositorVersion int

	handle  cgo.Handle
	outputs map[uint32]*Output

	// Configure and closed events carry only the layer surface proxy.
	surfacesByLayer map[unsafe.Pointer]*Surface

	egl eglState
}

// Connect opens the Wayland display, binds globals and resolves every
// output's name and size. The calling goroutine is locked to its OS thread
// for the lifetime of the display.
func Connect() (*Display, error) {
	runtime.LockOSThread()

	d := &Display{
		outputs:         make(map[uint32]*Output),
		surfacesByLayer: make(map[unsafe.Pointer]*Surface),
	}

	d.display = C.connect_wayland_display()
	if d.display == nil {
		return nil, fmt.Errorf("connecting to Wayland display: is a compositor running?")
	}

	d.registry = C.wl_display_get_registry(d.display)
	if d.registry == nil {
		d.Close()
		return nil, fmt.Errorf("getting Wayland registry")
	}

	d.handle = cgo.NewHandle(d)
	C.wl_registry_add_listener(d.registry, C.get_registry_listener(), unsafe.Pointer(uintptr(d.handle)))

	// First round binds globals, second delivers initial output events.
	C.wl_display_roundtrip(d.display)
	C.wl_display_roundtrip(d.display)

	if d.compositor == nil {
		d.Close()
		return nil, fmt.Errorf("compositor does not advertise wl_compositor")
	}
	if d.layerShell == nil {
		d.Close()
		return nil, fmt.Errorf("compositor does not support zwlr_layer_shell_v1")
	}

	// The xdg-output manager may have arrived after some outputs.
	for _, out := range d.outputs {
		d.attachXdgOutput(out)
	}
	C.wl_display_roundtrip(d.display)

	if len(d.outputs) == 0 {
		d.Close()
		return nil, fmt.Errorf("no outputs advertised by compositor")
	}

	if err := d.initEGL(); err != nil {
		d.Close()
		return nil, err
	}

	for _, out := range d.outputs {
		log.Infof("output %s: %dx%d (scale %d)", out.Name(), out.width(), out.height(), out.scale)
	}

	runtime.KeepAlive(d)
	return d, nil
}

// width returns the logical size when xdg-output reported one, otherwise
// the mode size.
func (o *Output) width() int32 {
	if o.logicalW > 0 {
		return o.logicalW
	}
	return o.modeW
}

func (o *Output) height() int32 {
	if o.logicalH > 0 {
		return o.logicalH
	}
	return o.modeH
}

// Outputs returns the known outputs.
func (d *Display) Outputs() []*Output {
	outs := make([]*Output, 0, len(d.outputs))
	for _, out := range d.outputs {
		outs = append(outs, out)
	}
	return outs
}

func (d *Display) attachXdgOutput(out *Output) {
	if d.xdgManager == nil || out.xdg != nil {
		return
	}
	out.xdg = C.zxdg_output_manager_v1_get_xdg_output(d.xdgManager, out.wlOutput)
	C.zxdg_output_v1_add_listener(out.xdg, C.get_xdg_output_listener(), unsafe.Pointer(uintptr(d.handle)))
}

// Roundtrip flushes requests and dispatches events until the compositor has
// processed everything outstanding. Called once per frame like any other
// client driving its own loop.
func (d *Display) Roundtrip() error {
	if C.wl_display_roundtrip(d.display) == -1 {
		return fmt.Errorf("wayland display roundtrip failed")
	}
	return nil
}

// Close tears down all surfaces, EGL and the display connection.
func (d *Display) Close() {
	for _, surf := range d.surfacesByLayer {
		surf.destroy()
	}
	d.surfacesByLayer = make(map[unsafe.Pointer]*Surface)

	for _, out := range d.outputs {
		if out.xdg != nil {
			C.zxdg_output_v1_destroy(out.xdg)
			out.xdg = nil
		}
	}

	d.egl.terminate()

	if d.layerShell != nil {
		C.zwlr_layer_shell_v1_destroy(d.layerShell)
		d.layerShell = nil
	}
	if d.xdgManager != nil {
		C.zxdg_output_manager_v1_destroy(d.xdgManager)
		d.xdgManager = nil
	}
	if d.display != nil {
		C.wl_display_disconnect(d.display)
		d.display = nil
	}
	if d.handle != 0 {
		d.handle.Delete()
		d.handle = 0
	}
}

func minVersion(advertised, want C.uint32_t) C.uint32_t {
	if advertised < want {
		return advertised
	}
	return want
}

//export goHandleGlobal
func goHandleGlobal(handle C.uintptr_t, registry *C.struct_wl_registry, name C.uint32_t, iface *C.char, version C.uint32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)

	switch C.GoString(iface) {
	case "wl_compositor":
		want := minVersion(version, 4)
		d.compositor = (*C.struct_wl_compositor)(C.wl_registry_bind(registry, name, &C.wl_compositor_interface, want))
		d.compositorVersion = int(want)
		log.Debug("bound wl_compositor")
	case "zwlr_layer_shell_v1":
		d.layerShell = (*C.struct_zwlr_layer_shell_v1)(C.wl_registry_bind(registry, name, &C.zwlr_layer_shell_v1_interface, 1))
		log.Debug("bound zwlr_layer_shell_v1")
	case "zxdg_output_manager_v1":
		want := minVersion(version, 3)
		d.xdgManager = (*C.struct_zxdg_output_manager_v1)(C.wl_registry_bind(registry, name, &C.zxdg_output_manager_v1_interface, want))
		log.Debug("bound zxdg_output_manager_v1")
	case "wl_output":
		want := minVersion(version, 4)
		wlOut := (*C.struct_wl_output)(C.wl_registry_bind(registry, name, &C.wl_output_interface, want))
		out := &Output{id: uint32(name), wlOutput: wlOut, scale: 1}
		d.outputs[out.id] = out
		C.wl_output_add_listener(wlOut, C.get_output_listener(), unsafe.Pointer(uintptr(d.handle)))
		d.attachXdgOutput(out)
		log.Debugf("bound wl_output id=%d", out.id)
	}
}

//export goHandleGlobalRemove
func goHandleGlobalRemove(handle C.uintptr_t, _ *C.struct_wl_registry, name C.uint32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)

	id := uint32(name)
	out, ok := d.outputs[id]
	if !ok {
		return
	}
	log.Infof("output %s removed", out.Name())

	for key, surf := range d.surfacesByLayer {
		if surf.output == out {
			surf.destroy()
			delete(d.surfacesByLayer, key)
		}
	}
	if out.xdg != nil {
		C.zxdg_output_v1_destroy(out.xdg)
		out.xdg = nil
	}
	delete(d.outputs, id)
}

//export goHandleOutputMode
func goHandleOutputMode(handle C.uintptr_t, output *C.struct_wl_output, width, height C.int32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByProxy(output); out != nil {
		out.modeW = int32(width)
		out.modeH = int32(height)
	}
}

//export goHandleOutputScale
func goHandleOutputScale(handle C.uintptr_t, output *C.struct_wl_output, factor C.int32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByProxy(output); out != nil {
		if factor <= 0 {
			factor = 1
		}
		out.scale = int32(factor)
	}
}

//export goHandleOutputName
func goHandleOutputName(handle C.uintptr_t, output *C.struct_wl_output, name *C.char) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByProxy(output); out != nil {
		out.name = C.GoString(name)
	}
}

//export goHandleOutputDone
func goHandleOutputDone(handle C.uintptr_t, output *C.struct_wl_output) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByProxy(output); out != nil {
		out.done = true
	}
}

//export goHandleXdgOutputLogicalSize
func goHandleXdgOutputLogicalSize(handle C.uintptr_t, xdg *C.struct_zxdg_output_v1, width, height C.int32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByXdg(xdg); out != nil {
		out.logicalW = int32(width)
		out.logicalH = int32(height)
	}
}

//export goHandleXdgOutputName
func goHandleXdgOutputName(handle C.uintptr_t, xdg *C.struct_zxdg_output_v1, name *C.char) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByXdg(xdg); out != nil {
		out.xdgName = C.GoString(name)
	}
}

//export goHandleXdgOutputDone
func goHandleXdgOutputDone(handle C.uintptr_t, xdg *C.struct_zxdg_output_v1) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)
	if out := d.outputByXdg(xdg); out != nil {
		out.done = true
	}
}

//export goHandleLayerSurfaceConfigure
func goHandleLayerSurfaceConfigure(handle C.uintptr_t, surface *C.struct_zwlr_layer_surface_v1, serial, width, height C.uint32_t) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)

	C.zwlr_layer_surface_v1_ack_configure(surface, serial)

	surf, ok := d.surfacesByLayer[unsafe.Pointer(surface)]
	if !ok {
		log.Debugf("configure for unknown layer surface (serial %d)", serial)
		return
	}
	surf.handleConfigure(int32(width), int32(height))
}

//export goHandleLayerSurfaceClosed
func goHandleLayerSurfaceClosed(handle C.uintptr_t, surface *C.struct_zwlr_layer_surface_v1) {
	d := cgo.Handle(uintptr(handle)).Value().(*Display)

	surf, ok := d.surfacesByLayer[unsafe.Pointer(surface)]
	if !ok {
		return
	}
	log.Infof("layer surface closed for output %s", surf.output.Name())
	surf.destroy()
	delete(d.surfacesByLayer, unsafe.Pointer(surface))
}

func (d *Display) outputByProxy(output *C.struct_wl_output) *Output {
	for _, out := range d.outputs {
		if out.wlOutput == output {
			return out
		}
	}
	return nil
}

func (d *Display) outputByXdg(xdg *C.struct_zxdg_output_v1) *Output {
	for _, out := range d.outputs {
		if out.xdg == xdg {
			return out
		}
	}
	return nil
}
