package wayland

// nextConfigure resolves a layer-surface configure event against the
// surface's current state. Zero requested dimensions fall back to the
// output size, and a repeat of the current dimensions reports no change so
// the EGL window is not resized again.
func nextConfigure(configured bool, curW, curH, outW, outH, reqW, reqH int32) (int32, int32, bool) {
	if reqW == 0 {
		reqW = outW
	}
	if reqH == 0 {
		reqH = outH
	}
	if configured && reqW == curW && reqH == curH {
		return curW, curH, false
	}
	return reqW, reqH, true
}
