package render

// UVRect is the texture window sampled by the full-screen quad.
type UVRect struct {
	UMin, VMin, UMax, VMax float32
}

// fullUV samples the whole texture.
var fullUV = UVRect{UMin: 0, VMin: 0, UMax: 1, VMax: 1}

// CoverFitUV computes the texture window that scales media to cover the
// output while preserving aspect ratio. The longer media axis is cropped
// symmetrically; the window is always centered. Unknown media dimensions
// yield the full texture.
func CoverFitUV(outputW, outputH, mediaW, mediaH int32) UVRect {
	if mediaW <= 0 || mediaH <= 0 || outputW <= 0 || outputH <= 0 {
		return fullUV
	}

	ow := float32(outputW)
	oh := float32(outputH)
	mw := float32(mediaW)
	mh := float32(mediaH)

	mediaAspect := mw / mh
	outputAspect := ow / oh

	var scaleX, scaleY float32 = 1, 1
	if mediaAspect > outputAspect {
		// Media is wider than the output; fit height and crop the sides.
		scaled := mw * (oh / mh)
		scaleX = 1 + (scaled-ow)/ow
	} else {
		// Media is taller; fit width and crop top and bottom.
		scaled := mh * (ow / mw)
		scaleY = 1 + (scaled-oh)/oh
	}

	uMin := (1 - 1/scaleX) * 0.5
	vMin := (1 - 1/scaleY) * 0.5
	return UVRect{UMin: uMin, VMin: vMin, UMax: 1 - uMin, VMax: 1 - vMin}
}
