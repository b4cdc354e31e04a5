package media

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
)

// loadImageTexture decodes an image file and uploads it as a mipmapped
// texture. Decoders are registered by the main package's blank imports.
func loadImageTexture(path string) (*glutil.Texture, error) {
	log.Infof("loading image %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	log.Debugf("decoded %s image %dx%d", format, bounds.Dx(), bounds.Dy())

	return glutil.NewTextureFromRGBA(int32(bounds.Dx()), int32(bounds.Dy()), rgba.Pix, true), nil
}
