package shaderpaper

// Version is stamped by the release workflow via -ldflags; the default is
// used for locally built binaries.
var Version = "dev"

// DefaultConfig is written by `shaderpaper --installconfig`.
const DefaultConfig = `# shaderpaper configuration

# Target framerate for shader and image content. 0 lets the compositor's
# vsync govern presentation. Video content always paces itself from the
# stream's timestamps; a non-zero fps here overrides that pacing.
fps = 0

# Layer to place wallpaper surfaces on: background, bottom, top or overlay.
layer = "background"

# Fragment shader applied at startup. "default" uses the built-in shader.
shader = "default"

# Startup content. Set at most one; with neither set the shader runs on its
# own. Both can be changed at runtime with "shaderpaper set".
#image = "~/Pictures/wallpaper.png"
#video = "~/Videos/wallpaper.mp4"

# Optional FIFO of interleaved little-endian s16 stereo samples, exposed to
# shaders through the "fifo" uniform. Leave empty to disable.
fifo = ""

# Never spawn an audio player for video wallpapers.
mute = false

# Enable debug logging.
debug = false
`
