// Package video decodes a video file into a streaming GL texture, pacing
// frame presentation against the wall clock and looping seamlessly at end of
// stream.
package video

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/charmbracelet/log"

	"github.com/shaderpaper/shaderpaper/internal/glutil"
)

const avTimeBase = 1000000 // AV_TIME_BASE, format-context durations

// Decoder demuxes and decodes the best video stream of a file, converting
// frames to RGBA and uploading them to a GL texture when their presentation
// time is due. Construction and every method require the owning surface's
// EGL context to be current.
//
// Frames are double buffered: UpdateFrame keeps at most one decoded frame
// pending and uploads it only once the playback clock reaches its scheduled
// display time.
type Decoder struct {
	path      string
	forcedFPS float64

	inputCtx    *astiav.FormatContext
	codecCtx    *astiav.CodecContext
	streamIndex int
	scaler      *astiav.SoftwareScaleContext

	packet    *astiav.Packet
	decFrame  *astiav.Frame
	rgbaFrame *astiav.Frame

	texture *glutil.Texture
	width   int32
	height  int32

	clock      *Clock
	nextPixels []byte
	nextPTS    int64
	nextHasPTS bool
	hasNext    bool
	reachedEOF bool
	frameFresh bool
}

// NewDecoder opens path and prepares the decode pipeline. forcedFPS > 0
// overrides container timestamps for pacing.
func NewDecoder(path string, forcedFPS float64) (*Decoder, error) {
	if forcedFPS > 0 {
		log.Infof("initializing video decoder for %s (forced %.1f fps)", path, forcedFPS)
	} else {
		log.Infof("initializing video decoder for %s (original timing)", path)
	}

	d := &Decoder{
		path:      path,
		forcedFPS: forcedFPS,
		packet:    astiav.AllocPacket(),
		decFrame:  astiav.AllocFrame(),
		rgbaFrame: astiav.AllocFrame(),
	}

	fps, timeBase, duration, err := d.open()
	if err != nil {
		d.Close()
		return nil, err
	}

	log.Infof("video stream %dx%d fps=%.2f duration=%.2fs", d.width, d.height, fps, duration)

	d.clock = NewClock(fps, timeBase, duration, forcedFPS, nil)
	d.texture = glutil.NewTexture(d.width, d.height)
	return d, nil
}

// open builds the demuxer, decoder and optional RGBA scaler, returning the
// detected fps, time base and duration in seconds.
func (d *Decoder) open() (fps, timeBase, duration float64, err error) {
	inputCtx := astiav.AllocFormatContext()
	if inputCtx == nil {
		return 0, 0, 0, errors.New("allocating format context failed")
	}
	if err = inputCtx.OpenInput(d.path, nil, nil); err != nil {
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("opening video file %s: %w", d.path, err)
	}
	if err = inputCtx.FindStreamInfo(nil); err != nil {
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("reading stream info for %s: %w", d.path, err)
	}

	var stream *astiav.Stream
	for _, s := range inputCtx.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			stream = s
			break
		}
	}
	if stream == nil {
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("no video stream found in %s", d.path)
	}

	codec := astiav.FindDecoder(stream.CodecParameters().CodecID())
	if codec == nil {
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("no decoder for codec in %s", d.path)
	}

	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, errors.New("allocating codec context failed")
	}
	if err = stream.CodecParameters().ToCodecContext(codecCtx); err != nil {
		codecCtx.Free()
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("applying codec parameters: %w", err)
	}
	if err = codecCtx.Open(codec, nil); err != nil {
		codecCtx.Free()
		inputCtx.CloseInput()
		inputCtx.Free()
		return 0, 0, 0, fmt.Errorf("opening video decoder: %w", err)
	}

	d.inputCtx = inputCtx
	d.codecCtx = codecCtx
	d.streamIndex = stream.Index()
	d.width = int32(codecCtx.Width())
	d.height = int32(codecCtx.Height())

	timeBase = rationalSeconds(stream.TimeBase())
	duration = streamDuration(stream, inputCtx, timeBase)
	fps = detectFPS(stream, timeBase)

	if codecCtx.PixelFormat() != astiav.PixelFormatRgba {
		d.scaler, err = astiav.CreateSoftwareScaleContext(
			codecCtx.Width(), codecCtx.Height(), codecCtx.PixelFormat(),
			codecCtx.Width(), codecCtx.Height(), astiav.PixelFormatRgba,
			astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagLanczos),
		)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("creating RGBA scaler: %w", err)
		}
	}

	return fps, timeBase, duration, nil
}

func rationalSeconds(r astiav.Rational) float64 {
	if r.Den() == 0 {
		return 0
	}
	return float64(r.Num()) / float64(r.Den())
}

func streamDuration(stream *astiav.Stream, inputCtx *astiav.FormatContext, timeBase float64) float64 {
	if d := stream.Duration(); d != astiav.NoPtsValue {
		return float64(d) * timeBase
	}
	if d := inputCtx.Duration(); d != astiav.NoPtsValue {
		return float64(d) / avTimeBase
	}
	return 0
}

// detectFPS prefers the declared stream rate, falls back to the average
// frame rate, then to the inverse of the time base, each accepted only in a
// plausible 1-120 range; 25 otherwise.
func detectFPS(stream *astiav.Stream, timeBase float64) float64 {
	plausible := func(fps float64) bool { return fps >= 1 && fps <= 120 }

	if fps := rationalSeconds(stream.RFrameRate()); plausible(fps) {
		return fps
	}
	if fps := rationalSeconds(stream.AvgFrameRate()); plausible(fps) {
		return fps
	}
	if timeBase > 0 {
		if fps := 1 / timeBase; plausible(fps) {
			return fps
		}
	}
	return 25
}

// UpdateFrame is called once per render pass. It presents the pending frame
// when its display time is due, prefetching the next one, and reports
// whether a new frame was uploaded. Per-packet decode errors are skipped;
// end of stream triggers a loop restart; a failed re-open is fatal for this
// decoder.
func (d *Decoder) UpdateFrame() (bool, error) {
	d.frameFresh = false

	if !d.hasNext {
		if err := d.prefetch(); err != nil {
			return false, err
		}
	}

	if d.hasNext && d.clock.ShouldPresent(d.nextPTS, d.nextHasPTS) {
		d.texture.Update(d.nextPixels)
		d.hasNext = false
		d.frameFresh = true
		d.clock.FramePresented()

		if err := d.prefetch(); err != nil {
			return false, err
		}
	}

	return d.frameFresh, nil
}

// prefetch ensures a decoded frame is buffered, restarting the stream on
// end of file.
func (d *Decoder) prefetch() error {
	if d.hasNext {
		return nil
	}

	ok, err := d.decodeToBuffer()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// End of stream: loop. The clock rewinds the start anchor so the next
	// iteration lines up with the ideal schedule.
	d.clock.Restart()
	log.Debugf("video %s restarting for loop %d", d.path, d.clock.LoopCount())

	if err := d.restart(); err != nil {
		return fmt.Errorf("re-opening %s for loop: %w", d.path, err)
	}
	_, err = d.decodeToBuffer()
	return err
}

// decodeToBuffer reads packets until one frame decodes or the stream ends.
func (d *Decoder) decodeToBuffer() (bool, error) {
	if d.reachedEOF {
		return false, nil
	}

	for {
		d.packet.Unref()
		if err := d.inputCtx.ReadFrame(d.packet); err != nil {
			if !errors.Is(err, astiav.ErrEof) {
				log.Warnf("video %s: read failed, treating as end of stream: %v", d.path, err)
			}
			d.reachedEOF = true
			return false, nil
		}
		if d.packet.StreamIndex() != d.streamIndex {
			continue
		}

		if err := d.codecCtx.SendPacket(d.packet); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				d.reachedEOF = true
				return false, nil
			}
			// Corrupt packet; skip it and keep decoding.
			continue
		}

		for {
			d.decFrame.Unref()
			if err := d.codecCtx.ReceiveFrame(d.decFrame); err != nil {
				if errors.Is(err, astiav.ErrEof) {
					d.reachedEOF = true
					return false, nil
				}
				break // needs more packets
			}

			pts := d.decFrame.Pts()
			if pts != astiav.NoPtsValue {
				d.clock.ObservePTS(pts)
			}

			pixels, err := d.frameToRGBA(d.decFrame)
			if err != nil {
				return false, err
			}

			d.nextPixels = pixels
			d.nextPTS = pts
			d.nextHasPTS = pts != astiav.NoPtsValue
			d.hasNext = true
			return true, nil
		}
	}
}

func (d *Decoder) frameToRGBA(frame *astiav.Frame) ([]byte, error) {
	src := frame
	if d.scaler != nil {
		d.rgbaFrame.Unref()
		if err := d.scaler.ScaleFrame(frame, d.rgbaFrame); err != nil {
			return nil, fmt.Errorf("scaling frame to RGBA: %w", err)
		}
		src = d.rgbaFrame
	}
	pixels, err := src.Data().Bytes(1)
	if err != nil {
		return nil, fmt.Errorf("reading frame bytes: %w", err)
	}
	return pixels, nil
}

// restart closes and re-opens the input and decoder after end of stream,
// preserving the GL texture and playback clock.
func (d *Decoder) restart() error {
	d.hasNext = false
	d.reachedEOF = false

	if d.codecCtx != nil {
		d.codecCtx.Free()
		d.codecCtx = nil
	}
	if d.scaler != nil {
		d.scaler.Free()
		d.scaler = nil
	}
	if d.inputCtx != nil {
		d.inputCtx.CloseInput()
		d.inputCtx.Free()
		d.inputCtx = nil
	}

	_, _, _, err := d.open()
	return err
}

// Texture returns the streaming texture frames are uploaded into.
func (d *Decoder) Texture() *glutil.Texture { return d.texture }

// Dimensions returns the decoded frame size in pixels.
func (d *Decoder) Dimensions() (int32, int32) { return d.width, d.height }

// HasNewFrame reports whether the last UpdateFrame call uploaded a frame.
func (d *Decoder) HasNewFrame() bool { return d.frameFresh }

// LoopCount returns how many times the video has restarted.
func (d *Decoder) LoopCount() uint64 { return d.clock.LoopCount() }

// Close releases decoder, scaler, demuxer and the GL texture. Safe to call
// more than once.
func (d *Decoder) Close() {
	if d.texture != nil {
		d.texture.Delete()
		d.texture = nil
	}
	if d.scaler != nil {
		d.scaler.Free()
		d.scaler = nil
	}
	if d.codecCtx != nil {
		d.codecCtx.Free()
		d.codecCtx = nil
	}
	if d.inputCtx != nil {
		d.inputCtx.CloseInput()
		d.inputCtx.Free()
		d.inputCtx = nil
	}
	if d.packet != nil {
		d.packet.Free()
		d.packet = nil
	}
	if d.decFrame != nil {
		d.decFrame.Free()
		d.decFrame = nil
	}
	if d.rgbaFrame != nil {
		d.rgbaFrame.Free()
		d.rgbaFrame = nil
	}
}
