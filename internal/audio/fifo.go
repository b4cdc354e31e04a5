package audio

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// fifoSamples is one video-frame's worth of 44.1kHz stereo samples.
const fifoSamples = 44100 / 25

// StereoSample is one chunk of interleaved s16le PCM split by channel.
type StereoSample struct {
	Left  []int16
	Right []int16
}

// FIFOReader reads visualizer PCM from a named pipe without ever blocking
// the render loop. Writers like mpd or a pactl pipe sink feed it
// interleaved s16le stereo.
type FIFOReader struct {
	fd  int
	buf []byte
}

// OpenFIFO opens path in non-blocking mode.
func OpenFIFO(path string) (*FIFOReader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("opening fifo %s: %w", path, err)
	}
	return &FIFOReader{fd: fd, buf: make([]byte, fifoSamples*4)}, nil
}

// ReadSample returns the next available chunk, or nil when the pipe has no
// data right now.
func (r *FIFOReader) ReadSample() (*StereoSample, error) {
	n, err := unix.Read(r.fd, r.buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, nil
		}
		return nil, fmt.Errorf("reading fifo: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return decodeStereo(r.buf[:n]), nil
}

// Close releases the pipe descriptor.
func (r *FIFOReader) Close() error {
	if r.fd < 0 {
		return nil
	}
	err := unix.Close(r.fd)
	r.fd = -1
	return err
}

// decodeStereo splits interleaved little-endian s16 frames into channels.
// A trailing partial frame is dropped.
func decodeStereo(data []byte) *StereoSample {
	frames := len(data) / 4
	s := &StereoSample{
		Left:  make([]int16, frames),
		Right: make([]int16, frames),
	}
	for i := 0; i < frames; i++ {
		base := i * 4
		s.Left[i] = int16(binary.LittleEndian.Uint16(data[base : base+2]))
		s.Right[i] = int16(binary.LittleEndian.Uint16(data[base+2 : base+4]))
	}
	return s
}

// Uniform returns the sample pair handed to shaders as (right, left), zero
// when the chunk is empty.
func (s *StereoSample) Uniform() [2]float32 {
	var out [2]float32
	if s == nil {
		return out
	}
	if len(s.Right) > 0 {
		out[0] = float32(s.Right[0])
	}
	if len(s.Left) > 0 {
		out[1] = float32(s.Left[0])
	}
	return out
}
