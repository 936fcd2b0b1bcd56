package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidWAV is returned for data that is not a RIFF/WAVE stream
	// or is truncated.
	ErrInvalidWAV = errors.New("audio: invalid WAV data")

	// ErrUnsupportedWAV is returned for WAV encodings other than 16-bit
	// integer PCM.
	ErrUnsupportedWAV = errors.New("audio: unsupported WAV encoding")
)

// Clip is a decoded sound: interleaved 16-bit PCM samples at a source
// sample rate. Clips are immutable after decoding and safe to share
// between players.
type Clip struct {
	// SampleRate is the source rate in frames per second.
	SampleRate int

	// Channels is 1 for mono or 2 for stereo.
	Channels int

	samples []int16
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	return len(c.samples) / c.Channels
}

// LoadWAV decodes a 16-bit PCM WAV stream into a Clip.
func LoadWAV(r io.Reader) (*Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("audio: read WAV: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrInvalidWAV
	}

	var (
		haveFormat bool
		channels   int
		sampleRate int
		samples    []int16
	)

	// Walk the chunk list; chunks are 2-byte aligned.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, ErrInvalidWAV
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrInvalidWAV
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || bits != 16 {
				return nil, fmt.Errorf("%w: format=%d bits=%d", ErrUnsupportedWAV, format, bits)
			}
			if channels != 1 && channels != 2 {
				return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedWAV, channels)
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return nil, ErrInvalidWAV
			}
			count := size / 2
			samples = make([]int16, count)
			for i := range count {
				samples[i] = int16(binary.LittleEndian.Uint16(data[body+i*2 : body+i*2+2]))
			}
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFormat || samples == nil {
		return nil, ErrInvalidWAV
	}
	return &Clip{
		SampleRate: sampleRate,
		Channels:   channels,
		samples:    samples,
	}, nil
}
