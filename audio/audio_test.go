package audio

import (
	"errors"
	"io"
	"testing"
	"time"
)

// makeClip builds a clip with ascending sample values for inspection.
func makeClip(channels, frames, rate int) *Clip {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = int16(i)
	}
	return &Clip{SampleRate: rate, Channels: channels, samples: samples}
}

func TestNewLoadedClip(t *testing.T) {
	l := NewLoadedClip(makeClip(2, 4, 48000))
	if l.State() != LoadStateDone {
		t.Errorf("State() = %v, want LoadStateDone", l.State())
	}
	if _, ok := l.ready(); !ok {
		t.Error("ready() should succeed for a preloaded clip")
	}
}

func TestLoadableSuccess(t *testing.T) {
	l := NewLoadable(func() (*Clip, error) {
		return makeClip(1, 8, 44100), nil
	})

	waitState(t, l, LoadStateDone)
	clip, ok := l.ready()
	if !ok || clip.Frames() != 8 {
		t.Errorf("ready() = (%v, %v), want loaded 8-frame clip", clip, ok)
	}
}

func TestLoadableFailure(t *testing.T) {
	sentinel := errors.New("decode failure")
	l := NewLoadable(func() (*Clip, error) {
		return nil, sentinel
	})

	waitState(t, l, LoadStateFailed)
	if _, ok := l.ready(); ok {
		t.Error("ready() should fail for a failed load")
	}
	// A second observation stays failed and must not flip the state.
	if _, ok := l.ready(); ok {
		t.Error("failed Loadable must stay failed")
	}
}

func TestLoadableStartsLoading(t *testing.T) {
	release := make(chan struct{})
	l := NewLoadable(func() (*Clip, error) {
		<-release
		return makeClip(1, 1, 48000), nil
	})
	if l.State() != LoadStateLoading {
		t.Errorf("State() = %v, want LoadStateLoading before the loader finishes", l.State())
	}
	if _, ok := l.ready(); ok {
		t.Error("ready() should fail while loading")
	}
	close(release)
	waitState(t, l, LoadStateDone)
}

func waitState(t *testing.T, l *Loadable, want LoadState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for l.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("State() = %v, never reached %v", l.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClipReaderNaturalSpeed(t *testing.T) {
	// Stereo clip already at the output rate: Read passes frames through
	// unchanged.
	clip := makeClip(2, 4, outputSampleRate)
	r := newClipReader(clip, 1)

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 16 {
		t.Fatalf("Read n = %d, want 16 (4 frames)", n)
	}
	// Frame 1 left channel is sample value 2.
	got := int16(uint16(buf[4]) | uint16(buf[5])<<8)
	if got != 2 {
		t.Errorf("frame 1 left = %d, want 2", got)
	}

	if _, err := r.Read(buf); err != io.EOF {
		t.Errorf("Read past end = %v, want io.EOF", err)
	}
}

func TestClipReaderMonoDuplicatesChannels(t *testing.T) {
	clip := makeClip(1, 2, outputSampleRate)
	r := newClipReader(clip, 1)

	buf := make([]byte, 8)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	left := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	right := int16(uint16(buf[2]) | uint16(buf[3])<<8)
	if left != right {
		t.Errorf("mono frame split: left=%d right=%d, want equal", left, right)
	}
}

func TestClipReaderDoubleSpeedHalvesFrames(t *testing.T) {
	clip := makeClip(2, 8, outputSampleRate)
	r := newClipReader(clip, 2)

	buf := make([]byte, 64)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 16 {
		t.Errorf("Read n = %d, want 16 (8 source frames at 2x = 4 output frames)", n)
	}
}

func TestClipReaderResamplesRate(t *testing.T) {
	// A 24 kHz source at natural speed plays each frame twice at 48 kHz.
	clip := makeClip(2, 2, outputSampleRate/2)
	r := newClipReader(clip, 1)

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 16 {
		t.Fatalf("Read n = %d, want 16 (2 source frames upsampled to 4)", n)
	}
	f0 := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	f1 := int16(uint16(buf[4]) | uint16(buf[5])<<8)
	if f0 != f1 {
		t.Errorf("upsampled frames 0 and 1 = %d, %d; want repeated source frame", f0, f1)
	}
}
