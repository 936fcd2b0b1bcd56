package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/mkualquiera/webengine"
)

// Output format shared by every player.
const (
	outputSampleRate = 48000
	outputChannels   = 2
)

// LoadState is the lifecycle state of a Loadable clip.
type LoadState int

// Loadable states.
const (
	LoadStateLoading LoadState = iota
	LoadStateDone
	LoadStateFailed
)

// Loadable is a clip that decodes asynchronously. Play requests while it
// is still loading are dropped silently; a decode failure is logged once
// and the Loadable stays failed forever.
type Loadable struct {
	mu     sync.Mutex
	state  LoadState
	clip   *Clip
	err    error
	warned bool
}

// NewLoadable starts decoding on a goroutine and returns immediately.
func NewLoadable(load func() (*Clip, error)) *Loadable {
	l := &Loadable{state: LoadStateLoading}
	go func() {
		clip, err := load()
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.state = LoadStateFailed
			l.err = err
			return
		}
		l.state = LoadStateDone
		l.clip = clip
	}()
	return l
}

// NewLoadedClip wraps an already-decoded clip.
func NewLoadedClip(c *Clip) *Loadable {
	return &Loadable{state: LoadStateDone, clip: c}
}

// State returns the current lifecycle state.
func (l *Loadable) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ready returns the clip when decoding has finished, logging a failed
// decode the first time it is observed.
func (l *Loadable) ready() (*Clip, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case LoadStateDone:
		return l.clip, true
	case LoadStateFailed:
		if !l.warned {
			l.warned = true
			webengine.Logger().Warn("audio: clip failed to load", "err", l.err)
		}
		return nil, false
	default:
		return nil, false
	}
}

// System owns the audio output context. Construction is non-blocking: the
// context reports readiness through a channel, and Play drops sounds
// until it arrives.
type System struct {
	ctx   *oto.Context
	ready chan struct{}
}

// NewSystem opens the audio output at 48 kHz stereo s16le.
func NewSystem() (*System, error) {
	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   outputSampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: open output context: %w", err)
	}
	return &System{ctx: ctx, ready: readyChan}, nil
}

// isReady reports whether the output context has come up.
func (s *System) isReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// OnUserInteraction resumes the output context. Hosts with an autoplay
// policy call this on the first real input event; elsewhere it is a
// harmless no-op on an already-running context.
func (s *System) OnUserInteraction() {
	if err := s.ctx.Resume(); err != nil {
		webengine.Logger().Warn("audio: resume failed", "err", err)
	}
}

// Play starts one playback of the clip at the given speed (1 is natural
// pitch, 2 an octave up). Dropped with a debug log when the clip is still
// loading or the output is not ready yet.
func (s *System) Play(l *Loadable, speed float64) {
	clip, ok := l.ready()
	if !ok {
		webengine.Logger().Debug("audio: play dropped, clip not loaded")
		return
	}
	if !s.isReady() {
		webengine.Logger().Debug("audio: play dropped, output not ready")
		return
	}
	if speed <= 0 {
		speed = 1
	}

	player := s.ctx.NewPlayer(newClipReader(clip, speed))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(50 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			webengine.Logger().Warn("audio: close player", "err", err)
		}
	}()
}

// clipReader streams a clip as interleaved s16le stereo at the output
// sample rate, resampling by nearest neighbor. speed scales the source
// step, changing both pitch and duration like a playback-rate control.
type clipReader struct {
	clip *Clip
	pos  float64
	step float64
}

func newClipReader(c *Clip, speed float64) *clipReader {
	return &clipReader{
		clip: c,
		step: float64(c.SampleRate) * speed / outputSampleRate,
	}
}

// Read implements io.Reader, producing 4 bytes per output frame.
func (r *clipReader) Read(p []byte) (int, error) {
	total := r.clip.Frames()
	n := 0
	for n+4 <= len(p) {
		frame := int(r.pos)
		if frame >= total {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}

		var left, right int16
		if r.clip.Channels == 1 {
			left = r.clip.samples[frame]
			right = left
		} else {
			left = r.clip.samples[frame*2]
			right = r.clip.samples[frame*2+1]
		}
		p[n+0] = byte(left)
		p[n+1] = byte(uint16(left) >> 8)
		p[n+2] = byte(right)
		p[n+3] = byte(uint16(right) >> 8)
		n += 4
		r.pos += r.step
	}
	return n, nil
}
