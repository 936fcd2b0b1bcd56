// Package audio plays short sound clips through the system audio output.
//
// Clips decode asynchronously: NewLoadable starts decoding on a goroutine
// and Play silently no-ops until the clip is ready, so the game can fire
// sounds from frame one without blocking on asset IO. Browser-style
// autoplay policies are accommodated by OnUserInteraction, which resumes
// the output context on the first real input event.
package audio
