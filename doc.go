// Package webengine provides the core math types for a small real-time 2D
// engine: immutable 4x4 transforms over unit squares, oriented-space
// collision detection between transformed squares, and GPU-ready colors.
//
// Everything in the engine is a unit square. An entity's position, size,
// and orientation live entirely in its Transform, and the same Transform
// is what the renderer uploads to the GPU and what the collision routines
// intersect. Sub-packages build on these types:
//
//   - render: wgpu-backed rendering system and per-frame drawer
//   - app: loading-state rendezvous and input tracking
//   - audio: async-loading audio playback
//   - game: a Pong game built on the engine
//
// The package produces no log output by default. Call [SetLogger] to
// enable logging for the engine and all sub-packages.
package webengine
