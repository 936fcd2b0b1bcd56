// Package render implements the engine's GPU rendering layer on top of
// wgpu/hal: device acquisition, the fixed colored-geometry pipeline, and a
// per-frame Drawer that records ordered command buffers.
//
// The renderer draws transformed unit squares (and arbitrary indexed
// geometry) through one pipeline with two shared uniform registers: the
// current transform and the current draw color. Because the registers are
// shared across every draw of a frame, writing them flushes all pending
// command buffers first; see [Drawer] for the ordering contract.
//
// Presentation is abstracted behind the [Surface] interface so the package
// works both against a host window surface and fully offscreen (see
// [TextureSurface], which tests and the demo binary use).
package render
