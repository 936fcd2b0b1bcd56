package webengine

import (
	"github.com/gogpu/gputypes"
)

// ColorByteSize is the size of a serialized Color: 4 float32 values,
// matching a vec4<f32> uniform in WGSL.
const ColorByteSize = 16

// Color is an RGBA color with float32 components in [0, 1], the form the
// GPU consumes directly.
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Bytes returns the color as 16 bytes: 4 little-endian float32 values,
// ready for a uniform buffer write.
func (c Color) Bytes() []byte {
	buf := make([]byte, ColorByteSize)
	putFloat32(buf, 0, c.R)
	putFloat32(buf, 4, c.G)
	putFloat32(buf, 8, c.B)
	putFloat32(buf, 12, c.A)
	return buf
}

// GPUColor converts the color to the descriptor form used for render pass
// clear values.
func (c Color) GPUColor() gputypes.Color {
	return gputypes.Color{
		R: float64(c.R),
		G: float64(c.G),
		B: float64(c.B),
		A: float64(c.A),
	}
}

// Lerp performs linear interpolation between two colors.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Common colors
var (
	Black  = RGB(0, 0, 0)
	White  = RGB(1, 1, 1)
	Red    = RGB(1, 0, 0)
	Green  = RGB(0, 1, 0)
	Blue   = RGB(0, 0, 1)
	Yellow = RGB(1, 1, 0)
	Purple = RGB(0.5, 0, 0.5)
)
