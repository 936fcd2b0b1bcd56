package webengine

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestColorBytes(t *testing.T) {
	c := Color{R: 0.25, G: 0.5, B: 0.75, A: 1}
	raw := c.Bytes()
	if len(raw) != ColorByteSize {
		t.Fatalf("Bytes() length = %d, want %d", len(raw), ColorByteSize)
	}
	want := []float32{0.25, 0.5, 0.75, 1}
	for i, w := range want {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		if got := math.Float32frombits(bits); got != w {
			t.Errorf("Bytes()[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestRGBIsOpaque(t *testing.T) {
	c := RGB(0.1, 0.2, 0.3)
	if c.A != 1 {
		t.Errorf("RGB alpha = %v, want 1", c.A)
	}
}

func TestGPUColor(t *testing.T) {
	got := Red.GPUColor()
	if got.R != 1 || got.G != 0 || got.B != 0 || got.A != 1 {
		t.Errorf("Red.GPUColor() = %+v, want (1,0,0,1)", got)
	}
}

func TestColorLerp(t *testing.T) {
	tests := []struct {
		name string
		t    float32
		want Color
	}{
		{"start", 0, Black},
		{"end", 1, White},
		{"midpoint", 0.5, Color{R: 0.5, G: 0.5, B: 0.5, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Black.Lerp(White, tt.t)
			if got != tt.want {
				t.Errorf("Lerp(%v) = %+v, want %+v", tt.t, got, tt.want)
			}
		})
	}
}
