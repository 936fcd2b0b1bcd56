package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/mkualquiera/webengine"
)

func TestTextureSurfaceConfigure(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	defer s.Destroy()

	if err := s.Configure(128, 96); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	w, h := s.Size()
	if w != 128 || h != 96 {
		t.Errorf("Size() = %dx%d, want 128x96", w, h)
	}
	if s.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", s.Format())
	}
}

func TestTextureSurfaceConfigureSameSizeKeepsTexture(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	defer s.Destroy()

	if err := s.Configure(64, 64); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	tex := s.tex
	if err := s.Configure(64, 64); err != nil {
		t.Fatalf("second Configure failed: %v", err)
	}
	if s.tex != tex {
		t.Error("Configure with matching size should keep the texture")
	}

	// Handle identity is not observable across backends (the noop backend
	// hands out indistinguishable zero-size structs), so reallocation is
	// verified through the stored dimensions instead.
	if err := s.Configure(32, 32); err != nil {
		t.Fatalf("resizing Configure failed: %v", err)
	}
	w, h := s.Size()
	if w != 32 || h != 32 {
		t.Errorf("Size() after resizing Configure = %dx%d, want 32x32", w, h)
	}
	if s.tex == nil || s.view == nil {
		t.Error("resizing Configure should leave a live texture and view")
	}
}

func TestTextureSurfaceAcquireBeforeConfigure(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	if _, err := s.Acquire(); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("Acquire before Configure = %v, want ErrSurfaceLost", err)
	}
}

func TestTextureSurfaceAcquirePresent(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	defer s.Destroy()
	if err := s.Configure(64, 64); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	frame, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if frame.View() == nil {
		t.Error("frame View() = nil")
	}
	if err := frame.Present(); err != nil {
		t.Errorf("Present failed: %v", err)
	}
}

func TestTextureSurfaceReadPixels(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 70, 50)
	defer cleanup()

	err := rs.Render(func(d *Drawer) error {
		return d.Clear(webengine.Purple)
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// 70*4 = 280 bytes per row forces padded staging rows, exercising the
	// 256-byte alignment stripping.
	img, err := surface.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 70 || bounds.Dy() != 50 {
		t.Errorf("image bounds = %dx%d, want 70x50", bounds.Dx(), bounds.Dy())
	}
}

func TestTextureSurfaceReadPixelsBeforeConfigure(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	if _, err := s.ReadPixels(); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("ReadPixels before Configure = %v, want ErrSurfaceLost", err)
	}
}

func TestTextureSurfaceDestroyIdempotent(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewTextureSurface(dev)
	if err := s.Configure(16, 16); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	s.Destroy()
	s.Destroy()
	w, h := s.Size()
	if w != 0 || h != 0 {
		t.Errorf("Size() after Destroy = %dx%d, want 0x0", w, h)
	}
}
