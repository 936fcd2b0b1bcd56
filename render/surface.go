package render

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrSurfaceLost signals the surface must be reconfigured before the
	// next frame. RenderingSystem.Render recovers from it automatically.
	ErrSurfaceLost = errors.New("render: surface lost")

	// ErrSurfaceOutOfMemory signals the backend cannot allocate the next
	// frame. There is no recovery; callers must shut down.
	ErrSurfaceOutOfMemory = errors.New("render: surface out of memory")

	// ErrSurfaceTimeout signals frame acquisition timed out. The frame is
	// dropped and the loop continues.
	ErrSurfaceTimeout = errors.New("render: surface acquire timeout")
)

// Surface is the presentation boundary between the engine and its host.
// A windowed host wraps its swapchain in a Surface; offscreen use goes
// through TextureSurface.
type Surface interface {
	// Configure sizes (or resizes) the surface. Implementations must
	// accept repeated calls with the same dimensions.
	Configure(width, height uint32) error

	// Acquire returns the frame to render into next, or one of the
	// surface errors above.
	Acquire() (Frame, error)

	// Format returns the texture format render pipelines must target.
	Format() gputypes.TextureFormat

	// Size returns the configured dimensions.
	Size() (width, height uint32)

	// Destroy releases surface resources.
	Destroy()
}

// Frame is one acquired presentable image.
type Frame interface {
	// View returns the texture view draws target this frame.
	View() hal.TextureView

	// Present hands the finished frame to the host for display.
	Present() error
}

// TextureSurface is an offscreen Surface backed by a BGRA8 render texture.
// Present is a no-op; ReadPixels copies the texture back to the CPU. The
// demo binary and the render tests use it in place of a window.
type TextureSurface struct {
	dev    *Device
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// NewTextureSurface creates an offscreen surface with no backing texture
// yet; Configure allocates it.
func NewTextureSurface(dev *Device) *TextureSurface {
	return &TextureSurface{dev: dev}
}

// Configure allocates (or reallocates) the render texture at the given
// size. A matching size keeps the existing texture.
func (s *TextureSurface) Configure(width, height uint32) error {
	if s.tex != nil && width == s.width && height == s.height {
		return nil
	}
	s.Destroy()

	tex, err := s.dev.dev.CreateTexture(&hal.TextureDescriptor{
		Label: "offscreen_target",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("render: create offscreen texture: %w", err)
	}
	view, err := s.dev.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "offscreen_target_view",
	})
	if err != nil {
		s.dev.dev.DestroyTexture(tex)
		return fmt.Errorf("render: create offscreen view: %w", err)
	}

	s.tex = tex
	s.view = view
	s.width = width
	s.height = height
	return nil
}

// Acquire returns the offscreen frame. The same view is handed out every
// frame; draws accumulate until ReadPixels.
func (s *TextureSurface) Acquire() (Frame, error) {
	if s.view == nil {
		return nil, ErrSurfaceLost
	}
	return textureFrame{view: s.view}, nil
}

// Format returns the offscreen texture format.
func (s *TextureSurface) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// Size returns the configured dimensions.
func (s *TextureSurface) Size() (uint32, uint32) {
	return s.width, s.height
}

// Destroy releases the texture and view. Safe to call repeatedly.
func (s *TextureSurface) Destroy() {
	if s.view != nil {
		s.dev.dev.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		s.dev.dev.DestroyTexture(s.tex)
		s.tex = nil
	}
	s.width = 0
	s.height = 0
}

// ReadPixels copies the current texture contents into an RGBA image. The
// copy goes through a staging buffer with rows aligned to the 256-byte
// copy pitch the backends require, then converts BGRA to RGBA.
func (s *TextureSurface) ReadPixels() (*image.RGBA, error) {
	if s.tex == nil {
		return nil, ErrSurfaceLost
	}
	w, h := s.width, s.height

	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := s.dev.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "offscreen_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create staging buffer: %w", err)
	}
	defer s.dev.dev.DestroyBuffer(staging)

	encoder, err := s.dev.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "offscreen_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("render: create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("offscreen_readback"); err != nil {
		return nil, fmt.Errorf("render: begin readback encoding: %w", err)
	}

	// The render passes leave the texture as a render attachment; the copy
	// needs it as a transfer source. No-op on backends without layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(s.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("render: end readback encoding: %w", err)
	}
	defer s.dev.dev.FreeCommandBuffer(cmdBuf)

	if _, err := s.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("render: submit readback: %w", err)
	}
	// The mapping below is only valid once the copy has retired.
	if err := s.dev.dev.WaitIdle(); err != nil {
		return nil, fmt.Errorf("render: wait for readback: %w", err)
	}

	mapping, err := s.dev.dev.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("render: map staging buffer: %w", err)
	}
	defer s.dev.dev.UnmapBuffer(staging) //nolint:errcheck // read-only mapping
	readback := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := uint32(0); row < h; row++ {
		src := readback[uint64(row)*uint64(alignedBytesPerRow):]
		dst := img.Pix[int(row)*img.Stride:]
		for x := uint32(0); x < w; x++ {
			// BGRA in the staging buffer, RGBA in the image.
			dst[x*4+0] = src[x*4+2]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+0]
			dst[x*4+3] = src[x*4+3]
		}
	}
	return img, nil
}

// textureFrame is the Frame handed out by TextureSurface.
type textureFrame struct {
	view hal.TextureView
}

func (f textureFrame) View() hal.TextureView { return f.view }

// Present is a no-op for offscreen rendering.
func (textureFrame) Present() error { return nil }
