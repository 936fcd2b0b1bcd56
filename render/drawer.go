package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/mkualquiera/webengine"
)

// Drawer records one frame's draws against a specific target view. It is
// created by RenderingSystem.Render, lives for exactly one frame, and is
// single-threaded like the rest of the render loop.
//
// Recorded passes accumulate as command buffers in recording order and
// are submitted together by Flush. The transform and color uniforms are
// shared registers, so SetColor and ApplyTransform flush all pending
// buffers before writing: a draw recorded earlier must never observe a
// value written later. Together with in-order submission this guarantees
// each draw sees exactly the transform and color that were current when
// it was recorded.
type Drawer struct {
	r       *RenderingSystem
	view    hal.TextureView
	pending []hal.CommandBuffer
}

// newDrawer creates a Drawer for one frame against the given target view.
func newDrawer(r *RenderingSystem, view hal.TextureView) *Drawer {
	return &Drawer{r: r, view: view}
}

// Clear records a render pass that clears the target to the given color,
// with no draw commands.
func (d *Drawer) Clear(c webengine.Color) error {
	encoder, err := d.beginEncoder("clear")
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.GPUColor(),
		}},
	})
	rp.End()
	return d.finishEncoder(encoder)
}

// SetColor writes the shared color register. All pending command buffers
// are flushed first so previously recorded draws keep the color they were
// issued with.
func (d *Drawer) SetColor(c webengine.Color) error {
	if err := d.Flush(); err != nil {
		return err
	}
	d.r.dev.queue.WriteBuffer(d.r.colorBuf, 0, c.Bytes())
	return nil
}

// ApplyTransform writes the shared transform register, flushing pending
// draws first under the same discipline as SetColor. Callers typically
// pass a projection pre-multiplied with the entity transform.
func (d *Drawer) ApplyTransform(t webengine.Transform) error {
	if err := d.Flush(); err != nil {
		return err
	}
	d.r.dev.queue.WriteBuffer(d.r.transformBuf, 0, t.Bytes())
	return nil
}

// DrawGeometry records one indexed draw of the given buffers. A nil
// transform applies the system's current pixel-space projection; a nil
// color applies opaque white. The pass loads the existing target contents
// so earlier draws and clears show through.
func (d *Drawer) DrawGeometry(verts, indices *MeshBuffer, indexCount uint32, transform *webengine.Transform, color *webengine.Color) error {
	t := d.r.projection
	if transform != nil {
		t = *transform
	}
	if err := d.ApplyTransform(t); err != nil {
		return err
	}
	c := webengine.White
	if color != nil {
		c = *color
	}
	if err := d.SetColor(c); err != nil {
		return err
	}

	encoder, err := d.beginEncoder("draw_geometry")
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "geometry_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    d.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(d.r.pipeline)
	rp.SetBindGroup(0, d.r.transformBind, nil)
	rp.SetBindGroup(1, d.r.colorBind, nil)
	rp.SetVertexBuffer(0, verts.buf, 0)
	rp.SetIndexBuffer(indices.buf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(indexCount, 1, 0, 0, 0)
	rp.End()
	return d.finishEncoder(encoder)
}

// DrawSquare draws the shared unit-square mesh; see DrawGeometry for the
// transform and color defaults.
func (d *Drawer) DrawSquare(transform *webengine.Transform, color *webengine.Color) error {
	return d.DrawGeometry(d.r.squareVerts, d.r.squareIdx, squareIndexCount, transform, color)
}

// Flush submits every pending command buffer in recording order, waits
// for the GPU to finish them, and clears the pending list. Render calls
// it implicitly after the scene callback; the uniform writers call it
// before touching shared registers.
func (d *Drawer) Flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	pending := d.pending
	d.pending = nil
	defer func() {
		for _, cb := range pending {
			d.r.dev.dev.FreeCommandBuffer(cb)
		}
	}()

	if _, err := d.r.dev.queue.Submit(pending); err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}
	// The HAL fences submissions internally; idling the device guarantees
	// every submitted draw has finished before the shared registers change.
	if err := d.r.dev.dev.WaitIdle(); err != nil {
		return fmt.Errorf("render: wait for GPU: %w", err)
	}
	return nil
}

// PendingCount returns the number of recorded, unsubmitted command
// buffers.
func (d *Drawer) PendingCount() int {
	return len(d.pending)
}

// discard drops any still-pending command buffers without submitting
// them. Called when a frame is abandoned mid-record.
func (d *Drawer) discard() {
	for _, cb := range d.pending {
		d.r.dev.dev.FreeCommandBuffer(cb)
	}
	d.pending = nil
}

// beginEncoder creates a command encoder and opens it for recording.
func (d *Drawer) beginEncoder(label string) (hal.CommandEncoder, error) {
	encoder, err := d.r.dev.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create %s encoder: %w", label, err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("render: begin %s encoding: %w", label, err)
	}
	return encoder, nil
}

// finishEncoder closes the encoder and appends its command buffer to the
// pending list.
func (d *Drawer) finishEncoder(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("render: end encoding: %w", err)
	}
	d.pending = append(d.pending, cmdBuf)
	return nil
}
