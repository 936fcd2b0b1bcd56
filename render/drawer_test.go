package render

import (
	"testing"

	"github.com/mkualquiera/webengine"
)

func TestDrawerClearAppendsPending(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 64, 64)
	defer cleanup()

	frame, err := surface.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	d := newDrawer(rs, frame.View())
	defer d.discard()

	if err := d.Clear(webengine.Black); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := d.PendingCount(); got != 1 {
		t.Errorf("PendingCount after Clear = %d, want 1", got)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := d.PendingCount(); got != 0 {
		t.Errorf("PendingCount after Flush = %d, want 0", got)
	}
}

func TestDrawerFlushEmptyIsNoOp(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 64, 64)
	defer cleanup()

	frame, err := surface.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	d := newDrawer(rs, frame.View())

	if err := d.Flush(); err != nil {
		t.Errorf("Flush with nothing pending failed: %v", err)
	}
}

func TestDrawerUniformWritesFlushPendingDraws(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 64, 64)
	defer cleanup()

	frame, err := surface.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	d := newDrawer(rs, frame.View())
	defer d.discard()

	if err := d.Clear(webengine.Black); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if d.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", d.PendingCount())
	}

	// Writing a shared register must submit the recorded clear first, so
	// the pending list drains.
	if err := d.SetColor(webengine.Red); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if got := d.PendingCount(); got != 0 {
		t.Errorf("PendingCount after SetColor = %d, want 0 (flushed)", got)
	}

	if err := d.DrawSquare(nil, nil); err != nil {
		t.Fatalf("DrawSquare failed: %v", err)
	}
	if got := d.PendingCount(); got != 1 {
		t.Errorf("PendingCount after DrawSquare = %d, want 1", got)
	}

	proj := webengine.OrthographicSizeInvariant()
	if err := d.ApplyTransform(proj); err != nil {
		t.Fatalf("ApplyTransform failed: %v", err)
	}
	if got := d.PendingCount(); got != 0 {
		t.Errorf("PendingCount after ApplyTransform = %d, want 0 (flushed)", got)
	}
}

func TestDrawerInterleavedColorsSubmitInOrder(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 64, 64)
	defer cleanup()

	frame, err := surface.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	d := newDrawer(rs, frame.View())
	defer d.discard()

	// set_color(RED), draw, set_color(BLUE), draw, flush: each color
	// write drains the previous draw, so the red draw is on the GPU
	// before the register turns blue.
	if err := d.SetColor(webengine.Red); err != nil {
		t.Fatalf("SetColor(Red) failed: %v", err)
	}
	red := webengine.Red
	proj := webengine.OrthographicSizeInvariant()
	if err := d.DrawSquare(&proj, &red); err != nil {
		t.Fatalf("DrawSquare(red) failed: %v", err)
	}
	if d.PendingCount() != 1 {
		t.Fatalf("PendingCount after red draw = %d, want 1", d.PendingCount())
	}

	blue := webengine.Blue
	if err := d.DrawSquare(&proj, &blue); err != nil {
		t.Fatalf("DrawSquare(blue) failed: %v", err)
	}
	// The blue draw's uniform writes flushed the red draw; only the blue
	// pass remains pending.
	if d.PendingCount() != 1 {
		t.Fatalf("PendingCount after blue draw = %d, want 1", d.PendingCount())
	}

	if err := d.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount after Flush = %d, want 0", d.PendingCount())
	}
}

func TestDrawGeometryWithCustomMesh(t *testing.T) {
	rs, surface, cleanup := createTestSystem(t, 64, 64)
	defer cleanup()

	verts, err := rs.CreateVertexBuffer([]Vertex{
		{Position: [3]float32{0, 0, 0}, Color: [3]float32{1, 0, 0}},
		{Position: [3]float32{1, 0, 0}, Color: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 1, 0}, Color: [3]float32{0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("CreateVertexBuffer failed: %v", err)
	}
	defer verts.Destroy(rs.dev)
	idx, err := rs.CreateIndexBuffer([]uint16{0, 1, 2})
	if err != nil {
		t.Fatalf("CreateIndexBuffer failed: %v", err)
	}
	defer idx.Destroy(rs.dev)

	frame, err := surface.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	d := newDrawer(rs, frame.View())
	defer d.discard()

	if err := d.DrawGeometry(verts, idx, 3, nil, nil); err != nil {
		t.Fatalf("DrawGeometry failed: %v", err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}
