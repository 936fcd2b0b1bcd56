package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Vertex is one vertex of engine geometry: a position and a vertex color,
// matching the pipeline's (3xf32, 3xf32) input layout.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// vertexStride is the byte size of one Vertex on the GPU.
const vertexStride = 24

// copyBufferAlignment is the minimum buffer copy alignment; upload sizes
// are rounded up to a multiple of it.
const copyBufferAlignment = 4

// MeshBuffer is an upload-once immutable GPU buffer holding vertex or
// index data. Padding bytes past the logical payload are zero; callers
// must not read past Len.
type MeshBuffer struct {
	buf hal.Buffer

	// Len is the logical payload size in bytes, before alignment padding.
	Len int
}

// Destroy releases the GPU buffer.
func (m *MeshBuffer) Destroy(dev *Device) {
	if m.buf != nil {
		dev.dev.DestroyBuffer(m.buf)
		m.buf = nil
	}
}

// CreateVertexBuffer uploads vertices into an immutable GPU buffer.
func (r *RenderingSystem) CreateVertexBuffer(vertices []Vertex) (*MeshBuffer, error) {
	data := make([]byte, len(vertices)*vertexStride)
	for i, v := range vertices {
		off := i * vertexStride
		writeFloat32(data, off+0, v.Position[0])
		writeFloat32(data, off+4, v.Position[1])
		writeFloat32(data, off+8, v.Position[2])
		writeFloat32(data, off+12, v.Color[0])
		writeFloat32(data, off+16, v.Color[1])
		writeFloat32(data, off+20, v.Color[2])
	}
	return r.createMeshBuffer("vertex_buffer", data, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
}

// CreateIndexBuffer uploads 16-bit indices into an immutable GPU buffer.
func (r *RenderingSystem) CreateIndexBuffer(indices []uint16) (*MeshBuffer, error) {
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		data[i*2] = byte(idx)
		data[i*2+1] = byte(idx >> 8)
	}
	return r.createMeshBuffer("index_buffer", data, gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
}

// createMeshBuffer creates a GPU buffer sized to the aligned payload and
// uploads the data through the queue.
func (r *RenderingSystem) createMeshBuffer(label string, data []byte, usage gputypes.BufferUsage) (*MeshBuffer, error) {
	payload := len(data)
	aligned := (payload + copyBufferAlignment - 1) &^ (copyBufferAlignment - 1)
	if aligned > payload {
		data = append(data, make([]byte, aligned-payload)...)
	}

	buf, err := r.dev.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(aligned),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create %s: %w", label, err)
	}
	r.dev.queue.WriteBuffer(buf, 0, data)
	return &MeshBuffer{buf: buf, Len: payload}, nil
}

// writeUint32 writes a little-endian uint32 at offset.
func writeUint32(buf []byte, offset int, val uint32) {
	buf[offset] = byte(val)
	buf[offset+1] = byte(val >> 8)
	buf[offset+2] = byte(val >> 16)
	buf[offset+3] = byte(val >> 24)
}

// writeFloat32 writes a little-endian float32 at offset.
func writeFloat32(buf []byte, offset int, val float32) {
	writeUint32(buf, offset, math.Float32bits(val))
}
