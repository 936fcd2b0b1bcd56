package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/mkualquiera/webengine"
)

// squareIndexCount is the index count of the unit-square mesh: two
// triangles wound [0,1,2, 3,0,2].
const squareIndexCount = 6

// RenderingSystem owns the engine's retained GPU state: the surface, the
// fixed colored-geometry pipeline, the shared transform and color uniform
// registers, and the preallocated unit-square mesh.
//
// The uniform buffers are global per-frame registers, not per-draw
// parameters: they hold whatever the most recent ApplyTransform/SetColor
// wrote, which is why the Drawer flushes pending draws before every write.
type RenderingSystem struct {
	dev     *Device
	surface Surface

	shader          hal.ShaderModule
	transformLayout hal.BindGroupLayout
	colorLayout     hal.BindGroupLayout
	pipelineLayout  hal.PipelineLayout
	pipeline        hal.RenderPipeline

	transformBuf  hal.Buffer
	colorBuf      hal.Buffer
	transformBind hal.BindGroup
	colorBind     hal.BindGroup

	squareVerts *MeshBuffer
	squareIdx   *MeshBuffer

	width      uint32
	height     uint32
	projection webengine.Transform
}

// NewRenderingSystem builds the pipeline and shared GPU resources over an
// already-opened device, then configures the surface at the given pixel
// dimensions. Resource-creation failures here indicate a misconfigured
// pipeline and are unrecoverable startup faults.
func NewRenderingSystem(dev *Device, surface Surface, width, height uint32) (*RenderingSystem, error) {
	r := &RenderingSystem{
		dev:        dev,
		surface:    surface,
		projection: webengine.OrthographicSizeInvariant(),
	}
	if err := r.createPipeline(); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.createUniforms(); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.createSquareMesh(); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.Resize(width, height); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// createPipeline compiles the engine shader and builds the fixed render
// pipeline: (pos 3xf32, color 3xf32) vertices, transform uniform at group
// 0 binding 0 (vertex stage), draw color at group 1 binding 1 (fragment
// stage), replace blending, back-face culling, triangle lists.
func (r *RenderingSystem) createPipeline() error {
	spirvBytes, err := naga.Compile(engineShaderWGSL)
	if err != nil {
		return fmt.Errorf("render: compile shader: %w", err)
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shader, err := r.dev.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "engine_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("render: create shader module: %w", err)
	}
	r.shader = shader

	transformLayout, err := r.dev.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "transform_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create transform bind group layout: %w", err)
	}
	r.transformLayout = transformLayout

	colorLayout, err := r.dev.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "color_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create color bind group layout: %w", err)
	}
	r.colorLayout = colorLayout

	pipelineLayout, err := r.dev.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "engine_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.transformLayout, r.colorLayout},
	})
	if err != nil {
		return fmt.Errorf("render: create pipeline layout: %w", err)
	}
	r.pipelineLayout = pipelineLayout

	pipeline, err := r.dev.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "engine_pipeline",
		Layout: r.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{
							Format:         gputypes.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: 0,
						},
						{
							Format:         gputypes.VertexFormatFloat32x3,
							Offset:         12,
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format: r.surface.Format(),
					// Nil blend state means replace.
					Blend:     nil,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: nil,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeBack,
		},
	})
	if err != nil {
		return fmt.Errorf("render: create render pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

// createUniforms allocates the shared transform and color registers and
// their bind groups, seeded with the identity transform and opaque white.
func (r *RenderingSystem) createUniforms() error {
	transformBuf, err := r.dev.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "transform_uniform",
		Size:  webengine.TransformByteSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: create transform uniform: %w", err)
	}
	r.transformBuf = transformBuf
	identity := webengine.Identity()
	r.dev.queue.WriteBuffer(transformBuf, 0, identity.Bytes())

	colorBuf, err := r.dev.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "color_uniform",
		Size:  webengine.ColorByteSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: create color uniform: %w", err)
	}
	r.colorBuf = colorBuf
	r.dev.queue.WriteBuffer(colorBuf, 0, webengine.White.Bytes())

	transformBind, err := r.dev.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "transform_bind",
		Layout: r.transformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: transformBuf.NativeHandle(), Offset: 0, Size: webengine.TransformByteSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create transform bind group: %w", err)
	}
	r.transformBind = transformBind

	colorBind, err := r.dev.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "color_bind",
		Layout: r.colorLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: colorBuf.NativeHandle(), Offset: 0, Size: webengine.ColorByteSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create color bind group: %w", err)
	}
	r.colorBind = colorBind
	return nil
}

// createSquareMesh uploads the shared unit-square vertex and index
// buffers. Corners are wound [0,1,2, 3,0,2] for two triangles.
func (r *RenderingSystem) createSquareMesh() error {
	verts, err := r.CreateVertexBuffer([]Vertex{
		{Position: [3]float32{0, 0, 0}, Color: [3]float32{1, 1, 1}},
		{Position: [3]float32{0, 1, 0}, Color: [3]float32{1, 1, 1}},
		{Position: [3]float32{1, 1, 0}, Color: [3]float32{1, 1, 1}},
		{Position: [3]float32{1, 0, 0}, Color: [3]float32{1, 1, 1}},
	})
	if err != nil {
		return fmt.Errorf("render: create square vertices: %w", err)
	}
	r.squareVerts = verts

	idx, err := r.CreateIndexBuffer([]uint16{0, 1, 2, 3, 0, 2})
	if err != nil {
		return fmt.Errorf("render: create square indices: %w", err)
	}
	r.squareIdx = idx
	return nil
}

// Resize reconfigures the surface at the new dimensions and recomputes the
// pixel-space projection. Zero dimensions are ignored; window minimization
// commonly produces them.
func (r *RenderingSystem) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if err := r.surface.Configure(width, height); err != nil {
		return fmt.Errorf("render: configure surface: %w", err)
	}
	r.width = width
	r.height = height
	r.projection = webengine.Orthographic(float32(width), float32(height))
	return nil
}

// CanonicalResize re-applies the current size, reconfiguring the surface.
// Used to recover from a lost surface.
func (r *RenderingSystem) CanonicalResize() error {
	return r.Resize(r.width, r.height)
}

// Size returns the current surface dimensions.
func (r *RenderingSystem) Size() (uint32, uint32) {
	return r.width, r.height
}

// Projection returns the resolution-dependent pixel-space projection,
// recomputed on every resize.
func (r *RenderingSystem) Projection() webengine.Transform {
	return r.projection
}

// Render runs one frame: acquire the next presentable image, hand a
// Drawer to the scene callback, flush, and present.
//
// A lost surface is recovered by reconfiguring and retrying the acquire
// once. Out-of-memory propagates to the caller, which must terminate. Any
// other acquisition error is logged and the frame dropped.
func (r *RenderingSystem) Render(scene func(*Drawer) error) error {
	frame, err := r.surface.Acquire()
	if errors.Is(err, ErrSurfaceLost) {
		webengine.Logger().Warn("render: surface lost, reconfiguring")
		if rerr := r.CanonicalResize(); rerr != nil {
			return rerr
		}
		frame, err = r.surface.Acquire()
	}
	if err != nil {
		if errors.Is(err, ErrSurfaceOutOfMemory) {
			return err
		}
		webengine.Logger().Warn("render: frame acquisition failed, dropping frame", "err", err)
		return nil
	}

	drawer := newDrawer(r, frame.View())
	defer drawer.discard()

	if err := scene(drawer); err != nil {
		return fmt.Errorf("render: scene callback: %w", err)
	}
	if err := drawer.Flush(); err != nil {
		return err
	}
	return frame.Present()
}

// Destroy releases every GPU resource the system owns. Safe to call on a
// partially constructed system.
func (r *RenderingSystem) Destroy() {
	if r.squareIdx != nil {
		r.squareIdx.Destroy(r.dev)
		r.squareIdx = nil
	}
	if r.squareVerts != nil {
		r.squareVerts.Destroy(r.dev)
		r.squareVerts = nil
	}
	if r.colorBind != nil {
		r.dev.dev.DestroyBindGroup(r.colorBind)
		r.colorBind = nil
	}
	if r.transformBind != nil {
		r.dev.dev.DestroyBindGroup(r.transformBind)
		r.transformBind = nil
	}
	if r.colorBuf != nil {
		r.dev.dev.DestroyBuffer(r.colorBuf)
		r.colorBuf = nil
	}
	if r.transformBuf != nil {
		r.dev.dev.DestroyBuffer(r.transformBuf)
		r.transformBuf = nil
	}
	if r.pipeline != nil {
		r.dev.dev.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipelineLayout != nil {
		r.dev.dev.DestroyPipelineLayout(r.pipelineLayout)
		r.pipelineLayout = nil
	}
	if r.colorLayout != nil {
		r.dev.dev.DestroyBindGroupLayout(r.colorLayout)
		r.colorLayout = nil
	}
	if r.transformLayout != nil {
		r.dev.dev.DestroyBindGroupLayout(r.transformLayout)
		r.transformLayout = nil
	}
	if r.shader != nil {
		r.dev.dev.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}
