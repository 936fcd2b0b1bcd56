package render

// engineShaderWGSL is the engine's one fixed shader program: a per-vertex
// position and color, a uniform transform at group 0 visible to the vertex
// stage, and a uniform draw color at group 1 visible to the fragment
// stage. The fragment output is the vertex color modulated by the draw
// color.
const engineShaderWGSL = `
struct TransformUniform {
    matrix: mat4x4<f32>,
};

@group(0) @binding(0)
var<uniform> transform: TransformUniform;

struct ColorUniform {
    color: vec4<f32>,
};

@group(1) @binding(1)
var<uniform> draw_color: ColorUniform;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.color = in.color;
    out.clip_position = transform.matrix * vec4<f32>(in.position, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0) * draw_color.color;
}
`
