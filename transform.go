package webengine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformByteSize is the size of a serialized Transform: 16 float32
// values, matching a mat4x4<f32> uniform in WGSL.
const TransformByteSize = 64

// Transform is an immutable affine transformation of the unit square.
// It wraps a 4x4 column-major float32 matrix together with its serialized
// form, computed once at construction so that uploading the transform to a
// uniform buffer every frame costs nothing beyond the copy.
//
// Builder methods (Translate, Rotate, Scale) right-multiply, so they
// compose in local space: the last builder called applies first to points.
//
//	t := Identity().Translate(2, 0, 0).Scale(3, 3, 1)
//
// scales a point by 3, then translates it by 2.
type Transform struct {
	mat mgl32.Mat4
	raw [TransformByteSize]byte
}

// newTransform builds a Transform from a matrix and caches its byte form.
func newTransform(m mgl32.Mat4) Transform {
	t := Transform{mat: m}
	// mgl32.Mat4 is stored column-major, which is also the WGSL uniform
	// layout, so serialization is a straight little-endian dump.
	for i, f := range m {
		putFloat32(t.raw[:], i*4, f)
	}
	return t
}

// Identity returns the identity transform.
func Identity() Transform {
	return newTransform(mgl32.Ident4())
}

// FromMatrix builds a Transform from an arbitrary 4x4 matrix.
func FromMatrix(m mgl32.Mat4) Transform {
	return newTransform(m)
}

// Orthographic returns a pixel-space orthographic projection: x spans
// [0, width] left to right, y spans [0, height] top to bottom, with a
// generous depth range so 2D content never clips.
func Orthographic(width, height float32) Transform {
	return newTransform(mgl32.Ortho(0, width, height, 0, -100, 100))
}

// OrthographicSizeInvariant returns a projection in which the unit square
// exactly fills the viewport regardless of its pixel size. Game logic that
// renders through it works in normalized [0,1] coordinates and survives
// window resizes untouched.
func OrthographicSizeInvariant() Transform {
	return newTransform(mgl32.Ortho(0, 1, 1, 0, -100, 100))
}

// Matrix returns the underlying 4x4 matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	return t.mat
}

// Translate returns the transform right-multiplied by a translation.
func (t Transform) Translate(x, y, z float32) Transform {
	return newTransform(t.mat.Mul4(mgl32.Translate3D(x, y, z)))
}

// Rotate returns the transform right-multiplied by a rotation of angle
// radians around axis.
func (t Transform) Rotate(angle float32, axis mgl32.Vec3) Transform {
	return newTransform(t.mat.Mul4(mgl32.HomogRotate3D(angle, axis)))
}

// Scale returns the transform right-multiplied by a scale.
func (t Transform) Scale(x, y, z float32) Transform {
	return newTransform(t.mat.Mul4(mgl32.Scale3D(x, y, z)))
}

// Mul returns t * other, treating other as a child space of t.
func (t Transform) Mul(other Transform) Transform {
	return newTransform(t.mat.Mul4(other.mat))
}

// Project maps a point through the transform. The point is extended with
// w=1 and the result truncated back to three components; there is no
// perspective divide.
func (t Transform) Project(p mgl32.Vec3) mgl32.Vec3 {
	return t.mat.Mul4x1(p.Vec4(1)).Vec3()
}

// MapTowards re-expresses this transform's space in the local coordinates
// of other. Projecting a point through the result yields where that point
// of t's unit square lands inside other's unit square.
func (t Transform) MapTowards(other Transform) Transform {
	return newTransform(other.mat.Inv().Mul4(t.mat))
}

// Bytes returns the cached 64-byte serialized matrix: 16 little-endian
// float32 values in column-major order, ready for a uniform buffer write.
func (t *Transform) Bytes() []byte {
	return t.raw[:]
}

// putUint32 writes a little-endian uint32 at offset.
func putUint32(buf []byte, offset int, val uint32) {
	buf[offset] = byte(val)
	buf[offset+1] = byte(val >> 8)
	buf[offset+2] = byte(val >> 16)
	buf[offset+3] = byte(val >> 24)
}

// putFloat32 writes a little-endian float32 at offset.
func putFloat32(buf []byte, offset int, val float32) {
	putUint32(buf, offset, math.Float32bits(val))
}
