package webengine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// float32Epsilon is the smallest float32 x such that 1+x != 1. Segment
// pairs whose determinant magnitude is below this are treated as parallel.
const float32Epsilon = 1.1920929e-07

// Corner identifies a corner of the unit square.
type Corner int

// Corners in drawing order.
const (
	CornerTopLeft Corner = iota
	CornerBottomLeft
	CornerBottomRight
	CornerTopRight
)

// Edge identifies an edge of the unit square.
type Edge int

// Edges of the unit square.
const (
	EdgeTop Edge = iota
	EdgeLeft
	EdgeBottom
	EdgeRight
)

// unitSquareCorners holds the local coordinates of the unit square's
// corners, indexed by Corner.
var unitSquareCorners = [4]mgl32.Vec3{
	CornerTopLeft:     {0, 0, 0},
	CornerBottomLeft:  {0, 1, 0},
	CornerBottomRight: {1, 1, 0},
	CornerTopRight:    {1, 0, 0},
}

// unitSquareEdges maps each Edge to the pair of corners bounding it.
var unitSquareEdges = [4][2]Corner{
	EdgeTop:    {CornerTopLeft, CornerTopRight},
	EdgeLeft:   {CornerTopLeft, CornerBottomLeft},
	EdgeBottom: {CornerBottomLeft, CornerBottomRight},
	EdgeRight:  {CornerTopRight, CornerBottomRight},
}

// CollisionInfo describes every contact found between two spaces A and B.
// It is a pure computed value, built by DoSpacesCollide and discarded after
// one use.
type CollisionInfo struct {
	// AVerticesInB and BVerticesInA flag, per corner, whether that corner
	// of one space lies inside the other space's unit square.
	AVerticesInB [4]bool
	BVerticesInA [4]bool

	// EdgeIntersections lists, keyed by A's edge identity, the world-space
	// points where that edge of A crosses any edge of B.
	EdgeIntersections [4][]mgl32.Vec3

	// AInsideB and BInsideA report full containment: every corner of one
	// space inside the other.
	AInsideB bool
	BInsideA bool
}

// HasCollision reports whether any contact signal is set: a contained
// vertex, an edge intersection, or full containment either way.
func (ci *CollisionInfo) HasCollision() bool {
	if ci.AInsideB || ci.BInsideA {
		return true
	}
	for i := range 4 {
		if ci.AVerticesInB[i] || ci.BVerticesInA[i] {
			return true
		}
		if len(ci.EdgeIntersections[i]) > 0 {
			return true
		}
	}
	return false
}

// IntersectionPoints returns every edge-intersection point across all four
// of A's edges as one flattened list, in edge order.
func (ci *CollisionInfo) IntersectionPoints() []mgl32.Vec3 {
	var points []mgl32.Vec3
	for i := range 4 {
		points = append(points, ci.EdgeIntersections[i]...)
	}
	return points
}

// DoSpacesCollide tests two transformed unit squares for contact. Returns
// nil when no contact signal is present, otherwise a fully populated
// CollisionInfo.
//
// Contact is detected three ways. Corner containment maps each corner of
// one square into the other's local frame, reducing the oriented test to
// an axis-aligned range check; bounds are inclusive, so touching counts.
// Edge intersection tests all 4x4 boundary-segment pairs in world space
// with the parametric determinant form; a determinant magnitude below f32
// epsilon means parallel and never intersects, so collinear overlapping
// edges report nothing (a documented limitation). Full containment holds
// when all four corners of one square are inside the other.
func DoSpacesCollide(a, b Transform) *CollisionInfo {
	info := &CollisionInfo{}

	aInB := a.MapTowards(b)
	bInA := b.MapTowards(a)
	info.AInsideB = true
	info.BInsideA = true
	for c, corner := range unitSquareCorners {
		if p := aInB.Project(corner); insideUnitSquare(p) {
			info.AVerticesInB[c] = true
		} else {
			info.AInsideB = false
		}
		if p := bInA.Project(corner); insideUnitSquare(p) {
			info.BVerticesInA[c] = true
		} else {
			info.BInsideA = false
		}
	}

	var ca, cb [4]mgl32.Vec3
	for c, corner := range unitSquareCorners {
		ca[c] = a.Project(corner)
		cb[c] = b.Project(corner)
	}
	for ae, aPair := range unitSquareEdges {
		a0, a1 := ca[aPair[0]], ca[aPair[1]]
		for _, bPair := range unitSquareEdges {
			b0, b1 := cb[bPair[0]], cb[bPair[1]]
			if p, ok := intersectSegments(a0, a1, b0, b1); ok {
				info.EdgeIntersections[ae] = append(info.EdgeIntersections[ae], p)
			}
		}
	}

	if !info.HasCollision() {
		return nil
	}
	return info
}

// insideUnitSquare reports whether a point lies in [0,1]x[0,1], bounds
// inclusive.
func insideUnitSquare(p mgl32.Vec3) bool {
	return p.X() >= 0 && p.X() <= 1 && p.Y() >= 0 && p.Y() <= 1
}

// intersectSegments computes the intersection of segments p0-p1 and q0-q1
// using the parametric determinant form, requiring both parameters in
// [0,1] inclusive. Segments whose determinant is within float32Epsilon of
// zero are parallel and never intersect, even when collinear.
func intersectSegments(p0, p1, q0, q1 mgl32.Vec3) (mgl32.Vec3, bool) {
	x1, y1 := p0.X(), p0.Y()
	x2, y2 := p1.X(), p1.Y()
	x3, y3 := q0.X(), q0.Y()
	x4, y4 := q1.X(), q1.Y()

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom <= float32Epsilon && denom >= -float32Epsilon {
		return mgl32.Vec3{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return mgl32.Vec3{}, false
	}

	return mgl32.Vec3{x1 + t*(x2-x1), y1 + t*(y2-y1), 0}, true
}
