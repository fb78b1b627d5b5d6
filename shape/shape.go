// Package shape holds the convex shapes consumed by the narrow phase.
//
// A shape is a list of vertices in its local frame plus an affine transform. The
// transform is applied lazily, per support query, so moving a shape only means
// updating its matrix. Shapes are never mutated by a collision query.
package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hull is a convex polyhedron: local-space vertices and a 4x4 affine transform.
// The transform is held by pointer so that callers may share it with the body that
// owns the shape (see NewHullRef).
type Hull struct {
	Vertices  []mgl64.Vec3
	Transform *mgl64.Mat4
}

// NewHull creates a hull owning a copy of transform.
func NewHull(vertices []mgl64.Vec3, transform mgl64.Mat4) *Hull {
	t := transform
	return &Hull{Vertices: vertices, Transform: &t}
}

// NewHullRef creates a hull borrowing transform. Later writes through the pointer
// move the hull.
func NewHullRef(vertices []mgl64.Vec3, transform *mgl64.Mat4) *Hull {
	return &Hull{Vertices: vertices, Transform: transform}
}

// WorldVertex returns vertex i in world space.
func (h *Hull) WorldVertex(i int) mgl64.Vec3 {
	if h.Transform == nil {
		return h.Vertices[i]
	}
	return h.Transform.Mul4x1(h.Vertices[i].Vec4(1)).Vec3()
}

// Support returns the world-space vertex with the largest projection on direction.
// Ties keep the first vertex encountered. An empty hull supports the origin.
func (h *Hull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if len(h.Vertices) == 0 {
		return mgl64.Vec3{}
	}

	best := h.WorldVertex(0)
	bestDot := best.Dot(direction)
	for i := 1; i < len(h.Vertices); i++ {
		v := h.WorldVertex(i)
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}

	return best
}

// Polygon is a convex polygon: local-space vertices and a homogeneous 3x3 transform.
type Polygon struct {
	Vertices  []mgl64.Vec2
	Transform *mgl64.Mat3
}

// NewPolygon creates a polygon owning a copy of transform.
func NewPolygon(vertices []mgl64.Vec2, transform mgl64.Mat3) *Polygon {
	t := transform
	return &Polygon{Vertices: vertices, Transform: &t}
}

// NewPolygonRef creates a polygon borrowing transform.
func NewPolygonRef(vertices []mgl64.Vec2, transform *mgl64.Mat3) *Polygon {
	return &Polygon{Vertices: vertices, Transform: transform}
}

// WorldVertex returns vertex i in world space.
func (p *Polygon) WorldVertex(i int) mgl64.Vec2 {
	if p.Transform == nil {
		return p.Vertices[i]
	}
	return p.Transform.Mul3x1(p.Vertices[i].Vec3(1)).Vec2()
}

// Support returns the world-space vertex with the largest projection on direction.
func (p *Polygon) Support(direction mgl64.Vec2) mgl64.Vec2 {
	if len(p.Vertices) == 0 {
		return mgl64.Vec2{}
	}

	best := p.WorldVertex(0)
	bestDot := best.Dot(direction)
	for i := 1; i < len(p.Vertices); i++ {
		v := p.WorldVertex(i)
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}

	return best
}

// BoxVertices returns the 8 corners of a box centered on the local origin.
func BoxVertices(halfExtents mgl64.Vec3) []mgl64.Vec3 {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()

	return []mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

// PrismVertices extrudes a 2D outline along Z between zMin and zMax.
func PrismVertices(outline []mgl64.Vec2, zMin, zMax float64) []mgl64.Vec3 {
	vertices := make([]mgl64.Vec3, 0, 2*len(outline))
	for _, p := range outline {
		vertices = append(vertices, p.Vec3(zMin))
	}
	for _, p := range outline {
		vertices = append(vertices, p.Vec3(zMax))
	}
	return vertices
}

// RectVertices returns the 4 corners of a rectangle, counter-clockwise.
func RectVertices(halfExtents mgl64.Vec2) []mgl64.Vec2 {
	hx, hy := halfExtents.X(), halfExtents.Y()

	return []mgl64.Vec2{
		{-hx, -hy},
		{+hx, -hy},
		{+hx, +hy},
		{-hx, +hy},
	}
}

// RegularPolygonVertices returns n points on a circle of the given radius,
// counter-clockwise, starting on +X. n below 3 is raised to 3.
func RegularPolygonVertices(n int, radius float64) []mgl64.Vec2 {
	n = max(n, 3)

	vertices := make([]mgl64.Vec2, n)
	step := 2 * math.Pi / float64(n)
	for i := range vertices {
		angle := step * float64(i)
		vertices[i] = mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return vertices
}
