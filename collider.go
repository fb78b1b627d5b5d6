// Package collide answers narrow-phase queries between convex shapes: do they overlap,
// and if so by how much and along which normal.
//
// Solid wraps a 3D hull, Flat a 2D polygon. Both implement Collision, whose Collides
// method runs GJK and, on overlap, EPA. Detector runs the same queries with a custom
// Config and drives batches of pairs through a worker pipeline.
package collide

import (
	"github.com/akmonengine/collide/epa"
	"github.com/akmonengine/collide/gjk"
	"github.com/akmonengine/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionInfo describes a penetration. Normal is unit length and points from the
// receiver toward the other shape; Distance is the penetration depth along it; Point
// estimates the contact point, halfway between the deepest points of both shapes.
// 2D results have a zero Z component.
//
// Converged is false when EPA ran out of iterations: Distance and Normal are then the
// best estimate found, not a refined answer. Iterations is the number of EPA steps.
type CollisionInfo struct {
	Distance   float64
	Normal     mgl64.Vec3
	Point      mgl64.Vec3
	Converged  bool
	Iterations int
}

// Collision is implemented by shapes able to test themselves against T.
// The boolean is false when the shapes do not overlap.
type Collision[T any] interface {
	Collides(other T) (CollisionInfo, bool)
}

var (
	_ Collision[*Solid] = (*Solid)(nil)
	_ Collision[*Flat]  = (*Flat)(nil)
)

// Solid is a 3D convex collider.
type Solid struct {
	*shape.Hull
}

// NewSolid creates a solid owning a copy of transform.
func NewSolid(vertices []mgl64.Vec3, transform mgl64.Mat4) *Solid {
	return &Solid{Hull: shape.NewHull(vertices, transform)}
}

// NewSolidRef creates a solid sharing transform with the caller.
func NewSolidRef(vertices []mgl64.Vec3, transform *mgl64.Mat4) *Solid {
	return &Solid{Hull: shape.NewHullRef(vertices, transform)}
}

func (s *Solid) Collides(other *Solid) (CollisionInfo, bool) {
	return defaultDetector.CollideSolids(s, other)
}

// Flat is a 2D convex collider.
type Flat struct {
	*shape.Polygon
}

// NewFlat creates a flat collider owning a copy of transform.
func NewFlat(vertices []mgl64.Vec2, transform mgl64.Mat3) *Flat {
	return &Flat{Polygon: shape.NewPolygon(vertices, transform)}
}

// NewFlatRef creates a flat collider sharing transform with the caller.
func NewFlatRef(vertices []mgl64.Vec2, transform *mgl64.Mat3) *Flat {
	return &Flat{Polygon: shape.NewPolygonRef(vertices, transform)}
}

func (f *Flat) Collides(other *Flat) (CollisionInfo, bool) {
	return defaultDetector.CollideFlats(f, other)
}

// CollideSolids runs GJK then EPA on two solids.
func (d *Detector) CollideSolids(a, b *Solid) (CollisionInfo, bool) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	if !gjk.GJK(a, b, simplex, d.config.GJK) {
		return CollisionInfo{}, false
	}

	return d.penetration(a, b, simplex), true
}

func (d *Detector) penetration(a, b *Solid, simplex *gjk.Simplex) CollisionInfo {
	result := epa.EPA(a, b, simplex, d.config.EPA)
	if !result.Converged {
		d.logger.Warnf("epa: not converged after %d iterations, depth %.6f normal %v",
			result.Iterations, result.Distance, result.Normal)
	}

	return CollisionInfo{
		Distance:   result.Distance,
		Normal:     result.Normal,
		Point:      result.PointA.Add(result.PointB).Mul(0.5),
		Converged:  result.Converged,
		Iterations: result.Iterations,
	}
}

// CollideFlats runs the planar GJK then EPA on two flat colliders.
func (d *Detector) CollideFlats(a, b *Flat) (CollisionInfo, bool) {
	simplex, ok := gjk.GJK2D(a, b, d.config.GJK)
	if !ok {
		return CollisionInfo{}, false
	}

	result := epa.EPA2D(a, b, simplex, d.config.EPA2D)
	if !result.Converged {
		d.logger.Warnf("epa2d: not converged after %d iterations, depth %.6f normal %v",
			result.Iterations, result.Distance, result.Normal)
	}

	return CollisionInfo{
		Distance:   result.Distance,
		Normal:     result.Normal.Vec3(0),
		Point:      result.PointA.Add(result.PointB).Mul(0.5).Vec3(0),
		Converged:  result.Converged,
		Iterations: result.Iterations,
	}, true
}
