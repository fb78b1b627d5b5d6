// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for collision detection.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. The algorithm builds a simplex incrementally, converging toward
// the origin in typically 3-6 iterations. Both the 3D (tetrahedron) and the 2D
// (triangle) variants live here; penetration depth is left to package epa.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations bounds the main loop. Convex inputs terminate well before it in
	// exact arithmetic; the cap only catches floating-point cycling.
	MaxIterations = 64

	// DegenerateEpsilon bounds the squared sine under which a direction, a triangle or a
	// tetrahedron is treated as degenerate, relative to the lengths it is built from.
	DegenerateEpsilon = 1e-12
)

// Options tunes a GJK query. MaxIterations <= 0 removes the cap.
type Options struct {
	MaxIterations int
}

func DefaultOptions() Options {
	return Options{MaxIterations: MaxIterations}
}

// Supporter is a convex shape able to answer support queries in world space.
type Supporter interface {
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// SupportPoint is a vertex W = A - B of the Minkowski difference, together with the
// witness points A and B it was built from.
type SupportPoint struct {
	W mgl64.Vec3
	A mgl64.Vec3
	B mgl64.Vec3
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B):
//
//	furthestPoint(A, direction) - furthestPoint(B, -direction)
//
// This is the fundamental query that makes GJK work for any convex shape - shapes only
// need to implement a Support() function, not expose their full geometry.
func MinkowskiSupport(a, b Supporter, direction mgl64.Vec3) SupportPoint {
	supportA := a.Support(direction)
	supportB := b.Support(direction.Mul(-1))
	return SupportPoint{W: supportA.Sub(supportB), A: supportA, B: supportB}
}

// GJK performs collision detection between two convex shapes.
//
// Algorithm overview:
//  1. Start along +X and push the first support point
//  2. Search toward the origin from the current feature
//  3. If a new support point does not pass the origin → no collision
//  4. Otherwise reduce the simplex to the feature closest to the origin
//  5. If a tetrahedron encloses the origin → collision
//
// On collision the simplex holds the enclosing tetrahedron, which EPA uses as its
// initial polytope. Touching shapes (zero depth) report no collision.
func GJK(a, b Supporter, simplex *Simplex, opts Options) bool {
	direction := mgl64.Vec3{1, 0, 0}

	support := MinkowskiSupport(a, b, direction)
	simplex.Reset()
	simplex.PushFront(support)

	// New direction towards the origin from this first point
	direction = support.W.Mul(-1)

	for i := 0; opts.MaxIterations <= 0 || i < opts.MaxIterations; i++ {
		support = MinkowskiSupport(a, b, direction)

		// The new point does not pass the origin along the search direction, so the
		// origin is outside the Minkowski difference: direction separates the shapes.
		if support.W.Dot(direction) <= 0 {
			return false
		}

		simplex.PushFront(support)

		var contains bool
		*simplex, direction, contains = NextSimplex(*simplex)
		if contains {
			return true
		}
	}

	return false
}
