// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//   - Contact point (an estimate on each shape)
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward the
// boundary of the Minkowski difference, finding the face closest to the origin which
// gives us the Minimum Translation Vector (MTV) to separate the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"math"

	"github.com/akmonengine/collide/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion. When it is reached the best
	// estimate so far is returned with Converged set to false.
	EPAMaxIterations = 16

	// EPAConvergenceTolerance defines when EPA has converged.
	// If the distance to a new support point improves by less than this threshold,
	// we've found the closest face to the origin. It is also added to the reported
	// depth so that the depth is never under-estimated.
	EPAConvergenceTolerance = 0.001

	// EPAMinFaceDistance is the distance under which the origin is considered to lie
	// on a face plane; the polytope centroid then decides the normal orientation.
	EPAMinFaceDistance = 1e-9

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability and axis-aligned collisions.
	NormalSnapThreshold = 1e-8

	polytopeInitialCapacity = 16
)

// Options tunes an EPA query.
type Options struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions returns the 3D defaults.
func DefaultOptions() Options {
	return Options{MaxIterations: EPAMaxIterations, Tolerance: EPAConvergenceTolerance}
}

// Result is the penetration found by EPA. Normal points from A toward B: moving A by
// -Normal*Distance (or B by +Normal*Distance) separates the shapes. PointA and PointB
// are the deepest points of each shape along the normal.
type Result struct {
	Normal     mgl64.Vec3
	Distance   float64
	PointA     mgl64.Vec3
	PointB     mgl64.Vec3
	Converged  bool
	Iterations int
}

// EPA computes penetration depth and contact information for overlapping convex shapes.
//
// Algorithm overview:
//  1. Start with simplex from GJK (tetrahedron containing origin)
//  2. Build initial polytope faces from simplex
//  3. Find face closest to origin
//  4. Get support point in face normal direction
//  5. If converged (new point doesn't improve distance) → done
//  6. Otherwise, expand polytope by adding support point
//  7. Repeat from step 3, at most opts.MaxIterations times
func EPA(a, b gjk.Supporter, simplex *gjk.Simplex, opts Options) Result {
	if simplex.Size() < 4 {
		return handleDegenerateSimplex(simplex)
	}

	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)

	polytope.Seed(simplex.Points())
	closest := polytope.ClosestFace()

	for i := 0; closest >= 0 && i < opts.MaxIterations; i++ {
		face := polytope.Faces[closest]

		support := gjk.MinkowskiSupport(a, b, face.Normal)
		distance := support.W.Dot(face.Normal)

		if distance-face.Distance < opts.Tolerance {
			return polytope.result(face, opts.Tolerance, true, i+1)
		}

		polytope.Expand(support, closest)
		closest = polytope.ClosestFace()
	}

	if closest < 0 {
		return handleDegenerateSimplex(simplex)
	}
	return polytope.result(polytope.Faces[closest], opts.Tolerance, false, max(opts.MaxIterations, 0))
}

func (p *Polytope) result(face Face, bias float64, converged bool, iterations int) Result {
	pointA, pointB := p.witnesses(face)

	return Result{
		Normal:     face.Normal,
		Distance:   face.Distance + bias,
		PointA:     pointA,
		PointB:     pointB,
		Converged:  converged,
		Iterations: iterations,
	}
}

// handleDegenerateSimplex estimates a result when no tetrahedron is available: the
// simplex point closest to the origin gives both normal and depth.
func handleDegenerateSimplex(simplex *gjk.Simplex) Result {
	if simplex.Size() == 0 {
		return Result{Normal: mgl64.Vec3{0, 1, 0}}
	}

	closest := simplex.Point(0)
	for _, p := range simplex.Points()[1:] {
		if p.W.LenSqr() < closest.W.LenSqr() {
			closest = p
		}
	}

	normal := mgl64.Vec3{0, 1, 0}
	if length := closest.W.Len(); length > NormalSnapThreshold {
		normal = closest.W.Mul(1.0 / length)
	}

	return Result{
		Normal:   normal,
		Distance: closest.W.Len(),
		PointA:   closest.A,
		PointB:   closest.B,
	}
}

// snapNormalToAxis zeroes the components under NormalSnapThreshold, then renormalizes,
// so that axis-aligned contacts report an exact axis. A normal left without any
// component becomes +Y.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i, c := range normal {
		if math.Abs(c) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length <= NormalSnapThreshold {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1.0 / length)
}
