package epa

import (
	"math"
	"slices"

	"github.com/akmonengine/collide/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPA2DMaxIterations limits polygon expansion in 2D.
	EPA2DMaxIterations = 25

	// EPA2DConvergenceTolerance is the improvement under which the closest edge is
	// accepted. Polygons are exact enough that this stays near machine precision.
	EPA2DConvergenceTolerance = 1e-10
)

// DefaultOptions2D returns the 2D defaults.
func DefaultOptions2D() Options {
	return Options{MaxIterations: EPA2DMaxIterations, Tolerance: EPA2DConvergenceTolerance}
}

// Result2D is the planar counterpart of Result.
type Result2D struct {
	Normal     mgl64.Vec2
	Distance   float64
	PointA     mgl64.Vec2
	PointB     mgl64.Vec2
	Converged  bool
	Iterations int
}

// polygonEdge is the edge from point index to index+1 (wrapping).
type polygonEdge struct {
	index    int
	normal   mgl64.Vec2
	distance float64
}

// EPA2D grows the GJK triangle into a polygon approximating the Minkowski difference
// boundary. Each step pushes out the edge closest to the origin; when an edge cannot be
// pushed further than opts.Tolerance its normal and distance are the answer. A cap
// under 1 runs no expansion and returns the closest edge of the simplex itself.
func EPA2D(a, b gjk.Supporter2, simplex []gjk.SupportPoint2, opts Options) Result2D {
	iterations := max(opts.MaxIterations, 0)

	polygon := make([]gjk.SupportPoint2, len(simplex), len(simplex)+iterations)
	copy(polygon, simplex)

	// Outward normals below assume counter-clockwise winding.
	if signedArea(polygon) < 0 {
		slices.Reverse(polygon)
	}

	for i := 0; i < iterations; i++ {
		edge := findClosestEdge(polygon)

		support := gjk.MinkowskiSupport2(a, b, edge.normal)
		distance := support.W.Dot(edge.normal)

		if distance-edge.distance < opts.Tolerance {
			return polygonResult(polygon, edge, distance, true, i+1)
		}

		polygon = slices.Insert(polygon, edge.index+1, support)
	}

	edge := findClosestEdge(polygon)
	return polygonResult(polygon, edge, edge.distance, false, iterations)
}

// findClosestEdge returns the polygon edge closest to the origin.
func findClosestEdge(polygon []gjk.SupportPoint2) polygonEdge {
	closest := polygonEdge{distance: math.MaxFloat64}

	for i := range polygon {
		a := polygon[i].W
		b := polygon[(i+1)%len(polygon)].W

		e := b.Sub(a)
		length := e.Len()
		if length < NormalSnapThreshold {
			continue
		}

		normal := mgl64.Vec2{e.Y(), -e.X()}.Mul(1.0 / length)
		distance := normal.Dot(a)

		if distance < closest.distance {
			closest = polygonEdge{index: i, normal: normal, distance: distance}
		}
	}

	if closest.distance == math.MaxFloat64 {
		// Every edge collapsed to a point.
		return polygonEdge{normal: mgl64.Vec2{0, 1}, distance: 0}
	}
	return closest
}

func polygonResult(polygon []gjk.SupportPoint2, edge polygonEdge, distance float64, converged bool, iterations int) Result2D {
	p0 := polygon[edge.index]
	p1 := polygon[(edge.index+1)%len(polygon)]

	// Closest point of the edge to the origin, as a parameter along it.
	e := p1.W.Sub(p0.W)
	t := 0.0
	if lenSqr := e.LenSqr(); lenSqr > 0 {
		t = mgl64.Clamp(-p0.W.Dot(e)/lenSqr, 0, 1)
	}

	return Result2D{
		Normal:     edge.normal,
		Distance:   distance,
		PointA:     p0.A.Add(p1.A.Sub(p0.A).Mul(t)),
		PointB:     p0.B.Add(p1.B.Sub(p0.B).Mul(t)),
		Converged:  converged,
		Iterations: iterations,
	}
}

func signedArea(polygon []gjk.SupportPoint2) float64 {
	area := 0.0
	for i := range polygon {
		a := polygon[i].W
		b := polygon[(i+1)%len(polygon)].W
		area += a.X()*b.Y() - b.X()*a.Y()
	}
	return area / 2
}
