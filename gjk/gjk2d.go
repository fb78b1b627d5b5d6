package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Supporter2 is the 2D counterpart of Supporter.
type Supporter2 interface {
	Support(direction mgl64.Vec2) mgl64.Vec2
}

// SupportPoint2 is a vertex W = A - B of a 2D Minkowski difference.
type SupportPoint2 struct {
	W mgl64.Vec2
	A mgl64.Vec2
	B mgl64.Vec2
}

func MinkowskiSupport2(a, b Supporter2, direction mgl64.Vec2) SupportPoint2 {
	supportA := a.Support(direction)
	supportB := b.Support(direction.Mul(-1))
	return SupportPoint2{W: supportA.Sub(supportB), A: supportA, B: supportB}
}

// TripleProduct returns (a x b) x c computed in the plane: b(a.c) - a(b.c).
func TripleProduct(a, b, c mgl64.Vec2) mgl64.Vec2 {
	return b.Mul(a.Dot(c)).Sub(a.Mul(b.Dot(c)))
}

// Perp returns v rotated by +90 degrees.
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

func cross2(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// GJK2D is the planar GJK. The simplex is a plain list, oldest point first, and holds
// the triangle enclosing the origin when it returns true.
func GJK2D(a, b Supporter2, opts Options) ([]SupportPoint2, bool) {
	direction := mgl64.Vec2{1, 0}

	simplex := make([]SupportPoint2, 0, 3)
	simplex = append(simplex, MinkowskiSupport2(a, b, direction))
	direction = simplex[0].W.Mul(-1)

	for i := 0; opts.MaxIterations <= 0 || i < opts.MaxIterations; i++ {
		support := MinkowskiSupport2(a, b, direction)
		if support.W.Dot(direction) <= 0 {
			return nil, false
		}

		simplex = append(simplex, support)

		var contains bool
		simplex, direction, contains = nextSimplex2(simplex)
		if contains {
			return simplex, true
		}
	}

	return nil, false
}

func nextSimplex2(simplex []SupportPoint2) ([]SupportPoint2, mgl64.Vec2, bool) {
	if len(simplex) == 2 {
		return simplex, edgeDirection2(simplex[1].W, simplex[0].W), false
	}

	a := simplex[2]
	b := simplex[1]
	c := simplex[0]

	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ao := a.W.Mul(-1)

	// Collinear triangle: drop the oldest point.
	area := cross2(ab, ac)
	if nearlyZero(area*area, ab.LenSqr()*ac.LenSqr()) {
		simplex = append(simplex[:0], b, a)
		return simplex, edgeDirection2(a.W, b.W), false
	}

	abPerp := TripleProduct(ac, ab, ab)
	acPerp := TripleProduct(ab, ac, ac)

	if abPerp.Dot(ao) > 0 {
		simplex = append(simplex[:0], b, a)
		return simplex, abPerp, false
	}

	if acPerp.Dot(ao) > 0 {
		simplex = append(simplex[:0], c, a)
		return simplex, edgeDirection2(a.W, c.W), false
	}

	return simplex, mgl64.Vec2{}, true
}

// edgeDirection2 returns the normal of edge a-b (a newest) facing the origin.
func edgeDirection2(a, b mgl64.Vec2) mgl64.Vec2 {
	ab := b.Sub(a)
	ao := a.Mul(-1)

	direction := TripleProduct(ab, ao, ab)
	if nearlyZero(direction.LenSqr(), ab.LenSqr()*ab.LenSqr()*ao.LenSqr()) {
		direction = Perp(ab)
		if direction.Dot(ao) < 0 {
			direction = direction.Mul(-1)
		}
	}
	return direction
}
