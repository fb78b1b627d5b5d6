package gjk

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// SimplexState names the feature a simplex currently spans.
type SimplexState int

const (
	StateEmpty SimplexState = iota
	StatePoint
	StateEdge
	StateTriangle
	StateTetrahedron
)

func (s SimplexState) String() string {
	switch s {
	case StatePoint:
		return "point"
	case StateEdge:
		return "edge"
	case StateTriangle:
		return "triangle"
	case StateTetrahedron:
		return "tetrahedron"
	}
	return "empty"
}

// Simplex is a bounded set of at most 4 Minkowski points.
// Point(0) is always the most recently pushed point.
type Simplex struct {
	points [4]SupportPoint
	size   int
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

func (s *Simplex) Reset() {
	s.size = 0
}

// PushFront inserts p as the newest point. Older points move one slot back and the
// oldest is dropped once the simplex is full.
func (s *Simplex) PushFront(p SupportPoint) {
	s.points = [4]SupportPoint{p, s.points[0], s.points[1], s.points[2]}
	s.size = min(s.size+1, len(s.points))
}

func (s *Simplex) Size() int {
	return s.size
}

func (s *Simplex) State() SimplexState {
	return SimplexState(s.size)
}

func (s *Simplex) Point(i int) SupportPoint {
	return s.points[i]
}

// Points returns the live points, newest first. The slice aliases the simplex.
func (s *Simplex) Points() []SupportPoint {
	return s.points[:s.size]
}

// Set replaces the content of the simplex, first argument newest.
func (s *Simplex) Set(points ...SupportPoint) {
	s.size = copy(s.points[:], points)
}

// NextSimplex reduces the simplex to the feature closest to the origin and returns it
// with the next search direction. contains reports that the simplex is a tetrahedron
// enclosing the origin.
func NextSimplex(s Simplex) (next Simplex, direction mgl64.Vec3, contains bool) {
	switch s.State() {
	case StateEdge:
		return reduceEdge(s.points[0], s.points[1])
	case StateTriangle:
		return reduceTriangle(s.points[0], s.points[1], s.points[2])
	case StateTetrahedron:
		return reduceTetrahedron(s.points[0], s.points[1], s.points[2], s.points[3])
	}

	return s, s.points[0].W.Mul(-1), false
}

func sameDirection(direction, v mgl64.Vec3) bool {
	return direction.Dot(v) > 0
}

// towardOrigin returns ab x ao x ab, the component of ao orthogonal to ab. When the
// origin is on the line through ab that vector vanishes and any perpendicular of ab
// keeps the search going.
func towardOrigin(ab, ao mgl64.Vec3) mgl64.Vec3 {
	direction := ab.Cross(ao).Cross(ab)
	if nearlyZero(direction.LenSqr(), ab.LenSqr()*ab.LenSqr()*ao.LenSqr()) {
		return perpendicular(ab)
	}
	return direction
}

// nearlyZero reports whether a squared quantity is negligible next to the squared
// scale it is built from, i.e. whether the sine it measures is below sqrt(DegenerateEpsilon).
func nearlyZero(sq, scaleSq float64) bool {
	return sq <= DegenerateEpsilon*scaleSq
}

func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	x, y, z := math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())

	axis := mgl64.Vec3{0, 0, 1}
	if x <= y && x <= z {
		axis = mgl64.Vec3{1, 0, 0}
	} else if y <= z {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(axis)
}

// reduceEdge handles a (newest) and b.
func reduceEdge(a, b SupportPoint) (Simplex, mgl64.Vec3, bool) {
	var s Simplex

	ab := b.W.Sub(a.W)
	ao := a.W.Mul(-1)

	if sameDirection(ab, ao) {
		s.Set(a, b)
		return s, towardOrigin(ab, ao), false
	}

	s.Set(a)
	return s, ao, false
}

// reduceTriangle handles a (newest), b and c.
func reduceTriangle(a, b, c SupportPoint) (Simplex, mgl64.Vec3, bool) {
	var s Simplex

	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ao := a.W.Mul(-1)

	abc := ab.Cross(ac)

	// Collinear points: the oldest one carries no information.
	if nearlyZero(abc.LenSqr(), ab.LenSqr()*ac.LenSqr()) {
		return reduceEdge(a, b)
	}

	if sameDirection(abc.Cross(ac), ao) {
		if sameDirection(ac, ao) {
			s.Set(a, c)
			return s, towardOrigin(ac, ao), false
		}
		return reduceEdge(a, b)
	}

	if sameDirection(ab.Cross(abc), ao) {
		return reduceEdge(a, b)
	}

	if sameDirection(abc, ao) {
		s.Set(a, b, c)
		return s, abc, false
	}

	// Below the plane: swap b and c so that the next point lands above abc.
	s.Set(a, c, b)
	return s, abc.Mul(-1), false
}

// reduceTetrahedron handles a (newest), b, c and d. Only the three faces sharing a are
// tested, bcd was already on the origin side when d was chosen.
func reduceTetrahedron(a, b, c, d SupportPoint) (Simplex, mgl64.Vec3, bool) {
	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ad := d.W.Sub(a.W)
	ao := a.W.Mul(-1)

	abc := ab.Cross(ac)

	// Flat tetrahedron: a is in the plane of the previous triangle.
	volume := abc.Dot(ad)
	if nearlyZero(volume*volume, abc.LenSqr()*ad.LenSqr()) {
		return reduceTriangle(a, b, c)
	}

	// Face normals point away from the opposite vertex.
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if sameDirection(abc, ao) {
		return reduceTriangle(a, b, c)
	}
	if sameDirection(acd, ao) {
		return reduceTriangle(a, c, d)
	}
	if sameDirection(adb, ao) {
		return reduceTriangle(a, d, b)
	}

	var s Simplex
	s.Set(a, b, c, d)
	return s, mgl64.Vec3{}, true
}
