package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/collide/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope, by vertex index, with its outward unit normal and
// the distance from the origin to its plane.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3
	Distance float64
}

// Edge is an ordered pair of vertex indices.
type Edge struct {
	A, B int
}

// Polytope is the convex hull EPA grows inside the Minkowski difference. Faces carry
// their own normal, so face i and normal i can never get out of step.
type Polytope struct {
	Vertices []gjk.SupportPoint
	Faces    []Face

	// silhouette of the faces removed by the last expansion
	edges []Edge
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &Polytope{
			Vertices: make([]gjk.SupportPoint, 0, polytopeInitialCapacity),
			Faces:    make([]Face, 0, polytopeInitialCapacity),
			edges:    make([]Edge, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the polytope for reuse.
func (p *Polytope) Reset() {
	p.Vertices = p.Vertices[:0]
	p.Faces = p.Faces[:0]
	p.edges = p.edges[:0]
}

// Seed builds the initial tetrahedron from the 4 points of a GJK simplex.
func (p *Polytope) Seed(points []gjk.SupportPoint) {
	p.Reset()
	p.Vertices = append(p.Vertices, points...)

	centroid := p.centroid()
	for _, f := range [4][3]int{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	} {
		p.Faces = append(p.Faces, p.makeFace(f[0], f[1], f[2], centroid))
	}
}

// makeFace computes the outward normal of triangle (i, j, k). A face whose normal
// points toward the origin is flipped, winding included, so that its distance is
// never negative. When the origin lies on the plane the centroid decides.
func (p *Polytope) makeFace(i, j, k int, centroid mgl64.Vec3) Face {
	a := p.Vertices[i].W
	b := p.Vertices[j].W
	c := p.Vertices[k].W

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < NormalSnapThreshold {
		// Zero area: never the closest face, never visible.
		return Face{Indices: [3]int{i, j, k}, Normal: mgl64.Vec3{0, 1, 0}, Distance: math.MaxFloat64}
	}
	normal = normal.Mul(1.0 / length)

	distance := normal.Dot(a)
	flip := distance < 0
	if math.Abs(distance) < EPAMinFaceDistance {
		flip = normal.Dot(centroid.Sub(a)) > 0
	}
	if flip {
		normal = normal.Mul(-1)
		distance = -distance
		j, k = k, j
	}

	return Face{
		Indices:  [3]int{i, j, k},
		Normal:   snapNormalToAxis(normal),
		Distance: math.Max(distance, 0),
	}
}

// ClosestFace returns the index of the face closest to the origin, -1 when there is no
// face with a usable normal.
func (p *Polytope) ClosestFace() int {
	closestIndex := -1
	minDistance := math.MaxFloat64

	for i, f := range p.Faces {
		if f.Distance < minDistance {
			closestIndex = i
			minDistance = f.Distance
		}
	}

	return closestIndex
}

// visible reports whether support lies strictly in front of face f.
func (p *Polytope) visible(f Face, support mgl64.Vec3) bool {
	if f.Distance == math.MaxFloat64 {
		return false
	}
	return f.Normal.Dot(support.Sub(p.Vertices[f.Indices[0]].W)) > 0
}

// addUniqueEdge records edge a→b unless its reverse is already recorded, in which case
// both are dropped: the edge was shared by two removed faces.
func (p *Polytope) addUniqueEdge(a, b int) {
	for i := len(p.edges) - 1; i >= 0; i-- {
		if p.edges[i].A == b && p.edges[i].B == a {
			p.edges[i] = p.edges[len(p.edges)-1]
			p.edges = p.edges[:len(p.edges)-1]
			return
		}
	}
	p.edges = append(p.edges, Edge{A: a, B: b})
}

// Expand adds support to the polytope:
//  1. Removes every face visible from support, collecting its edges
//  2. Keeps only the silhouette (edges not shared by two removed faces)
//  3. Fans one new face from each silhouette edge to the new vertex
//
// closest is the face support was found from; it is the only face removed when every
// face claims to be visible, which only happens with degenerate input.
func (p *Polytope) Expand(support gjk.SupportPoint, closest int) {
	p.edges = p.edges[:0]

	visibleCount := 0
	for _, f := range p.Faces {
		if p.visible(f, support.W) {
			visibleCount++
		}
	}
	keepAllButClosest := visibleCount == len(p.Faces)

	kept := p.Faces[:0]
	for i, f := range p.Faces {
		remove := p.visible(f, support.W)
		if keepAllButClosest {
			remove = i == closest
		}

		if !remove {
			kept = append(kept, f)
			continue
		}

		p.addUniqueEdge(f.Indices[0], f.Indices[1])
		p.addUniqueEdge(f.Indices[1], f.Indices[2])
		p.addUniqueEdge(f.Indices[2], f.Indices[0])
	}
	p.Faces = kept

	p.Vertices = append(p.Vertices, support)
	newIndex := len(p.Vertices) - 1

	centroid := p.centroid()
	for _, e := range p.edges {
		p.Faces = append(p.Faces, p.makeFace(e.A, e.B, newIndex, centroid))
	}
}

// Silhouette returns the unique edges left by the last expansion.
func (p *Polytope) Silhouette() []Edge {
	return p.edges
}

func (p *Polytope) centroid() mgl64.Vec3 {
	if len(p.Vertices) == 0 {
		return mgl64.Vec3{}
	}

	sum := mgl64.Vec3{}
	for _, v := range p.Vertices {
		sum = sum.Add(v.W)
	}
	return sum.Mul(1.0 / float64(len(p.Vertices)))
}

// witnesses projects the origin on face f and maps it back onto both shapes.
func (p *Polytope) witnesses(f Face) (pointA, pointB mgl64.Vec3) {
	v0 := p.Vertices[f.Indices[0]]
	v1 := p.Vertices[f.Indices[1]]
	v2 := p.Vertices[f.Indices[2]]

	u, v, w := barycentric(f.Normal.Mul(f.Distance), v0.W, v1.W, v2.W)

	pointA = v0.A.Mul(u).Add(v1.A.Mul(v)).Add(v2.A.Mul(w))
	pointB = v0.B.Mul(u).Add(v1.B.Mul(v)).Add(v2.B.Mul(w))
	return pointA, pointB
}

// barycentric returns the coordinates of p in triangle (a, b, c). A degenerate
// triangle maps everything onto a.
func barycentric(p, a, b, c mgl64.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < NormalSnapThreshold {
		return 1, 0, 0
	}

	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}
