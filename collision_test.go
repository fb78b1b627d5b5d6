package collide

import (
	"fmt"
	"math"
	"testing"

	"github.com/akmonengine/collide/epa"
	"github.com/akmonengine/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions
func createBox(position mgl64.Vec3, halfExtents mgl64.Vec3) *Solid {
	transform := shape.Transform{Position: position, Rotation: mgl64.QuatIdent()}
	return NewSolid(shape.BoxVertices(halfExtents), transform.Mat4())
}

func createPrism(outline []mgl64.Vec2, position mgl64.Vec2, zMin, zMax float64) *Solid {
	return NewSolid(shape.PrismVertices(outline, zMin, zMax), mgl64.Translate3D(position.X(), position.Y(), 0))
}

func createFlat(outline []mgl64.Vec2, position mgl64.Vec2) *Flat {
	return NewFlat(outline, shape.Transform2D{Position: position}.Mat3())
}

// boxPairs places B along +X at 0.05, 0.35, 0.65... from A; unit cubes overlap for the
// first 4 pairs only.
func boxPairs(count int) []Pair {
	pairs := make([]Pair, count)
	for i := range pairs {
		pairs[i] = Pair{
			Index: i,
			A:     createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			B:     createBox(mgl64.Vec3{0.3*float64(i) + 0.05, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
		}
	}
	return pairs
}

func dump(infos ...CollisionInfo) string {
	s := ""
	for _, info := range infos {
		s += fmt.Sprintf("%+v\n", info)
	}
	return s
}

func TestSolidCollides(t *testing.T) {
	t.Run("separated", func(t *testing.T) {
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		b := createBox(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})

		info, ok := a.Collides(b)
		assert.False(t, ok)
		assert.Equal(t, CollisionInfo{}, info)
	})

	t.Run("known penetration", func(t *testing.T) {
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		b := createBox(mgl64.Vec3{0.8, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})

		info, ok := a.Collides(b)
		require.True(t, ok)

		assert.True(t, info.Converged)
		assert.InDelta(t, 0.2, info.Distance, 0.01)
		assert.GreaterOrEqual(t, info.Distance, 0.2)
		assert.InDelta(t, 1, info.Normal.X(), 1e-6)
		assert.InDelta(t, 1, info.Normal.Len(), 1e-9)
		// Halfway between x = 0.5 on A and x = 0.3 on B.
		assert.InDelta(t, 0.4, info.Point.X(), 1e-6)
		assert.LessOrEqual(t, math.Abs(info.Point.Y()), 0.5)
		assert.LessOrEqual(t, math.Abs(info.Point.Z()), 0.5)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		b := createBox(mgl64.Vec3{0.8, 0.1, 0.05}, mgl64.Vec3{0.5, 0.5, 0.5})

		ab, okAB := a.Collides(b)
		ba, okBA := b.Collides(a)
		require.True(t, okAB)
		require.True(t, okBA)

		assert.InDelta(t, ab.Distance, ba.Distance, 0.01)
		assert.Less(t, ab.Normal.Dot(ba.Normal), -0.99, "normals %v and %v should be opposite", ab.Normal, ba.Normal)
	})

	t.Run("coincident", func(t *testing.T) {
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		b := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})

		info, ok := a.Collides(b)
		require.True(t, ok)
		assert.GreaterOrEqual(t, info.Distance, 0.0)
		assert.InDelta(t, 1, info.Normal.Len(), 1e-9)
	})

	t.Run("separation along the normal", func(t *testing.T) {
		transform := shape.Transform{
			Position: mgl64.Vec3{1.0, 0.2, 0},
			Rotation: mgl64.QuatRotate(0.4, mgl64.Vec3{0, 0, 1}),
		}.Mat4()
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		b := NewSolidRef(shape.BoxVertices(mgl64.Vec3{0.5, 0.5, 0.5}), &transform)

		info, ok := a.Collides(b)
		require.True(t, ok)

		// Moving B by the normal times the depth, plus a margin, separates the shapes.
		offset := info.Normal.Mul(info.Distance + 1e-3)
		transform = mgl64.Translate3D(offset.X(), offset.Y(), offset.Z()).Mul4(transform)

		_, ok = a.Collides(b)
		assert.False(t, ok)
	})
}

func TestFlatCollides(t *testing.T) {
	square := shape.RectVertices(mgl64.Vec2{1, 1})

	t.Run("separated", func(t *testing.T) {
		_, ok := createFlat(square, mgl64.Vec2{0, 0}).Collides(createFlat(square, mgl64.Vec2{3, 0}))
		assert.False(t, ok)
	})

	t.Run("known penetration", func(t *testing.T) {
		info, ok := createFlat(square, mgl64.Vec2{0, 0}).Collides(createFlat(square, mgl64.Vec2{1.5, 0}))
		require.True(t, ok)

		assert.True(t, info.Converged)
		assert.InDelta(t, 0.5, info.Distance, 1e-9)
		assert.Equal(t, 0.0, info.Normal.Z())
		assert.InDelta(t, 1, info.Normal.X(), 1e-9)
		assert.InDelta(t, 0.75, info.Point.X(), 1e-9)
		assert.Equal(t, 0.0, info.Point.Z())
	})

	t.Run("symmetric", func(t *testing.T) {
		a := createFlat(square, mgl64.Vec2{0, 0})
		b := createFlat(square, mgl64.Vec2{1.5, 0.3})

		ab, okAB := a.Collides(b)
		ba, okBA := b.Collides(a)
		require.True(t, okAB)
		require.True(t, okBA)

		assert.InDelta(t, 0.5, ab.Distance, 1e-9)
		assert.InDelta(t, ab.Distance, ba.Distance, 1e-9)
		assert.InDelta(t, -1, ab.Normal.Dot(ba.Normal), 1e-9, "normals %v and %v should be opposite", ab.Normal, ba.Normal)
	})
}

// A prism much taller than the overlap behaves like its outline: the planar and the
// spatial queries must agree.
func TestFlatMatchesPrism(t *testing.T) {
	triangle := shape.RegularPolygonVertices(3, 1)
	offset := mgl64.Vec2{0.5, 0.2}

	flat, ok := createFlat(triangle, mgl64.Vec2{0, 0}).Collides(createFlat(triangle, offset))
	require.True(t, ok)

	solid, ok := createPrism(triangle, mgl64.Vec2{0, 0}, -5, 5).Collides(createPrism(triangle, offset, -5, 5))
	require.True(t, ok)

	assert.InDelta(t, 1.0, flat.Distance, 1e-6)
	assert.InDelta(t, flat.Distance, solid.Distance, 0.01)
	assert.Greater(t, flat.Normal.Dot(solid.Normal), 0.99, "normals %v and %v differ", flat.Normal, solid.Normal)
	assert.InDelta(t, 0, solid.Normal.Z(), 1e-6)
}

// A hull without volume never encloses the origin of the Minkowski difference, so two
// coplanar triangles only collide as flats.
func TestCoplanarHullsDoNotCollide(t *testing.T) {
	triangle := shape.RegularPolygonVertices(3, 1)
	flat := make([]mgl64.Vec3, len(triangle))
	for i, p := range triangle {
		flat[i] = p.Vec3(0)
	}

	_, ok := NewSolid(flat, mgl64.Ident4()).Collides(NewSolid(flat, mgl64.Translate3D(0.2, 0.1, 0)))
	assert.False(t, ok)

	info, ok := createFlat(triangle, mgl64.Vec2{0, 0}).Collides(createFlat(triangle, mgl64.Vec2{0.2, 0.1}))
	require.True(t, ok)
	assert.Greater(t, info.Distance, 0.0)
}

func TestCollidesIsIdempotent(t *testing.T) {
	a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := NewSolid(shape.BoxVertices(mgl64.Vec3{0.5, 1, 0.5}), shape.Transform{
		Position: mgl64.Vec3{1.2, 0.3, -0.4},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{0, 0, 1}),
	}.Mat4())

	first, ok := a.Collides(b)
	require.True(t, ok)
	second, _ := a.Collides(b)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(dump(first)),
		B:        difflib.SplitLines(dump(second)),
		FromFile: "first",
		ToFile:   "second",
		Context:  1,
	})
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDetector(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := NewDetector(Config{}, nil)

		assert.Equal(t, DEFAULT_WORKERS, d.Config().Workers)
		require.NotNil(t, d.Logger())
		assert.False(t, d.Logger().DebugEnabled())
		assert.Equal(t, epa.DefaultOptions(), d.Config().EPA)
		assert.Equal(t, epa.DefaultOptions2D(), d.Config().EPA2D)

		square := shape.RectVertices(mgl64.Vec2{1, 1})
		flat, ok := d.CollideFlats(createFlat(square, mgl64.Vec2{0, 0}), createFlat(square, mgl64.Vec2{1.5, 0}))
		require.True(t, ok)
		assert.InDelta(t, 1, flat.Normal.Len(), 1e-9)
		assert.InDelta(t, 0.5, flat.Distance, 1e-9)

		solid, ok := d.CollideSolids(
			createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			createBox(mgl64.Vec3{0.8, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
		)
		require.True(t, ok)
		assert.InDelta(t, 1, solid.Normal.Len(), 1e-9)
		assert.InDelta(t, 0.2, solid.Distance, 0.01)
	})

	t.Run("non-positive caps fall back to defaults", func(t *testing.T) {
		config := DefaultConfig()
		config.EPA.MaxIterations = -1
		config.EPA2D.MaxIterations = -5
		d := NewDetector(config, nil)

		assert.Equal(t, epa.EPAMaxIterations, d.Config().EPA.MaxIterations)
		assert.Equal(t, epa.EPA2DMaxIterations, d.Config().EPA2D.MaxIterations)

		square := shape.RectVertices(mgl64.Vec2{1, 1})
		assert.NotPanics(t, func() {
			info, ok := d.CollideFlats(createFlat(square, mgl64.Vec2{0, 0}), createFlat(square, mgl64.Vec2{1.5, 0}))
			assert.True(t, ok)
			assert.InDelta(t, 1, info.Normal.Len(), 1e-9)
		})
	})

	t.Run("negative tolerance is kept", func(t *testing.T) {
		config := DefaultConfig()
		config.EPA.Tolerance = -1

		assert.Equal(t, -1.0, NewDetector(config, nil).Config().EPA.Tolerance)
	})

	t.Run("custom iteration cap", func(t *testing.T) {
		config := DefaultConfig()
		config.EPA.MaxIterations = 2
		config.EPA.Tolerance = -1
		d := NewDetector(config, nil)

		info, ok := d.CollideSolids(
			createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			createBox(mgl64.Vec3{0.8, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
		)
		require.True(t, ok)
		assert.False(t, info.Converged)
		assert.Equal(t, 2, info.Iterations)
	})
}

func TestNarrowPhase(t *testing.T) {
	pairs := boxPairs(10)

	config := DefaultConfig()
	config.Workers = 4
	d := NewDetector(config, nil)

	pairChan := make(chan Pair)
	go func() {
		defer close(pairChan)
		for _, p := range pairs {
			pairChan <- p
		}
	}()

	contacts := d.NarrowPhase(pairChan)

	require.Len(t, contacts, 4)
	for i, c := range contacts {
		assert.Equal(t, i, c.Index)

		expected, ok := d.CollideSolids(c.A, c.B)
		require.True(t, ok)
		assert.Equal(t, expected, c.Info)
	}
}

func TestNarrowPhaseEmpty(t *testing.T) {
	pairChan := make(chan Pair)
	close(pairChan)

	assert.Empty(t, NewDetector(DefaultConfig(), nil).NarrowPhase(pairChan))
}

func TestCollideAll(t *testing.T) {
	pairs := boxPairs(10)

	sequential := NewDetector(DefaultConfig(), nil)
	config := DefaultConfig()
	config.Workers = 3
	parallel := NewDetector(config, nil)

	infos, ok := parallel.CollideAll(pairs)
	require.Len(t, infos, len(pairs))
	require.Len(t, ok, len(pairs))

	for i, p := range pairs {
		assert.Equal(t, i < 4, ok[i], "pair %d", i)

		expected, _ := sequential.CollideSolids(p.A, p.B)
		assert.Equal(t, expected, infos[i], "pair %d", i)
	}
}

// Large grid of overlapping cubes, every neighbour pair tested.
func BenchmarkLargeNarrowPhase(b *testing.B) {
	const cubesCount = 1000
	const rowSize = 100

	solids := make([]*Solid, cubesCount)
	for i := range solids {
		row := i / rowSize
		col := i % rowSize
		solids[i] = createBox(mgl64.Vec3{0, float64(row) * 0.9, float64(col) * 0.9}, mgl64.Vec3{1, 1, 1})
	}

	pairs := make([]Pair, 0, cubesCount)
	for i := 0; i+1 < cubesCount; i++ {
		pairs = append(pairs, Pair{Index: i, A: solids[i], B: solids[i+1]})
	}

	config := DefaultConfig()
	config.Workers = 4
	d := NewDetector(config, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pairChan := make(chan Pair, len(pairs))
		for _, p := range pairs {
			pairChan <- p
		}
		close(pairChan)

		d.NarrowPhase(pairChan)
	}
}

func BenchmarkCollideAll(b *testing.B) {
	pairs := boxPairs(100)
	config := DefaultConfig()
	config.Workers = 4
	d := NewDetector(config, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.CollideAll(pairs)
	}
}
