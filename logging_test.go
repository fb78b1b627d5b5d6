package collide

import (
	"bytes"
	"log"
	"testing"

	"github.com/akmonengine/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedLogger(prefix string, debug bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)

	l := NewDefaultLogger(prefix, debug)
	l.out = log.New(out, "", 0)
	l.err = log.New(errOut, "", 0)
	return l, out, errOut
}

func TestDefaultLogger(t *testing.T) {
	t.Run("levels and streams", func(t *testing.T) {
		l, out, errOut := bufferedLogger("collide", true)

		l.Debugf("debug %d", 1)
		l.Infof("info %s", "two")
		l.Warnf("warn")
		l.Errorf("error %.1f", 3.0)

		assert.Equal(t, "[collide] DEBUG: debug 1\n[collide] INFO: info two\n", out.String())
		assert.Equal(t, "[collide] WARN: warn\n[collide] ERROR: error 3.0\n", errOut.String())
	})

	t.Run("debug is off by default", func(t *testing.T) {
		l, out, _ := bufferedLogger("", false)

		l.Debugf("hidden")
		assert.Empty(t, out.String())

		l.SetDebug(true)
		assert.True(t, l.DebugEnabled())
		l.Debugf("shown")
		assert.Equal(t, "DEBUG: shown\n", out.String())
	})

	t.Run("nop", func(t *testing.T) {
		l := NewNopLogger()
		l.SetDebug(true)
		assert.False(t, l.DebugEnabled())
	})
}

func TestDetectorWarnsOnUnconvergedEPA(t *testing.T) {
	t.Run("solids", func(t *testing.T) {
		l, out, errOut := bufferedLogger("collide", false)

		config := DefaultConfig()
		config.EPA.Tolerance = -1
		d := NewDetector(config, l)

		_, ok := d.CollideSolids(
			createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
			createBox(mgl64.Vec3{0.8, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
		)
		require.True(t, ok)
		assert.Contains(t, errOut.String(), "[collide] WARN: epa: not converged after 16 iterations")
		assert.Empty(t, out.String())
	})

	t.Run("flats", func(t *testing.T) {
		l, _, errOut := bufferedLogger("collide", false)

		config := DefaultConfig()
		config.EPA2D.Tolerance = -1
		d := NewDetector(config, l)

		square := shape.RectVertices(mgl64.Vec2{1, 1})
		_, ok := d.CollideFlats(createFlat(square, mgl64.Vec2{0, 0}), createFlat(square, mgl64.Vec2{1.5, 0}))
		require.True(t, ok)
		assert.Contains(t, errOut.String(), "[collide] WARN: epa2d: not converged after 25 iterations")
	})
}

func TestDetectorLogsBatches(t *testing.T) {
	pairs := boxPairs(10)

	l, out, _ := bufferedLogger("collide", false)
	config := DefaultConfig()
	config.Workers = 2
	d := NewDetector(config, l)

	pairChan := make(chan Pair, len(pairs))
	for _, p := range pairs {
		pairChan <- p
	}
	close(pairChan)

	d.NarrowPhase(pairChan)
	d.CollideAll(pairs)

	assert.Equal(t,
		"[collide] INFO: narrow phase: 4 of 10 pairs overlap\n[collide] INFO: collide all: 4 of 10 pairs overlap\n",
		out.String())

	l.SetDebug(true)
	out.Reset()
	d.NarrowPhase(closedPairs())
	assert.Equal(t,
		"[collide] DEBUG: narrow phase: 2 workers per stage\n[collide] INFO: narrow phase: 0 of 0 pairs overlap\n",
		out.String())
}

func closedPairs() <-chan Pair {
	pairChan := make(chan Pair)
	close(pairChan)
	return pairChan
}
