package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/akmonengine/collide"
	"github.com/akmonengine/collide/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a ground slab and the falling solid. The solid borrows cubeTransform,
// so moving it only means writing the matrix.
func SetupScene(hull *shape.Hull, cubeTransform *mgl64.Mat4) (ground, cube *collide.Solid) {
	ground = collide.NewSolid(shape.BoxVertices(mgl64.Vec3{10, 0.5, 10}), mgl64.Translate3D(0, -0.5, 0))
	cube = collide.NewSolidRef(hull.Vertices, cubeTransform)
	return ground, cube
}

func loadHull(path, mesh string) (*shape.Hull, error) {
	if path == "" {
		return shape.NewHull(shape.BoxVertices(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Ident4()), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return shape.LoadHullGLTF(f, mesh)
}

// Falling lowers a tilted solid onto the ground and reports the penetration at each step.
func Falling(detector *collide.Detector, hull *shape.Hull, steps int) {
	fmt.Println("Falling solid")
	fmt.Println("=============")

	transform := shape.Transform{
		Position: mgl64.Vec3{0, 1.5, 0},
		Rotation: mgl64.QuatRotate(0.3, mgl64.Vec3{0, 0, 1}),
	}
	cubeTransform := transform.Mat4()
	ground, cube := SetupScene(hull, &cubeTransform)

	for step := 0; step < steps; step++ {
		transform.Position = transform.Position.Sub(mgl64.Vec3{0, 0.1, 0})
		cubeTransform = transform.Mat4()

		info, ok := detector.CollideSolids(ground, cube)
		if !ok {
			fmt.Printf("step %2d  y=%.2f  no contact\n", step+1, transform.Position.Y())
			continue
		}

		fmt.Printf("step %2d  y=%.2f  depth=%.4f normal=%v point=%v converged=%v (%d iterations)\n",
			step+1, transform.Position.Y(), info.Distance, info.Normal, info.Point, info.Converged, info.Iterations)
	}
	fmt.Println()
}

// Planar compares two hexagons at increasing distances.
func Planar(detector *collide.Detector) {
	fmt.Println("Planar hexagons")
	fmt.Println("===============")

	hexagon := shape.RegularPolygonVertices(6, 1)
	a := collide.NewFlat(hexagon, mgl64.Ident3())

	for _, x := range []float64{0.5, 1.0, 1.5, 2.5} {
		b := collide.NewFlat(hexagon, shape.Transform2D{Position: mgl64.Vec2{x, 0.3}, Angle: 0.2}.Mat3())

		info, ok := detector.CollideFlats(a, b)
		if !ok {
			fmt.Printf("x=%.1f  no contact\n", x)
			continue
		}
		fmt.Printf("x=%.1f  depth=%.4f normal=%v\n", x, info.Distance, info.Normal)
	}
	fmt.Println()
}

// Batch runs a row of overlapping cubes through the narrow phase pipeline.
func Batch(detector *collide.Detector, count int) {
	fmt.Println("Batch")
	fmt.Println("=====")

	solids := make([]*collide.Solid, count)
	for i := range solids {
		solids[i] = collide.NewSolid(shape.BoxVertices(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Translate3D(float64(i)*0.95, 0, 0))
	}

	pairs := make(chan collide.Pair, count)
	for i := 0; i+1 < count; i++ {
		pairs <- collide.Pair{Index: i, A: solids[i], B: solids[i+1]}
	}
	close(pairs)

	for _, c := range detector.NarrowPhase(pairs) {
		fmt.Printf("pair %d  depth=%.4f normal=%v\n", c.Index, c.Info.Distance, c.Info.Normal)
	}
}

func main() {
	gltfPath := flag.String("gltf", "", "load the falling solid from a .gltf/.glb file")
	mesh := flag.String("mesh", "", "mesh name inside the glTF file, first mesh when empty")
	steps := flag.Int("steps", 20, "falling steps")
	workers := flag.Int("workers", 4, "goroutines per narrow phase stage")
	debug := flag.Bool("debug", false, "log unconverged queries")
	flag.Parse()

	logger := collide.NewDefaultLogger("overlap", *debug)

	hull, err := loadHull(*gltfPath, *mesh)
	if err != nil {
		logger.Errorf("load hull: %v", err)
		os.Exit(1)
	}

	config := collide.DefaultConfig()
	config.Workers = *workers
	detector := collide.NewDetector(config, logger)

	Falling(detector, hull, *steps)
	Planar(detector)
	Batch(detector, 8)
}
