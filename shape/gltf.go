package shape

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	// ErrMeshNotFound is returned when the requested mesh is absent from the document.
	ErrMeshNotFound = errors.New("shape: mesh not found")
	// ErrNoPositions is returned when no primitive of the mesh carries a POSITION attribute.
	ErrNoPositions = errors.New("shape: mesh has no vertex positions")
)

// LoadHullGLTF decodes a .gltf/.glb stream and builds a hull from the POSITION data of
// every primitive of the named mesh. An empty name selects the first mesh. The hull gets
// an identity transform; the vertices are used as-is, convexity is assumed.
func LoadHullGLTF(r io.Reader, meshName string) (*Hull, error) {
	doc := gltf.NewDocument()
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("shape: decode gltf: %w", err)
	}

	var mesh *gltf.Mesh
	for _, m := range doc.Meshes {
		if meshName == "" || m.Name == meshName {
			mesh = m
			break
		}
	}
	if mesh == nil {
		return nil, fmt.Errorf("%w: %q", ErrMeshNotFound, meshName)
	}

	var vertices []mgl64.Vec3
	for _, primitive := range mesh.Primitives {
		accessor, ok := primitive.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, fmt.Errorf("shape: read positions of %q: %w", mesh.Name, err)
		}

		for _, p := range positions {
			vertices = append(vertices, mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		}
	}

	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPositions, mesh.Name)
	}

	return NewHull(vertices, mgl64.Ident4()), nil
}
