package shape

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid placement in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Mat4 returns the affine matrix rotating first, then translating.
func (t Transform) Mat4() mgl64.Mat4 {
	translation := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	return translation.Mul4(t.Rotation.Normalize().Mat4())
}

// Transform2D is a rigid placement in the plane, Angle in radians.
type Transform2D struct {
	Position mgl64.Vec2
	Angle    float64
}

// Mat3 returns the homogeneous matrix rotating first, then translating.
func (t Transform2D) Mat3() mgl64.Mat3 {
	translation := mgl64.Translate2D(t.Position.X(), t.Position.Y())
	return translation.Mul3(mgl64.HomogRotate2D(t.Angle))
}
