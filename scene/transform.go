package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

func (t *Transform) ObjectToWorld() mgl64.Mat4 {
	// M = T * R * S
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldToObject() mgl64.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl64.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl64.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// LookAt points the local -Z axis from the current position toward target.
func (t *Transform) LookAt(target, up mgl64.Vec3) {
	view := mgl64.LookAtV(t.Position, target, up)
	t.Rotation = mgl64.Mat4ToQuat(view.Inv()).Normalize()
}

func (t *Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}
