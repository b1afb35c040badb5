package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const rayEpsilon = 1e-9

// Shape intersects a ray with a unit-length direction and returns the ray
// parameter of the nearest hit at or beyond zero.
type Shape interface {
	Intersect(origin, dir mgl64.Vec3) (t float64, normal mgl64.Vec3, ok bool)
}

// Plane is an infinite two-sided plane.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

func (p Plane) Intersect(origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	n := p.Normal.Normalize()
	denom := n.Dot(dir)
	if math.Abs(denom) < rayEpsilon {
		return 0, mgl64.Vec3{}, false
	}
	t := p.Point.Sub(origin).Dot(n) / denom
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	if denom > 0 {
		n = n.Mul(-1)
	}
	return t, n, true
}

type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func (s Sphere) Intersect(origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// Origin inside the sphere: report the exit point.
		t = -b + sq
	}
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	hit := origin.Add(dir.Mul(t))
	return t, hit.Sub(s.Center).Normalize(), true
}

// Box is an axis-aligned box.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (bx Box) Intersect(origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	var normal mgl64.Vec3

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < rayEpsilon {
			if origin[axis] < bx.Min[axis] || origin[axis] > bx.Max[axis] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t0 := (bx.Min[axis] - origin[axis]) * inv
		t1 := (bx.Max[axis] - origin[axis]) * inv
		sign := -1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1.0
		}
		if t0 > tMin {
			tMin = t0
			normal = mgl64.Vec3{}
			normal[axis] = sign
		}
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return 0, mgl64.Vec3{}, false
		}
	}

	if tMax < 0 {
		return 0, mgl64.Vec3{}, false
	}
	if tMin < 0 {
		return tMax, normal.Mul(-1), true
	}
	return tMin, normal, true
}

func (s Sphere) Bounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (bx Box) Bounds() AABB {
	return AABB{Min: bx.Min, Max: bx.Max}
}
