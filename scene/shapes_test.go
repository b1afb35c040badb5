package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPlane_Intersect(t *testing.T) {
	p := Plane{Point: mgl64.Vec3{0, 0, -10}, Normal: mgl64.Vec3{0, 0, 1}}

	tHit, n, ok := p.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1})
	assert.True(t, ok)
	assert.InDelta(t, 10, tHit, 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, n)

	_, _, ok = p.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	assert.False(t, ok, "plane behind the ray")

	_, _, ok = p.Intersect(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	assert.False(t, ok, "parallel ray")

	// Two-sided: hit from behind flips the normal toward the ray.
	_, n, ok = p.Intersect(mgl64.Vec3{0, 0, -20}, mgl64.Vec3{0, 0, 1})
	assert.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, n)
}

func TestSphere_Intersect(t *testing.T) {
	s := Sphere{Center: mgl64.Vec3{0, 0, -10}, Radius: 2}

	tHit, n, ok := s.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1})
	assert.True(t, ok)
	assert.InDelta(t, 8, tHit, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{0, 0, 1}, n, 1e-12)

	tHit, _, ok = s.Intersect(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{0, 0, -1})
	assert.True(t, ok)
	assert.InDelta(t, 2, tHit, 1e-9, "inside the sphere reports the exit")

	_, _, ok = s.Intersect(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0, 0, -1})
	assert.False(t, ok)
}

func TestBox_Intersect(t *testing.T) {
	b := Box{Min: mgl64.Vec3{-1, -1, -6}, Max: mgl64.Vec3{1, 1, -4}}

	tHit, n, ok := b.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1})
	assert.True(t, ok)
	assert.InDelta(t, 4, tHit, 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, n)

	_, _, ok = b.Intersect(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 0, -1})
	assert.False(t, ok)

	_, _, ok = b.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	assert.False(t, ok, "box behind the ray")
}
