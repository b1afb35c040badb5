package autofocus

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSettings(t *testing.T) {
	s := CameraSettings{Min: 5, Max: 5, SmoothSteps: 0}
	assert.True(t, NormalizeSettings(&s))
	assert.InDelta(t, 5.01, s.Max, 1e-12)
	assert.Equal(t, 1, s.SmoothSteps)

	s = CameraSettings{Min: -1, Max: 10, SmoothSteps: 24}
	assert.True(t, NormalizeSettings(&s))
	assert.Equal(t, 0.0, s.Min)

	s = DefaultCameraSettings()
	assert.False(t, NormalizeSettings(&s))
}

func TestPlanRay_Windowed(t *testing.T) {
	cam := newFakeCamera("cam")
	cam.pos = mgl64.Vec3{1, 2, 3}
	s := CameraSettings{Min: 2, Max: 12, SmoothSteps: 1}

	ray := PlanRay(cam, &s, ProbeWindowed)
	assertVecInDelta(t, mgl64.Vec3{1, 2, 1}, ray.Origin, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{0, 0, -10}, ray.Direction, 1e-9)
}

func TestPlanRay_FixedFollowsRotation(t *testing.T) {
	cam := newFakeCamera("cam")
	// Quarter turn about +Y: local -Z ends up pointing along world -X.
	cam.rot = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	s := DefaultCameraSettings()

	ray := PlanRay(cam, &s, ProbeFixed)
	assertVecInDelta(t, mgl64.Vec3{}, ray.Origin, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{-FixedProbeRange, 0, 0}, ray.Direction, 1e-9)
}

func TestProbeFocus_PlaneAtTen(t *testing.T) {
	cam := newFakeCamera("cam")
	s := CameraSettings{Min: 0, Max: 100, SmoothSteps: 24}
	rc := &planeRaycaster{Z: -10}

	d, ok := ProbeFocus(rc, cam, &s, ProbeWindowed)
	require.True(t, ok)
	assert.Equal(t, 10.0, d)
}

func TestProbeFocus_Miss(t *testing.T) {
	cam := newFakeCamera("cam")
	s := CameraSettings{Min: 0, Max: 5, SmoothSteps: 24}

	_, ok := ProbeFocus(&planeRaycaster{Z: -1, Miss: true}, cam, &s, ProbeWindowed)
	assert.False(t, ok)

	_, ok = ProbeFocus(&planeRaycaster{Z: 10}, cam, &s, ProbeWindowed)
	assert.False(t, ok, "plane behind the camera")
}

func TestProbeFocus_BeyondWindowClampsToMax(t *testing.T) {
	cam := newFakeCamera("cam")
	s := DefaultCameraSettings()
	rc := &planeRaycaster{Z: -150}

	d, ok := ProbeFocus(rc, cam, &s, ProbeWindowed)
	require.True(t, ok)
	assert.Equal(t, s.Max, d)

	require.Len(t, rc.Rays, 1)
	assert.GreaterOrEqual(t, rc.Rays[0].Direction.Len(), OpenProbeRange)
	assertVecInDelta(t, mgl64.Vec3{0, 0, -1}, rc.Rays[0].Direction.Normalize(), 1e-12)

	// The fixed probe keeps its own range.
	_, ok = ProbeFocus(rc, cam, &s, ProbeFixed)
	assert.False(t, ok)
}

func TestProbeFocus_WindowOriginOffset(t *testing.T) {
	cam := newFakeCamera("cam")
	s := CameraSettings{Min: 4, Max: 50, SmoothSteps: 24}
	rc := &planeRaycaster{Z: -2}

	// The plane sits in front of the window start and is never seen.
	_, ok := ProbeFocus(rc, cam, &s, ProbeWindowed)
	assert.False(t, ok)

	rc.Z = -20
	d, ok := ProbeFocus(rc, cam, &s, ProbeWindowed)
	require.True(t, ok)
	assert.InDelta(t, 20.0, d, 1e-12, "distance is measured from the camera, not the window start")
}

func TestProbeFocus_FixedIgnoresWindow(t *testing.T) {
	cam := newFakeCamera("cam")
	s := CameraSettings{Min: 30, Max: 40, SmoothSteps: 24}
	rc := &planeRaycaster{Z: -10}

	d, ok := ProbeFocus(rc, cam, &s, ProbeFixed)
	require.True(t, ok)
	assert.Equal(t, 10.0, d)
}

func TestParseProbeMode(t *testing.T) {
	m, err := ParseProbeMode("Fixed")
	require.NoError(t, err)
	assert.Equal(t, ProbeFixed, m)

	m, err = ParseProbeMode("")
	require.NoError(t, err)
	assert.Equal(t, ProbeWindowed, m)

	_, err = ParseProbeMode("sideways")
	assert.Error(t, err)
}
