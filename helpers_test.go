package autofocus

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

type fakeCamera struct {
	name     string
	pos      mgl64.Vec3
	rot      mgl64.Quat
	focus    float64
	settings CameraSettings
	deleted  bool
	writes   int
}

func newFakeCamera(name string) *fakeCamera {
	return &fakeCamera{
		name:     name,
		rot:      mgl64.QuatIdent(),
		focus:    1,
		settings: DefaultCameraSettings(),
	}
}

func (c *fakeCamera) Name() string { return c.name }
func (c *fakeCamera) WorldMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(c.pos.X(), c.pos.Y(), c.pos.Z()).Mul4(c.rot.Mat4())
}
func (c *fakeCamera) Location() mgl64.Vec3      { return c.pos }
func (c *fakeCamera) FocusDistance() float64    { return c.focus }
func (c *fakeCamera) Settings() *CameraSettings { return &c.settings }
func (c *fakeCamera) Valid() bool               { return !c.deleted }
func (c *fakeCamera) SetFocusDistance(d float64) {
	c.focus = d
	c.writes++
}

// planeRaycaster hits the plane z = Z when it lies within the probe range.
type planeRaycaster struct {
	Z     float64
	Miss  bool
	Calls int
	Rays  []Ray
}

func (p *planeRaycaster) Raycast(origin, direction mgl64.Vec3) RaycastHit {
	p.Calls++
	p.Rays = append(p.Rays, Ray{Origin: origin, Direction: direction})
	if p.Miss || direction.Z() == 0 {
		return RaycastHit{}
	}
	dir := direction.Normalize()
	t := (p.Z - origin.Z()) / dir.Z()
	if t < 0 || t > direction.Len() {
		return RaycastHit{}
	}
	return RaycastHit{
		Hit:    true,
		Pos:    origin.Add(dir.Mul(t)),
		Normal: mgl64.Vec3{0, 0, 1},
		T:      t,
	}
}

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *manualClock) Now() time.Time { return c.t }
func (c *manualClock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type recordingObserver struct {
	events []FocusEvent
}

func (r *recordingObserver) FocusChanged(ev FocusEvent) {
	r.events = append(r.events, ev)
}

// newTestAutofocus returns a coordinator with the rate gate off, driven by a
// manual clock.
func newTestAutofocus(rc Raycaster) (*Autofocus, *manualClock) {
	clock := newManualClock()
	af := New(Options{
		Scene:     SceneSettings{RateEnabled: false, RateSeconds: DefaultRateSeconds},
		Raycaster: rc,
		Now:       clock.Now,
	})
	return af, clock
}
