package autofocus

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

type ProbeMode int

const (
	// ProbeWindowed casts from Min along the view axis and clamps the result
	// into [Min, Max]. Surfaces beyond Max focus at Max.
	ProbeWindowed ProbeMode = iota
	// ProbeFixed casts FixedProbeRange units from the camera position.
	ProbeFixed
)

const (
	FixedProbeRange = 100.0
	// OpenProbeRange is how far a windowed probe looks past the window start.
	OpenProbeRange = 1e6
	windowEpsilon  = 0.01
)

func (m ProbeMode) String() string {
	switch m {
	case ProbeWindowed:
		return "windowed"
	case ProbeFixed:
		return "fixed"
	default:
		return fmt.Sprintf("ProbeMode(%d)", int(m))
	}
}

func ParseProbeMode(s string) (ProbeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "windowed", "window":
		return ProbeWindowed, nil
	case "fixed":
		return ProbeFixed, nil
	}
	return ProbeWindowed, fmt.Errorf("unknown probe mode %q", s)
}

type RaycastHit struct {
	Hit    bool
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	T      float64
}

// Raycaster is the host scene query. The length of direction is the probe
// range: surfaces further than |direction| from origin are not reported.
type Raycaster interface {
	Raycast(origin, direction mgl64.Vec3) RaycastHit
}

type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NormalizeSettings corrects degenerate settings in place and reports whether
// anything changed.
func NormalizeSettings(s *CameraSettings) bool {
	changed := false
	if s.Min < 0 {
		s.Min = 0
		changed = true
	}
	if s.Max <= s.Min {
		s.Max = s.Min + windowEpsilon
		changed = true
	}
	if s.SmoothSteps < 1 {
		s.SmoothSteps = 1
		changed = true
	}
	return changed
}

// PlanRay builds the probe ray for cam. The camera looks down its local -Z.
// A windowed ray spans the window from Min to Max.
func PlanRay(cam Camera, s *CameraSettings, mode ProbeMode) Ray {
	world := cam.WorldMatrix()

	if mode == ProbeFixed {
		axis := world.Mul4x1(mgl64.Vec4{0, 0, -1, 0}).Vec3()
		if axis.Len() == 0 {
			return Ray{Origin: cam.Location()}
		}
		return Ray{
			Origin:    cam.Location(),
			Direction: axis.Normalize().Mul(FixedProbeRange),
		}
	}

	org := world.Mul4x1(mgl64.Vec4{0, 0, -s.Min, 1}).Vec3()
	dst := world.Mul4x1(mgl64.Vec4{0, 0, -s.Max, 1}).Vec3()
	return Ray{Origin: org, Direction: dst.Sub(org)}
}

// ProbeFocus casts the probe ray and returns the focus distance to the nearest
// surface. ok is false on a miss. A windowed probe is cast OpenProbeRange
// along the window's direction, so surfaces behind the window still pull
// focus to Max.
func ProbeFocus(rc Raycaster, cam Camera, s *CameraSettings, mode ProbeMode) (distance float64, ok bool) {
	ray := PlanRay(cam, s, mode)
	span := ray.Direction.Len()
	if span == 0 {
		return 0, false
	}
	if mode == ProbeWindowed {
		ray.Direction = ray.Direction.Mul(max(OpenProbeRange, span) / span)
	}

	hit := rc.Raycast(ray.Origin, ray.Direction)
	if !hit.Hit {
		return 0, false
	}

	distance = cam.Location().Sub(hit.Pos).Len()
	if mode == ProbeWindowed {
		distance = mgl64.Clamp(distance, s.Min, s.Max)
	}
	return distance, true
}
