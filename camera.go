package autofocus

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultSmoothSteps = 24
	DefaultMinDistance = 0.0
	DefaultMaxDistance = 100.0
)

// CameraSettings is the per-camera extension slot the host stores alongside
// its camera data.
type CameraSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Smooth      bool    `yaml:"smooth"`
	SmoothSteps int     `yaml:"smoothSteps"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
	UID         string  `yaml:"uid,omitempty"`
}

func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		SmoothSteps: DefaultSmoothSteps,
		Min:         DefaultMinDistance,
		Max:         DefaultMaxDistance,
	}
}

// Camera is the slice of the host camera model autofocus needs. Implementations
// must be comparable (pointer receivers) since the registry matches cameras by
// identity.
type Camera interface {
	Name() string
	WorldMatrix() mgl64.Mat4
	Location() mgl64.Vec3
	FocusDistance() float64
	SetFocusDistance(distance float64)
	Settings() *CameraSettings
	// Valid reports false once the host has deleted the camera.
	Valid() bool
}

// cameraSettings returns the live settings of cam, or nil when the camera can
// no longer be driven.
func cameraSettings(cam Camera) *CameraSettings {
	if cam == nil || !cam.Valid() {
		return nil
	}
	return cam.Settings()
}
