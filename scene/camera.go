package scene

import (
	"sync"

	"github.com/gekko3d/autofocus"
	"github.com/go-gl/mathgl/mgl64"
)

const DefaultFocusDistance = 10.0

// Camera is a scene camera with depth-of-field data and the autofocus
// extension slot.
type Camera struct {
	mu            sync.Mutex
	name          string
	Transform     *Transform
	focusDistance float64
	autofocus     autofocus.CameraSettings
	deleted       bool
}

func NewCamera(name string) *Camera {
	return &Camera{
		name:          name,
		Transform:     NewTransform(),
		focusDistance: DefaultFocusDistance,
		autofocus:     autofocus.DefaultCameraSettings(),
	}
}

func (c *Camera) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Rename changes the display name. Autofocus entries keep their id.
func (c *Camera) Rename(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

func (c *Camera) WorldMatrix() mgl64.Mat4 {
	return c.Transform.ObjectToWorld()
}

func (c *Camera) Location() mgl64.Vec3 {
	return c.Transform.Position
}

func (c *Camera) FocusDistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusDistance
}

func (c *Camera) SetFocusDistance(distance float64) {
	c.mu.Lock()
	c.focusDistance = distance
	c.mu.Unlock()
}

func (c *Camera) Settings() *autofocus.CameraSettings {
	return &c.autofocus
}

func (c *Camera) Valid() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.deleted
}

func (c *Camera) markDeleted() {
	c.mu.Lock()
	c.deleted = true
	c.mu.Unlock()
}
