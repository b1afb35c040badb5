package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gekko3d/autofocus"
	"github.com/go-gl/mathgl/mgl64"
)

// Object is a named shape. Change Shape through Scene.SetShape so the
// broadphase sees the move.
type Object struct {
	Name   string
	Shape  Shape
	Hidden bool
}

// Scene is a minimal host scene: named shapes that can be ray cast and the
// cameras looking at them. It implements autofocus.Raycaster.
type Scene struct {
	mu        sync.RWMutex
	Name      string
	objects   []*Object
	cameras   []*Camera
	grid      *SpatialHashGrid
	unbounded []*Object
}

func NewScene(name string) *Scene {
	return &Scene{Name: name, grid: NewSpatialHashGrid(DefaultCellSize)}
}

// reindexLocked rebuilds the broadphase after any change to the objects.
func (s *Scene) reindexLocked() {
	s.grid.Clear()
	s.unbounded = s.unbounded[:0]
	for _, obj := range s.objects {
		if b, ok := obj.Shape.(Bounded); ok {
			s.grid.Insert(obj, b.Bounds())
		} else if obj.Shape != nil {
			s.unbounded = append(s.unbounded, obj)
		}
	}
}

func (s *Scene) AddObject(name string, shape Shape) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := &Object{Name: name, Shape: shape}
	s.objects = append(s.objects, obj)
	s.reindexLocked()
	return obj
}

func (s *Scene) Object(name string) *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, obj := range s.objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// SetShape replaces the shape of a named object, e.g. to move it.
func (s *Scene) SetShape(name string, shape Shape) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.objects {
		if obj.Name == name {
			obj.Shape = shape
			s.reindexLocked()
			return nil
		}
	}
	return fmt.Errorf("scene %q: no object %q", s.Name, name)
}

func (s *Scene) SetHidden(name string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.objects {
		if obj.Name == name {
			obj.Hidden = hidden
			return nil
		}
	}
	return fmt.Errorf("scene %q: no object %q", s.Name, name)
}

func (s *Scene) RemoveObject(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.objects, func(o *Object) bool { return o.Name == name })
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	s.reindexLocked()
	return true
}

func (s *Scene) AddCamera(cam *Camera) *Camera {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cameras = append(s.cameras, cam)
	return cam
}

// Camera finds a camera by name. It returns nil, not a typed nil, when the
// camera does not exist so it can be handed to autofocus lookups directly.
func (s *Scene) Camera(name string) autofocus.Camera {
	if cam := s.FindCamera(name); cam != nil {
		return cam
	}
	return nil
}

func (s *Scene) FindCamera(name string) *Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cam := range s.cameras {
		if cam.Name() == name {
			return cam
		}
	}
	return nil
}

func (s *Scene) Cameras() []*Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cameras)
}

// DeleteCamera removes a camera from the scene. Anything still holding it
// sees Valid() == false from then on.
func (s *Scene) DeleteCamera(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.cameras, func(c *Camera) bool { return c.Name() == name })
	if i < 0 {
		return false
	}
	s.cameras[i].markDeleted()
	s.cameras = slices.Delete(s.cameras, i, i+1)
	return true
}

// Raycast returns the nearest visible surface hit along direction, no
// further than |direction| from origin.
func (s *Scene) Raycast(origin, direction mgl64.Vec3) autofocus.RaycastHit {
	tMax := direction.Len()
	if tMax == 0 {
		return autofocus.RaycastHit{}
	}
	dir := direction.Mul(1.0 / tMax)

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := append(slices.Clone(s.unbounded), s.grid.QueryRay(origin, dir, tMax)...)

	best := autofocus.RaycastHit{T: tMax}
	for _, obj := range candidates {
		if obj.Hidden || obj.Shape == nil {
			continue
		}
		t, normal, ok := obj.Shape.Intersect(origin, dir)
		if !ok || t > best.T {
			continue
		}
		if best.Hit && t == best.T {
			continue
		}
		best = autofocus.RaycastHit{
			Hit:    true,
			Pos:    origin.Add(dir.Mul(t)),
			Normal: normal,
			T:      t,
		}
	}

	if best.Hit {
		return best
	}
	return autofocus.RaycastHit{}
}
