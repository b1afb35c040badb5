package autofocus

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type CameraEntry struct {
	UID    string
	Camera Camera
}

// CameraRegistry is the ordered list of autofocus-enabled cameras.
type CameraRegistry struct {
	entries []CameraEntry
}

// NewUID builds a camera entry id from the camera name and the enable time.
// The uuid suffix keeps two same-named cameras enabled within one clock tick
// apart.
func NewUID(name string, now time.Time) string {
	return fmt.Sprintf("%s%d-%s", name, now.UnixNano(), uuid.NewString()[:8])
}

func (r *CameraRegistry) Add(uid string, cam Camera) error {
	if uid == "" {
		return fmt.Errorf("registry: empty uid for camera %q", cam.Name())
	}
	if r.index(uid) >= 0 {
		return fmt.Errorf("registry: uid %q already registered", uid)
	}
	r.entries = append(r.entries, CameraEntry{UID: uid, Camera: cam})
	return nil
}

func (r *CameraRegistry) Remove(uid string) (CameraEntry, bool) {
	i := r.index(uid)
	if i < 0 {
		return CameraEntry{}, false
	}
	entry := r.entries[i]
	r.entries = slices.Delete(r.entries, i, i+1)
	return entry, true
}

func (r *CameraRegistry) Lookup(uid string) (CameraEntry, bool) {
	i := r.index(uid)
	if i < 0 {
		return CameraEntry{}, false
	}
	return r.entries[i], true
}

func (r *CameraRegistry) FindCamera(cam Camera) (CameraEntry, bool) {
	for _, e := range r.entries {
		if e.Camera == cam {
			return e, true
		}
	}
	return CameraEntry{}, false
}

// Entries returns a copy of the registry in enable order.
func (r *CameraRegistry) Entries() []CameraEntry {
	return slices.Clone(r.entries)
}

func (r *CameraRegistry) Len() int {
	return len(r.entries)
}

func (r *CameraRegistry) index(uid string) int {
	return slices.IndexFunc(r.entries, func(e CameraEntry) bool {
		return e.UID == uid
	})
}
