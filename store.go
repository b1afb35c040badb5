package autofocus

import (
	"fmt"
	"strings"

	"github.com/quasilyte/gdata/v2"
)

const storeObject = "autofocus"

// SettingsStore persists scene snapshots in the platform's app data
// directory. A store without a manager runs in memory-only mode: saves are
// dropped and loads return defaults.
type SettingsStore struct {
	manager *gdata.Manager
	logger  Logger
}

func OpenSettingsStore(appName string, logger Logger) (*SettingsStore, error) {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return NewSettingsStore(nil, logger), fmt.Errorf("failed to open settings store %q: %w", appName, err)
	}
	return NewSettingsStore(manager, logger), nil
}

func NewSettingsStore(manager *gdata.Manager, logger Logger) *SettingsStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &SettingsStore{manager: manager, logger: logger}
}

func (s *SettingsStore) Persistent() bool {
	return s.manager != nil
}

// Load returns the snapshot saved for scene, or the defaults if nothing was
// saved yet.
func (s *SettingsStore) Load(scene string) (SceneSnapshot, error) {
	if s.manager == nil {
		return DefaultSceneSnapshot(), nil
	}

	key := storeKey(scene)
	if !s.manager.ObjectPropExists(storeObject, key) {
		return DefaultSceneSnapshot(), nil
	}

	data, err := s.manager.LoadObjectProp(storeObject, key)
	if err != nil {
		return DefaultSceneSnapshot(), fmt.Errorf("failed to load autofocus settings for %q: %w", scene, err)
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		return snap, err
	}

	s.logger.Debugf("loaded autofocus settings for %q (%d camera(s))", scene, len(snap.Cameras))
	return snap, nil
}

func (s *SettingsStore) Save(scene string, snap SceneSnapshot) error {
	if s.manager == nil {
		return nil
	}

	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.manager.SaveObjectProp(storeObject, storeKey(scene), data); err != nil {
		return fmt.Errorf("failed to save autofocus settings for %q: %w", scene, err)
	}

	s.logger.Debugf("saved autofocus settings for %q", scene)
	return nil
}

// storeKey maps a scene name onto the characters safe in a file name.
func storeKey(scene string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(scene) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "scene"
	}
	return b.String()
}
