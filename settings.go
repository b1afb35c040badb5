package autofocus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultRateSeconds = 0.5

// SceneSettings is the per-scene extension slot.
type SceneSettings struct {
	RateEnabled bool      `yaml:"rateEnabled"`
	RateSeconds float64   `yaml:"rateSeconds"`
	Probe       ProbeMode `yaml:"probe"`
}

func DefaultSceneSettings() SceneSettings {
	return SceneSettings{
		RateEnabled: true,
		RateSeconds: DefaultRateSeconds,
		Probe:       ProbeWindowed,
	}
}

func (m ProbeMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *ProbeMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseProbeMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML fills keys missing from the document with their defaults.
func (s *CameraSettings) UnmarshalYAML(value *yaml.Node) error {
	type plain CameraSettings
	p := plain(DefaultCameraSettings())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = CameraSettings(p)
	return nil
}

// CameraSnapshot is the persisted form of one registry entry. The camera is
// referenced by name; the interpolation state is never persisted.
type CameraSnapshot struct {
	Camera   string         `yaml:"camera"`
	Settings CameraSettings `yaml:"settings"`
}

type SceneSnapshot struct {
	Scene   SceneSettings    `yaml:"scene"`
	Cameras []CameraSnapshot `yaml:"cameras"`
}

func DefaultSceneSnapshot() SceneSnapshot {
	return SceneSnapshot{Scene: DefaultSceneSettings()}
}

func MarshalSnapshot(snap SceneSnapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal autofocus settings: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes data over the defaults, so missing keys keep
// their default values.
func UnmarshalSnapshot(data []byte) (SceneSnapshot, error) {
	snap := DefaultSceneSnapshot()
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return DefaultSceneSnapshot(), fmt.Errorf("failed to unmarshal autofocus settings: %w", err)
	}
	for i := range snap.Cameras {
		NormalizeSettings(&snap.Cameras[i].Settings)
	}
	return snap, nil
}

func LoadSnapshot(path string) (SceneSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSceneSnapshot(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}

func SaveSnapshot(path string, snap SceneSnapshot) error {
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
