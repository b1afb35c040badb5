package autofocus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalSnapshot_FillsDefaults(t *testing.T) {
	data := []byte(`
scene:
  rateEnabled: false
  probe: fixed
cameras:
  - camera: Camera
    settings:
      enabled: true
      smooth: true
  - camera: Close
    settings:
      min: 8
      max: 3
      smoothSteps: 0
`)
	snap, err := UnmarshalSnapshot(data)
	require.NoError(t, err)

	assert.False(t, snap.Scene.RateEnabled)
	assert.Equal(t, DefaultRateSeconds, snap.Scene.RateSeconds)
	assert.Equal(t, ProbeFixed, snap.Scene.Probe)

	require.Len(t, snap.Cameras, 2)
	first := snap.Cameras[0].Settings
	assert.True(t, first.Enabled)
	assert.True(t, first.Smooth)
	assert.Equal(t, DefaultSmoothSteps, first.SmoothSteps)
	assert.Equal(t, DefaultMaxDistance, first.Max)

	second := snap.Cameras[1].Settings
	assert.Equal(t, 8.0, second.Min)
	assert.InDelta(t, 8.01, second.Max, 1e-9, "inverted window is corrected on load")
	assert.Equal(t, 1, second.SmoothSteps)
}

func TestUnmarshalSnapshot_BadProbeMode(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte("scene:\n  probe: sideways\n"))
	assert.Error(t, err)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autofocus.yaml")

	cam := DefaultCameraSettings()
	cam.Enabled = true
	cam.Smooth = true
	cam.SmoothSteps = 12
	cam.UID = "Camera1-abcdef01"
	want := SceneSnapshot{
		Scene:   SceneSettings{RateEnabled: true, RateSeconds: 0.25, Probe: ProbeFixed},
		Cameras: []CameraSnapshot{{Camera: "Camera", Settings: cam}},
	}
	require.NoError(t, SaveSnapshot(path, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "probe: fixed")

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	snap, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Equal(t, DefaultSceneSnapshot(), snap)
}
