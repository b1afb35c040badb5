package autofocus

import (
	"errors"
	"sync"
	"time"
)

const (
	// StepInterval is the fine tick period of the smoothing stepper.
	StepInterval       = time.Second / 24
	SmoothingTimerName = "autofocus.smoothing"
)

var (
	ErrNilCamera      = errors.New("autofocus: nil or deleted camera")
	ErrAlreadyEnabled = errors.New("autofocus: camera already enabled")
	ErrNotEnabled     = errors.New("autofocus: camera not enabled")
	ErrUnknownCamera  = errors.New("autofocus: unknown camera")
	ErrModuleMissing  = errors.New("autofocus: module not installed")
)

// FocusEvent describes one write to a camera's focus distance.
type FocusEvent struct {
	UID         string    `json:"uid"`
	Camera      string    `json:"camera"`
	Distance    float64   `json:"distance"`
	Destination float64   `json:"destination"`
	Phase       Phase     `json:"phase"`
	Smoothed    bool      `json:"smoothed"`
	Time        time.Time `json:"time"`
}

// FocusObserver is notified of focus writes. It is called with the
// coordinator locked and must not block or call back into it.
type FocusObserver interface {
	FocusChanged(ev FocusEvent)
}

type Options struct {
	Scene     SceneSettings
	Raycaster Raycaster
	// Timers schedules the smoothing stepper. Without it the host must call
	// FineTick itself.
	Timers *Timers
	Logger Logger
	Now    func() time.Time
}

// Autofocus owns all autofocus state for one scene: the camera registry, the
// per-camera focus states and the coarse update clock. The coarse update
// (SceneUpdate) and the fine tick (FineTick) may be called from any
// goroutine in any order.
type Autofocus struct {
	mu        sync.Mutex
	scene     SceneSettings
	raycaster Raycaster
	registry  CameraRegistry
	states    map[string]*FocusState
	clock     *FocusClock
	timers    *Timers
	logger    Logger
	observers []FocusObserver
	now       func() time.Time
}

func New(opts Options) *Autofocus {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	af := &Autofocus{
		scene:     opts.Scene,
		raycaster: opts.Raycaster,
		states:    make(map[string]*FocusState),
		timers:    opts.Timers,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	af.clock = NewFocusClock(opts.Scene.RateEnabled, secondsToDuration(opts.Scene.RateSeconds), af.now())
	return af
}

func (af *Autofocus) AddObserver(o FocusObserver) {
	af.mu.Lock()
	defer af.mu.Unlock()
	af.observers = append(af.observers, o)
}

// EnableAutofocus registers cam and returns its new entry id.
func (af *Autofocus) EnableAutofocus(cam Camera) (string, error) {
	settings := cameraSettings(cam)
	if settings == nil {
		return "", ErrNilCamera
	}

	af.mu.Lock()
	defer af.mu.Unlock()

	if _, ok := af.registry.FindCamera(cam); ok {
		return "", ErrAlreadyEnabled
	}

	now := af.now()
	uid := NewUID(cam.Name(), now)
	if err := af.registry.Add(uid, cam); err != nil {
		return "", err
	}
	settings.Enabled = true
	settings.UID = uid
	NormalizeSettings(settings)
	af.clock.Reset(now)

	af.logger.Infof("autofocus enabled on %q (%s)", cam.Name(), uid)
	return uid, nil
}

// DisableAutofocus removes cam and its focus state in one step.
func (af *Autofocus) DisableAutofocus(cam Camera) error {
	if cam == nil {
		return ErrNilCamera
	}

	af.mu.Lock()
	defer af.mu.Unlock()

	entry, ok := af.registry.FindCamera(cam)
	if !ok {
		return ErrNotEnabled
	}
	af.removeLocked(entry.UID)
	if settings := cam.Settings(); settings != nil {
		settings.Enabled = false
		settings.UID = ""
	}
	af.clock.Reset(af.now())

	af.logger.Infof("autofocus disabled on %q (%s)", cam.Name(), entry.UID)
	return nil
}

// DisableByUID removes an entry whose camera may no longer exist.
func (af *Autofocus) DisableByUID(uid string) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	entry, ok := af.registry.Lookup(uid)
	if !ok {
		return ErrUnknownCamera
	}
	af.removeLocked(uid)
	if settings := cameraSettings(entry.Camera); settings != nil {
		settings.Enabled = false
		settings.UID = ""
	}
	af.clock.Reset(af.now())
	return nil
}

func (af *Autofocus) removeLocked(uid string) {
	af.registry.Remove(uid)
	delete(af.states, uid)
}

func (af *Autofocus) SceneSettings() SceneSettings {
	af.mu.Lock()
	defer af.mu.Unlock()
	return af.scene
}

// ApplySceneSettings replaces the scene settings. Turning the rate gate on
// resets the clock.
func (af *Autofocus) ApplySceneSettings(s SceneSettings) {
	af.mu.Lock()
	defer af.mu.Unlock()

	wasEnabled := af.scene.RateEnabled
	af.scene = s
	af.clock.Enabled = s.RateEnabled
	af.clock.Rate = secondsToDuration(s.RateSeconds)
	if s.RateEnabled != wasEnabled {
		af.clock.Reset(af.now())
	}
}

func (af *Autofocus) SetRateEnabled(enabled bool) {
	af.mu.Lock()
	defer af.mu.Unlock()

	af.scene.RateEnabled = enabled
	af.clock.Enabled = enabled
	af.clock.Reset(af.now())
}

func (af *Autofocus) SetRateSeconds(seconds float64) {
	af.mu.Lock()
	defer af.mu.Unlock()

	af.scene.RateSeconds = seconds
	af.clock.Rate = secondsToDuration(seconds)
}

func (af *Autofocus) SetProbeMode(mode ProbeMode) {
	af.mu.Lock()
	defer af.mu.Unlock()
	af.scene.Probe = mode
}

// State returns a copy of the focus state of the entry uid.
func (af *Autofocus) State(uid string) (FocusState, bool) {
	af.mu.Lock()
	defer af.mu.Unlock()

	s, ok := af.states[uid]
	if !ok {
		return FocusState{}, false
	}
	return *s, true
}

func (af *Autofocus) Phase(uid string) Phase {
	af.mu.Lock()
	defer af.mu.Unlock()
	return af.states[uid].Phase()
}

func (af *Autofocus) Cameras() []CameraEntry {
	af.mu.Lock()
	defer af.mu.Unlock()
	return af.registry.Entries()
}

// SceneUpdate is the coarse update: when the clock lets it through it probes
// every registered camera and moves its focus state toward the new
// destination. It reports whether the update ran.
func (af *Autofocus) SceneUpdate(now time.Time) bool {
	af.mu.Lock()
	defer af.mu.Unlock()

	if !af.clock.Tick(now) {
		return false
	}
	if af.raycaster == nil {
		af.logger.Debugf("scene update skipped: no raycaster")
		return true
	}

	needsStepper := false
	for _, entry := range af.registry.Entries() {
		cam := entry.Camera
		settings := cameraSettings(cam)
		if settings == nil {
			af.logger.Warnf("camera %s is gone, removing it from autofocus", entry.UID)
			af.removeLocked(entry.UID)
			continue
		}
		NormalizeSettings(settings)

		target, ok := ProbeFocus(af.raycaster, cam, settings, af.scene.Probe)
		if !ok {
			continue
		}

		state, ok := af.states[entry.UID]
		if !ok {
			state = newFocusState()
			af.states[entry.UID] = state
		}
		current := cam.FocusDistance()

		if !settings.Smooth {
			state.applyImmediate(current, target)
			cam.SetFocusDistance(target)
			af.notifyLocked(entry, state, target, false, now)
			continue
		}

		if state.accept(current, target) {
			af.logger.Debugf("%s: focusing %.3f -> %.3f over %d steps", entry.UID, current, target, settings.SmoothSteps)
		}
		if state.DestinationChanged {
			needsStepper = true
		}
	}

	if needsStepper && af.timers != nil {
		af.timers.Register(SmoothingTimerName, StepInterval, af.FineTick)
	}
	return true
}

// FineTick advances every converging smoothed camera by one step. It is a
// TimerFunc: it asks to be rescheduled while any camera is still converging.
func (af *Autofocus) FineTick(now time.Time) (time.Duration, bool) {
	af.mu.Lock()
	defer af.mu.Unlock()

	active := false
	for _, entry := range af.registry.entries {
		state, ok := af.states[entry.UID]
		if !ok {
			continue
		}
		settings := cameraSettings(entry.Camera)
		if settings == nil || !settings.Smooth {
			continue
		}

		value, ok := state.advance(settings.SmoothSteps)
		if !ok {
			continue
		}
		entry.Camera.SetFocusDistance(value)
		af.notifyLocked(entry, state, value, true, now)

		if state.DestinationChanged {
			active = true
		}
	}
	return StepInterval, active
}

func (af *Autofocus) notifyLocked(entry CameraEntry, state *FocusState, distance float64, smoothed bool, now time.Time) {
	if len(af.observers) == 0 {
		return
	}
	ev := FocusEvent{
		UID:         entry.UID,
		Camera:      entry.Camera.Name(),
		Distance:    distance,
		Destination: state.Destination,
		Phase:       state.Phase(),
		Smoothed:    smoothed,
		Time:        now,
	}
	for _, o := range af.observers {
		o.FocusChanged(ev)
	}
}

// Snapshot captures what a host would persist: scene settings and the
// settings of every registered camera.
func (af *Autofocus) Snapshot() SceneSnapshot {
	af.mu.Lock()
	defer af.mu.Unlock()

	snap := SceneSnapshot{Scene: af.scene}
	for _, entry := range af.registry.entries {
		settings := cameraSettings(entry.Camera)
		if settings == nil {
			continue
		}
		snap.Cameras = append(snap.Cameras, CameraSnapshot{
			Camera:   entry.Camera.Name(),
			Settings: *settings,
		})
	}
	return snap
}

// Restore rebuilds the registry from a snapshot after a reload. Cameras are
// resolved by name through lookup; focus states start over. It returns the
// number of cameras restored.
func (af *Autofocus) Restore(snap SceneSnapshot, lookup func(name string) Camera) int {
	af.mu.Lock()
	defer af.mu.Unlock()

	af.scene = snap.Scene
	af.clock.Enabled = snap.Scene.RateEnabled
	af.clock.Rate = secondsToDuration(snap.Scene.RateSeconds)
	af.registry = CameraRegistry{}
	af.states = make(map[string]*FocusState)

	now := af.now()
	restored := 0
	for _, cs := range snap.Cameras {
		if !cs.Settings.Enabled {
			continue
		}
		cam := lookup(cs.Camera)
		settings := cameraSettings(cam)
		if settings == nil {
			af.logger.Warnf("restore: camera %q not found, dropping its autofocus entry", cs.Camera)
			continue
		}
		if _, dup := af.registry.FindCamera(cam); dup {
			af.logger.Warnf("restore: camera %q listed twice, keeping the first entry", cs.Camera)
			continue
		}

		*settings = cs.Settings
		if settings.UID == "" {
			settings.UID = NewUID(cam.Name(), now)
		}
		NormalizeSettings(settings)
		if err := af.registry.Add(settings.UID, cam); err != nil {
			af.logger.Warnf("restore: %v", err)
			continue
		}
		restored++
	}
	af.clock.Reset(now)

	af.logger.Infof("restored autofocus on %d camera(s)", restored)
	return restored
}
