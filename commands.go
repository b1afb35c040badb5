package autofocus

import (
	"errors"
)

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) Autofocus() (*Autofocus, error) {
	af, ok := Resource[Autofocus](cmd.app)
	if !ok {
		return nil, ErrModuleMissing
	}
	return af, nil
}

func (cmd *Commands) EnableAutofocus(cam Camera) (string, error) {
	af, err := cmd.Autofocus()
	if err != nil {
		return "", err
	}
	return af.EnableAutofocus(cam)
}

func (cmd *Commands) DisableAutofocus(cam Camera) error {
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}
	return af.DisableAutofocus(cam)
}

// SetAutofocusEnabled is the panel checkbox binding. Setting the current
// value again is a no-op.
func (cmd *Commands) SetAutofocusEnabled(cam Camera, enabled bool) error {
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}

	var opErr error
	if enabled {
		_, opErr = af.EnableAutofocus(cam)
	} else {
		opErr = af.DisableAutofocus(cam)
	}
	if errors.Is(opErr, ErrAlreadyEnabled) || errors.Is(opErr, ErrNotEnabled) {
		return nil
	}
	return opErr
}

// SetSmoothing updates the smoothing settings of cam. The new values take
// effect on the next coarse update.
func (cmd *Commands) SetSmoothing(cam Camera, enabled bool, steps int) error {
	settings := cameraSettings(cam)
	if settings == nil {
		return ErrNilCamera
	}
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}

	af.mu.Lock()
	defer af.mu.Unlock()
	settings.Smooth = enabled
	settings.SmoothSteps = steps
	NormalizeSettings(settings)
	return nil
}

// SetFocusWindow updates the probe window of cam, correcting max <= min.
func (cmd *Commands) SetFocusWindow(cam Camera, minDist, maxDist float64) error {
	settings := cameraSettings(cam)
	if settings == nil {
		return ErrNilCamera
	}
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}

	af.mu.Lock()
	defer af.mu.Unlock()
	settings.Min = minDist
	settings.Max = maxDist
	NormalizeSettings(settings)
	return nil
}

func (cmd *Commands) SetRateEnabled(enabled bool) error {
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}
	af.SetRateEnabled(enabled)
	return nil
}
