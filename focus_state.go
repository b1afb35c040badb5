package autofocus

import (
	"fmt"
	"math"
)

// FocusTolerance is the distance below which two focus values are the same.
const FocusTolerance = 0.01

// Phase of a camera's focus state machine.
//
//	        coarse: first hit
//	Idle ─────────────────────────► Converging ◄──┐ coarse: new destination
//	                                  │      └────┘ (origin = live value)
//	          fine: Step == SmoothSteps│
//	          coarse: live ≈ target    ▼
//	                               Converged ───► Converging on a new destination
type Phase int

const (
	Idle Phase = iota
	Converging
	Converged
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Converging:
		return "converging"
	case Converged:
		return "converged"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// FocusState is the per-camera interpolation record. The coarse update owns
// Destination, Origin and DestinationChanged; the fine tick owns Step and
// clears DestinationChanged once the destination is reached.
type FocusState struct {
	Destination        float64
	DestinationChanged bool
	Origin             float64
	Step               int
}

func newFocusState() *FocusState {
	return &FocusState{DestinationChanged: true, Step: 1}
}

func (s *FocusState) Phase() Phase {
	if s == nil {
		return Idle
	}
	if s.DestinationChanged {
		return Converging
	}
	return Converged
}

// accept runs the coarse transition for a smoothed camera whose lens is at
// current and whose probe found target. It reports whether a new
// interpolation was started.
func (s *FocusState) accept(current, target float64) bool {
	if math.Abs(current-target) < FocusTolerance {
		s.DestinationChanged = false
		return false
	}

	// Same destination still in flight: let the stepper finish it.
	if s.DestinationChanged && s.Step > 1 && math.Abs(s.Destination-target) < FocusTolerance {
		return false
	}

	s.Destination = target
	s.Origin = current
	s.DestinationChanged = true
	s.Step = 1
	return true
}

// applyImmediate records a direct write for a camera without smoothing.
func (s *FocusState) applyImmediate(current, target float64) {
	s.Destination = target
	s.Origin = current
	s.DestinationChanged = false
	s.Step = 0
}

// advance performs one fine tick over steps steps and returns the focus value
// to write. ok is false when there is nothing to interpolate.
func (s *FocusState) advance(steps int) (value float64, ok bool) {
	if !s.DestinationChanged {
		return 0, false
	}
	if steps < 1 {
		steps = 1
	}
	if s.Step < 1 {
		s.Step = 1
	}
	if s.Step > steps {
		s.Step = steps
	}

	if s.Step == steps {
		s.DestinationChanged = false
		s.Step = 0
		return s.Destination, true
	}

	value = lerp(s.Origin, s.Destination, float64(s.Step)/float64(steps))
	s.Step++
	return value, true
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
