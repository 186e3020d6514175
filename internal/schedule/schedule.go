// Package schedule implements exploration schedules: stateful sources of the probability of taking
// an exploratory (non-greedy) action, advanced explicitly by their owner.
package schedule

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Schedule of an exploration probability.
type Schedule interface {
	// Value returns the current value, without changing it.
	Value() float32

	// Step advances the schedule by one step and returns the new value.
	Step() float32

	String() string
}

func checkProbability(name string, value float32) error {
	if math32.IsNaN(value) || value < 0 || value > 1 {
		return errors.Errorf("schedule %s=%g must be in [0, 1]", name, value)
	}
	return nil
}

// ConstantSchedule always returns the same value.
type ConstantSchedule struct {
	value float32
}

// Constant creates a schedule that always returns value, which must be in [0, 1].
func Constant(value float32) (*ConstantSchedule, error) {
	if err := checkProbability("value", value); err != nil {
		return nil, err
	}
	return &ConstantSchedule{value: value}, nil
}

// Value implements Schedule.
func (s *ConstantSchedule) Value() float32 { return s.value }

// Step implements Schedule. It's a no-op.
func (s *ConstantSchedule) Step() float32 { return s.value }

// String implements Schedule and fmt.Stringer.
func (s *ConstantSchedule) String() string { return fmt.Sprintf("constant(%g)", s.value) }

// LinearSchedule interpolates linearly from an initial to a final value in a fixed number of
// steps, and stays at the final value afterward.
type LinearSchedule struct {
	initial, final float32
	numSteps, step int
	value          float32
}

// Linear creates a LinearSchedule. Both initial and final must be in [0, 1].
// If numSteps is 0, the schedule starts at the final value.
func Linear(initial, final float32, numSteps int) (*LinearSchedule, error) {
	if err := checkProbability("initial", initial); err != nil {
		return nil, err
	}
	if err := checkProbability("final", final); err != nil {
		return nil, err
	}
	if numSteps < 0 {
		return nil, errors.Errorf("linear schedule numSteps=%d must be >= 0", numSteps)
	}
	s := &LinearSchedule{initial: initial, final: final, numSteps: numSteps}
	s.value = s.at(0)
	return s, nil
}

func (s *LinearSchedule) at(step int) float32 {
	if step >= s.numSteps {
		return s.final
	}
	frac := float32(step) / float32(s.numSteps)
	value := s.initial + frac*(s.final-s.initial)
	// Rounding may take it slightly out of the interval.
	return math32.Min(math32.Max(value, math32.Min(s.initial, s.final)), math32.Max(s.initial, s.final))
}

// Value implements Schedule.
func (s *LinearSchedule) Value() float32 { return s.value }

// Step implements Schedule.
func (s *LinearSchedule) Step() float32 {
	if s.step < s.numSteps {
		s.step++
	}
	s.value = s.at(s.step)
	return s.value
}

// String implements Schedule and fmt.Stringer.
func (s *LinearSchedule) String() string {
	return fmt.Sprintf("linear(%g->%g in %d steps, at step %d)", s.initial, s.final, s.numSteps, s.step)
}
