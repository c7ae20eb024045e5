package device

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const simMotorStep = 2 * time.Millisecond

// SimMotor is an in-process Actuator simulator. Motion takes real wall-clock
// time at a fixed velocity, and position advances in small steps so concurrent
// readers observe intermediate positions and the moving status.
type SimMotor struct {
	mu       sync.Mutex // serializes Move
	velocity float64    // units per second
	position atomicFloat64
	moving   atomic.Bool
}

// SimMotorOption customizes a SimMotor.
type SimMotorOption func(*SimMotor)

// WithVelocity sets the simulated velocity in units per second.
// Values <= 0 are ignored.
func WithVelocity(v float64) SimMotorOption {
	return func(m *SimMotor) {
		if v > 0 {
			m.velocity = v
		}
	}
}

// WithInitialPosition sets the starting position.
func WithInitialPosition(pos float64) SimMotorOption {
	return func(m *SimMotor) {
		m.position.Store(pos)
	}
}

// NewSimMotor creates a simulated motor at position 0 with a default velocity
// of 500 units per second.
func NewSimMotor(opts ...SimMotorOption) *SimMotor {
	m := &SimMotor{velocity: 500}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

var _ Actuator = (*SimMotor)(nil)

// Position returns the current position.
func (m *SimMotor) Position() (float64, error) {
	return m.position.Load(), nil
}

// IsMoving reports whether a motion is in progress.
func (m *SimMotor) IsMoving() (bool, error) {
	return m.moving.Load(), nil
}

// Move blocks until the simulated motion reaches target. A concurrent Move on
// the same motor fails with ErrMotionConflict.
func (m *SimMotor) Move(target float64) error {
	if !m.mu.TryLock() {
		return ErrMotionConflict
	}
	defer m.mu.Unlock()

	m.moving.Store(true)
	defer m.moving.Store(false)

	stepSize := m.velocity * simMotorStep.Seconds()
	for {
		cur := m.position.Load()
		delta := target - cur
		if math.Abs(delta) <= stepSize {
			m.position.Store(target)
			return nil
		}

		m.position.Store(cur + math.Copysign(stepSize, delta))
		time.Sleep(simMotorStep)
	}
}

// atomicFloat64 stores a float64 via its bit pattern.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
