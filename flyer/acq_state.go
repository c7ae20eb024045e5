package flyer

import "sync/atomic"

// AcqState represents the acquisition phase a flyer is in. Exactly one state
// is active at a time per flyer instance, and transitions are driven only by
// the flyer itself, never by external callers.
type AcqState uint32

const (
	// IdleState indicates no acquisition activity.
	IdleState AcqState = iota
	// TaxiingState indicates the actuator is moving to the run-up position.
	TaxiingState
	// FlyingState indicates the actuator is moving through the scan range
	// while the capture device streams.
	FlyingState
	// ReturningState indicates the actuator is moving back to the recorded
	// return position.
	ReturningState
	// BusyState indicates non-motion acquisition work: arming or disarming the
	// capture device, waiting for the file write, or recording results.
	BusyState
)

// IsIdle returns if the current state is idle.
func (s AcqState) IsIdle() bool { return s == IdleState }

// IsTaxiing returns if the current state is taxiing.
func (s AcqState) IsTaxiing() bool { return s == TaxiingState }

// IsFlying returns if the current state is flying.
func (s AcqState) IsFlying() bool { return s == FlyingState }

// IsReturning returns if the current state is returning.
func (s AcqState) IsReturning() bool { return s == ReturningState }

// IsBusy returns if the current state is busy.
func (s AcqState) IsBusy() bool { return s == BusyState }

// String returns string representation of the current state.
func (s AcqState) String() string {
	switch s {
	case IdleState:
		return "idle"
	case TaxiingState:
		return "taxiing"
	case FlyingState:
		return "flying"
	case ReturningState:
		return "returning"
	case BusyState:
		return "busy"
	default:
		return "unknown"
	}
}

// atomicAcqState holds an AcqState with atomic access.
type atomicAcqState struct {
	state atomic.Uint32
}

// Get returns the current state.
func (st *atomicAcqState) Get() AcqState {
	return AcqState(st.state.Load())
}

// Set sets the current state.
func (st *atomicAcqState) Set(state AcqState) {
	st.state.Store(uint32(state))
}

func (st *atomicAcqState) String() string {
	return st.Get().String()
}
