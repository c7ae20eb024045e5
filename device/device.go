package device

import (
	"errors"
	"time"
)

var (
	// ErrDisabled indicates an operation that requires the streaming plugin to
	// be enabled was attempted while it is disabled.
	ErrDisabled = errors.New("streaming plugin is disabled")

	// ErrCaptureActive indicates an operation that is not allowed while a
	// capture is in progress.
	ErrCaptureActive = errors.New("capture in progress")

	// ErrNotCapturing indicates a stop was requested while no capture is in
	// progress.
	ErrNotCapturing = errors.New("no capture in progress")

	// ErrWrongMode indicates the capture device is not in the required capture
	// mode for the requested operation.
	ErrWrongMode = errors.New("capture device is in the wrong mode")

	// ErrNoResult indicates no result is available to read because no file has
	// been written yet.
	ErrNoResult = errors.New("no capture result available")

	// ErrMotionConflict indicates a move was commanded while another move on
	// the same actuator is still in progress.
	ErrMotionConflict = errors.New("actuator is already moving")
)

// CaptureMode selects how the capture device accumulates frames.
type CaptureMode int

const (
	// ModeSingle captures one frame per acquisition. This is the idle default
	// the device is reset to after a streaming run.
	ModeSingle CaptureMode = iota
	// ModeCapture accumulates a stream of frames into one array until capture
	// is stopped.
	ModeCapture
)

// String returns string representation of the capture mode.
func (m CaptureMode) String() string {
	switch m {
	case ModeSingle:
		return "Single"
	case ModeCapture:
		return "Capture"
	default:
		return "unknown"
	}
}

// Reading is a single observed value of a device field, with the time it was
// captured at.
type Reading struct {
	Value     any
	Timestamp time.Time
}

// FieldDescriptor describes the schema of a device field: where it comes from,
// its data type, and its shape. The contents are opaque to the flyer and are
// passed through to consumers of DescribeCollect.
type FieldDescriptor struct {
	Source string `json:"source"`
	Dtype  string `json:"dtype"`
	Shape  []int  `json:"shape"`
}

// Actuator is a positionable axis. Move blocks the calling goroutine until the
// motion completes or fails; IsMoving reports in-flight motion to other
// goroutines.
type Actuator interface {
	// Position returns the current position.
	Position() (float64, error)
	// Move commands a motion to target and blocks until it completes or fails.
	Move(target float64) error
	// IsMoving reports whether a motion is in progress.
	IsMoving() (bool, error)
}

// CaptureDevice is a streaming image detector with a file-writing plugin.
//
// Arm and disarm are strict ordered protocols, not independently reorderable:
//
//	arm:    ResetCounter, Enable, SetMode(ModeCapture), SetMaxFrames(n), StartCapture
//	disarm: StopCapture, WriteFile, SetMode(ModeSingle), SetMaxFrames(1), Disable
//
// Violating the order risks truncated or corrupted capture on real hardware.
type CaptureDevice interface {
	// ResetCounter resets the accumulated frame counter to zero.
	ResetCounter() error
	// Enable enables the streaming plugin.
	Enable() error
	// Disable disables the streaming plugin.
	Disable() error
	// SetMode selects the capture mode.
	SetMode(mode CaptureMode) error
	// SetMaxFrames sets the maximum number of frames to accumulate.
	SetMaxFrames(n int) error
	// StartCapture starts accumulating frames.
	StartCapture() error
	// StopCapture stops accumulating frames.
	StopCapture() error
	// WriteFile writes the accumulated frames to durable storage. The write
	// completes asynchronously; poll IsWriting until it reports false.
	WriteFile() error
	// IsWriting reports whether a file write is in progress.
	IsWriting() (bool, error)
	// ReadResult returns the result descriptor of the last completed write,
	// keyed by field name.
	ReadResult() (map[string]Reading, error)
	// DescribeResult returns the schema of the fields ReadResult produces.
	DescribeResult() map[string]FieldDescriptor
}

// BusyFlag is a boolean interlock readable and settable by the flyer, used to
// signal "operation in progress" to outside observers.
type BusyFlag interface {
	Get() (bool, error)
	Set(value bool) error
}
