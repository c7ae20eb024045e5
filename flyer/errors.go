package flyer

import "errors"

var (
	// ErrInvalidCommand indicates an unknown command token was passed to Set.
	// Valid commands are "taxi", "fly", and "return", case-insensitively.
	ErrInvalidCommand = errors.New(`invalid command, should be "taxi", "fly" or "return"`)
)

var (
	// ErrBusy indicates a command was dispatched while another operation holds
	// the busy flag.
	ErrBusy = errors.New("operation already in progress")

	// ErrAlreadyKickedOff indicates Kickoff was called while a prior
	// acquisition's status is still outstanding (not yet consumed by Collect).
	ErrAlreadyKickedOff = errors.New("acquisition already kicked off")

	// ErrNoRunInProgress indicates Complete or Collect was called without a
	// prior Kickoff.
	ErrNoRunInProgress = errors.New("no acquisition in progress")

	// ErrNotDone indicates Collect was called before the acquisition resolved.
	ErrNotDone = errors.New("no reading until the acquisition is done")
)

var (
	// ErrNilActuator indicates a nil actuator was passed to New.
	ErrNilActuator = errors.New("actuator is nil")

	// ErrNilCaptureDevice indicates a nil capture device was passed to New.
	ErrNilCaptureDevice = errors.New("capture device is nil")

	// ErrNilBusyFlag indicates a nil busy flag was passed to New.
	ErrNilBusyFlag = errors.New("busy flag is nil")

	// ErrConfigNil indicates a nil Config was provided to an option.
	ErrConfigNil = errors.New("config is nil")
)

var (
	// ErrWaitTimeout indicates a readiness poll did not observe the desired
	// condition within the configured timeout.
	ErrWaitTimeout = errors.New("timeout waiting for readiness")
)
