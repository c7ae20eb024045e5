// Package flyer implements an asynchronous fly-scan acquisition controller.
//
// A SpinFlyer coordinates a motorized actuator, a streaming capture device,
// and a busy interlock through a repeatable hardware-timed acquisition cycle
// ("spin") without blocking the caller.
//
// Two entry points are provided:
//
// Imperative commands: Set accepts "taxi", "fly", or "return"
// (case-insensitive), runs the corresponding action on a background task, and
// returns a CompletionStatus immediately. The busy flag is held for the whole
// action and released on every exit path.
//
// Three-phase protocol: Kickoff starts the spin sequence in the background and
// returns a CompletionStatus; Complete blocks, polling the actuator, until
// flying has finished; Collect drains the buffered acquisition records. Each
// spin taxis the actuator to the run-up position, arms the capture device,
// flies to the finish position while the device streams, disarms, waits for
// the file write, and appends one Record. After the last spin the actuator is
// returned to the position recorded at kickoff.
//
// Arm and disarm follow a strict ordered choreography; see device.CaptureDevice.
package flyer
