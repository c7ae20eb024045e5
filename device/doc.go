// Package device defines the hardware-facing interfaces the flyer drives: a
// motorized actuator, a streaming capture device, and a busy interlock flag.
//
// The interfaces deliberately mirror the narrow contract of the underlying
// control-system records. Implementations are injected by the caller; the
// flyer holds non-owning references and never manages their lifecycle.
//
// The package also provides in-process simulators (SimMotor, SimDetector,
// SimBusy) with the same observable semantics as the real hardware: motion
// takes time and is observable via IsMoving, capture accumulates frames while
// armed, and file writes complete asynchronously. They back the tests, the
// example, and the demo CLI.
package device
