package flyer

import "time"

// Record is one acquisition event produced by a completed spin. Records are
// immutable once appended to the flyer's buffer.
type Record struct {
	// Time is when the record was assembled, after the spin's file write
	// finished.
	Time time.Time

	// SeqNum is the 1-based spin number within the run, strictly increasing.
	SeqNum int

	// Data maps field names to captured values, as read from the capture
	// device's result descriptor.
	Data map[string]any

	// Timestamps maps field names to their per-field capture times.
	Timestamps map[string]time.Time
}
