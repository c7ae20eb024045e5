package device

import "sync/atomic"

// SimBusy is an in-process BusyFlag simulator backed by an atomic boolean.
type SimBusy struct {
	state atomic.Bool
}

// NewSimBusy creates a busy flag in the cleared state.
func NewSimBusy() *SimBusy {
	return &SimBusy{}
}

var _ BusyFlag = (*SimBusy)(nil)

// Get returns the current flag value.
func (b *SimBusy) Get() (bool, error) {
	return b.state.Load(), nil
}

// Set stores the flag value.
func (b *SimBusy) Set(value bool) error {
	b.state.Store(value)

	return nil
}
