package flyer

import "sync"

// recordBuffer is an ordered, append-only buffer of acquisition records, owned
// exclusively by the flyer. The executor is the single writer; Collect drains
// it after observing the completion status resolved.
type recordBuffer struct {
	mu      sync.Mutex
	records []Record
}

// append adds a record to the tail of the buffer.
func (b *recordBuffer) append(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, rec)
}

// drainAll removes and returns all buffered records in insertion order.
// Returns nil if the buffer is empty.
func (b *recordBuffer) drainAll() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := b.records
	b.records = nil

	return records
}

// reset discards all buffered records.
func (b *recordBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = nil
}

// len returns the number of buffered records.
func (b *recordBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.records)
}
