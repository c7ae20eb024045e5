package flyer

// RecordIterator is a finite, one-shot iterator over a run's acquisition
// records in insertion order. It is not restartable; once exhausted, the
// records are gone and a new kickoff is required to produce more.
//
//	it, err := f.Collect()
//	...
//	for it.Next() {
//	    rec := it.Record()
//	    // ... consume rec ...
//	}
type RecordIterator struct {
	records []Record
	cur     Record
}

// Next advances to the next record. It returns false when the iterator is
// exhausted.
func (it *RecordIterator) Next() bool {
	if len(it.records) == 0 {
		return false
	}

	it.cur = it.records[0]
	it.records = it.records[1:]

	return true
}

// Record returns the current record. It is only valid after a call to Next
// that returned true.
func (it *RecordIterator) Record() Record {
	return it.cur
}

// Remaining returns the number of records not yet consumed.
func (it *RecordIterator) Remaining() int {
	return len(it.records)
}

// Drain consumes and returns all remaining records.
func (it *RecordIterator) Drain() []Record {
	var out []Record
	for it.Next() {
		out = append(out, it.cur)
	}

	return out
}
