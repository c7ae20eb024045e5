package runstore

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/prjemian/flyscan/flyer"
)

// Iterator provides lazy iteration over a run's stored records.
type Iterator struct {
	rows *sql.Rows
	cur  flyer.Record
	err  error
}

// Next advances to the next record. It returns false when the rows are
// exhausted or an error occurred; check Err after iteration.
func (it *Iterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}

	var (
		rec        flyer.Record
		data       string
		timestamps string
	)
	if err := it.rows.Scan(&rec.SeqNum, &rec.Time, &data, &timestamps); err != nil {
		it.err = err
		return false
	}

	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		it.err = err
		return false
	}
	if err := json.Unmarshal([]byte(timestamps), &rec.Timestamps); err != nil {
		it.err = err
		return false
	}
	if rec.Timestamps == nil {
		rec.Timestamps = map[string]time.Time{}
	}

	it.cur = rec

	return true
}

// Record returns the current record. It is only valid after a call to Next
// that returned true.
func (it *Iterator) Record() flyer.Record {
	return it.cur
}

// Err returns any error that occurred during iteration.
func (it *Iterator) Err() error {
	if it.err != nil {
		return it.err
	}

	return it.rows.Err()
}

// Close releases the underlying database rows.
func (it *Iterator) Close() error {
	return it.rows.Close()
}
