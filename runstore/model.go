package runstore

import "time"

// Run is one completed acquisition run stored in the database.
type Run struct {
	ID         int64
	StartTime  time.Time
	StreamName string
	Config     *string // optional JSON configuration snapshot
}
