// Package runstore persists completed fly-scan runs and their acquisition
// records to a SQLite database.
//
// The flyer core owns no persisted state; runstore is an optional sink the
// caller drives after draining Collect. Records are stored with their data and
// per-field timestamps serialized as JSON, and can be read back lazily with a
// row iterator.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prjemian/flyscan/flyer"
)

// Store manages the run database. All write operations are atomic; a run and
// its records are stored in single transactions.
type Store struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a store backed by the SQLite database at dbPath. The
// database is opened and the schema initialized lazily on first use.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.dbErr = fmt.Errorf("opening database: %w", err)
			return
		}

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.db = db
	})

	return s.db, s.dbErr
}

// CreateRun inserts a new run and returns its unique identifier. The optional
// config may be a string, []byte, or any JSON-serializable value.
func (s *Store) CreateRun(ctx context.Context, streamName string, config any) (runID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData = sql.NullString{String: v, Valid: true}
		case []byte:
			configData = sql.NullString{String: string(v), Valid: true}
		default:
			p, merr := json.Marshal(v)
			if merr != nil {
				return 0, fmt.Errorf("marshaling config: %w", merr)
			}
			configData = sql.NullString{String: string(p), Valid: true}
		}
	}

	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, streamName, configData)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run ID: %w", err)
	}

	return runID, nil
}

// StoreRecords saves the records of a run in a single transaction.
func (s *Store) StoreRecords(ctx context.Context, runID int64, records []flyer.Record) (err error) {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, rec := range records {
		data, merr := json.Marshal(rec.Data)
		if merr != nil {
			err = fmt.Errorf("marshaling record %d data: %w", rec.SeqNum, merr)
			return err
		}
		timestamps, merr := json.Marshal(rec.Timestamps)
		if merr != nil {
			err = fmt.Errorf("marshaling record %d timestamps: %w", rec.SeqNum, merr)
			return err
		}

		if _, err = stmt.ExecContext(ctx, runID, rec.SeqNum, rec.Time, string(data), string(timestamps)); err != nil {
			err = fmt.Errorf("inserting record %d: %w", rec.SeqNum, err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Run retrieves a run by its ID. It returns nil without error if the run does
// not exist.
func (s *Store) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	run = &Run{}
	var config sql.NullString
	err = stmt.QueryRowContext(ctx, id).Scan(&run.ID, &run.StartTime, &run.StreamName, &config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting run: %w", err)
	}
	if config.Valid {
		run.Config = &config.String
	}

	return run, nil
}

// Runs returns all stored runs, ordered by start time ascending.
func (s *Store) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("selecting runs: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		run := &Run{}
		var config sql.NullString
		if err = rows.Scan(&run.ID, &run.StartTime, &run.StreamName, &config); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if config.Valid {
			run.Config = &config.String
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// Records returns a lazy iterator over a run's records, ordered by sequence
// number. The caller must Close the iterator.
func (s *Store) Records(ctx context.Context, runID int64) (*Iterator, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectRecordsSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("selecting records: %w", err)
	}

	return &Iterator{rows: rows}, nil
}

// Close releases the database connection. It is safe to call Close multiple
// times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})

	return s.closeErr
}

// closeWithError closes c and, if closing fails while *err is nil, records the
// close error there.
func closeWithError(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
