package runstore

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    stream_name TEXT NOT NULL,
    config      TEXT
);

CREATE TABLE IF NOT EXISTS records (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     INTEGER NOT NULL REFERENCES runs (id),
    seq_num    INTEGER NOT NULL,
    time       DATETIME NOT NULL,
    data       TEXT NOT NULL,
    timestamps TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_run ON records (run_id, seq_num);
`

const (
	insertRunSQL = `
INSERT INTO runs (start_time,
                  stream_name,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectRunSQL = `
SELECT
    id,
    start_time,
    stream_name,
    config
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    start_time,
    stream_name,
    config
FROM runs
ORDER BY start_time`

	insertRecordSQL = `
INSERT INTO records (run_id,
                     seq_num,
                     time,
                     data,
                     timestamps)
VALUES (?, ?, ?, ?, ?)`

	selectRecordsSQL = `
SELECT
    seq_num,
    time,
    data,
    timestamps
FROM records
WHERE
    run_id = ?
ORDER BY seq_num`
)
