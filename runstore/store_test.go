package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prjemian/flyscan/flyer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func makeRecords(n int) []flyer.Record {
	base := time.Now().UTC().Truncate(time.Second)

	records := make([]flyer.Record, n)
	for i := range records {
		records[i] = flyer.Record{
			Time:   base.Add(time.Duration(i) * time.Second),
			SeqNum: i + 1,
			Data: map[string]any{
				"det_full_file_name": filepath.Join("/data", "det_0001.h5"),
			},
			Timestamps: map[string]time.Time{
				"det_full_file_name": base,
			},
		}
	}

	return records
}

func TestStore_CreateRun(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := newTestStore(t)

	runID, err := store.CreateRun(ctx, "spin_flyer_stream", map[string]any{"num_spins": 3})
	require.NoError(err)
	require.Positive(runID)

	run, err := store.Run(ctx, runID)
	require.NoError(err)
	require.NotNil(run)
	require.Equal(runID, run.ID)
	require.Equal("spin_flyer_stream", run.StreamName)
	require.NotNil(run.Config)
	require.JSONEq(`{"num_spins": 3}`, *run.Config)
	require.False(run.StartTime.IsZero())

	// missing run is nil without error
	missing, err := store.Run(ctx, runID+100)
	require.NoError(err)
	require.Nil(missing)
}

func TestStore_StoreRecords(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := newTestStore(t)

	runID, err := store.CreateRun(ctx, "spin_flyer_stream", nil)
	require.NoError(err)

	records := makeRecords(3)
	require.NoError(store.StoreRecords(ctx, runID, records))

	it, err := store.Records(ctx, runID)
	require.NoError(err)
	defer func() { require.NoError(it.Close()) }()

	var got []flyer.Record
	for it.Next() {
		got = append(got, it.Record())
	}
	require.NoError(it.Err())

	require.Len(got, len(records))
	for i, rec := range got {
		require.Equal(i+1, rec.SeqNum)
		require.Equal(records[i].Data["det_full_file_name"], rec.Data["det_full_file_name"])
		require.True(records[i].Timestamps["det_full_file_name"].Equal(rec.Timestamps["det_full_file_name"]))
	}
}

func TestStore_Runs(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := newTestStore(t)

	runs, err := store.Runs(ctx)
	require.NoError(err)
	require.Empty(runs)

	_, err = store.CreateRun(ctx, "stream_a", nil)
	require.NoError(err)
	_, err = store.CreateRun(ctx, "stream_b", "raw config")
	require.NoError(err)

	runs, err = store.Runs(ctx)
	require.NoError(err)
	require.Len(runs, 2)
	require.Equal("stream_a", runs[0].StreamName)
	require.Nil(runs[0].Config)
	require.Equal("stream_b", runs[1].StreamName)
	require.NotNil(runs[1].Config)
	require.Equal("raw config", *runs[1].Config)
}

func TestStore_Close(t *testing.T) {
	require := require.New(t)

	store := newTestStore(t)

	_, err := store.CreateRun(context.Background(), "stream", nil)
	require.NoError(err)

	require.NoError(store.Close())
	require.NoError(store.Close()) // safe to call twice
}
