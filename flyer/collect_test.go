package flyer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{Time: time.Now(), SeqNum: i + 1}
	}
	return records
}

func TestRecordIterator(t *testing.T) {
	require := require.New(t)

	t.Run("empty", func(t *testing.T) {
		it := &RecordIterator{}
		require.False(it.Next())
		require.Equal(0, it.Remaining())
		require.Empty(it.Drain())
	})

	t.Run("insertion order", func(t *testing.T) {
		it := &RecordIterator{records: makeRecords(3)}
		require.Equal(3, it.Remaining())

		for i := 1; i <= 3; i++ {
			require.True(it.Next())
			require.Equal(i, it.Record().SeqNum)
		}

		// one-shot: exhausted for good
		require.False(it.Next())
		require.False(it.Next())
	})

	t.Run("drain after partial consumption", func(t *testing.T) {
		it := &RecordIterator{records: makeRecords(4)}

		require.True(it.Next())
		rest := it.Drain()
		require.Len(rest, 3)
		require.Equal(2, rest[0].SeqNum)
		require.Equal(4, rest[2].SeqNum)
	})
}

func TestRecordBuffer(t *testing.T) {
	require := require.New(t)

	var buf recordBuffer
	require.Equal(0, buf.len())
	require.Nil(buf.drainAll())

	for _, rec := range makeRecords(3) {
		buf.append(rec)
	}
	require.Equal(3, buf.len())

	records := buf.drainAll()
	require.Len(records, 3)
	require.Equal(1, records[0].SeqNum)
	require.Equal(3, records[2].SeqNum)

	// drained, not copied
	require.Equal(0, buf.len())
	require.Nil(buf.drainAll())

	buf.append(Record{SeqNum: 1})
	buf.reset()
	require.Equal(0, buf.len())
}
