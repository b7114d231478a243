package syncx

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/evalboard/internal/db"
)

type eventLog interface {
	Recorder
	List(ctx context.Context, after int64, limit int) ([]Event, error)
}

func forEachLog(t *testing.T, fn func(t *testing.T, l eventLog)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryLog()) })
	t.Run("sqlite", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.DriverSQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { dbh.Close() })
		fn(t, NewEventRepo(dbh, ""))
	})
}

func seqs(events []Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.Seq)
	}
	return out
}

func TestEventLogRecordAndList(t *testing.T) {
	forEachLog(t, func(t *testing.T, l eventLog) {
		ctx := context.Background()
		require.NoError(t, l.Record(ctx, "evaluation.created", "1", map[string]any{"candidateId": 1}))
		require.NoError(t, l.Record(ctx, "evaluation.updated", "1", map[string]any{"status": "completed"}))
		require.NoError(t, l.Record(ctx, "evaluation.deleted", "1", nil))

		all, err := l.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{1, 2, 3}, seqs(all))

		first := all[0]
		assert.Equal(t, "local", first.SiteID)
		assert.Equal(t, "evaluation.created", first.Type)
		assert.Equal(t, "1", first.Key)
		assert.NotZero(t, first.CreatedAt)
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(first.DataJSON), &payload))
		assert.Equal(t, float64(1), payload["candidateId"])
		assert.Equal(t, "null", all[2].DataJSON)
	})
}

func TestEventLogPaging(t *testing.T) {
	forEachLog(t, func(t *testing.T, l eventLog) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, l.Record(ctx, "candidate.created", "k", i))
		}

		page, err := l.List(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3}, seqs(page))

		page, err = l.List(ctx, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 5}, seqs(page))

		page, err = l.List(ctx, 5, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
		assert.NotNil(t, page)
	})
}

func TestEventLogDefaultLimit(t *testing.T) {
	l := NewMemoryLog()
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		require.NoError(t, l.Record(ctx, "rubric.updated", "1", i))
	}
	page, err := l.List(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, page, 100)
	assert.Equal(t, int64(100), page[99].Seq)
}

func TestEventRepoSiteID(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer dbh.Close()

	r := NewEventRepo(dbh, "branch-7")
	require.NoError(t, r.Record(ctx, "rubric.created", "3", map[string]string{"name": "Backend"}))
	got, err := r.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "branch-7", got[0].SiteID)
	assert.JSONEq(t, `{"name":"Backend"}`, got[0].DataJSON)
}
