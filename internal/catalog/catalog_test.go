package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atfconv/atfconv/internal/errors"
)

func openTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "atfconv.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndGetRun(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	run := &Run{
		Kind:          KindConvert,
		Source:        "/traces/systor.log",
		Output:        "/traces/systor.log.atf",
		Format:        "block",
		RowsRead:      1000,
		EventsEmitted: 990,
		RowsSkipped:   10,
		OriginResets:  1,
		Duration:      1500 * time.Millisecond,
	}
	assert.NoError(t, c.RecordRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := c.GetRun(ctx, run.ID)
	assert.NoError(t, err)
	assert.Equal(t, run.Source, got.Source)
	assert.Equal(t, int64(990), got.EventsEmitted)
	assert.Equal(t, int64(10), got.RowsSkipped)
	assert.Equal(t, int64(1), got.OriginResets)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
}

func TestGetRunNotFound(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.GetRun(context.Background(), "missing")
	assert.Equal(t, errors.CodeRunNotFound, errors.GetCode(err))
}

func TestListRunsNewestFirst(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &Run{
			Kind:      KindConvert,
			Source:    "src",
			Output:    "out",
			Format:    "numeric",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		assert.NoError(t, c.RecordRun(ctx, run))
	}

	runs, err := c.ListRuns(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
}
