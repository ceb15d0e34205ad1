package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.MigrateUp())
	return database
}

func TestMigrateUpIdempotent(t *testing.T) {
	database := newTestDB(t)

	// A second MigrateUp on a current schema is a no-op.
	require.NoError(t, database.MigrateUp())

	version, dirty, err := database.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	latest, err := LatestMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.NoError(t, database.CheckMigrations())
}

func TestMigrateDown(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.MigrateDown())

	err := database.CheckMigrations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")
}

func TestRecordAndFetchRun(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	scalars := json.RawMessage(`{"gait_speed":{"value":1.21,"std":0.04,"unit":"m/s"}}`)
	recorded, err := database.RecordRun(ctx, AnalysisRun{
		SessionID:      "session-a",
		TrialName:      "walk_1",
		Kind:           RunKindGait,
		Leg:            "r",
		NumCycles:      4,
		TreadmillSpeed: 1.25,
		Scalars:        scalars,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.ID)
	assert.False(t, recorded.CreatedAt.IsZero())

	got, err := database.Run(ctx, recorded.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-a", got.SessionID)
	assert.Equal(t, "walk_1", got.TrialName)
	assert.Equal(t, RunKindGait, got.Kind)
	assert.Equal(t, "r", got.Leg)
	assert.Equal(t, 4, got.NumCycles)
	assert.InDelta(t, 1.25, got.TreadmillSpeed, 1e-12)
	assert.JSONEq(t, string(scalars), string(got.Scalars))
}

func TestRecordRunRejectsUnknownKind(t *testing.T) {
	database := newTestDB(t)

	_, err := database.RecordRun(context.Background(), AnalysisRun{
		SessionID: "session-a",
		TrialName: "walk_1",
		Kind:      "sprint",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run kind")
}

func TestRunsFilterAndLimit(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	for _, run := range []AnalysisRun{
		{SessionID: "session-a", TrialName: "walk_1", Kind: RunKindGait},
		{SessionID: "session-a", TrialName: "squat_1", Kind: RunKindSquat},
		{SessionID: "session-b", TrialName: "walk_2", Kind: RunKindGait},
	} {
		_, err := database.RecordRun(ctx, run)
		require.NoError(t, err)
	}

	all, err := database.Runs(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sessionA, err := database.Runs(ctx, "session-a", 0)
	require.NoError(t, err)
	require.Len(t, sessionA, 2)
	for _, run := range sessionA {
		assert.Equal(t, "session-a", run.SessionID)
	}

	limited, err := database.Runs(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDeleteRun(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	recorded, err := database.RecordRun(ctx, AnalysisRun{
		SessionID: "session-a",
		TrialName: "walk_1",
		Kind:      RunKindGait,
	})
	require.NoError(t, err)

	require.NoError(t, database.DeleteRun(ctx, recorded.ID))

	_, err = database.Run(ctx, recorded.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, database.DeleteRun(ctx, recorded.ID), ErrRunNotFound)
}
