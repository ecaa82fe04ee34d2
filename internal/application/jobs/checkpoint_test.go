package jobs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

func sampleCheckpoint(id string, updated time.Time) *jobs.JobCheckpoint {
	return &jobs.JobCheckpoint{
		ID:              id,
		Mode:            jobs.ModeShipment,
		SourceID:        "8000141715",
		OutputDir:       "out/8000141715",
		TargetPrinterID: "OFFICE",
		TargetEndpoint:  "10.0.0.10:9100",
		CreatedAt:       updated,
		UpdatedAt:       updated,
		NextTaskIndex:   1,
		Tasks: []jobs.PrintTask{
			{Kind: jobs.TaskPalletLabel, FileName: "a.zpl", Payload: []byte("^XA^XZ"), PayloadID: "a"},
			{Kind: jobs.TaskStopInfoTag, FileName: "b.zpl", Payload: []byte("^XA^XZ"), PayloadID: "b"},
		},
	}
}

func TestCheckpointStore_SaveAndLoadRoundTrip(t *testing.T) {
	// Arrange
	store := jobs.NewCheckpointStore(t.TempDir(), zap.NewNop())
	cp := sampleCheckpoint("job-1", time.Now().UTC().Truncate(time.Second))

	// Act
	require.NoError(t, store.Save(cp))
	loaded, err := store.Load("job-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cp.ID, loaded.ID)
	assert.Equal(t, cp.Mode, loaded.Mode)
	assert.Equal(t, cp.NextTaskIndex, loaded.NextTaskIndex)
	assert.Equal(t, cp.TargetEndpoint, loaded.TargetEndpoint)
	require.Len(t, loaded.Tasks, 2)
	assert.Equal(t, cp.Tasks[0].Payload, loaded.Tasks[0].Payload)
}

func TestCheckpointStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := jobs.NewCheckpointStore(dir, zap.NewNop())

	require.NoError(t, store.Save(sampleCheckpoint("job-1", time.Now())))
	require.NoError(t, store.Save(sampleCheckpoint("job-1", time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "job-1.json", entries[0].Name())
}

func TestCheckpointStore_LoadUnknownID(t *testing.T) {
	store := jobs.NewCheckpointStore(t.TempDir(), zap.NewNop())

	_, err := store.Load("ghost")

	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCheckpointStore_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))
	store := jobs.NewCheckpointStore(dir, zap.NewNop())

	_, err := store.Load("bad")

	require.Error(t, err)
	assert.Equal(t, shared.KindInternal, shared.KindOf(err))
}

func TestListIncomplete_SortsByUpdatedAtDescending(t *testing.T) {
	// Arrange
	store := jobs.NewCheckpointStore(t.TempDir(), zap.NewNop())
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	older := sampleCheckpoint("older", base)
	newer := sampleCheckpoint("newer", base.Add(time.Hour))
	done := sampleCheckpoint("done", base.Add(2*time.Hour))
	done.Completed = true

	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))
	require.NoError(t, store.Save(done))

	// Act
	incomplete := store.ListIncomplete()

	// Assert
	require.Len(t, incomplete, 2)
	assert.Equal(t, "newer", incomplete[0].ID)
	assert.Equal(t, "older", incomplete[1].ID)
}

func TestListIncomplete_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	store := jobs.NewCheckpointStore(dir, zap.NewNop())
	require.NoError(t, store.Save(sampleCheckpoint("good", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	incomplete := store.ListIncomplete()

	require.Len(t, incomplete, 1)
	assert.Equal(t, "good", incomplete[0].ID)
}

func TestListIncomplete_MissingDirIsEmpty(t *testing.T) {
	store := jobs.NewCheckpointStore(filepath.Join(t.TempDir(), "never-created"), zap.NewNop())

	assert.Empty(t, store.ListIncomplete())
}
