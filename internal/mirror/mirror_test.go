package mirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog-backend/internal/kv"
	"worklog-backend/internal/model"
)

func TestAppendAndListKeepsOrder(t *testing.T) {
	store := New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, model.SubjectWorker, 101, model.PunchRow{Kind: model.PunchIn, Ts: "2025-06-02T08:00:00Z"}))
	require.NoError(t, store.Append(ctx, model.SubjectWorker, 101, model.PunchRow{Kind: model.PunchOut, Ts: "2025-06-02T16:00:00Z"}))

	punches, err := store.List(ctx, model.SubjectWorker, 101)
	require.NoError(t, err)
	require.Len(t, punches, 2)
	assert.Equal(t, model.PunchIn, punches[0].Kind)
	assert.Equal(t, model.PunchOut, punches[1].Kind)
}

func TestSubjectsAreIsolated(t *testing.T) {
	store := New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, model.SubjectWorker, 101, model.PunchRow{Kind: model.PunchIn, Ts: "2025-06-02T08:00:00Z"}))
	require.NoError(t, store.Append(ctx, model.SubjectEmployer, 101, model.PunchRow{Kind: model.PunchIn, Ts: "2025-06-02T09:00:00Z"}))

	worker, err := store.List(ctx, model.SubjectWorker, 101)
	require.NoError(t, err)
	employer, err := store.List(ctx, model.SubjectEmployer, 101)
	require.NoError(t, err)
	assert.Len(t, worker, 1)
	assert.Len(t, employer, 1)
	assert.Equal(t, "2025-06-02T08:00:00Z", worker[0].Ts)
}

func TestEmptyMirrorListsNothing(t *testing.T) {
	store := New(kv.NewMemory())

	punches, err := store.List(context.Background(), model.SubjectWorker, 404)
	require.NoError(t, err)
	assert.Empty(t, punches)
}

func TestCorruptEntryIsTreatedAsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	store := New(mem)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "worklog:punches:worker:101", []byte("{not json")))

	punches, err := store.List(ctx, model.SubjectWorker, 101)
	require.NoError(t, err)
	assert.Empty(t, punches)

	// Appending after corruption starts a fresh history.
	require.NoError(t, store.Append(ctx, model.SubjectWorker, 101, model.PunchRow{Kind: model.PunchIn, Ts: "2025-06-02T08:00:00Z"}))
	punches, err = store.List(ctx, model.SubjectWorker, 101)
	require.NoError(t, err)
	assert.Len(t, punches, 1)
}
