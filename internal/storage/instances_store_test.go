package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectd/internal/instances"
)

func TestFormStore(t *testing.T) {
	ctx := context.Background()
	store := NewFormStore(openTestDB(t))

	_, ok := store.GetLatestByFormIDAndVersion(ctx, "household", "3")
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, instances.Form{ProjectID: "p1", FormID: "household", Version: "3", Revision: 1}))
	require.NoError(t, store.Save(ctx, instances.Form{ProjectID: "p1", FormID: "household", Version: "3", AutoDelete: "false", Revision: 2}))
	require.NoError(t, store.Save(ctx, instances.Form{ProjectID: "p2", FormID: "census", Version: "1"}))
	assert.Error(t, store.Save(ctx, instances.Form{ProjectID: "p1"}))

	latest, ok := store.GetLatestByFormIDAndVersion(ctx, "household", "3")
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.Revision)
	assert.Equal(t, "false", latest.AutoDelete)

	require.NoError(t, store.DeleteByProject(ctx, "p1"))
	_, ok = store.GetLatestByFormIDAndVersion(ctx, "household", "3")
	assert.False(t, ok)
	_, ok = store.GetLatestByFormIDAndVersion(ctx, "census", "1")
	assert.True(t, ok)
}

func TestInstanceStore(t *testing.T) {
	ctx := context.Background()
	store := NewInstanceStore(openTestDB(t))

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, instances.ErrNotFound)
	assert.Error(t, store.Save(ctx, instances.Instance{ID: "i0"}))

	for _, inst := range []instances.Instance{
		{ID: "i2", ProjectID: "p1", FormID: "f", Status: instances.StatusComplete},
		{ID: "i1", ProjectID: "p1", FormID: "f", Status: instances.StatusSubmitted},
		{ID: "i3", ProjectID: "p2", FormID: "f", Status: instances.StatusIncomplete},
	} {
		require.NoError(t, store.Save(ctx, inst))
	}

	got, err := store.Get(ctx, "i2")
	require.NoError(t, err)
	assert.Equal(t, instances.StatusComplete, got.Status)

	list, err := store.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "i1", list[0].ID)
	assert.Equal(t, "i2", list[1].ID)

	require.NoError(t, store.DeleteByProject(ctx, "p1"))
	list, err = store.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = store.Get(ctx, "i3")
	assert.NoError(t, err)
}

func TestUnsentGuardSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(ctx, dir, nil)
	require.NoError(t, err)
	require.NoError(t, NewInstanceStore(db).Save(ctx, instances.Instance{
		ID: "i1", ProjectID: "p1", FormID: "f", Status: instances.StatusSubmissionFailed,
	}))
	require.NoError(t, db.Close())

	db, err = Open(ctx, dir, nil)
	require.NoError(t, err)
	defer db.Close()

	guard := instances.NewUnsentGuard(NewInstanceStore(db))
	assert.ErrorIs(t, guard.CheckDelete(ctx, "p1"), instances.ErrUnsentInstances)
	assert.NoError(t, guard.CheckDelete(ctx, "p2"))
}
