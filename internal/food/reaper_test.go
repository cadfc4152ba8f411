package food

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSweeper struct{ err error }

func (f failingSweeper) DeleteExpired(context.Context, time.Time) ([]string, error) {
	return nil, f.err
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	expired := Food{ID: uuid.New(), Name: "old bread", ExpiredAt: now.Add(-time.Hour)}
	fresh := Food{ID: uuid.New(), Name: "fresh soup", ExpiredAt: now.Add(time.Hour)}
	store.foods = []Food{expired, fresh}

	r := NewReaper(store, nil, discardLogger())
	r.now = func() time.Time { return now }

	deleted, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = store.GetByID(context.Background(), expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	survivor, err := store.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh soup", survivor.Name)
}

func TestSweep_ExpiryEqualToNowSurvives(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.foods = []Food{{ID: uuid.New(), ExpiredAt: now}}

	r := NewReaper(store, nil, discardLogger())
	r.now = func() time.Time { return now }

	deleted, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	assert.Equal(t, 1, store.count())
}

func TestSweep_ReportsFailure(t *testing.T) {
	boom := errors.New("database is down")
	r := NewReaper(failingSweeper{err: boom}, &fakeUploader{}, discardLogger())

	deleted, err := r.Sweep(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), deleted)
}

func TestSweep_DeletesPhotosOfReapedListings(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.foods = []Food{
		{ID: uuid.New(), PhotoKey: "foodDonation/old.jpg", ExpiredAt: now.Add(-time.Hour)},
		{ID: uuid.New(), PhotoKey: "foodDonation/older.png", ExpiredAt: now.Add(-48 * time.Hour)},
		{ID: uuid.New(), PhotoKey: "foodDonation/fresh.jpg", ExpiredAt: now.Add(time.Hour)},
	}
	blobs := &fakeUploader{}

	r := NewReaper(store, blobs, discardLogger())
	r.now = func() time.Time { return now }

	deleted, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.ElementsMatch(t, []string{"foodDonation/old.jpg", "foodDonation/older.png"}, blobs.deletes)
}

func TestSweep_PhotoDeleteFailureKeepsSweepResult(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.foods = []Food{{ID: uuid.New(), PhotoKey: "foodDonation/old.jpg", ExpiredAt: now.Add(-time.Hour)}}
	blobs := &fakeUploader{deleteErr: errors.New("access denied")}

	r := NewReaper(store, blobs, discardLogger())
	r.now = func() time.Time { return now }

	deleted, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 0, store.count())
	assert.Equal(t, []string{"foodDonation/old.jpg"}, blobs.deletes)
}

func TestSweep_FailedSweepDeletesNoPhotos(t *testing.T) {
	blobs := &fakeUploader{}
	r := NewReaper(failingSweeper{err: errors.New("database is down")}, blobs, discardLogger())

	_, err := r.Sweep(context.Background())
	assert.Error(t, err)
	assert.Empty(t, blobs.deletes)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	r := NewReaper(newFakeStore(), nil, discardLogger())

	err := r.Start("every now and then")
	assert.Error(t, err)

	// Stop on a reaper that never started is a no-op
	r.Stop(context.Background())
}

func TestStartStop(t *testing.T) {
	r := NewReaper(newFakeStore(), nil, discardLogger())
	require.NoError(t, r.Start("@every 24h"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
}
