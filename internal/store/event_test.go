package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sess, err := repo.Start(start)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.StartedAt.Equal(start))
	assert.Nil(t, got.EndedAt)

	end := start.Add(15 * time.Minute)
	require.NoError(t, repo.End(sess.ID, end))

	got, err = repo.GetByID(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(end))

	_, err = repo.GetByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, repo.End("missing", end), ErrNotFound)
}

func TestEventRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Sessions().Start(time.Now())
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	kinds := []EventKind{EventSwipeLeft, EventPause, EventResume, EventSwipeRight, EventSwipeLeft}
	for i, kind := range kinds {
		e := &GestureEvent{
			SessionID: sess.ID,
			Kind:      kind,
			WristX:    0.5,
			VelocityY: -1.0,
			ZoomLevel: 8,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.Events().Create(e))
		assert.NotEmpty(t, e.ID)
	}

	all, err := s.Events().ListBySession(sess.ID)
	require.NoError(t, err)
	require.Len(t, all, len(kinds))
	for i, e := range all {
		assert.Equal(t, kinds[i], e.Kind)
	}

	recent, err := s.Events().Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, EventSwipeLeft, recent[0].Kind)
	assert.Equal(t, EventSwipeRight, recent[1].Kind)

	counts, err := s.Events().CountByKind(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, map[EventKind]int{
		EventSwipeLeft:  2,
		EventSwipeRight: 1,
		EventPause:      1,
		EventResume:     1,
	}, counts)
}

func TestEventRepository_Validation(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Sessions().Start(time.Now())
	require.NoError(t, err)

	err = s.Events().Create(&GestureEvent{SessionID: sess.ID, Kind: "wave"})
	assert.Error(t, err)

	err = s.Events().Create(&GestureEvent{SessionID: "no-such-session", Kind: EventPause})
	assert.Error(t, err, "foreign key must reject unknown sessions")
}

func TestEventRepository_CascadeOnSessionDelete(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Sessions().Start(time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Events().Create(&GestureEvent{SessionID: sess.ID, Kind: EventPause}))

	_, err = s.DB().Exec(`DELETE FROM sessions WHERE id = ?`, sess.ID)
	require.NoError(t, err)

	events, err := s.Events().ListBySession(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSettingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	_, err := repo.Get(SettingTrackingEnabled)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, repo.GetBool(SettingTrackingEnabled, true))

	require.NoError(t, repo.SetBool(SettingTrackingEnabled, false))
	assert.False(t, repo.GetBool(SettingTrackingEnabled, true))

	require.NoError(t, repo.SetBool(SettingTrackingEnabled, true))
	value, err := repo.Get(SettingTrackingEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", value)

	require.NoError(t, repo.Set("broken", "maybe"))
	assert.False(t, repo.GetBool("broken", false))
}
