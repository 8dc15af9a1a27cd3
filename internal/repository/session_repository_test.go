// internal/repository/session_repository_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"go_quran_assistant/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect database for testing")
	require.NoError(t, db.AutoMigrate(&model.MemorizationSession{}, &model.MemorizationAttempt{}))
	return db
}

func newStoredSession(t *testing.T, db *gorm.DB, repo SessionRepository) *model.MemorizationSession {
	t.Helper()
	session := &model.MemorizationSession{
		SessionID:    uuid.New(),
		UserID:       uuid.New(),
		CurrentSurah: 1,
		CurrentAyat:  1,
		Mode:         model.ModeForward,
		Difficulty:   model.DifficultyMedium,
		StartedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), db, session))
	return session
}

func Test_gormSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupSessionTestDB(t)
	repo := NewGormSessionRepository()

	session := newStoredSession(t, db, repo)

	found, err := repo.FindByID(ctx, db, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, found.SessionID)
	assert.Equal(t, session.UserID, found.UserID)
	assert.False(t, found.Ended())

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func Test_gormSessionRepository_UpdateCursor(t *testing.T) {
	ctx := context.Background()
	db := setupSessionTestDB(t)
	repo := NewGormSessionRepository()

	session := newStoredSession(t, db, repo)

	require.NoError(t, repo.UpdateCursor(ctx, db, session.SessionID, 2, 10))

	found, err := repo.FindByID(ctx, db, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.CurrentSurah)
	assert.Equal(t, 10, found.CurrentAyat)

	// 存在しないセッションは ErrNotFound
	err = repo.UpdateCursor(ctx, db, uuid.New(), 1, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func Test_gormSessionRepository_UpdateStats(t *testing.T) {
	ctx := context.Background()
	db := setupSessionTestDB(t)
	repo := NewGormSessionRepository()

	session := newStoredSession(t, db, repo)
	now := time.Now()
	session.Score = 1.75
	session.TotalAttempts = 2
	session.CorrectAttempts = 1
	session.LastAttemptAt = &now

	require.NoError(t, repo.UpdateStats(ctx, db, session))

	found, err := repo.FindByID(ctx, db, session.SessionID)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, found.Score, 1e-9)
	assert.Equal(t, 2, found.TotalAttempts)
	assert.Equal(t, 1, found.CorrectAttempts)
	require.NotNil(t, found.LastAttemptAt)
}

func Test_gormSessionRepository_Finalize(t *testing.T) {
	ctx := context.Background()
	db := setupSessionTestDB(t)
	repo := NewGormSessionRepository()

	session := newStoredSession(t, db, repo)
	endedAt := time.Now()

	require.NoError(t, repo.Finalize(ctx, db, session, endedAt))

	found, err := repo.FindByID(ctx, db, session.SessionID)
	require.NoError(t, err)
	assert.True(t, found.Ended())

	// 二重終了は ErrNotFound (ended_at IS NULL 条件に一致しない)
	err = repo.Finalize(ctx, db, session, time.Now())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func Test_gormSessionRepository_CountDistinctAttempts(t *testing.T) {
	ctx := context.Background()
	db := setupSessionTestDB(t)
	repo := NewGormSessionRepository()

	session := newStoredSession(t, db, repo)

	appendAttempt := func(surah, ayat int) {
		require.NoError(t, repo.AppendAttempt(ctx, db, &model.MemorizationAttempt{
			AttemptID:       uuid.New(),
			SessionID:       session.SessionID,
			SurahNumber:     surah,
			AyatNumber:      ayat,
			UserInput:       "x",
			SimilarityScore: 0.5,
		}))
	}

	// 同じアヤトへの再挑戦は1つと数える
	appendAttempt(1, 1)
	appendAttempt(1, 1)
	appendAttempt(1, 2)
	appendAttempt(2, 1)

	count, err := repo.CountDistinctAttempts(ctx, db, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// 他のセッションの試行は混ざらない
	other := newStoredSession(t, db, repo)
	count, err = repo.CountDistinctAttempts(ctx, db, other.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
