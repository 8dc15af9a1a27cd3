// internal/repository/context_repository_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"go_quran_assistant/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupContextTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect database for testing")
	require.NoError(t, db.AutoMigrate(&model.ConversationContext{}))
	return db
}

func Test_gormContextRepository_Load_NotFound(t *testing.T) {
	ctx := context.Background()
	db := setupContextTestDB(t)
	repo := NewGormContextRepository()

	_, err := repo.Load(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func Test_gormContextRepository_Save_InsertThenUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupContextTestDB(t)
	repo := NewGormContextRepository()

	convID := uuid.New()
	conv := model.NewConversationContext(convID)
	conv.DiscussedVerses = datatypes.JSONSlice[model.DiscussedVerse]{
		{SurahNumber: 2, AyatNumber: 255, RelevanceScore: 0.9, DiscussionCount: 1},
	}
	conv.Themes = datatypes.JSONSlice[string]{"tauhid"}

	require.NoError(t, repo.Save(ctx, db, conv))

	loaded, err := repo.Load(ctx, db, convID)
	require.NoError(t, err)
	require.Len(t, loaded.DiscussedVerses, 1)
	assert.Equal(t, 255, loaded.DiscussedVerses[0].AyatNumber)
	assert.Equal(t, []string{"tauhid"}, []string(loaded.Themes))

	// 同じ conversation_id への再保存は行全体を上書きする
	conv.DiscussedVerses = append(conv.DiscussedVerses, model.DiscussedVerse{
		SurahNumber: 112, AyatNumber: 1, RelevanceScore: 0.8, DiscussionCount: 1,
	})
	conv.Themes = append(conv.Themes, "keikhlasan")
	conv.LastUpdated = time.Now()

	require.NoError(t, repo.Save(ctx, db, conv))

	loaded, err = repo.Load(ctx, db, convID)
	require.NoError(t, err)
	assert.Len(t, loaded.DiscussedVerses, 2)
	assert.Equal(t, []string{"tauhid", "keikhlasan"}, []string(loaded.Themes))
}

func Test_gormContextRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	db := setupContextTestDB(t)
	repo := NewGormContextRepository()

	old := model.NewConversationContext(uuid.New())
	old.LastUpdated = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Save(ctx, db, old))

	fresh := model.NewConversationContext(uuid.New())
	fresh.LastUpdated = time.Now()
	require.NoError(t, repo.Save(ctx, db, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.Load(ctx, db, old.ConversationID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = repo.Load(ctx, db, fresh.ConversationID)
	assert.NoError(t, err)
}
