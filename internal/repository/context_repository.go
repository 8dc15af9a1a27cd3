//go:generate mockery --name ContextRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContextRepository は会話コンテキストの読み書き。Save は行全体の
// 上書き upsert で、差分パッチではない。
type ContextRepository interface {
	Load(ctx context.Context, db *gorm.DB, conversationID uuid.UUID) (*model.ConversationContext, error)
	Save(ctx context.Context, db *gorm.DB, convContext *model.ConversationContext) error
	DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

type gormContextRepository struct{}

func NewGormContextRepository() ContextRepository {
	return &gormContextRepository{}
}

func (r *gormContextRepository) Load(ctx context.Context, db *gorm.DB, conversationID uuid.UUID) (*model.ConversationContext, error) {
	logger := middleware.GetLogger(ctx)
	var convContext model.ConversationContext
	result := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&convContext)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error loading conversation context from DB",
			"error", result.Error,
			"conversation_id", conversationID.String(),
		)
		return nil, fmt.Errorf("gormContextRepository.Load: %w", result.Error)
	}
	return &convContext, nil
}

func (r *gormContextRepository) Save(ctx context.Context, db *gorm.DB, convContext *model.ConversationContext) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"discussed_verses", "themes", "last_updated",
		}),
	}).Create(convContext)
	if result.Error != nil {
		logger.Error("Error saving conversation context to DB",
			"error", result.Error,
			"conversation_id", convContext.ConversationID.String(),
		)
		return fmt.Errorf("gormContextRepository.Save: %w", result.Error)
	}
	return nil
}

func (r *gormContextRepository) DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Where("last_updated < ?", cutoff).
		Delete(&model.ConversationContext{})
	if result.Error != nil {
		logger.Error("Error deleting old conversation contexts",
			"error", result.Error,
			"cutoff", cutoff,
		)
		return 0, fmt.Errorf("gormContextRepository.DeleteOlderThan: %w", result.Error)
	}
	return result.RowsAffected, nil
}
