//go:generate mockery --name SessionRepository --output ./mocks --outpkg mocks --case=underscore
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
)

// SessionRepository は暗記セッションの耐久行と追記専用の試行ログ。
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession) error
	FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.MemorizationSession, error)
	UpdateCursor(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, surahNumber, ayatNumber int) error
	UpdateStats(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession) error
	Finalize(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession, endedAt time.Time) error
	AppendAttempt(ctx context.Context, tx *gorm.DB, attempt *model.MemorizationAttempt) error
	CountDistinctAttempts(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (int64, error)
}

type gormSessionRepository struct{}

func NewGormSessionRepository() SessionRepository {
	return &gormSessionRepository{}
}

func (r *gormSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(session)
	if result.Error != nil {
		logger.Error("Error creating memorization session in DB",
			"error", result.Error,
			"user_id", session.UserID.String(),
		)
		return fmt.Errorf("gormSessionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormSessionRepository) FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.MemorizationSession, error) {
	logger := middleware.GetLogger(ctx)
	var session model.MemorizationSession
	result := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding memorization session in DB",
			"error", result.Error,
			"session_id", sessionID.String(),
		)
		return nil, fmt.Errorf("gormSessionRepository.FindByID: %w", result.Error)
	}
	return &session, nil
}

func (r *gormSessionRepository) UpdateCursor(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, surahNumber, ayatNumber int) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.MemorizationSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"current_surah": surahNumber,
			"current_ayat":  ayatNumber,
		})
	if result.Error != nil {
		logger.Error("Error updating session cursor in DB",
			"error", result.Error,
			"session_id", sessionID.String(),
		)
		return fmt.Errorf("gormSessionRepository.UpdateCursor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSessionRepository) UpdateStats(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.MemorizationSession{}).
		Where("session_id = ?", session.SessionID).
		Updates(map[string]interface{}{
			"score":            session.Score,
			"total_attempts":   session.TotalAttempts,
			"correct_attempts": session.CorrectAttempts,
			"last_attempt_at":  session.LastAttemptAt,
		})
	if result.Error != nil {
		logger.Error("Error updating session stats in DB",
			"error", result.Error,
			"session_id", session.SessionID.String(),
		)
		return fmt.Errorf("gormSessionRepository.UpdateStats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSessionRepository) Finalize(ctx context.Context, tx *gorm.DB, session *model.MemorizationSession, endedAt time.Time) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.MemorizationSession{}).
		Where("session_id = ? AND ended_at IS NULL", session.SessionID).
		Updates(map[string]interface{}{
			"score":            session.Score,
			"total_attempts":   session.TotalAttempts,
			"correct_attempts": session.CorrectAttempts,
			"ended_at":         endedAt,
		})
	if result.Error != nil {
		logger.Error("Error finalizing memorization session in DB",
			"error", result.Error,
			"session_id", session.SessionID.String(),
		)
		return fmt.Errorf("gormSessionRepository.Finalize: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSessionRepository) AppendAttempt(ctx context.Context, tx *gorm.DB, attempt *model.MemorizationAttempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		logger.Error("Error appending memorization attempt in DB",
			"error", result.Error,
			"session_id", attempt.SessionID.String(),
		)
		return fmt.Errorf("gormSessionRepository.AppendAttempt: %w", result.Error)
	}
	return nil
}

func (r *gormSessionRepository) CountDistinctAttempts(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	// ayat は最大でも 286 なので surah*1000+ayat は衝突しない。
	// 式にしてあるのは sqlite (テスト) と postgres の両方で動くようにするため。
	// Distinct().Count() は式に対して COUNT(DISTINCT ...) を組み立てないので
	// Select + Scan で明示する。
	result := db.WithContext(ctx).Model(&model.MemorizationAttempt{}).
		Where("session_id = ?", sessionID).
		Select("COUNT(DISTINCT surah_number * 1000 + ayat_number)").
		Scan(&count)
	if result.Error != nil {
		logger.Error("Error counting distinct attempts in DB",
			"error", result.Error,
			"session_id", sessionID.String(),
		)
		return 0, fmt.Errorf("gormSessionRepository.CountDistinctAttempts: %w", result.Error)
	}
	return count, nil
}
