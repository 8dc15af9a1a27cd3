//go:generate mockery --name VerseRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerseRepository は Verse コーパスへのアクセス。検索・採点側からは
// 読み取り専用で、Upsert はバッチインデクサだけが呼ぶ。
type VerseRepository interface {
	FindByKey(ctx context.Context, db *gorm.DB, surahNumber, ayatNumber int) (*model.Verse, error)
	// NearestNeighbors は cosine 類似度 (1 - 距離) が minSimilarity を
	// 超える候補を類似度降順で返す。Similarity は結果に埋めて返す。
	NearestNeighbors(ctx context.Context, db *gorm.DB, embedding []float32, limit int, minSimilarity float64) ([]*model.RetrievalCandidate, error)
	CountInSurah(ctx context.Context, db *gorm.DB, surahNumber int) (int64, error)
	CountIndexed(ctx context.Context, db *gorm.DB) (int64, error)
	Upsert(ctx context.Context, tx *gorm.DB, verse *model.Verse) error
}

type gormVerseRepository struct{}

func NewGormVerseRepository() VerseRepository {
	return &gormVerseRepository{}
}

func (r *gormVerseRepository) FindByKey(ctx context.Context, db *gorm.DB, surahNumber, ayatNumber int) (*model.Verse, error) {
	logger := middleware.GetLogger(ctx)
	var verse model.Verse
	result := db.WithContext(ctx).
		Where("surah_number = ? AND ayat_number = ?", surahNumber, ayatNumber).
		First(&verse)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding verse by key in DB",
			"error", result.Error,
			"surah_number", surahNumber,
			"ayat_number", ayatNumber,
		)
		return nil, fmt.Errorf("gormVerseRepository.FindByKey: %w", result.Error)
	}
	return &verse, nil
}

// verseNeighborRow は近傍検索の1行 (Verse + 類似度)
type verseNeighborRow struct {
	model.Verse `gorm:"embedded"`
	Similarity  float64
}

func (r *gormVerseRepository) NearestNeighbors(ctx context.Context, db *gorm.DB, embedding []float32, limit int, minSimilarity float64) ([]*model.RetrievalCandidate, error) {
	logger := middleware.GetLogger(ctx)
	vec := pgvector.NewVector(embedding)

	var rows []verseNeighborRow
	// <=> は cosine 距離。ソートは距離昇順 = 類似度降順で、同値は
	// (surah, ayat) 昇順で決定的にする。
	result := db.WithContext(ctx).Raw(`
		SELECT *, 1 - (embedding <=> ?) AS similarity
		FROM quran_verses
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> ?) > ?
		ORDER BY embedding <=> ?, surah_number ASC, ayat_number ASC
		LIMIT ?`,
		vec, vec, minSimilarity, vec, limit,
	).Scan(&rows)
	if result.Error != nil {
		logger.Error("Error running nearest-neighbor search in DB",
			"error", result.Error,
			"limit", limit,
			"min_similarity", minSimilarity,
		)
		return nil, fmt.Errorf("gormVerseRepository.NearestNeighbors: %w", result.Error)
	}

	candidates := make([]*model.RetrievalCandidate, 0, len(rows))
	for i := range rows {
		verse := rows[i].Verse
		candidates = append(candidates, &model.RetrievalCandidate{
			Verse:      &verse,
			Similarity: rows[i].Similarity,
			FinalScore: rows[i].Similarity,
		})
	}
	return candidates, nil
}

func (r *gormVerseRepository) CountInSurah(ctx context.Context, db *gorm.DB, surahNumber int) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	result := db.WithContext(ctx).Model(&model.Verse{}).
		Where("surah_number = ?", surahNumber).
		Count(&count)
	if result.Error != nil {
		logger.Error("Error counting verses in surah",
			"error", result.Error,
			"surah_number", surahNumber,
		)
		return 0, fmt.Errorf("gormVerseRepository.CountInSurah: %w", result.Error)
	}
	return count, nil
}

func (r *gormVerseRepository) CountIndexed(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Verse{}).
		Where("embedding IS NOT NULL").
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormVerseRepository.CountIndexed: %w", result.Error)
	}
	return count, nil
}

func (r *gormVerseRepository) Upsert(ctx context.Context, tx *gorm.DB, verse *model.Verse) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "surah_number"}, {Name: "ayat_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"arabic_text", "translation", "tafsir_summary",
			"context_before", "context_after", "themes", "embedding", "updated_at",
		}),
	}).Create(verse)
	if result.Error != nil {
		logger.Error("Error upserting verse in DB",
			"error", result.Error,
			"surah_number", verse.SurahNumber,
			"ayat_number", verse.AyatNumber,
		)
		return fmt.Errorf("gormVerseRepository.Upsert: %w", result.Error)
	}
	return nil
}
