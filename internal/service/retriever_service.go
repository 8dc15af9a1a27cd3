package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/repository"

	"gorm.io/gorm"
)

// RetrieverService はクエリ文をベクトル化し、類似アヤトを検索します。
type RetrieverService interface {
	Search(ctx context.Context, req *model.SearchRequest) ([]*model.RetrievalCandidate, error)
	GetVerse(ctx context.Context, surahNumber, ayatNumber int) (*model.Verse, error)
}

type retrieverService struct {
	db        *gorm.DB
	verseRepo repository.VerseRepository
	embedder  Embedder
	cfg       *config.Config
}

func NewRetrieverService(db *gorm.DB, verseRepo repository.VerseRepository, embedder Embedder, cfg *config.Config) RetrieverService {
	return &retrieverService{
		db:        db,
		verseRepo: verseRepo,
		embedder:  embedder,
		cfg:       cfg,
	}
}

func (s *retrieverService) Search(ctx context.Context, req *model.SearchRequest) ([]*model.RetrievalCandidate, error) {
	logger := middleware.GetLogger(ctx)

	if req == nil || req.Query == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "Kata kunci pencarian wajib diisi.", "query", model.ErrInvalidInput)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Retrieval.Limit
	}
	threshold := s.cfg.Retrieval.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
		if threshold < 0 || threshold > 1 {
			return nil, model.NewAppError("VALIDATION_ERROR", "Ambang kemiripan harus antara 0 dan 1.", "threshold", model.ErrInvalidRange)
		}
	}

	embedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		logger.Error("Failed to embed search query", "error", err)
		if errors.Is(err, model.ErrEmbeddingUnavailable) {
			return nil, model.NewAppError("EMBEDDING_UNAVAILABLE", "Layanan pencarian sedang tidak tersedia. Silakan coba lagi.", "", model.ErrEmbeddingUnavailable)
		}
		return nil, fmt.Errorf("retrieverService.Search: %w", err)
	}

	candidates, err := s.verseRepo.NearestNeighbors(ctx, s.db, embedding, limit, threshold)
	if err != nil {
		logger.Error("Failed to search nearest verses", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mencari ayat.", "", err)
	}

	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	logger.Info("Verse search completed", "count", len(candidates), "threshold", threshold)
	return candidates, nil
}

// sortCandidates は類似度の降順、同点は (surah, ayat) の昇順で安定に並べ替えます。
func sortCandidates(candidates []*model.RetrievalCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		if candidates[i].Verse.SurahNumber != candidates[j].Verse.SurahNumber {
			return candidates[i].Verse.SurahNumber < candidates[j].Verse.SurahNumber
		}
		return candidates[i].Verse.AyatNumber < candidates[j].Verse.AyatNumber
	})
}

func (s *retrieverService) GetVerse(ctx context.Context, surahNumber, ayatNumber int) (*model.Verse, error) {
	logger := middleware.GetLogger(ctx)

	if !model.ValidSurah(surahNumber) || ayatNumber < 1 {
		return nil, model.NewAppError("VALIDATION_ERROR", "Referensi ayat tidak valid.", "", model.ErrInvalidRange)
	}

	verse, err := s.verseRepo.FindByKey(ctx, s.db, surahNumber, ayatNumber)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("VERSE_NOT_FOUND", "Ayat tidak ditemukan.", "", model.ErrVerseNotFound)
		}
		logger.Error("Failed to find verse", "error", err, "surah", surahNumber, "ayat", ayatNumber)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengambil ayat.", "", err)
	}
	return verse, nil
}
