package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContextService は会話文脈の永続化と、文脈に基づく候補の再ランキングを担います。
type ContextService interface {
	// Rerank は会話文脈に基づいて候補の最終スコアを計算し、並べ替えた結果を返します。
	// 文脈の読み込みに失敗した場合は候補をそのまま返し、エラーにはしません。
	Rerank(ctx context.Context, conversationID uuid.UUID, candidates []*model.RetrievalCandidate) []*model.RetrievalCandidate
	// Update は今回のターンで言及されたアヤトとテーマで文脈を更新します。
	Update(ctx context.Context, conversationID uuid.UUID, mentioned []*model.RetrievalCandidate, themes []string) error
	GetContext(ctx context.Context, conversationID uuid.UUID) (*model.ConversationContext, error)
	CleanupOld(ctx context.Context) (int64, error)
}

type contextService struct {
	db      *gorm.DB
	ctxRepo repository.ContextRepository
	cfg     *config.Config
}

func NewContextService(db *gorm.DB, ctxRepo repository.ContextRepository, cfg *config.Config) ContextService {
	return &contextService{
		db:      db,
		ctxRepo: ctxRepo,
		cfg:     cfg,
	}
}

const (
	// 1回の言及につき 0.1、上限 0.3 までのブースト。
	discussionBoostStep = 0.1
	discussionBoostCap  = 0.3
	// 同じスーラで議論済みのアヤト1件につき 0.05。
	sameSurahBoostStep = 0.05
)

func (s *contextService) Rerank(ctx context.Context, conversationID uuid.UUID, candidates []*model.RetrievalCandidate) []*model.RetrievalCandidate {
	logger := middleware.GetLogger(ctx)

	for _, c := range candidates {
		c.ContextScore = 0
		c.FinalScore = c.Similarity
	}

	if conversationID == uuid.Nil || len(candidates) == 0 {
		return candidates
	}

	conv, err := s.ctxRepo.Load(ctx, s.db, conversationID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			// 文脈が読めなくても検索結果自体は返す
			logger.Warn("Failed to load conversation context for rerank, falling back to similarity order", "error", err, "conversation_id", conversationID)
		}
		return candidates
	}

	for _, c := range candidates {
		contextScore := 0.0

		if discussed := conv.FindDiscussed(c.Ref()); discussed != nil {
			boost := discussionBoostStep * float64(discussed.DiscussionCount)
			if boost > discussionBoostCap {
				boost = discussionBoostCap
			}
			contextScore += boost
		}

		sameSurah := conv.CountInSurah(c.Verse.SurahNumber)
		contextScore += sameSurahBoostStep * float64(sameSurah)

		c.ContextScore = contextScore
		c.FinalScore = c.Similarity + contextScore
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
	return candidates
}

func (s *contextService) Update(ctx context.Context, conversationID uuid.UUID, mentioned []*model.RetrievalCandidate, themes []string) error {
	logger := middleware.GetLogger(ctx)

	if conversationID == uuid.Nil {
		return nil
	}

	conv, err := s.ctxRepo.Load(ctx, s.db, conversationID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to load conversation context for update", "error", err, "conversation_id", conversationID)
			return model.NewAppError("CONTEXT_PERSISTENCE_ERROR", "Gagal menyimpan konteks percakapan.", "", model.ErrContextPersistence)
		}
		conv = model.NewConversationContext(conversationID)
	}

	for _, c := range mentioned {
		if discussed := conv.FindDiscussed(c.Ref()); discussed != nil {
			discussed.DiscussionCount++
			if c.Similarity > discussed.RelevanceScore {
				discussed.RelevanceScore = c.Similarity
			}
		} else {
			conv.DiscussedVerses = append(conv.DiscussedVerses, model.DiscussedVerse{
				SurahNumber:     c.Verse.SurahNumber,
				AyatNumber:      c.Verse.AyatNumber,
				RelevanceScore:  c.Similarity,
				DiscussionCount: 1,
			})
		}
	}

	for _, theme := range themes {
		if !containsString(conv.Themes, theme) {
			conv.Themes = append(conv.Themes, theme)
		}
	}

	conv.LastUpdated = time.Now()

	if err := s.ctxRepo.Save(ctx, s.db, conv); err != nil {
		logger.Error("Failed to save conversation context", "error", err, "conversation_id", conversationID)
		return model.NewAppError("CONTEXT_PERSISTENCE_ERROR", "Gagal menyimpan konteks percakapan.", "", model.ErrContextPersistence)
	}
	return nil
}

func (s *contextService) GetContext(ctx context.Context, conversationID uuid.UUID) (*model.ConversationContext, error) {
	conv, err := s.ctxRepo.Load(ctx, s.db, conversationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// まだ文脈がない会話は空の文脈として扱う
			return model.NewConversationContext(conversationID), nil
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengambil konteks percakapan.", "", err)
	}
	return conv, nil
}

func (s *contextService) CleanupOld(ctx context.Context) (int64, error) {
	logger := middleware.GetLogger(ctx)

	cutoff := time.Now().AddDate(0, 0, -s.cfg.Context.RetentionDays)
	deleted, err := s.ctxRepo.DeleteOlderThan(ctx, s.db, cutoff)
	if err != nil {
		logger.Error("Failed to clean up old conversation contexts", "error", err)
		return 0, err
	}
	if deleted > 0 {
		logger.Info("Cleaned up old conversation contexts", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
