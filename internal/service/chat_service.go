package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"

	"github.com/google/uuid"
)

// ChatService は1ターンのチャットを編成します: 検索、re-rank、
// グラウンディング、LLM 呼び出し、会話コンテキストの更新。
type ChatService interface {
	Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error)
}

type chatService struct {
	retriever  RetrieverService
	contextSvc ContextService
	llm        LLMClient
	cfg        *config.Config
}

func NewChatService(retriever RetrieverService, contextSvc ContextService, llm LLMClient, cfg *config.Config) ChatService {
	return &chatService{
		retriever:  retriever,
		contextSvc: contextSvc,
		llm:        llm,
		cfg:        cfg,
	}
}

// systemPrompt はアシスタントの役割を固定します。引用は必ず検索で
// 裏付けられたアヤトに限定させます。
const systemPrompt = `Anda adalah asisten Al-Quran yang membantu pengguna memahami ayat-ayat Al-Quran.
Jawab selalu dalam bahasa Indonesia yang sopan.
Gunakan HANYA ayat-ayat yang diberikan dalam konteks di bawah ini sebagai rujukan.
Jangan pernah mengarang ayat, nomor surah, atau terjemahan yang tidak ada dalam konteks.
Jika konteks tidak memuat ayat yang relevan, katakan dengan jujur bahwa Anda tidak menemukan ayat yang berkaitan.`

func (s *chatService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	logger := middleware.GetLogger(ctx)

	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "Pesan wajib diisi.", "message", model.ErrInvalidInput)
	}

	conversationID := uuid.Nil
	if req.ConversationID != "" {
		parsed, err := uuid.Parse(req.ConversationID)
		if err != nil {
			return nil, model.NewAppError("VALIDATION_ERROR", "ID percakapan harus berupa UUID yang valid.", "conversation_id", model.ErrInvalidInput)
		}
		conversationID = parsed
	}

	// タフシール質問で特定のアヤトが名指しされていれば、検索より先に
	// その参照を直接解決する
	if ref, ok := ExtractVerseReference(req.Message); ok {
		if resp, err := s.answerWithDirectReference(ctx, req, ref, conversationID); err == nil {
			return resp, nil
		} else if !errors.Is(err, model.ErrVerseNotFound) {
			return nil, err
		}
		// 参照先が未インデックスなら通常の検索にフォールバック
	}

	candidates, err := s.retriever.Search(ctx, &model.SearchRequest{
		Query: req.Message,
		Limit: s.cfg.Retrieval.Limit,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmbeddingUnavailable) {
			// 検索不能時でも LLM 単体で丁寧に応答を返す (非グラウンド)
			logger.Warn("Embedding unavailable, degrading to ungrounded answer")
			return s.ungroundedAnswer(ctx, req)
		}
		return nil, err
	}

	candidates = s.contextSvc.Rerank(ctx, conversationID, candidates)
	candidates = dedupeCandidates(candidates)

	if len(candidates) == 0 {
		return &model.ChatResponse{
			Answer:   "Maaf, saya tidak menemukan ayat yang berkaitan dengan pertanyaan Anda. Silakan coba dengan kata kunci lain.",
			Grounded: false,
			Sources:  []*model.SearchResultItem{},
		}, nil
	}

	answer, err := s.llm.Complete(ctx, s.buildMessages(req, candidates))
	if err != nil {
		logger.Error("LLM completion failed", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal menghasilkan jawaban.", "", err)
	}

	if conversationID != uuid.Nil {
		topN := s.cfg.Retrieval.ContextTopN
		mentioned := candidates
		if len(mentioned) > topN {
			mentioned = mentioned[:topN]
		}
		if err := s.contextSvc.Update(ctx, conversationID, mentioned, collectThemes(mentioned)); err != nil {
			// 文脈更新の失敗で応答を落とさない
			logger.Warn("Failed to update conversation context", "error", err, "conversation_id", conversationID)
		}
	}

	sources := make([]*model.SearchResultItem, 0, len(candidates))
	for _, c := range candidates {
		sources = append(sources, model.NewSearchResultItem(c))
	}

	return &model.ChatResponse{
		Answer:   answer,
		Grounded: true,
		Sources:  sources,
	}, nil
}

// answerWithDirectReference は "QS 2:255" のような明示的な参照を直接解決します。
func (s *chatService) answerWithDirectReference(ctx context.Context, req *model.ChatRequest, ref model.VerseRef, conversationID uuid.UUID) (*model.ChatResponse, error) {
	verse, err := s.retriever.GetVerse(ctx, ref.SurahNumber, ref.AyatNumber)
	if err != nil {
		return nil, err
	}

	candidate := &model.RetrievalCandidate{Verse: verse, Similarity: 1.0, FinalScore: 1.0}
	answer, err := s.llm.Complete(ctx, s.buildMessages(req, []*model.RetrievalCandidate{candidate}))
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal menghasilkan jawaban.", "", err)
	}

	if conversationID != uuid.Nil {
		if err := s.contextSvc.Update(ctx, conversationID, []*model.RetrievalCandidate{candidate}, verse.Themes); err != nil {
			middleware.GetLogger(ctx).Warn("Failed to update conversation context", "error", err, "conversation_id", conversationID)
		}
	}

	return &model.ChatResponse{
		Answer:   answer,
		Grounded: true,
		Sources:  []*model.SearchResultItem{model.NewSearchResultItem(candidate)},
	}, nil
}

func (s *chatService) ungroundedAnswer(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	messages := []model.ChatMessage{{Role: "system", Content: systemPrompt}}
	messages = append(messages, req.History...)
	messages = append(messages, model.ChatMessage{
		Role: "user",
		Content: req.Message + "\n\n(Catatan: pencarian ayat sedang tidak tersedia, " +
			"jawab secara umum tanpa mengutip ayat tertentu.)",
	})

	answer, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal menghasilkan jawaban.", "", err)
	}
	return &model.ChatResponse{
		Answer:   answer,
		Grounded: false,
		Sources:  []*model.SearchResultItem{},
	}, nil
}

// buildMessages はグラウンディング用のコンテキストブロックを組み立てます。
func (s *chatService) buildMessages(req *model.ChatRequest, candidates []*model.RetrievalCandidate) []model.ChatMessage {
	var sb strings.Builder
	sb.WriteString("Ayat-ayat yang relevan:\n\n")
	for _, c := range candidates {
		v := c.Verse
		fmt.Fprintf(&sb, "QS %s (%d):%d\n%s\nTerjemahan: %s\n", v.SurahNameLatin, v.SurahNumber, v.AyatNumber, v.ArabicText, v.Translation)
		if v.TafsirSummary != "" {
			fmt.Fprintf(&sb, "Tafsir: %s\n", v.TafsirSummary)
		}
		sb.WriteString("\n")
	}

	messages := []model.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: sb.String()},
	}
	messages = append(messages, req.History...)
	messages = append(messages, model.ChatMessage{Role: "user", Content: req.Message})
	return messages
}

// dedupeCandidates は同一アヤトの重複を先勝ちで取り除きます。
func dedupeCandidates(candidates []*model.RetrievalCandidate) []*model.RetrievalCandidate {
	seen := make(map[int]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := c.Ref().Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func collectThemes(candidates []*model.RetrievalCandidate) []string {
	var themes []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		for _, t := range c.Verse.Themes {
			if !seen[t] {
				seen[t] = true
				themes = append(themes, t)
			}
		}
	}
	return themes
}
