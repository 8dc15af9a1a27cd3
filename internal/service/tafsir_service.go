package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"
)

// TafsirService はアヤト単位のガイド付きディスカッションとタフシール質問応答を担います。
type TafsirService interface {
	StartDiscussion(ctx context.Context, surahNumber, ayatNumber int) (*model.TafsirDiscussion, error)
	AnswerQuestion(ctx context.Context, req *model.TafsirQuestionRequest) (*model.ChatResponse, error)
}

type tafsirService struct {
	retriever RetrieverService
	llm       LLMClient
	cfg       *config.Config
}

func NewTafsirService(retriever RetrieverService, llm LLMClient, cfg *config.Config) TafsirService {
	return &tafsirService{
		retriever: retriever,
		llm:       llm,
		cfg:       cfg,
	}
}

// 参照表記のパターン。"QS 2:255" と "surah 2 ayat 255" の両方を受け付ける。
var (
	qsRefPattern    = regexp.MustCompile(`(?i)qs\.?\s*(\d{1,3})\s*:\s*(\d{1,3})`)
	surahRefPattern = regexp.MustCompile(`(?i)surah\s+(\d{1,3})\s+ayat\s+(\d{1,3})`)
)

// ExtractVerseReference はテキストから明示的なアヤト参照を取り出します。
func ExtractVerseReference(text string) (model.VerseRef, bool) {
	for _, pattern := range []*regexp.Regexp{qsRefPattern, surahRefPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			surah, err1 := strconv.Atoi(m[1])
			ayat, err2 := strconv.Atoi(m[2])
			if err1 == nil && err2 == nil && model.ValidSurah(surah) && ayat >= 1 {
				return model.VerseRef{SurahNumber: surah, AyatNumber: ayat}, true
			}
		}
	}
	return model.VerseRef{}, false
}

// tafsirKeywords はタフシール質問を判定するためのキーワード表。
var tafsirKeywords = []string{
	"tafsir",
	"makna",
	"arti",
	"maksud",
	"kandungan",
	"penjelasan",
	"asbabun nuzul",
}

// IsTafsirQuestion はテキストがタフシール (解釈) についての質問かどうかを推定します。
func IsTafsirQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range tafsirKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

const tafsirSystemPrompt = `Anda adalah pemandu kajian tafsir Al-Quran.
Jawab dalam bahasa Indonesia yang sopan dan mudah dipahami.
Gunakan HANYA ayat dan tafsir yang diberikan dalam konteks.
Jangan pernah mengarang isi tafsir yang tidak ada dalam konteks.`

func (s *tafsirService) StartDiscussion(ctx context.Context, surahNumber, ayatNumber int) (*model.TafsirDiscussion, error) {
	logger := middleware.GetLogger(ctx)

	verse, err := s.retriever.GetVerse(ctx, surahNumber, ayatNumber)
	if err != nil {
		return nil, err
	}

	discussion := &model.TafsirDiscussion{
		SurahNumber:      verse.SurahNumber,
		AyatNumber:       verse.AyatNumber,
		ArabicText:       verse.ArabicText,
		Translation:      verse.Translation,
		Tafsir:           verse.TafsirSummary,
		RelatedVerses:    []model.RelatedVerse{},
		DiscussionPoints: buildDiscussionPoints(verse),
	}

	// 翻訳文をクエリにして意味的に近いアヤトを関連候補として添える
	related, err := s.retriever.Search(ctx, &model.SearchRequest{
		Query: verse.Translation,
		Limit: s.cfg.Retrieval.ContextTopN + 1,
	})
	if err != nil {
		// 関連アヤトが引けなくてもディスカッション自体は返す
		logger.Warn("Failed to search related verses for tafsir discussion", "error", err)
		return discussion, nil
	}

	for _, c := range related {
		if c.Verse.SurahNumber == verse.SurahNumber && c.Verse.AyatNumber == verse.AyatNumber {
			continue
		}
		discussion.RelatedVerses = append(discussion.RelatedVerses, model.RelatedVerse{
			SurahNumber:    c.Verse.SurahNumber,
			AyatNumber:     c.Verse.AyatNumber,
			ArabicText:     c.Verse.ArabicText,
			Translation:    c.Verse.Translation,
			RelevanceScore: c.Similarity,
		})
		if len(discussion.RelatedVerses) >= s.cfg.Retrieval.ContextTopN {
			break
		}
	}
	return discussion, nil
}

// buildDiscussionPoints はアヤトのメタデータから議論の切り口を組み立てます。
func buildDiscussionPoints(verse *model.Verse) []string {
	points := []string{
		fmt.Sprintf("Apa pesan utama dari QS %s (%d):%d?", verse.SurahNameLatin, verse.SurahNumber, verse.AyatNumber),
	}
	for _, theme := range verse.Themes {
		points = append(points, fmt.Sprintf("Bagaimana ayat ini berbicara tentang tema %q?", theme))
	}
	if verse.ContextBefore != "" || verse.ContextAfter != "" {
		points = append(points, "Bagaimana kaitan ayat ini dengan ayat sebelum dan sesudahnya?")
	}
	points = append(points, "Bagaimana ayat ini dapat diamalkan dalam kehidupan sehari-hari?")
	return points
}

func (s *tafsirService) AnswerQuestion(ctx context.Context, req *model.TafsirQuestionRequest) (*model.ChatResponse, error) {
	logger := middleware.GetLogger(ctx)

	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "Pertanyaan wajib diisi.", "question", model.ErrInvalidInput)
	}

	var candidates []*model.RetrievalCandidate
	if ref, ok := ExtractVerseReference(req.Question); ok {
		verse, err := s.retriever.GetVerse(ctx, ref.SurahNumber, ref.AyatNumber)
		if err == nil {
			candidates = []*model.RetrievalCandidate{{Verse: verse, Similarity: 1.0, FinalScore: 1.0}}
		}
	}
	if len(candidates) == 0 {
		found, err := s.retriever.Search(ctx, &model.SearchRequest{
			Query: req.Question,
			Limit: s.cfg.Retrieval.Limit,
		})
		if err != nil {
			return nil, err
		}
		candidates = found
	}

	if len(candidates) == 0 {
		return &model.ChatResponse{
			Answer:   "Maaf, saya tidak menemukan ayat maupun tafsir yang berkaitan dengan pertanyaan Anda.",
			Grounded: false,
			Sources:  []*model.SearchResultItem{},
		}, nil
	}

	var sb strings.Builder
	sb.WriteString("Ayat dan tafsir yang relevan:\n\n")
	for _, c := range candidates {
		v := c.Verse
		fmt.Fprintf(&sb, "QS %s (%d):%d\n%s\nTerjemahan: %s\n", v.SurahNameLatin, v.SurahNumber, v.AyatNumber, v.ArabicText, v.Translation)
		if v.TafsirSummary != "" {
			fmt.Fprintf(&sb, "Tafsir: %s\n", v.TafsirSummary)
		}
		sb.WriteString("\n")
	}

	answer, err := s.llm.Complete(ctx, []model.ChatMessage{
		{Role: "system", Content: tafsirSystemPrompt},
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: req.Question},
	})
	if err != nil {
		logger.Error("LLM completion failed for tafsir question", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal menghasilkan jawaban.", "", err)
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
