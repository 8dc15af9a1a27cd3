package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/repository"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// IndexerService は equran.id からコーパスを取り込み、埋め込み付きで
// アヤトを upsert します。再実行しても安全です。
type IndexerService interface {
	IndexSurah(ctx context.Context, surahNumber int) (int, error)
	IndexAll(ctx context.Context) (int, error)
	IndexedCount(ctx context.Context) (int64, error)
}

type indexerService struct {
	db        *gorm.DB
	verseRepo repository.VerseRepository
	equran    EQuranClient
	embedder  Embedder
	cfg       *config.Config
}

func NewIndexerService(db *gorm.DB, verseRepo repository.VerseRepository, equran EQuranClient, embedder Embedder, cfg *config.Config) IndexerService {
	return &indexerService{
		db:        db,
		verseRepo: verseRepo,
		equran:    equran,
		embedder:  embedder,
		cfg:       cfg,
	}
}

// タフシール要約の最大文字数 (ルーン単位)。
const tafsirSummaryMaxLen = 500

func (s *indexerService) IndexSurah(ctx context.Context, surahNumber int) (int, error) {
	logger := middleware.GetLogger(ctx).With("surah", surahNumber)

	if !model.ValidSurah(surahNumber) {
		return 0, model.NewAppError("VALIDATION_ERROR", "Nomor surah harus antara 1 dan 114.", "surah", model.ErrInvalidRange)
	}

	detail, err := s.equran.GetSurah(ctx, surahNumber)
	if err != nil {
		logger.Error("Failed to fetch surah from equran.id", "error", err)
		return 0, fmt.Errorf("indexerService.IndexSurah: %w", err)
	}

	tafsirByAyat := make(map[int]string)
	tafsir, err := s.equran.GetTafsir(ctx, surahNumber)
	if err != nil {
		// タフシールが引けなくても本文のインデックスは続行する
		logger.Warn("Failed to fetch tafsir from equran.id, indexing without tafsir", "error", err)
	} else {
		for _, entry := range tafsir {
			tafsirByAyat[entry.Ayat] = entry.Text
		}
	}

	indexed := 0
	for i, ayat := range detail.Ayat {
		verse := &model.Verse{
			VerseID:         uuid.New(),
			SurahNumber:     detail.Number,
			AyatNumber:      ayat.Number,
			SurahNameLatin:  detail.NameLatin,
			SurahNameArabic: detail.NameArabic,
			ArabicText:      ayat.ArabicText,
			Translation:     ayat.Translation,
			TafsirSummary:   summarizeTafsir(tafsirByAyat[ayat.Number]),
			Themes:          detectThemes(ayat.Translation),
		}
		if i > 0 {
			verse.ContextBefore = detail.Ayat[i-1].Translation
		}
		if i < len(detail.Ayat)-1 {
			verse.ContextAfter = detail.Ayat[i+1].Translation
		}

		embedding, err := s.embedder.Embed(ctx, BuildEmbeddingText(verse))
		if err != nil {
			logger.Error("Failed to embed verse", "error", err, "ayat", ayat.Number)
			return indexed, fmt.Errorf("indexerService.IndexSurah: embed %d:%d: %w", surahNumber, ayat.Number, err)
		}
		verse.Embedding = pgvector.NewVector(embedding)

		if err := s.verseRepo.Upsert(ctx, s.db, verse); err != nil {
			logger.Error("Failed to upsert verse", "error", err, "ayat", ayat.Number)
			return indexed, fmt.Errorf("indexerService.IndexSurah: upsert %d:%d: %w", surahNumber, ayat.Number, err)
		}
		indexed++
	}

	logger.Info("Surah indexed", "verses", indexed)
	return indexed, nil
}

func (s *indexerService) IndexAll(ctx context.Context) (int, error) {
	logger := middleware.GetLogger(ctx)

	surahs, err := s.equran.ListSurahs(ctx)
	if err != nil {
		logger.Error("Failed to list surahs from equran.id", "error", err)
		return 0, fmt.Errorf("indexerService.IndexAll: %w", err)
	}

	total := 0
	for _, surah := range surahs {
		indexed, err := s.IndexSurah(ctx, surah.Number)
		total += indexed
		if err != nil {
			return total, err
		}
	}

	logger.Info("Full corpus indexed", "verses", total)
	return total, nil
}

func (s *indexerService) IndexedCount(ctx context.Context) (int64, error) {
	return s.verseRepo.CountIndexed(ctx, s.db)
}

// BuildEmbeddingText はアヤト1件から埋め込み入力テキストを組み立てます。
// 翻訳を先頭に置くことでインドネシア語クエリとの近さを優先します。
func BuildEmbeddingText(verse *model.Verse) string {
	var sb strings.Builder
	sb.WriteString(verse.Translation)
	sb.WriteString("\n")
	sb.WriteString(verse.ArabicText)
	if verse.TafsirSummary != "" {
		sb.WriteString("\n")
		sb.WriteString(verse.TafsirSummary)
	}
	if len(verse.Themes) > 0 {
		sb.WriteString("\nTema: ")
		sb.WriteString(strings.Join(verse.Themes, ", "))
	}
	return sb.String()
}

// summarizeTafsir はタフシール全文を先頭から文境界で切り詰めます。
func summarizeTafsir(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= tafsirSummaryMaxLen {
		return text
	}

	runes := []rune(text)
	truncated := runes[:tafsirSummaryMaxLen]

	// 直近の文末で切る。見つからなければそのまま切り詰める
	if idx := strings.LastIndexByte(string(truncated), '.'); idx > 0 {
		return string(truncated)[:idx+1]
	}
	return string(truncated)
}

// themeKeywords は翻訳文からテーマを推定するためのキーワード表。
var themeKeywords = map[string][]string{
	"sabar":     {"sabar", "kesabaran"},
	"syukur":    {"syukur", "bersyukur"},
	"tauhid":    {"esa", "tiada tuhan", "keesaan"},
	"ibadah":    {"salat", "shalat", "sembahyang", "ibadah", "puasa", "zakat"},
	"akhirat":   {"akhirat", "kiamat", "surga", "neraka", "hari pembalasan"},
	"keluarga":  {"anak", "orang tua", "istri", "suami", "keluarga"},
	"rezeki":    {"rezeki", "harta", "nafkah"},
	"ampunan":   {"ampun", "taubat", "maghfirah"},
	"keadilan":  {"adil", "keadilan", "zalim"},
	"ilmu":      {"ilmu", "pengetahuan", "berpikir", "akal"},
	"ketakwaan": {"takwa", "bertakwa"},
}

// detectThemes は翻訳文に含まれるキーワードからテーマを推定します。
// 結果はテーマ名の昇順で安定しています。
func detectThemes(translation string) []string {
	lower := strings.ToLower(translation)
	var themes []string
	for theme, keywords := range themeKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				themes = append(themes, theme)
				break
			}
		}
	}
	sort.Strings(themes)
	return themes
}
