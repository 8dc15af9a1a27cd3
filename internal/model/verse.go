// internal/model/verse.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EmbeddingDimensions は全コーパスで固定のベクトル次元数
const EmbeddingDimensions = 1536

// Verse は Al-Quran の 1 ayat を表す不変のコンテンツレコード。
// (surah_number, ayat_number) がユニークキー。バッチインデクサのみが
// 書き込み、検索・採点側からは読み取り専用。
type Verse struct {
	VerseID         uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"verse_id"`
	SurahNumber     int                          `gorm:"not null;index:idx_surah_ayat,unique" json:"surah_number"`
	AyatNumber      int                          `gorm:"not null;index:idx_surah_ayat,unique" json:"ayat_number"`
	SurahNameLatin  string                       `gorm:"not null" json:"surah_name_latin"`
	SurahNameArabic string                       `gorm:"not null" json:"surah_name_arabic"`
	ArabicText      string                       `gorm:"type:text;not null" json:"arabic_text"`
	Translation     string                       `gorm:"type:text;not null" json:"translation"`
	TafsirSummary   string                       `gorm:"type:text" json:"tafsir_summary,omitempty"`
	ContextBefore   string                       `gorm:"type:text" json:"context_before,omitempty"`
	ContextAfter    string                       `gorm:"type:text" json:"context_after,omitempty"`
	Themes          datatypes.JSONSlice[string]  `gorm:"type:jsonb" json:"themes"`
	Embedding       pgvector.Vector              `gorm:"type:vector(1536)" json:"-"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

func (Verse) TableName() string {
	return "quran_verses"
}

// VerseRef は (surah, ayat) によるアヤ参照
type VerseRef struct {
	SurahNumber int `json:"surah_number"`
	AyatNumber  int `json:"ayat_number"`
}

// Key はマップのキーや重複排除に使える単一の比較可能な値を返します。
func (r VerseRef) Key() int {
	// ayat は最大でも 286 なので衝突しない
	return r.SurahNumber*1000 + r.AyatNumber
}

// VerseResponse は単一アヤ取得のレスポンスDTO
type VerseResponse struct {
	SurahNumber     int      `json:"surah_number"`
	AyatNumber      int      `json:"ayat_number"`
	SurahNameLatin  string   `json:"surah_name_latin"`
	SurahNameArabic string   `json:"surah_name_arabic"`
	ArabicText      string   `json:"arabic_text"`
	Translation     string   `json:"translation"`
	TafsirSummary   string   `json:"tafsir_summary,omitempty"`
	Themes          []string `json:"themes,omitempty"`
}

func NewVerseResponse(v *Verse) *VerseResponse {
	return &VerseResponse{
		SurahNumber:     v.SurahNumber,
		AyatNumber:      v.AyatNumber,
		SurahNameLatin:  v.SurahNameLatin,
		SurahNameArabic: v.SurahNameArabic,
		ArabicText:      v.ArabicText,
		Translation:     v.Translation,
		TafsirSummary:   v.TafsirSummary,
		Themes:          v.Themes,
	}
}
