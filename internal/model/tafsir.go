// internal/model/tafsir.go
package model

// RelatedVerse はタフシール・ディスカッションで提示する関連アヤ
type RelatedVerse struct {
	SurahNumber    int     `json:"surah_number"`
	AyatNumber     int     `json:"ayat_number"`
	ArabicText     string  `json:"arabic_text"`
	Translation    string  `json:"translation"`
	RelevanceScore float64 `json:"relevance_score"`
}

// TafsirDiscussion は特定のアヤについてのガイド付きディスカッション素材
type TafsirDiscussion struct {
	SurahNumber      int            `json:"surah_number"`
	AyatNumber       int            `json:"ayat_number"`
	ArabicText       string         `json:"arabic_text"`
	Translation      string         `json:"translation"`
	Tafsir           string         `json:"tafsir"`
	RelatedVerses    []RelatedVerse `json:"related_verses"`
	DiscussionPoints []string       `json:"discussion_points"`
}

// TafsirQuestionRequest はタフシール質問のリクエストDTO
type TafsirQuestionRequest struct {
	Question string `json:"question" validate:"required"`
}
