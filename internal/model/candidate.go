// internal/model/candidate.go
package model

// RetrievalCandidate はクエリごとに生成される一時的な検索候補。
// Similarity は cosine 由来の [-1,1]。ContextScore / FinalScore は
// 会話コンテキストによる re-rank 後にのみ意味を持つ。永続化しない。
type RetrievalCandidate struct {
	Verse        *Verse  `json:"verse"`
	Similarity   float64 `json:"similarity"`
	ContextScore float64 `json:"context_score"`
	FinalScore   float64 `json:"final_score"`
}

func (c *RetrievalCandidate) Ref() VerseRef {
	return VerseRef{SurahNumber: c.Verse.SurahNumber, AyatNumber: c.Verse.AyatNumber}
}

// SearchRequest は semantic search エンドポイントのリクエストDTO
type SearchRequest struct {
	Query     string   `json:"query" validate:"required"`
	Limit     int      `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

// SearchResultItem は検索結果1件のレスポンスDTO
type SearchResultItem struct {
	SurahNumber    int     `json:"surah_number"`
	AyatNumber     int     `json:"ayat_number"`
	SurahNameLatin string  `json:"surah_name_latin"`
	ArabicText     string  `json:"arabic_text"`
	Translation    string  `json:"translation"`
	Similarity     float64 `json:"similarity"`
	FinalScore     float64 `json:"final_score,omitempty"`
}

func NewSearchResultItem(c *RetrievalCandidate) *SearchResultItem {
	return &SearchResultItem{
		SurahNumber:    c.Verse.SurahNumber,
		AyatNumber:     c.Verse.AyatNumber,
		SurahNameLatin: c.Verse.SurahNameLatin,
		ArabicText:     c.Verse.ArabicText,
		Translation:    c.Verse.Translation,
		Similarity:     c.Similarity,
		FinalScore:     c.FinalScore,
	}
}
