// internal/model/context.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DiscussedVerse は会話内で既に言及されたアヤと、その言及回数・関連度
type DiscussedVerse struct {
	SurahNumber     int     `json:"surah_number"`
	AyatNumber      int     `json:"ayat_number"`
	RelevanceScore  float64 `json:"relevance_score"`
	DiscussionCount int     `json:"discussion_count"`
}

// ConversationContext は会話ごとに1行。言及済みアヤのスナップショットを
// JSONB で丸ごと保持する。保存は常に全量上書き (upsert) なので retry には
// 冪等だが、同一会話への同時更新は last-write-wins になる。
type ConversationContext struct {
	ConversationID  uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"conversation_id"`
	DiscussedVerses datatypes.JSONSlice[DiscussedVerse]  `gorm:"type:jsonb" json:"discussed_verses"`
	Themes          datatypes.JSONSlice[string]          `gorm:"type:jsonb" json:"themes"`
	LastUpdated     time.Time                            `gorm:"not null;index" json:"last_updated"`
}

func (ConversationContext) TableName() string {
	return "conversation_contexts"
}

// NewConversationContext は初回利用時に遅延生成される空コンテキスト
func NewConversationContext(conversationID uuid.UUID) *ConversationContext {
	return &ConversationContext{
		ConversationID:  conversationID,
		DiscussedVerses: datatypes.JSONSlice[DiscussedVerse]{},
		Themes:          datatypes.JSONSlice[string]{},
		LastUpdated:     time.Now(),
	}
}

// FindDiscussed は ref に対応する言及済みエントリを返します。なければ nil。
func (c *ConversationContext) FindDiscussed(ref VerseRef) *DiscussedVerse {
	for i := range c.DiscussedVerses {
		v := &c.DiscussedVerses[i]
		if v.SurahNumber == ref.SurahNumber && v.AyatNumber == ref.AyatNumber {
			return v
		}
	}
	return nil
}

// CountInSurah は指定したスーラに属する言及済みアヤの数を返します。
func (c *ConversationContext) CountInSurah(surahNumber int) int {
	n := 0
	for i := range c.DiscussedVerses {
		if c.DiscussedVerses[i].SurahNumber == surahNumber {
			n++
		}
	}
	return n
}
