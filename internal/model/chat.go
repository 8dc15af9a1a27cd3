// internal/model/chat.go
package model

// ChatMessage は LLM に渡す会話履歴の1要素
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest はチャットターンのリクエストDTO。ConversationID が
// あると会話コンテキストによる re-rank と履歴更新が有効になる。
type ChatRequest struct {
	Message        string        `json:"message" validate:"required"`
	ConversationID string        `json:"conversation_id,omitempty" validate:"omitempty,uuid"`
	History        []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
}

// ChatResponse はチャットターンの結果。Grounded=false は「関連するアヤが
// 見つからなかった」ことを明示するシグナルで、捏造された参照は決して返さない。
type ChatResponse struct {
	Answer   string              `json:"answer"`
	Grounded bool                `json:"grounded"`
	Sources  []*SearchResultItem `json:"sources"`
}
