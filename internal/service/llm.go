package service

import (
	"context"

	"go_quran_assistant/internal/model"
)

// LLMClient はチャット補完 API の抽象です。
type LLMClient interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}
