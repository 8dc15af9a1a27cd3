// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "QuranAssistant"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort = ":8080"
	DefaultLogLevel   = "info"

	DefaultOpenAIBaseURL       = "https://api.openai.com/v1"
	DefaultChatModel           = "gpt-4o-mini"
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 1536
	DefaultOpenAITimeout       = 15 * time.Second

	DefaultRetrievalLimit     = 5
	DefaultRetrievalThreshold = 0.7
	DefaultContextTopN        = 3

	DefaultSessionIdleTTL       = 24 * time.Hour
	DefaultContextRetentionDays = 30
	DefaultContextSweepInterval = 6 * time.Hour

	DefaultEQuranBaseURL = "https://equran.id/api/v2"
)
