// internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// OpenAIConfig は埋め込み・チャット両方の外部 API 設定
type OpenAIConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	ChatModel           string        `mapstructure:"chat_model"`
	EmbeddingModel      string        `mapstructure:"embedding_model"`
	EmbeddingDimensions int           `mapstructure:"embedding_dimensions"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig はチャットターンの検索パラメータ
type RetrievalConfig struct {
	Limit     int     `mapstructure:"limit"`
	Threshold float64 `mapstructure:"threshold"`
	// ContextTopN は会話コンテキストに記録する使用済みアヤの件数
	ContextTopN int `mapstructure:"context_top_n"`
}

type HafalanConfig struct {
	// SessionIdleTTL を超えて触られていないキャッシュ済みセッションは
	// 退避される (耐久行は残るので再開可能)
	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
}

type ContextConfig struct {
	RetentionDays int           `mapstructure:"retention_days"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type EQuranConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Hafalan   HafalanConfig   `mapstructure:"hafalan"`
	Context   ContextConfig   `mapstructure:"context"`
	EQuran    EQuranConfig    `mapstructure:"equran"`
}

// LoadConfig は config.yaml と環境変数 (APP_ プレフィックス) から設定を
// 読み込む。グローバルには保持せず、呼び出し側が DI で引き回す。
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using defaults and environment variables.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return nil, err
	}

	// --- デフォルト値 ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = DefaultChatModel
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.OpenAI.EmbeddingDimensions <= 0 {
		cfg.OpenAI.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if cfg.OpenAI.Timeout <= 0 {
		cfg.OpenAI.Timeout = DefaultOpenAITimeout
	}
	if cfg.Retrieval.Limit <= 0 {
		cfg.Retrieval.Limit = DefaultRetrievalLimit
	}
	if cfg.Retrieval.Threshold <= 0 {
		cfg.Retrieval.Threshold = DefaultRetrievalThreshold
	}
	if cfg.Retrieval.ContextTopN <= 0 {
		cfg.Retrieval.ContextTopN = DefaultContextTopN
	}
	if cfg.Hafalan.SessionIdleTTL <= 0 {
		cfg.Hafalan.SessionIdleTTL = DefaultSessionIdleTTL
	}
	if cfg.Context.RetentionDays <= 0 {
		cfg.Context.RetentionDays = DefaultContextRetentionDays
	}
	if cfg.Context.SweepInterval <= 0 {
		cfg.Context.SweepInterval = DefaultContextSweepInterval
	}
	if cfg.EQuran.BaseURL == "" {
		cfg.EQuran.BaseURL = DefaultEQuranBaseURL
	}
	if cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	return &cfg, nil
}
