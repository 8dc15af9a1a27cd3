// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/handlers"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/repository"
	"go_quran_assistant/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg, tempLogger)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// Dependency Injection
	verseRepo := repository.NewGormVerseRepository()
	contextRepo := repository.NewGormContextRepository()
	sessionRepo := repository.NewGormSessionRepository()

	embedder := service.NewOpenAIEmbedder(cfg.OpenAI)
	llmClient := service.NewOpenAIChatClient(cfg.OpenAI)

	retrieverService := service.NewRetrieverService(db, verseRepo, embedder, cfg)
	contextService := service.NewContextService(db, contextRepo, cfg)
	tafsirService := service.NewTafsirService(retrieverService, llmClient, cfg)
	chatService := service.NewChatService(retrieverService, contextService, llmClient, cfg)
	hafalanService := service.NewHafalanService(db, sessionRepo, verseRepo, cfg)

	chatHandler := handlers.NewChatHandler(chatService, retrieverService, logger)
	verseHandler := handlers.NewVerseHandler(retrieverService, logger)
	tafsirHandler := handlers.NewTafsirHandler(tafsirService, logger)
	hafalanHandler := handlers.NewHafalanHandler(hafalanService, logger)

	// Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)
		r.Post("/search", chatHandler.Search)

		r.Get("/verses/{surah}/{ayat}", verseHandler.GetVerse)

		r.Route("/tafsir", func(r chi.Router) {
			r.Get("/{surah}/{ayat}", tafsirHandler.StartDiscussion)
			r.Post("/questions", tafsirHandler.AnswerQuestion)
		})

		r.Route("/hafalan/sessions", func(r chi.Router) {
			r.Post("/", hafalanHandler.StartSession)
			r.Get("/{sessionID}/next", hafalanHandler.NextVerse)
			r.Post("/{sessionID}/attempts", hafalanHandler.EvaluateAttempt)
			r.Get("/{sessionID}/stats", hafalanHandler.SessionStats)
			r.Delete("/{sessionID}", hafalanHandler.EndSession)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 定期処理: 会話コンテキストの掃除とアイドルセッションのキャッシュ退避
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runMaintenanceLoop(sweepCtx, cfg, contextService, hafalanService)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は設定に基づいて slog ロガーを初期化します。
// APP_ENV=dev では tint、それ以外では JSON ハンドラを使います。
func newLogger(cfg *config.Config, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}

// runMaintenanceLoop は保持期間を過ぎた会話コンテキストの削除と、
// アイドルセッションのキャッシュ退避を定期実行します。
func runMaintenanceLoop(ctx context.Context, cfg *config.Config, contextService service.ContextService, hafalanService service.HafalanService) {
	ticker := time.NewTicker(cfg.Context.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := contextService.CleanupOld(ctx); err != nil {
				slog.Error("Conversation context cleanup failed", slog.Any("error", err))
			}
			hafalanService.EvictIdle(ctx)
		}
	}
}
