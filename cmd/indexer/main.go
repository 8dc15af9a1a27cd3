// cmd/indexer/main.go
//
// equran.id からコーパスを取り込み、埋め込み付きで quran_verses を構築する
// バッチ。--surah で単一スーラのみ再インデックスできる。
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/repository"
	"go_quran_assistant/internal/service"
)

func main() {
	surahFlag := flag.Int("surah", 0, "index only this surah (1-114); 0 indexes the whole corpus")
	configPath := flag.String("config", "./configs", "path to the config directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}

	verseRepo := repository.NewGormVerseRepository()
	equranClient := service.NewEQuranClient(cfg.EQuran.BaseURL)
	embedder := service.NewOpenAIEmbedder(cfg.OpenAI)
	indexer := service.NewIndexerService(db, verseRepo, equranClient, embedder, cfg)

	ctx := context.Background()

	var indexed int
	if *surahFlag > 0 {
		indexed, err = indexer.IndexSurah(ctx, *surahFlag)
	} else {
		indexed, err = indexer.IndexAll(ctx)
	}
	if err != nil {
		slog.Error("Indexing failed", slog.Any("error", err), slog.Int("indexed", indexed))
		os.Exit(1)
	}

	total, err := indexer.IndexedCount(ctx)
	if err != nil {
		slog.Warn("Could not count indexed verses", slog.Any("error", err))
	}
	slog.Info("Indexing finished", slog.Int("indexed", indexed), slog.Int64("total_in_db", total))
}
