// internal/repository/verse_repository_integration_test.go
//
// pgvector 込みの postgres コンテナを dockertest で起動して
// gormVerseRepository を実 DB に対して検証する。docker が無い環境では
// ベクトル検索系のテストだけ skip し、sqlite 系のテストは通常どおり走る。
package repository

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"go_quran_assistant/internal/model"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pgTestDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker is not available, skipping pgvector integration tests: %v", err)
		os.Exit(m.Run())
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "pgvector/pgvector",
		Tag:        "pg16",
		Env: []string{
			"POSTGRES_USER=testuser",
			"POSTGRES_PASSWORD=testpassword",
			"POSTGRES_DB=testdb",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	dsn := fmt.Sprintf("host=localhost port=%s user=testuser password=testpassword dbname=testdb sslmode=disable",
		resource.GetPort("5432/tcp"))

	if err := pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		pgTestDB = db
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	if err := pgTestDB.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatalf("Could not create vector extension: %s", err)
	}
	if err := pgTestDB.AutoMigrate(&model.Verse{}); err != nil {
		log.Fatalf("Could not migrate schema: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func requirePostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if pgTestDB == nil {
		t.Skip("postgres container not available")
	}
	require.NoError(t, pgTestDB.Exec("DELETE FROM quran_verses").Error)
	return pgTestDB
}

// unitEmbedding は指定した2軸にだけ重みを持つ単位ベクトルを作る。
// cosine 類似度がテストで手計算できるようにするため。
func unitEmbedding(axis1 int, w1 float32, axis2 int, w2 float32) []float32 {
	v := make([]float32, model.EmbeddingDimensions)
	norm := float32(math.Sqrt(float64(w1*w1 + w2*w2)))
	v[axis1] = w1 / norm
	if w2 != 0 {
		v[axis2] = w2 / norm
	}
	return v
}

func storeTestVerse(t *testing.T, db *gorm.DB, repo VerseRepository, surah, ayat int, embedding []float32) *model.Verse {
	t.Helper()
	verse := &model.Verse{
		VerseID:        uuid.New(),
		SurahNumber:    surah,
		AyatNumber:     ayat,
		SurahNameLatin: "Al-Ikhlas",
		ArabicText:     "قُلْ هُوَ اللَّهُ أَحَدٌ",
		Translation:    "Katakanlah (Muhammad), Dialah Allah, Yang Maha Esa.",
		Embedding:      pgvector.NewVector(embedding),
	}
	require.NoError(t, repo.Upsert(context.Background(), db, verse))
	return verse
}

func Test_gormVerseRepository_Upsert_ConflictUpdates(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	repo := NewGormVerseRepository()

	storeTestVerse(t, db, repo, 112, 1, unitEmbedding(0, 1, 0, 0))

	// 同じ (surah, ayat) への再投入は本文と埋め込みを更新する
	updated := &model.Verse{
		VerseID:        uuid.New(),
		SurahNumber:    112,
		AyatNumber:     1,
		SurahNameLatin: "Al-Ikhlas",
		ArabicText:     "قُلْ هُوَ اللَّهُ أَحَدٌ",
		Translation:    "Terjemahan revisi.",
		Embedding:      pgvector.NewVector(unitEmbedding(1, 1, 0, 0)),
	}
	require.NoError(t, repo.Upsert(ctx, db, updated))

	found, err := repo.FindByKey(ctx, db, 112, 1)
	require.NoError(t, err)
	assert.Equal(t, "Terjemahan revisi.", found.Translation)

	count, err := repo.CountInSurah(ctx, db, 112)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_gormVerseRepository_FindByKey_NotFound(t *testing.T) {
	db := requirePostgres(t)
	repo := NewGormVerseRepository()

	_, err := repo.FindByKey(context.Background(), db, 114, 7)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func Test_gormVerseRepository_NearestNeighbors(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	repo := NewGormVerseRepository()

	// query と同一 → 類似度 1.0
	storeTestVerse(t, db, repo, 112, 1, unitEmbedding(0, 1, 0, 0))
	// 45度ずれ → 類似度 1/sqrt(2) ≈ 0.707
	storeTestVerse(t, db, repo, 112, 2, unitEmbedding(0, 1, 1, 1))
	// 直交 → 類似度 0、閾値で除外される
	storeTestVerse(t, db, repo, 112, 3, unitEmbedding(1, 1, 0, 0))

	query := unitEmbedding(0, 1, 0, 0)

	candidates, err := repo.NearestNeighbors(ctx, db, query, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, 1, candidates[0].Verse.AyatNumber)
	assert.InDelta(t, 1.0, candidates[0].Similarity, 1e-4)
	assert.Equal(t, 2, candidates[1].Verse.AyatNumber)
	assert.InDelta(t, 1.0/math.Sqrt2, candidates[1].Similarity, 1e-4)

	// Similarity は FinalScore の初期値としてもコピーされる
	assert.Equal(t, candidates[0].Similarity, candidates[0].FinalScore)

	// limit は上位から切り詰める
	candidates, err = repo.NearestNeighbors(ctx, db, query, 1, 0.5)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1, candidates[0].Verse.AyatNumber)
}

func Test_gormVerseRepository_CountIndexed(t *testing.T) {
	db := requirePostgres(t)
	ctx := context.Background()
	repo := NewGormVerseRepository()

	storeTestVerse(t, db, repo, 1, 1, unitEmbedding(0, 1, 0, 0))
	storeTestVerse(t, db, repo, 1, 2, unitEmbedding(1, 1, 0, 0))

	count, err := repo.CountIndexed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
