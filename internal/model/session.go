// internal/model/session.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// TraversalMode は出題順のモード
type TraversalMode string

const (
	ModeForward  TraversalMode = "forward"
	ModeBackward TraversalMode = "backward"
	ModeRandom   TraversalMode = "random"
)

func (m TraversalMode) Valid() bool {
	switch m {
	case ModeForward, ModeBackward, ModeRandom:
		return true
	}
	return false
}

// Difficulty は難易度。しきい値は難易度に対して単調増加。
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Threshold はこの難易度で正解と判定される類似度の下限を返します。
func (d Difficulty) Threshold() float64 {
	switch d {
	case DifficultyEasy:
		return 0.7
	case DifficultyHard:
		return 0.9
	default:
		return 0.8
	}
}

// MemorizationSession は実行中のドリル1件。耐久ストアの行が正で、
// プロセス内マップは純粋にキャッシュとして扱う。
type MemorizationSession struct {
	SessionID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"session_id"`
	UserID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	CurrentSurah    int           `gorm:"not null" json:"current_surah"`
	CurrentAyat     int           `gorm:"not null" json:"current_ayat"`
	Mode            TraversalMode `gorm:"not null" json:"mode"`
	Difficulty      Difficulty    `gorm:"not null" json:"difficulty"`
	Score           float64       `gorm:"not null;default:0" json:"score"`
	TotalAttempts   int           `gorm:"not null;default:0" json:"total_attempts"`
	CorrectAttempts int           `gorm:"not null;default:0" json:"correct_attempts"`
	StartedAt       time.Time     `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	LastAttemptAt   *time.Time    `json:"last_attempt_at,omitempty"`
	CreatedAt       time.Time     `json:"-"`
	UpdatedAt       time.Time     `json:"-"`
}

func (MemorizationSession) TableName() string {
	return "memorization_sessions"
}

// Ended はセッションが終了済みかどうかを返します。
func (s *MemorizationSession) Ended() bool {
	return s.EndedAt != nil
}

// MemorizationAttempt は追記専用の試行ログ
type MemorizationAttempt struct {
	AttemptID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	SessionID       uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	SurahNumber     int       `gorm:"not null" json:"surah_number"`
	AyatNumber      int       `gorm:"not null" json:"ayat_number"`
	UserInput       string    `gorm:"type:text;not null" json:"user_input"`
	IsCorrect       bool      `gorm:"not null" json:"is_correct"`
	SimilarityScore float64   `gorm:"not null" json:"similarity_score"`
	HintsUsed       int       `gorm:"not null;default:0" json:"hints_used"`
	CreatedAt       time.Time `json:"created_at"`
}

func (MemorizationAttempt) TableName() string {
	return "memorization_attempts"
}

// --- リクエスト/レスポンス DTO ---

type StartSessionRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	StartSurah int    `json:"start_surah,omitempty" validate:"omitempty,min=1,max=114"`
	StartAyat  int    `json:"start_ayat,omitempty" validate:"omitempty,min=1"`
	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=forward backward random"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
}

type EvaluateAttemptRequest struct {
	UserInput   string `json:"user_input" validate:"required"`
	SurahNumber int    `json:"surah_number" validate:"required,min=1,max=114"`
	AyatNumber  int    `json:"ayat_number" validate:"required,min=1"`
	HintsUsed   int    `json:"hints_used,omitempty" validate:"omitempty,min=0"`
}

// NextVerseResponse は次に出題するアヤ。Hint は難易度に応じて付与される。
type NextVerseResponse struct {
	SurahNumber int    `json:"surah_number"`
	AyatNumber  int    `json:"ayat_number"`
	ArabicText  string `json:"arabic_text"`
	Translation string `json:"translation"`
	Hint        string `json:"hint,omitempty"`
}

// EvaluationResponse は1回の試行の評価結果。合格時は NextVerse が
// 先読みされて返る。
type EvaluationResponse struct {
	IsCorrect       bool               `json:"is_correct"`
	SimilarityScore float64            `json:"similarity_score"`
	Feedback        string             `json:"feedback"`
	CorrectText     string             `json:"correct_text"`
	NextVerse       *NextVerseResponse `json:"next_verse,omitempty"`
}

type SessionStatsResponse struct {
	TotalAttempts   int     `json:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts"`
	Accuracy        float64 `json:"accuracy"`
	AverageScore    float64 `json:"average_score"`
	CurrentProgress float64 `json:"current_progress"`
}
