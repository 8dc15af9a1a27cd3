package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go_quran_assistant/internal/config"
	"go_quran_assistant/internal/middleware"
	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HafalanService は暗記ドリルのセッション管理と採点を担います。
type HafalanService interface {
	StartSession(ctx context.Context, req *model.StartSessionRequest) (*model.MemorizationSession, *model.NextVerseResponse, error)
	GetNextVerse(ctx context.Context, sessionID uuid.UUID) (*model.NextVerseResponse, error)
	EvaluateAttempt(ctx context.Context, sessionID uuid.UUID, req *model.EvaluateAttemptRequest) (*model.EvaluationResponse, error)
	GetSessionStats(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error)
	// EvictIdle はアイドル時間が TTL を超えたセッションをキャッシュから外します。
	EvictIdle(ctx context.Context) int
}

// activeSession はプロセス内キャッシュの1エントリ。
// 耐久ストアの行が常に正で、このキャッシュは再読込可能な複製にすぎない。
type activeSession struct {
	mu         sync.Mutex
	session    *model.MemorizationSession
	lastAccess time.Time
}

type hafalanService struct {
	db          *gorm.DB
	sessionRepo repository.SessionRepository
	verseRepo   repository.VerseRepository
	cfg         *config.Config

	cacheMu sync.RWMutex
	active  map[uuid.UUID]*activeSession

	// テストから差し替えるための乱数源。randInt(n) は [0, n) を返す。
	randInt func(n int) int
	now     func() time.Time
}

func NewHafalanService(db *gorm.DB, sessionRepo repository.SessionRepository, verseRepo repository.VerseRepository, cfg *config.Config) HafalanService {
	return &hafalanService{
		db:          db,
		sessionRepo: sessionRepo,
		verseRepo:   verseRepo,
		cfg:         cfg,
		active:      make(map[uuid.UUID]*activeSession),
		randInt:     rand.Intn,
		now:         time.Now,
	}
}

func (s *hafalanService) StartSession(ctx context.Context, req *model.StartSessionRequest) (*model.MemorizationSession, *model.NextVerseResponse, error) {
	logger := middleware.GetLogger(ctx)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, nil, model.NewAppError("VALIDATION_ERROR", "ID pengguna harus berupa UUID yang valid.", "user_id", model.ErrInvalidInput)
	}

	startSurah := req.StartSurah
	if startSurah == 0 {
		startSurah = 1
	}
	if !model.ValidSurah(startSurah) {
		return nil, nil, model.NewAppError("VALIDATION_ERROR", "Nomor surah harus antara 1 dan 114.", "start_surah", model.ErrInvalidRange)
	}
	startAyat := req.StartAyat
	if startAyat == 0 {
		startAyat = 1
	}

	mode := model.TraversalMode(req.Mode)
	if req.Mode == "" {
		mode = model.ModeForward
	}
	if !mode.Valid() {
		return nil, nil, model.NewAppError("VALIDATION_ERROR", "Mode hafalan tidak dikenal.", "mode", model.ErrInvalidInput)
	}

	difficulty := model.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !difficulty.Valid() {
		return nil, nil, model.NewAppError("VALIDATION_ERROR", "Tingkat kesulitan tidak dikenal.", "difficulty", model.ErrInvalidInput)
	}

	session := &model.MemorizationSession{
		SessionID:    uuid.New(),
		UserID:       userID,
		CurrentSurah: startSurah,
		CurrentAyat:  startAyat,
		Mode:         mode,
		Difficulty:   difficulty,
		StartedAt:    s.now(),
	}

	// 開始アヤトが実在することを先に確かめる
	verse, err := s.verseRepo.FindByKey(ctx, s.db, session.CurrentSurah, session.CurrentAyat)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, model.NewAppError("VERSE_NOT_FOUND", "Ayat awal tidak ditemukan.", "", model.ErrVerseNotFound)
		}
		logger.Error("Failed to resolve starting verse", "error", err)
		return nil, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal memulai sesi hafalan.", "", err)
	}

	if err := s.sessionRepo.Create(ctx, s.db, session); err != nil {
		logger.Error("Failed to create memorization session", "error", err)
		return nil, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal memulai sesi hafalan.", "", err)
	}

	s.cacheMu.Lock()
	s.active[session.SessionID] = &activeSession{session: session, lastAccess: s.now()}
	s.cacheMu.Unlock()

	logger.Info("Memorization session started",
		"session_id", session.SessionID,
		"user_id", userID,
		"mode", mode,
		"difficulty", difficulty,
	)
	return session, s.buildNextVerse(verse, difficulty), nil
}

// loadSession はキャッシュからセッションを取り出し、ミス時は耐久ストアから
// 再読込してキャッシュに積み直します。終了済みセッションは対象外。
func (s *hafalanService) loadSession(ctx context.Context, sessionID uuid.UUID) (*activeSession, error) {
	s.cacheMu.RLock()
	entry, ok := s.active[sessionID]
	s.cacheMu.RUnlock()
	if ok {
		return entry, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SESSION_NOT_FOUND", "Sesi hafalan tidak ditemukan.", "", model.ErrSessionNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal memuat sesi hafalan.", "", err)
	}
	if session.Ended() {
		return nil, model.NewAppError("SESSION_NOT_FOUND", "Sesi hafalan sudah berakhir.", "", model.ErrSessionNotFound)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	// 並行する再読込との競合はここで解消する
	if entry, ok := s.active[sessionID]; ok {
		return entry, nil
	}
	entry = &activeSession{session: session, lastAccess: s.now()}
	s.active[sessionID] = entry
	return entry, nil
}

// verseCount はスーラのアヤト数を返します。インデックスが欠けている場合は
// 既知のアヤト数表にフォールバックします。
func (s *hafalanService) verseCount(ctx context.Context, surahNumber int) int {
	count, err := s.verseRepo.CountInSurah(ctx, s.db, surahNumber)
	if err == nil && count > 0 {
		return int(count)
	}
	return model.FallbackVerseCount(surahNumber)
}

// advanceCursor は現在位置から次の出題位置を計算します。
// forward はスーラ末尾で次のスーラの先頭へ進みます。backward は (1,1) で止まります。
func (s *hafalanService) advanceCursor(ctx context.Context, session *model.MemorizationSession) (int, int) {
	surah, ayat := session.CurrentSurah, session.CurrentAyat

	switch session.Mode {
	case model.ModeBackward:
		if ayat > 1 {
			return surah, ayat - 1
		}
		if surah > 1 {
			prev := surah - 1
			return prev, s.verseCount(ctx, prev)
		}
		return 1, 1
	case model.ModeRandom:
		count := s.verseCount(ctx, surah)
		if count <= 0 {
			return surah, ayat
		}
		return surah, 1 + s.randInt(count)
	default: // forward
		count := s.verseCount(ctx, surah)
		if ayat < count {
			return surah, ayat + 1
		}
		return surah + 1, 1
	}
}

// GetNextVerse はモードに従ってカーソルを次の出題位置へ進め、永続化した上で
// その位置のアヤトを返します。呼ぶたびに1つ進みます。
func (s *hafalanService) GetNextVerse(ctx context.Context, sessionID uuid.UUID) (*model.NextVerseResponse, error) {
	logger := middleware.GetLogger(ctx)

	entry, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastAccess = s.now()
	session := entry.session

	nextSurah, nextAyat := s.advanceCursor(ctx, session)

	// 次位置が引けない場合はカーソルを動かさずに返す
	verse, err := s.fetchVerse(ctx, nextSurah, nextAyat)
	if err != nil {
		logger.Warn("Next cursor points outside the indexed corpus",
			"session_id", sessionID,
			"surah", nextSurah,
			"ayat", nextAyat,
		)
		return nil, err
	}

	if err := s.sessionRepo.UpdateCursor(ctx, s.db, session.SessionID, nextSurah, nextAyat); err != nil {
		// 永続化に失敗したらメモリ上の複製を捨てて、次回は耐久行から読み直す
		s.cacheMu.Lock()
		delete(s.active, session.SessionID)
		s.cacheMu.Unlock()
		logger.Error("Failed to persist session cursor", "error", err, "session_id", sessionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengambil ayat berikutnya.", "", err)
	}
	session.CurrentSurah, session.CurrentAyat = nextSurah, nextAyat

	return s.buildNextVerse(verse, session.Difficulty), nil
}

func (s *hafalanService) fetchVerse(ctx context.Context, surahNumber, ayatNumber int) (*model.Verse, error) {
	if !model.ValidSurah(surahNumber) {
		return nil, model.NewAppError("VERSE_NOT_FOUND", "Ayat tidak ditemukan.", "", model.ErrVerseNotFound)
	}
	verse, err := s.verseRepo.FindByKey(ctx, s.db, surahNumber, ayatNumber)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("VERSE_NOT_FOUND", "Ayat tidak ditemukan.", "", model.ErrVerseNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengambil ayat.", "", err)
	}
	return verse, nil
}

// buildNextVerse は難易度に応じたヒント付きの出題レスポンスを組み立てます。
func (s *hafalanService) buildNextVerse(verse *model.Verse, difficulty model.Difficulty) *model.NextVerseResponse {
	resp := &model.NextVerseResponse{
		SurahNumber: verse.SurahNumber,
		AyatNumber:  verse.AyatNumber,
		ArabicText:  verse.ArabicText,
		Translation: verse.Translation,
	}
	switch difficulty {
	case model.DifficultyEasy:
		resp.Hint = fmt.Sprintf("Surah %s, ayat %d", verse.SurahNameLatin, verse.AyatNumber)
	case model.DifficultyMedium:
		resp.Hint = fmt.Sprintf("Surah %s", verse.SurahNameLatin)
	}
	// hard はヒントなし
	return resp
}

func (s *hafalanService) EvaluateAttempt(ctx context.Context, sessionID uuid.UUID, req *model.EvaluateAttemptRequest) (*model.EvaluationResponse, error) {
	logger := middleware.GetLogger(ctx)

	entry, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastAccess = s.now()
	session := entry.session

	verse, err := s.fetchVerse(ctx, req.SurahNumber, req.AyatNumber)
	if err != nil {
		return nil, err
	}

	score := SimilarityScore(req.UserInput, verse.ArabicText)
	threshold := session.Difficulty.Threshold()
	isCorrect := score >= threshold

	attemptTime := s.now()
	attempt := &model.MemorizationAttempt{
		AttemptID:       uuid.New(),
		SessionID:       session.SessionID,
		SurahNumber:     verse.SurahNumber,
		AyatNumber:      verse.AyatNumber,
		UserInput:       req.UserInput,
		IsCorrect:       isCorrect,
		SimilarityScore: score,
		HintsUsed:       req.HintsUsed,
	}

	session.TotalAttempts++
	if isCorrect {
		session.CorrectAttempts++
	}
	session.Score += score
	session.LastAttemptAt = &attemptTime

	var nextSurah, nextAyat int
	if isCorrect {
		nextSurah, nextAyat = s.advanceCursor(ctx, session)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.AppendAttempt(ctx, tx, attempt); err != nil {
			return err
		}
		if err := s.sessionRepo.UpdateStats(ctx, tx, session); err != nil {
			return err
		}
		if isCorrect {
			return s.sessionRepo.UpdateCursor(ctx, tx, session.SessionID, nextSurah, nextAyat)
		}
		return nil
	})
	if err != nil {
		// 永続化に失敗したらメモリ上の複製を捨てて、次回は耐久行から読み直す
		s.cacheMu.Lock()
		delete(s.active, session.SessionID)
		s.cacheMu.Unlock()
		logger.Error("Failed to persist memorization attempt", "error", err, "session_id", sessionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal menyimpan hasil hafalan.", "", err)
	}

	resp := &model.EvaluationResponse{
		IsCorrect:       isCorrect,
		SimilarityScore: score,
		Feedback:        feedbackFor(score, isCorrect),
		CorrectText:     verse.ArabicText,
	}

	if isCorrect {
		session.CurrentSurah, session.CurrentAyat = nextSurah, nextAyat
		next, err := s.fetchVerse(ctx, nextSurah, nextAyat)
		if err != nil {
			// 次のアヤトが引けなくても採点結果自体は返す
			logger.Warn("Failed to prefetch next verse", "error", err, "surah", nextSurah, "ayat", nextAyat)
		} else {
			resp.NextVerse = s.buildNextVerse(next, session.Difficulty)
		}
	}

	logger.Info("Memorization attempt evaluated",
		"session_id", sessionID,
		"surah", verse.SurahNumber,
		"ayat", verse.AyatNumber,
		"score", score,
		"is_correct", isCorrect,
	)
	return resp, nil
}

// feedbackFor は類似度スコアをユーザ向けのフィードバック文に変換します。
func feedbackFor(score float64, isCorrect bool) string {
	switch {
	case score >= 0.95:
		return "Sempurna! Hafalan Anda sangat tepat."
	case score >= 0.9:
		return "Hampir sempurna! Hanya ada sedikit perbedaan."
	case isCorrect:
		return "Bagus! Hafalan Anda sudah benar, terus berlatih agar semakin lancar."
	case score >= 0.6:
		return "Sudah cukup dekat, tetapi masih ada beberapa kesalahan. Coba ulangi lagi."
	case score >= 0.4:
		return "Masih banyak bagian yang belum tepat. Baca kembali ayatnya lalu coba lagi."
	default:
		return "Hafalan Anda masih jauh dari ayat yang dimaksud. Pelajari kembali ayatnya."
	}
}

func (s *hafalanService) GetSessionStats(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error) {
	entry, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastAccess = s.now()

	return s.buildStats(ctx, entry.session)
}

func (s *hafalanService) buildStats(ctx context.Context, session *model.MemorizationSession) (*model.SessionStatsResponse, error) {
	logger := middleware.GetLogger(ctx)

	stats := &model.SessionStatsResponse{
		TotalAttempts:   session.TotalAttempts,
		CorrectAttempts: session.CorrectAttempts,
	}
	if session.TotalAttempts > 0 {
		// accuracy はパーセント (0-100)、average_score は類似度スコア (0-1)
		stats.Accuracy = float64(session.CorrectAttempts) / float64(session.TotalAttempts) * 100
		stats.AverageScore = session.Score / float64(session.TotalAttempts)
	}

	distinct, err := s.sessionRepo.CountDistinctAttempts(ctx, s.db, session.SessionID)
	if err != nil {
		logger.Error("Failed to count distinct attempts", "error", err, "session_id", session.SessionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengambil statistik sesi.", "", err)
	}
	progress := float64(distinct) * 10
	if progress > 100 {
		progress = 100
	}
	stats.CurrentProgress = progress
	return stats, nil
}

func (s *hafalanService) EndSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error) {
	logger := middleware.GetLogger(ctx)

	entry, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	session := entry.session

	endedAt := s.now()
	if err := s.sessionRepo.Finalize(ctx, s.db, session, endedAt); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 既に別経路で終了済み
			s.cacheMu.Lock()
			delete(s.active, sessionID)
			s.cacheMu.Unlock()
			return nil, model.NewAppError("SESSION_NOT_FOUND", "Sesi hafalan sudah berakhir.", "", model.ErrSessionNotFound)
		}
		logger.Error("Failed to finalize memorization session", "error", err, "session_id", sessionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Gagal mengakhiri sesi hafalan.", "", err)
	}
	session.EndedAt = &endedAt

	stats, err := s.buildStats(ctx, session)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	delete(s.active, sessionID)
	s.cacheMu.Unlock()

	logger.Info("Memorization session ended",
		"session_id", sessionID,
		"total_attempts", stats.TotalAttempts,
		"accuracy", stats.Accuracy,
	)
	return stats, nil
}

func (s *hafalanService) EvictIdle(ctx context.Context) int {
	logger := middleware.GetLogger(ctx)

	cutoff := s.now().Add(-s.cfg.Hafalan.SessionIdleTTL)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	evicted := 0
	for id, entry := range s.active {
		if entry.lastAccess.Before(cutoff) {
			delete(s.active, id)
			evicted++
		}
	}
	if evicted > 0 {
		logger.Info("Evicted idle memorization sessions from cache", "count", evicted)
	}
	return evicted
}
