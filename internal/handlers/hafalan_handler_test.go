// internal/handlers/hafalan_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_quran_assistant/internal/handlers"
	"go_quran_assistant/internal/model"
)

// stubHafalanService はハンドラテスト用の差し替え実装。
// 呼び出しごとに対応するフィールドの値をそのまま返す。
type stubHafalanService struct {
	session   *model.MemorizationSession
	nextVerse *model.NextVerseResponse
	evalResp  *model.EvaluationResponse
	stats     *model.SessionStatsResponse
	err       error

	startReq  *model.StartSessionRequest
	evalReq   *model.EvaluateAttemptRequest
	sessionID uuid.UUID
}

func (s *stubHafalanService) StartSession(ctx context.Context, req *model.StartSessionRequest) (*model.MemorizationSession, *model.NextVerseResponse, error) {
	s.startReq = req
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.session, s.nextVerse, nil
}

func (s *stubHafalanService) GetNextVerse(ctx context.Context, sessionID uuid.UUID) (*model.NextVerseResponse, error) {
	s.sessionID = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.nextVerse, nil
}

func (s *stubHafalanService) EvaluateAttempt(ctx context.Context, sessionID uuid.UUID, req *model.EvaluateAttemptRequest) (*model.EvaluationResponse, error) {
	s.sessionID = sessionID
	s.evalReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.evalResp, nil
}

func (s *stubHafalanService) GetSessionStats(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error) {
	s.sessionID = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func (s *stubHafalanService) EndSession(ctx context.Context, sessionID uuid.UUID) (*model.SessionStatsResponse, error) {
	s.sessionID = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func (s *stubHafalanService) EvictIdle(ctx context.Context) int { return 0 }

func newHafalanRouter(svc *stubHafalanService) *chi.Mux {
	h := handlers.NewHafalanHandler(svc, nil)
	router := chi.NewRouter()
	router.Route("/api/v1/hafalan/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{sessionID}/next", h.NextVerse)
		r.Post("/{sessionID}/attempts", h.EvaluateAttempt)
		r.Get("/{sessionID}/stats", h.SessionStats)
		r.Delete("/{sessionID}", h.EndSession)
	})
	return router
}

func jsonRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf *bytes.Buffer
	if raw, ok := body.(string); ok {
		buf = bytes.NewBufferString(raw)
	} else {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHafalanHandler_StartSession(t *testing.T) {
	sessionID := uuid.New()
	storedSession := &model.MemorizationSession{
		SessionID:  sessionID,
		Mode:       model.ModeForward,
		Difficulty: model.DifficultyMedium,
	}
	firstVerse := &model.NextVerseResponse{
		SurahNumber: 1,
		AyatNumber:  1,
		ArabicText:  "بِسْمِ اللَّهِ",
		Translation: "Dengan nama Allah",
		Hint:        "Surah Al-Fatihah",
	}

	tests := []struct {
		name           string
		body           interface{}
		svc            *stubHafalanService
		expectedStatus int
	}{
		{
			name:           "Success - session started",
			body:           model.StartSessionRequest{UserID: uuid.New().String()},
			svc:            &stubHafalanService{session: storedSession, nextVerse: firstVerse},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Fail - missing user_id",
			body:           model.StartSessionRequest{StartSurah: 2},
			svc:            &stubHafalanService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail - malformed json",
			body:           `{"user_id": "broken`,
			svc:            &stubHafalanService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail - start verse not indexed",
			body:           model.StartSessionRequest{UserID: uuid.New().String(), StartSurah: 114, StartAyat: 99},
			svc:            &stubHafalanService{err: model.ErrVerseNotFound},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newHafalanRouter(tc.svc)
			req := jsonRequest(t, "POST", "/api/v1/hafalan/sessions", tc.body)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusCreated {
				var resp struct {
					SessionID  string                   `json:"session_id"`
					FirstVerse *model.NextVerseResponse `json:"first_verse"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, sessionID.String(), resp.SessionID)
				require.NotNil(t, resp.FirstVerse)
				assert.Equal(t, 1, resp.FirstVerse.SurahNumber)
			} else {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error.Message)
			}
		})
	}
}

func TestHafalanHandler_NextVerse(t *testing.T) {
	sessionID := uuid.New()
	verse := &model.NextVerseResponse{SurahNumber: 2, AyatNumber: 255, ArabicText: "اللَّهُ"}

	t.Run("Success", func(t *testing.T) {
		svc := &stubHafalanService{nextVerse: verse}
		router := newHafalanRouter(svc)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", fmt.Sprintf("/api/v1/hafalan/sessions/%s/next", sessionID), nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, sessionID, svc.sessionID)

		var resp model.NextVerseResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 255, resp.AyatNumber)
	})

	t.Run("Fail - invalid session id format", func(t *testing.T) {
		router := newHafalanRouter(&stubHafalanService{})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/hafalan/sessions/not-a-uuid/next", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Fail - session not found", func(t *testing.T) {
		router := newHafalanRouter(&stubHafalanService{err: model.ErrSessionNotFound})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", fmt.Sprintf("/api/v1/hafalan/sessions/%s/next", uuid.New()), nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHafalanHandler_EvaluateAttempt(t *testing.T) {
	sessionID := uuid.New()
	evalResp := &model.EvaluationResponse{
		IsCorrect:       true,
		SimilarityScore: 0.95,
		Feedback:        "Luar biasa! Hafalan Anda hampir sempurna.",
		CorrectText:     "قُلْ هُوَ اللَّهُ أَحَدٌ",
		NextVerse:       &model.NextVerseResponse{SurahNumber: 112, AyatNumber: 2},
	}
	validBody := model.EvaluateAttemptRequest{
		UserInput:   "qul huwallahu ahad",
		SurahNumber: 112,
		AyatNumber:  1,
	}

	tests := []struct {
		name           string
		sessionID      string
		body           interface{}
		svc            *stubHafalanService
		expectedStatus int
	}{
		{
			name:           "Success - attempt evaluated",
			sessionID:      sessionID.String(),
			body:           validBody,
			svc:            &stubHafalanService{evalResp: evalResp},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Fail - empty user_input",
			sessionID:      sessionID.String(),
			body:           model.EvaluateAttemptRequest{SurahNumber: 112, AyatNumber: 1},
			svc:            &stubHafalanService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail - invalid session id format",
			sessionID:      "not-a-uuid",
			body:           validBody,
			svc:            &stubHafalanService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail - session already ended",
			sessionID:      sessionID.String(),
			body:           validBody,
			svc:            &stubHafalanService{err: model.ErrSessionNotFound},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newHafalanRouter(tc.svc)
			url := fmt.Sprintf("/api/v1/hafalan/sessions/%s/attempts", tc.sessionID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, jsonRequest(t, "POST", url, tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusOK {
				var resp model.EvaluationResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.True(t, resp.IsCorrect)
				assert.InDelta(t, 0.95, resp.SimilarityScore, 1e-9)
				require.NotNil(t, resp.NextVerse)
				assert.Equal(t, 2, resp.NextVerse.AyatNumber)
				require.NotNil(t, tc.svc.evalReq)
				assert.Equal(t, validBody.UserInput, tc.svc.evalReq.UserInput)
			}
		})
	}
}

func TestHafalanHandler_EndSession(t *testing.T) {
	sessionID := uuid.New()
	stats := &model.SessionStatsResponse{
		TotalAttempts:   4,
		CorrectAttempts: 3,
		Accuracy:        75,
		AverageScore:    0.81,
		CurrentProgress: 30,
	}

	t.Run("Success - final stats returned", func(t *testing.T) {
		svc := &stubHafalanService{stats: stats}
		router := newHafalanRouter(svc)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("DELETE", fmt.Sprintf("/api/v1/hafalan/sessions/%s", sessionID), nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, sessionID, svc.sessionID)

		var resp model.SessionStatsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 4, resp.TotalAttempts)
		assert.InDelta(t, 75.0, resp.Accuracy, 1e-9)
	})

	t.Run("Fail - ending twice", func(t *testing.T) {
		router := newHafalanRouter(&stubHafalanService{err: model.ErrSessionNotFound})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("DELETE", fmt.Sprintf("/api/v1/hafalan/sessions/%s", uuid.New()), nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
