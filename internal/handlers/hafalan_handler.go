// internal/handlers/hafalan_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/service"
	"go_quran_assistant/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HafalanHandler struct {
	service service.HafalanService
	logger  *slog.Logger
}

func NewHafalanHandler(s service.HafalanService, logger *slog.Logger) *HafalanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HafalanHandler{
		service: s,
		logger:  logger,
	}
}

// startSessionResponse はセッション開始時のレスポンスDTO
type startSessionResponse struct {
	SessionID  string                   `json:"session_id"`
	Mode       model.TraversalMode      `json:"mode"`
	Difficulty model.Difficulty         `json:"difficulty"`
	FirstVerse *model.NextVerseResponse `json:"first_verse"`
}

// StartSession は新しい暗記セッションを開始するハンドラ
func (h *HafalanHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartSession"))

	var req model.StartSessionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Format permintaan tidak valid.", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	session, firstVerse, err := h.service.StartSession(r.Context(), &req)
	if err != nil {
		logger.Error("Error starting memorization session in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Memorization session started", slog.String("session_id", session.SessionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, startSessionResponse{
		SessionID:  session.SessionID.String(),
		Mode:       session.Mode,
		Difficulty: session.Difficulty,
		FirstVerse: firstVerse,
	})
}

// sessionIDFromURL は URL パラメータからセッションIDを取り出します。
func sessionIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		appErr := model.NewAppError("VALIDATION_ERROR", "ID sesi harus berupa UUID yang valid.", "session_id", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return uuid.Nil, false
	}
	return sessionID, true
}

// NextVerse は現在の出題位置のアヤトを返すハンドラ
func (h *HafalanHandler) NextVerse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "NextVerse"))

	sessionID, ok := sessionIDFromURL(w, r)
	if !ok {
		return
	}

	verse, err := h.service.GetNextVerse(r.Context(), sessionID)
	if err != nil {
		logger.Warn("Error getting next verse in service", slog.Any("error", err), slog.String("session_id", sessionID.String()))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, verse)
}

// EvaluateAttempt は1回の暗唱を採点するハンドラ
func (h *HafalanHandler) EvaluateAttempt(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "EvaluateAttempt"))

	sessionID, ok := sessionIDFromURL(w, r)
	if !ok {
		return
	}

	var req model.EvaluateAttemptRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Format permintaan tidak valid.", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	result, err := h.service.EvaluateAttempt(r.Context(), sessionID, &req)
	if err != nil {
		logger.Error("Error evaluating attempt in service", slog.Any("error", err), slog.String("session_id", sessionID.String()))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, result)
}

// SessionStats はセッション統計を返すハンドラ
func (h *HafalanHandler) SessionStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SessionStats"))

	sessionID, ok := sessionIDFromURL(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetSessionStats(r.Context(), sessionID)
	if err != nil {
		logger.Warn("Error getting session stats in service", slog.Any("error", err), slog.String("session_id", sessionID.String()))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats)
}

// EndSession はセッションを終了し、最終統計を返すハンドラ
func (h *HafalanHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "EndSession"))

	sessionID, ok := sessionIDFromURL(w, r)
	if !ok {
		return
	}

	stats, err := h.service.EndSession(r.Context(), sessionID)
	if err != nil {
		logger.Warn("Error ending session in service", slog.Any("error", err), slog.String("session_id", sessionID.String()))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Memorization session ended", slog.String("session_id", sessionID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, stats)
}
