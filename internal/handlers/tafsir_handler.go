// internal/handlers/tafsir_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/service"
	"go_quran_assistant/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type TafsirHandler struct {
	service service.TafsirService
	logger  *slog.Logger
}

func NewTafsirHandler(s service.TafsirService, logger *slog.Logger) *TafsirHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TafsirHandler{
		service: s,
		logger:  logger,
	}
}

// StartDiscussion はアヤト単位のディスカッション素材を返すハンドラ
func (h *TafsirHandler) StartDiscussion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartDiscussion"))

	surahNumber, err := strconv.Atoi(chi.URLParam(r, "surah"))
	if err != nil {
		appErr := model.NewAppError("VALIDATION_ERROR", "Nomor surah harus berupa angka.", "surah", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}
	ayatNumber, err := strconv.Atoi(chi.URLParam(r, "ayat"))
	if err != nil {
		appErr := model.NewAppError("VALIDATION_ERROR", "Nomor ayat harus berupa angka.", "ayat", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	discussion, err := h.service.StartDiscussion(r.Context(), surahNumber, ayatNumber)
	if err != nil {
		logger.Warn("Error starting tafsir discussion in service", slog.Any("error", err), slog.Int("surah", surahNumber), slog.Int("ayat", ayatNumber))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, discussion)
}

// AnswerQuestion はタフシール質問に回答するハンドラ
func (h *TafsirHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "AnswerQuestion"))

	var req model.TafsirQuestionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Format permintaan tidak valid.", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	resp, err := h.service.AnswerQuestion(r.Context(), &req)
	if err != nil {
		logger.Error("Error answering tafsir question in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp)
}
