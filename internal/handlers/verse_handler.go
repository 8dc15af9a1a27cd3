// internal/handlers/verse_handler.go
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

type VerseHandler struct {
	retriever service.RetrieverService
	logger    *slog.Logger
}

func NewVerseHandler(retriever service.RetrieverService, logger *slog.Logger) *VerseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerseHandler{
		retriever: retriever,
		logger:    logger,
	}
}

// GetVerse は単一アヤトを取得するハンドラ
func (h *VerseHandler) GetVerse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVerse"))

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

	verse, err := h.retriever.GetVerse(r.Context(), surahNumber, ayatNumber)
	if err != nil {
		logger.Warn("Error getting verse in service", slog.Any("error", err), slog.Int("surah", surahNumber), slog.Int("ayat", ayatNumber))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.NewVerseResponse(verse))
}
