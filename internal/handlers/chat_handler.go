// internal/handlers/chat_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/service"
	"go_quran_assistant/internal/webutil"
)

type ChatHandler struct {
	chatService service.ChatService
	retriever   service.RetrieverService
	logger      *slog.Logger
}

func NewChatHandler(chatService service.ChatService, retriever service.RetrieverService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		chatService: chatService,
		retriever:   retriever,
		logger:      logger,
	}
}

// Chat は1ターンのチャットを処理するハンドラ
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Chat"))

	var req model.ChatRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Format permintaan tidak valid.", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	resp, err := h.chatService.Chat(r.Context(), &req)
	if err != nil {
		logger.Error("Error processing chat turn in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// Search は意味検索エンドポイントのハンドラ
func (h *ChatHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Search"))

	var req model.SearchRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "Format permintaan tidak valid.", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	candidates, err := h.retriever.Search(r.Context(), &req)
	if err != nil {
		logger.Error("Error searching verses in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	results := make([]*model.SearchResultItem, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, model.NewSearchResultItem(c))
	}
	webutil.RespondWithJSON(w, http.StatusOK, results)
}
