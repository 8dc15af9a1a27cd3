package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_quran_assistant/internal/model"
	"go_quran_assistant/internal/webutil"

	"github.com/go-playground/validator/v10"
)

// validateRequest はDTOのバリデーションを行い、失敗時はレスポンスまで書き込みます。
// 戻り値が false のときハンドラは処理を打ち切ります。
func validateRequest(w http.ResponseWriter, logger *slog.Logger, req interface{}) bool {
	err := webutil.Validator.Struct(req)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))

		// 最初のエラーを代表としてクライアントに返す
		firstErr := validationErrors[0]
		appErr := model.NewAppError(
			"VALIDATION_ERROR",
			firstErr.Translate(webutil.Trans),
			firstErr.Field(),
			model.ErrInvalidInput,
		)
		webutil.HandleError(w, appErr)
	} else {
		logger.Error("Unexpected error during validation", slog.Any("error", err))
		webutil.HandleError(w, err)
	}
	return false
}
