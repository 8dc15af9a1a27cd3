// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// リポジトリ・サービス・ハンドラで共有するセンチネルエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidRange   = errors.New("surah or ayat out of range")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")

	// ErrEmbeddingUnavailable は埋め込み呼び出しの失敗・タイムアウト。
	// 呼び出し側は根拠なし回答に縮退し、チャットターンを失敗させない。
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVerseNotFound は指定の (surah, ayat) がコーパスに無いことを示す。
	// そのまま呼び出し元へ返し、リトライしない。
	ErrVerseNotFound = errors.New("verse not found")

	// ErrSessionNotFound は未知または終了済みのセッションID
	ErrSessionNotFound = errors.New("memorization session not found")

	// ErrContextPersistence は会話コンテキスト層の永続化失敗。
	// Rerank はこれを受けると候補をそのまま返す縮退動作をとる。
	ErrContextPersistence = errors.New("conversation context persistence failed")
)

// ErrorDetail は API エラーレスポンスに載せる詳細情報
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse は API エラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はセンチネルエラーを安定したコードとユーザ向け
// (インドネシア語) メッセージで包みます。
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		Err:    err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
