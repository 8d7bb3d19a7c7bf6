// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, chat, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidContentType = "INVALID_CONTENT_TYPE"
	ErrCodeContentNotFound    = "CONTENT_NOT_FOUND"
	ErrCodeEmptyContent       = "EMPTY_CONTENT"
	ErrCodeMessageNotFound    = "MESSAGE_NOT_FOUND"
	ErrCodeInvalidMessage     = "INVALID_MESSAGE"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidContentTypeError は無効なコンテンツ種別エラーを生成する。
func NewInvalidContentTypeError(contentType string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidContentType,
		Message:  fmt.Sprintf("无效的内容类型: %s", contentType),
		Category: "validation",
		Action:   "research、media、activity、shop、announcement のいずれかを指定してください。",
	}
}

// NewContentNotFoundError は下書き未検出エラーを生成する。
func NewContentNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeContentNotFound,
		Message:  fmt.Sprintf("草稿不存在: %s", id),
		Category: "content",
		Action:   "一覧を再読み込みしてIDを確認してください。",
	}
}

// NewEmptyContentError は本文が空の保存リクエストに対するエラーを生成する。
func NewEmptyContentError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyContent,
		Message:  "请输入内容",
		Category: "validation",
		Action:   "本文を入力してから保存してください。",
	}
}

// NewMessageNotFoundError はメッセージ未検出エラーを生成する。
func NewMessageNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("消息不存在: %s", id),
		Category: "chat",
		Action:   "一覧を再読み込みしてIDを確認してください。",
	}
}

// NewInvalidMessageError は不正な投稿メッセージに対するエラーを生成する。
func NewInvalidMessageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMessage,
		Message:  reason,
		Category: "validation",
		Action:   "昵称（2文字以上）と本文を入力してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "有効なBearerトークンを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "发送过于频繁，请稍后再试",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再送してください。",
	}
}
