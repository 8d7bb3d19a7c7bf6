package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/inkpost/internal/model"
)

// ChatServiceInterface は掲示板ハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	List(ctx context.Context, limit int) ([]*model.ChatMessage, error)
	Post(ctx context.Context, in *model.NewChatMessage) (*model.ChatMessage, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
	DefaultLimit() int
}

// ChatHandler は掲示板メッセージのHTTPハンドラー。
type ChatHandler struct {
	service ChatServiceInterface
	logger  *slog.Logger
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(service ChatServiceInterface, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// messagesResponse はメッセージ一覧のレスポンス。
type messagesResponse struct {
	Messages []*model.ChatMessage `json:"messages"`
}

// clearResponse は全削除のレスポンス。
type clearResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// List は最新のメッセージを投稿順で返す。
// GET /api/chat/messages?limit=N（省略時はデフォルト件数、0以下は全件）
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := h.service.DefaultLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handleServiceError(w, r, h.logger, model.NewInvalidRequestError())
			return
		}
		limit = n
	}

	msgs, err := h.service.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: msgs})
}

// Post はメッセージを投稿し、保存されたメッセージを返す。
// POST /api/chat/messages
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var in model.NewChatMessage
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	msg, err := h.service.Post(r.Context(), &in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, msg)
}

// Delete は1件のメッセージを削除する。
// DELETE /api/chat/messages/{id}
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, "消息已删除")
}

// Clear はすべてのメッセージを削除する。
// DELETE /api/chat/messages
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Clear(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Success: true, Message: "所有消息已清空", DeletedCount: n})
}
