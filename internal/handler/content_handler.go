package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/inkpost/internal/model"
)

// ContentServiceInterface はコンテンツハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	ListDrafts(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error)
	Save(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error)
	Publish(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error)
	BeginEdit(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error)
	Delete(ctx context.Context, t model.ContentType, id string) error
}

// ContentHandler は管理コンテンツ（下書き・公開）のHTTPハンドラー。
type ContentHandler struct {
	service ContentServiceInterface
	logger  *slog.Logger
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{service: service, logger: logger}
}

// contentTypeParam はURLの{type}を標準コンテンツ種別として解釈する。
// messageは管理エンドポイントの対象外のため無効な種別として扱う。
func contentTypeParam(r *http.Request) (model.ContentType, error) {
	raw := chi.URLParam(r, "type")
	t, ok := model.ParseContentType(raw)
	if !ok || !t.IsStandard() {
		return "", model.NewInvalidContentTypeError(raw)
	}
	return t, nil
}

// List は指定種別の下書き一覧を配列で返す。
// GET /api/admin/{type}
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	t, err := contentTypeParam(r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	items, err := h.service.ListDrafts(r.Context(), t)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []*model.ContentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Save は下書きを新規作成または更新し、保存後のコンテンツを返す。
// POST /api/admin/{type}
func (h *ContentHandler) Save(w http.ResponseWriter, r *http.Request) {
	t, err := contentTypeParam(r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	var draft model.ContentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	item, err := h.service.Save(r.Context(), t, &draft)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Publish は下書きを公開する。
// POST /api/admin/{type}/{id}/publish
func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	t, err := contentTypeParam(r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if _, err := h.service.Publish(r.Context(), t, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, "发布成功")
}

// Edit は編集開始（ソフトロック）を行う。公開中の場合は公開セットから外れる。
// POST /api/admin/{type}/{id}/edit
func (h *ContentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	t, err := contentTypeParam(r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if _, err := h.service.BeginEdit(r.Context(), t, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, "已进入编辑模式，文章已从正文中移除")
}

// Delete は下書き・公開コピー・画像を削除する。
// DELETE /api/admin/{type}/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := contentTypeParam(r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), t, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, "删除成功")
}
