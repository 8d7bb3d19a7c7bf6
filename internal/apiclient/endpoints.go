package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/inkpost/internal/model"
)

func contentPath(t model.ContentType, parts ...string) string {
	p := "/api/admin/" + url.PathEscape(string(t))
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// ListContentRaw は指定種別の下書き一覧をデコードせずに返す。
// GET /api/admin/{type}
func (c *Client) ListContentRaw(ctx context.Context, t model.ContentType) (json.RawMessage, error) {
	return c.getRaw(ctx, contentPath(t))
}

// SaveContent は下書きを保存し、保存後のコンテンツを返す。
// POST /api/admin/{type}
func (c *Client) SaveContent(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error) {
	var item model.ContentItem
	if err := c.doJSON(ctx, http.MethodPost, contentPath(t), draft, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PublishContent は下書きを公開する。
// POST /api/admin/{type}/{id}/publish
func (c *Client) PublishContent(ctx context.Context, t model.ContentType, id string) error {
	return c.doJSON(ctx, http.MethodPost, contentPath(t, id, "publish"), nil, nil)
}

// BeginEdit は編集開始（ソフトロック）を要求する。
// POST /api/admin/{type}/{id}/edit
func (c *Client) BeginEdit(ctx context.Context, t model.ContentType, id string) error {
	return c.doJSON(ctx, http.MethodPost, contentPath(t, id, "edit"), nil, nil)
}

// DeleteContent はコンテンツを削除する。
// DELETE /api/admin/{type}/{id}
func (c *Client) DeleteContent(ctx context.Context, t model.ContentType, id string) error {
	return c.doJSON(ctx, http.MethodDelete, contentPath(t, id), nil, nil)
}

func messagesPath(limit int) string {
	return "/api/chat/messages?limit=" + strconv.Itoa(limit)
}

// ListMessagesRaw は最新limit件のメッセージ一覧をデコードせずに返す。
// GET /api/chat/messages?limit=N
func (c *Client) ListMessagesRaw(ctx context.Context, limit int) (json.RawMessage, error) {
	return c.getRaw(ctx, messagesPath(limit))
}

// PostMessage はメッセージを投稿する。
// POST /api/chat/messages
func (c *Client) PostMessage(ctx context.Context, in *model.NewChatMessage) error {
	return c.doJSON(ctx, http.MethodPost, "/api/chat/messages", in, nil)
}

// DeleteMessage はメッセージを1件削除する。
// DELETE /api/chat/messages/{id}
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/chat/messages/"+url.PathEscape(id), nil, nil)
}

// ScanImages は未参照画像をドライランで集計する。
// GET /api/admin/cleanup/scan
func (c *Client) ScanImages(ctx context.Context) (*model.ScanResult, error) {
	var res model.ScanResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/cleanup/scan", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExecuteCleanup は未参照画像を削除する。
// POST /api/admin/cleanup/execute
func (c *Client) ExecuteCleanup(ctx context.Context) (*model.CleanupResult, error) {
	var res model.CleanupResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/cleanup/execute", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Announcement は最新の公開公告を取得する。
// GET /announcement
func (c *Client) Announcement(ctx context.Context) (*model.Announcement, error) {
	var a model.Announcement
	if err := c.doJSON(ctx, http.MethodGet, "/announcement", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
