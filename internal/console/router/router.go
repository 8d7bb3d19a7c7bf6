// Package router はコンテンツ種別ごとに異なるエンドポイント・ペイロード形式・
// 操作可否を1つの契約にまとめるコンテンツ種別ルーターを提供する。
//
// 標準の5種別は /api/admin/{type} 系、messageは /api/chat/messages 系に振り分け、
// 一覧はどちらもmodel.Entityの順序付きスライスに正規化する。
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/inkpost/internal/model"
)

// DefaultMessageLimit は管理コンソールでメッセージ一覧を取得する際の件数。
const DefaultMessageLimit = 500

const (
	noticeCreateMessage  = "留言由用户发送，不能手动创建"
	noticePublishMessage = "留言无需发布"
	noticeEditMessage    = "留言由用户发送，不能编辑"
)

// ErrUnknownType は未知のコンテンツ種別が指定された場合のエラー。
var ErrUnknownType = errors.New("router: unknown content type")

// Notice は操作が種別として許可されていないことを利用者に伝える通知。
// 通信は行われず、エラー通知ではなく情報通知として表示する。
type Notice struct {
	Message string
}

// Error はerrorインターフェースを実装する。
func (n *Notice) Error() string { return n.Message }

// AsNotice はerrがNoticeであればそれを返す。
func AsNotice(err error) (*Notice, bool) {
	var n *Notice
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}

// API はルーターが利用するREST呼び出し。apiclient.Clientが実装する。
type API interface {
	ListContentRaw(ctx context.Context, t model.ContentType) (json.RawMessage, error)
	ListMessagesRaw(ctx context.Context, limit int) (json.RawMessage, error)
	SaveContent(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error)
	PublishContent(ctx context.Context, t model.ContentType, id string) error
	BeginEdit(ctx context.Context, t model.ContentType, id string) error
	DeleteContent(ctx context.Context, t model.ContentType, id string) error
	DeleteMessage(ctx context.Context, id string) error
}

// Capabilities は種別ごとの操作可否。
type Capabilities struct {
	List    bool
	Create  bool
	Publish bool
	Edit    bool
	Remove  bool
}

// EditSession は編集開始後に再取得したスナップショットと編集対象。
// 再取得後の一覧に対象が見つからない場合、Itemはnilとなり編集は中止される。
type EditSession struct {
	Type  model.ContentType
	Items []model.Entity
	Item  *model.ContentItem
}

// Router はコンテンツ種別ルーター。状態を持たず、複数のgoroutineから使用できる。
type Router struct {
	api          API
	messageLimit int
	logger       *slog.Logger
}

// New は新しいRouterを生成する。messageLimitが0以下の場合はDefaultMessageLimitを使う。
func New(api API, messageLimit int, logger *slog.Logger) *Router {
	if messageLimit <= 0 {
		messageLimit = DefaultMessageLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{api: api, messageLimit: messageLimit, logger: logger}
}

// CapabilitiesOf は種別ごとの操作可否を返す。未知の種別はすべて不可。
func CapabilitiesOf(t model.ContentType) Capabilities {
	switch {
	case t == model.ContentTypeMessage:
		return Capabilities{List: true, Remove: true}
	case t.IsStandard():
		return Capabilities{List: true, Create: true, Publish: true, Edit: true, Remove: true}
	default:
		return Capabilities{}
	}
}

// Capabilities は種別ごとの操作可否を返す。
func (r *Router) Capabilities(t model.ContentType) Capabilities {
	return CapabilitiesOf(t)
}

// List は種別の一覧を取得し、順序を保ったEntityのスライスに正規化する。
// 配列でない、または想定外の形のペイロードは空の一覧として扱う。
func (r *Router) List(ctx context.Context, t model.ContentType) ([]model.Entity, error) {
	switch {
	case t == model.ContentTypeMessage:
		raw, err := r.api.ListMessagesRaw(ctx, r.messageLimit)
		if err != nil {
			return nil, err
		}
		return DecodeMessages(raw, r.logger), nil
	case t.IsStandard():
		raw, err := r.api.ListContentRaw(ctx, t)
		if err != nil {
			return nil, err
		}
		return r.decodeContent(t, raw), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func (r *Router) decodeContent(t model.ContentType, raw json.RawMessage) []model.Entity {
	var items []*model.ContentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Warn("一覧のペイロードが想定外の形式のため空として扱います",
			slog.String("content_type", string(t)),
			slog.String("error", err.Error()),
		)
		return []model.Entity{}
	}
	entities := make([]model.Entity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Type == "" {
			item.Type = t
		}
		entities = append(entities, item)
	}
	return entities
}

// DecodeMessages はメッセージ一覧のペイロード（{"messages":[...]}）をEntityのスライスに正規化する。
// 想定外の形式は空の一覧として扱い、Warnで記録する。
// 管理コンソールと公開掲示板のフィードで共通に使う。
func DecodeMessages(raw json.RawMessage, logger *slog.Logger) []model.Entity {
	var resp struct {
		Messages []*model.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.Warn("メッセージ一覧のペイロードが想定外の形式のため空として扱います",
			slog.String("error", err.Error()),
		)
		return []model.Entity{}
	}
	entities := make([]model.Entity, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m != nil {
			entities = append(entities, m)
		}
	}
	return entities
}

// Create は下書きを保存する。draft.IDが空なら新規作成、そうでなければ更新。
// messageの場合は通信せずNoticeを返す。
func (r *Router) Create(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error) {
	if t == model.ContentTypeMessage {
		return nil, &Notice{Message: noticeCreateMessage}
	}
	if !t.IsStandard() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	draft.Type = t
	if draft.Status == "" {
		draft.Status = model.ContentStatusDraft
	}
	if draft.Images == nil {
		draft.Images = []model.ImageRef{}
	}
	return r.api.SaveContent(ctx, t, draft)
}

// Publish は下書きを公開する。messageの場合は通信せずNoticeを返す。
func (r *Router) Publish(ctx context.Context, t model.ContentType, id string) error {
	if t == model.ContentTypeMessage {
		return &Notice{Message: noticePublishMessage}
	}
	if !t.IsStandard() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return r.api.PublishContent(ctx, t, id)
}

// Remove は対象を削除する。messageは掲示板用の別エンドポイントを使う。
func (r *Router) Remove(ctx context.Context, t model.ContentType, id string) error {
	switch {
	case t == model.ContentTypeMessage:
		return r.api.DeleteMessage(ctx, id)
	case t.IsStandard():
		return r.api.DeleteContent(ctx, t, id)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// BeginEdit はソフトロック（公開取り下げ）を要求したうえで一覧を再取得し、
// 再取得したスナップショットから対象を探す。
// 取得済みの一覧は使わない。ソフトロックでサーバー側の状態が変わるため。
func (r *Router) BeginEdit(ctx context.Context, t model.ContentType, id string) (*EditSession, error) {
	if t == model.ContentTypeMessage {
		return nil, &Notice{Message: noticeEditMessage}
	}
	if !t.IsStandard() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if err := r.api.BeginEdit(ctx, t, id); err != nil {
		return nil, err
	}
	items, err := r.List(ctx, t)
	if err != nil {
		return nil, err
	}

	session := &EditSession{Type: t, Items: items}
	for _, e := range items {
		if e.EntityID() != id {
			continue
		}
		if item, ok := e.(*model.ContentItem); ok {
			session.Item = item
		}
		break
	}
	if session.Item == nil {
		r.logger.Info("編集対象が再取得後の一覧に見つかりません",
			slog.String("content_type", string(t)),
			slog.String("id", id),
		)
	}
	return session, nil
}
