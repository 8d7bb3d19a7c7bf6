// Package board は公開掲示板のビューモデルを提供する。
// 投稿の入力検証と送信、ポーリングによるフィード同期、公告の表示を扱う。
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/inkpost/internal/console/poller"
	"github.com/hitoshi/inkpost/internal/console/router"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/model"
)

// DefaultFeedLimit はフィードに表示するメッセージ件数。
const DefaultFeedLimit = 50

// MinUserRunes はニックネームの最小文字数。
const MinUserRunes = 2

const (
	msgUserRequired = "请输入昵称"
	msgTextRequired = "请输入留言内容"
	msgUserTooShort = "昵称至少需要2个字符"
	msgSendFailed   = "发送失败，请重试"

	// AnnouncementEmpty は公開中の公告がない場合の表示。
	AnnouncementEmpty = "暂无公告"
	// AnnouncementFailed は公告の取得に失敗した場合の表示。
	AnnouncementFailed = "加载失败"
)

// API は掲示板が利用するREST呼び出し。
type API interface {
	ListMessagesRaw(ctx context.Context, limit int) (json.RawMessage, error)
	PostMessage(ctx context.Context, in *model.NewChatMessage) error
	Announcement(ctx context.Context) (*model.Announcement, error)
}

// Line はフィードの1行。
type Line struct {
	ID    string
	Time  time.Time
	User  string
	Text  string
	Color int
}

// String は "[HH:MM] <user> text" 形式の表示文字列を返す。
func (l Line) String() string {
	return fmt.Sprintf("[%s] <%s> %s", l.Time.Format("15:04"), l.User, l.Text)
}

// Config はBoardの構成。
type Config struct {
	API      API
	Notifier ui.Notifier
	// FeedLimit はフィードの取得件数。0以下の場合はDefaultFeedLimit。
	FeedLimit int
	// Location は時刻表示のタイムゾーン。nilの場合はtime.Local。
	Location *time.Location
	// OnFeed はフィードが再描画されるたびに呼ばれる。nil可。
	OnFeed func([]Line)
	Logger *slog.Logger
}

// Board は公開掲示板のビューモデル。
type Board struct {
	api      API
	notifier ui.Notifier
	limit    int
	loc      *time.Location
	onFeed   func([]Line)
	logger   *slog.Logger
	colors   *poller.ColorAssigner
	poller   *poller.Poller
	now      func() time.Time

	mu       sync.Mutex
	lines    []Line
	nickname string
}

// New は新しいBoardを生成する。
func New(cfg Config) *Board {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.FeedLimit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	b := &Board{
		api:      cfg.API,
		notifier: cfg.Notifier,
		limit:    limit,
		loc:      loc,
		onFeed:   cfg.OnFeed,
		logger:   logger,
		colors:   poller.NewColorAssigner(),
		now:      time.Now,
		lines:    []Line{},
	}
	b.poller = poller.New(b.fetch, b.render, logger)
	return b
}

// fetch は管理コンソールのmessage一覧と同じ正規化でフィードを取得する。
// 想定外の形式のペイロードは空のフィードになる。
func (b *Board) fetch(ctx context.Context) ([]model.Entity, error) {
	raw, err := b.api.ListMessagesRaw(ctx, b.limit)
	if err != nil {
		return nil, err
	}
	return router.DecodeMessages(raw, b.logger), nil
}

func (b *Board) render(items []model.Entity) {
	lines := make([]Line, 0, len(items))
	for _, e := range items {
		m, ok := e.(*model.ChatMessage)
		if !ok {
			continue
		}
		user := m.DisplayUser()
		lines = append(lines, Line{
			ID:    m.ID,
			Time:  m.Timestamp.In(b.loc),
			User:  user,
			Text:  m.Text,
			Color: b.colors.Color(user),
		})
	}

	b.mu.Lock()
	b.lines = lines
	b.mu.Unlock()

	if b.onFeed != nil {
		b.onFeed(lines)
	}
}

// Start はフィードのポーリングを開始する。
func (b *Board) Start(interval time.Duration) {
	b.poller.Start(interval)
}

// Stop はフィードのポーリングを停止する。
func (b *Board) Stop() {
	b.poller.Stop()
}

// Refresh はフィードを即時に1回取得する。件数が変わっていなければ再描画しない。
func (b *Board) Refresh(ctx context.Context) error {
	_, err := b.poller.Refresh(ctx)
	return err
}

// Lines は最後に描画したフィードを返す。
func (b *Board) Lines() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Nickname は最後に投稿に成功したニックネームを返す。
func (b *Board) Nickname() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nickname
}

// Validate は投稿内容を検証し、問題があれば利用者向けの文言を返す。
// 検証順は ニックネーム未入力 → 本文未入力 → ニックネームの文字数不足。
func Validate(user, text string) string {
	user = strings.TrimSpace(user)
	text = strings.TrimSpace(text)
	switch {
	case user == "":
		return msgUserRequired
	case text == "":
		return msgTextRequired
	case utf8.RuneCountInString(user) < MinUserRunes:
		return msgUserTooShort
	default:
		return ""
	}
}

// Send は投稿を検証して送信する。成功するとニックネームを保持し、
// フィードを即時に再取得する。送信できた場合にtrueを返す。
func (b *Board) Send(ctx context.Context, user, text string) bool {
	if msg := Validate(user, text); msg != "" {
		b.notifyInfo(msg)
		return false
	}

	user = strings.TrimSpace(user)
	ts := b.now().UTC()
	err := b.api.PostMessage(ctx, &model.NewChatMessage{
		User:      user,
		Text:      strings.TrimSpace(text),
		Timestamp: &ts,
	})
	if err != nil {
		b.logger.Error("メッセージの送信に失敗しました", slog.String("error", err.Error()))
		b.notifyError(msgSendFailed)
		return false
	}

	b.mu.Lock()
	b.nickname = user
	b.mu.Unlock()

	// 件数比較だけでは上限到達後の新規投稿を検出できないため、投稿直後に限り
	// 件数に関係なく再描画させる。定期ポーリングは件数比較のまま。
	b.poller.Invalidate()
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("投稿後のフィード取得に失敗しました", slog.String("error", err.Error()))
	}
	return true
}

// AnnouncementView は公告ビューアの表示内容。
// Placeholderが空でなければItemsの代わりにそれを表示する。
type AnnouncementView struct {
	Items       []model.AnnouncementItem
	UpdatedAt   *time.Time
	Placeholder string
}

// Announcement は最新の公開公告を取得する。
func (b *Board) Announcement(ctx context.Context) AnnouncementView {
	a, err := b.api.Announcement(ctx)
	if err != nil {
		b.logger.Error("公告の取得に失敗しました", slog.String("error", err.Error()))
		return AnnouncementView{Placeholder: AnnouncementFailed}
	}
	if len(a.Items) == 0 {
		return AnnouncementView{Placeholder: AnnouncementEmpty}
	}
	return AnnouncementView{Items: a.Items, UpdatedAt: a.UpdatedAt}
}

func (b *Board) notifyInfo(msg string) {
	if b.notifier != nil {
		b.notifier.Info(msg)
	}
}

func (b *Board) notifyError(msg string) {
	if b.notifier != nil {
		b.notifier.Error(msg)
	}
}
