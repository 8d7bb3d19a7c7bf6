// Package admin は管理コンソールのビューモデルを提供する。
//
// 一覧・エディタ・行アクションの状態を保持し、コンテンツ種別ルーターと
// 2段階確認ディスパッチャを組み合わせて操作を実行する。
// 変更操作の後は常に一覧を再取得し、ローカルでの部分的な書き換えは行わない。
package admin

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/console/router"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/model"
)

// 利用者に表示する文言。
const (
	EmptyText = "暂无内容"

	msgLoadFailed    = "加载失败"
	msgSaveFailed    = "保存失败"
	msgPublishFailed = "发布失败"
	msgDeleteFailed  = "删除失败"
	msgEditFailed    = "进入编辑模式失败"
	msgContentNeeded = "请输入内容"
	msgSaved         = "保存成功"
	msgPublished     = "发布成功"
	msgDeleted       = "删除成功"
)

// PreviewRunes は一覧に表示する本文プレビューの最大文字数。
const PreviewRunes = 100

// ContentRouter はコンソールが利用するコンテンツ種別ルーターの操作。
type ContentRouter interface {
	List(ctx context.Context, t model.ContentType) ([]model.Entity, error)
	Create(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error)
	Publish(ctx context.Context, t model.ContentType, id string) error
	Remove(ctx context.Context, t model.ContentType, id string) error
	BeginEdit(ctx context.Context, t model.ContentType, id string) (*router.EditSession, error)
	Capabilities(t model.ContentType) router.Capabilities
}

// Editor はエディタの入力状態。IDが空の場合は新規作成。
type Editor struct {
	ID      string
	Title   string
	Content string
}

// Config はConsoleの構成。
type Config struct {
	Router      ContentRouter
	Notifier    ui.Notifier
	Uploader    ui.Uploader
	Scheduler   dispatch.Scheduler
	RevertDelay time.Duration
	// OnChange は一覧・エディタ・ボタン表示が変わるたびにロック外で呼ばれる。nil可。
	OnChange func()
	Logger   *slog.Logger
}

// Console は管理コンソールのビューモデル。
type Console struct {
	router   ContentRouter
	notifier ui.Notifier
	uploader ui.Uploader
	onChange func()
	logger   *slog.Logger
	actions  *dispatch.Dispatcher

	mu      sync.Mutex
	current model.ContentType
	items   []model.Entity
	editor  Editor
}

// New は新しいConsoleを生成する。初期の表示種別はresearch。
func New(cfg Config) *Console {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{
		router:   cfg.Router,
		notifier: cfg.Notifier,
		uploader: cfg.Uploader,
		onChange: cfg.OnChange,
		logger:   logger,
		current:  model.ContentTypeResearch,
		items:    []model.Entity{},
	}
	c.actions = dispatch.New(dispatch.Config{
		Container:       "admin-list",
		ConfirmRequired: dispatch.DefaultConfirmRequired(),
		Handlers: map[dispatch.ActionKind]dispatch.Handler{
			dispatch.ActionEdit:          c.handleEdit,
			dispatch.ActionPublish:       c.handlePublish,
			dispatch.ActionDelete:        c.handleDelete,
			dispatch.ActionDeleteMessage: c.handleDelete,
		},
		Scheduler:   cfg.Scheduler,
		RevertDelay: cfg.RevertDelay,
		OnChange:    func(dispatch.Change) { c.changed() },
		Logger:      logger,
	})
	return c
}

// Current は表示中のコンテンツ種別を返す。
func (c *Console) Current() model.ContentType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SwitchType は表示する種別を切り替え、エディタを閉じて一覧を読み込む。
func (c *Console) SwitchType(ctx context.Context, t model.ContentType) bool {
	c.actions.Reset()
	c.mu.Lock()
	c.current = t
	c.items = []model.Entity{}
	c.editor = Editor{}
	c.mu.Unlock()
	c.clearUploader()
	c.changed()
	return c.Reload(ctx)
}

// Reload は表示中の種別の一覧を再取得し、スナップショットを丸ごと置き換える。
// 失敗した場合はスナップショットを変更しない。
func (c *Console) Reload(ctx context.Context) bool {
	t := c.Current()
	items, err := c.router.List(ctx, t)
	if err != nil {
		c.logger.Error("一覧の読み込みに失敗しました",
			slog.String("content_type", string(t)),
			slog.String("error", err.Error()),
		)
		c.notifyError(msgLoadFailed)
		return false
	}
	c.replaceItems(t, items)
	return true
}

func (c *Console) replaceItems(t model.ContentType, items []model.Entity) {
	// 一覧の再構築で古い確定待ちはすべて無効になる
	c.actions.Reset()
	c.mu.Lock()
	if c.current == t {
		c.items = items
	}
	c.mu.Unlock()
	c.changed()
}

// Items は現在のスナップショットを返す。
func (c *Console) Items() []model.Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Entity, len(c.items))
	copy(out, c.items)
	return out
}

// Activate は行のアクション要素の操作を受け付ける。
// actionはedit・publish・delete・delete-chatのいずれか。
func (c *Console) Activate(ctx context.Context, action, targetID string) (dispatch.Outcome, error) {
	kind, ok := dispatch.ParseActionKind(action)
	if !ok || !c.rowHasAction(targetID, kind) {
		return dispatch.OutcomeIgnored, nil
	}
	return c.actions.OnAction(ctx, kind, targetID, dispatch.DefaultLabel(kind))
}

func (c *Console) rowHasAction(id string, kind dispatch.ActionKind) bool {
	for _, row := range c.Rows() {
		if row.ID != id {
			continue
		}
		for _, a := range row.Actions {
			if a.Kind == kind {
				return true
			}
		}
		return false
	}
	return false
}

func (c *Console) handleEdit(ctx context.Context, id string) error {
	t := c.Current()
	session, err := c.router.BeginEdit(ctx, t, id)
	if err != nil {
		if n, ok := router.AsNotice(err); ok {
			c.notifyInfo(n.Message)
			return nil
		}
		c.logger.Error("編集モードへの切り替えに失敗しました",
			slog.String("content_type", string(t)),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		c.notifyError(msgEditFailed)
		return err
	}

	c.replaceItems(t, session.Items)
	if session.Item == nil {
		return nil
	}

	item := session.Item
	title := ""
	if item.Title != nil {
		title = *item.Title
	}
	c.mu.Lock()
	c.editor = Editor{ID: item.ID, Title: title, Content: item.Content}
	c.mu.Unlock()
	if c.uploader != nil {
		c.uploader.SetImages(item.Images)
	}
	c.changed()
	return nil
}

func (c *Console) handlePublish(ctx context.Context, id string) error {
	t := c.Current()
	if err := c.router.Publish(ctx, t, id); err != nil {
		if n, ok := router.AsNotice(err); ok {
			c.notifyInfo(n.Message)
			return nil
		}
		c.logger.Error("公開に失敗しました",
			slog.String("content_type", string(t)),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		c.notifyError(msgPublishFailed)
		return err
	}
	c.notifySuccess(msgPublished)
	c.Reload(ctx)
	return nil
}

func (c *Console) handleDelete(ctx context.Context, id string) error {
	t := c.Current()
	if err := c.router.Remove(ctx, t, id); err != nil {
		c.logger.Error("削除に失敗しました",
			slog.String("content_type", string(t)),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		c.notifyError(msgDeleteFailed)
		return err
	}
	c.notifySuccess(msgDeleted)

	c.mu.Lock()
	if c.editor.ID == id {
		c.editor = Editor{}
	}
	c.mu.Unlock()
	c.Reload(ctx)
	return nil
}

// Editor は現在のエディタの入力状態を返す。
func (c *Console) Editor() Editor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor
}

// NewDraft はエディタを空にして新規作成を始める。
func (c *Console) NewDraft() {
	c.mu.Lock()
	c.editor = Editor{}
	c.mu.Unlock()
	c.clearUploader()
	c.changed()
}

// SetTitle はエディタのタイトルを設定する。
func (c *Console) SetTitle(title string) {
	c.mu.Lock()
	c.editor.Title = title
	c.mu.Unlock()
	c.changed()
}

// SetContent はエディタの本文を設定する。
func (c *Console) SetContent(content string) {
	c.mu.Lock()
	c.editor.Content = content
	c.mu.Unlock()
	c.changed()
}

// Save はエディタの内容を下書きとして保存する。
// 本文が空の場合は送信しない。成功するとエディタを空にして一覧を再取得する。
func (c *Console) Save(ctx context.Context) bool {
	t := c.Current()
	ed := c.Editor()

	content := strings.TrimSpace(ed.Content)
	if content == "" {
		c.notifyInfo(msgContentNeeded)
		return false
	}

	draft := &model.ContentDraft{
		ID:      ed.ID,
		Content: content,
		Images:  []model.ImageRef{},
		Status:  model.ContentStatusDraft,
		Type:    t,
	}
	if title := strings.TrimSpace(ed.Title); title != "" {
		draft.Title = &title
	}
	if c.uploader != nil {
		draft.Images = c.uploader.UploadedImages()
	}

	if _, err := c.router.Create(ctx, t, draft); err != nil {
		if n, ok := router.AsNotice(err); ok {
			c.notifyInfo(n.Message)
			return false
		}
		c.logger.Error("保存に失敗しました",
			slog.String("content_type", string(t)),
			slog.String("error", err.Error()),
		)
		c.notifyError(msgSaveFailed)
		return false
	}

	c.notifySuccess(msgSaved)
	c.NewDraft()
	c.Reload(ctx)
	return true
}

func (c *Console) clearUploader() {
	if c.uploader != nil {
		c.uploader.Clear()
	}
}

func (c *Console) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Console) notifyInfo(msg string) {
	if c.notifier != nil {
		c.notifier.Info(msg)
	}
}

func (c *Console) notifySuccess(msg string) {
	if c.notifier != nil {
		c.notifier.Success(msg)
	}
}

func (c *Console) notifyError(msg string) {
	if c.notifier != nil {
		c.notifier.Error(msg)
	}
}
