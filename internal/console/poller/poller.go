// Package poller は公開フィードを一定間隔で再取得し、
// 件数が変化したときだけ再描画する同期ポーラーを提供する。
//
// 差分判定は件数のみで、件数が変わらない内容の変化（編集、上限到達後の新規投稿）は検出しない。
// 利用側が変化を確実に知っている場合だけInvalidateで次回の描画を強制する。
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/inkpost/internal/model"
)

// DefaultInterval は既定のポーリング間隔。
const DefaultInterval = 3 * time.Second

// FetchFunc はフィードの現在のスナップショットを取得する。
type FetchFunc func(ctx context.Context) ([]model.Entity, error)

// RenderFunc はスナップショットを描画する。ロック外で呼ばれる。
type RenderFunc func(items []model.Entity)

// Poller はフィードの同期ポーラー。
//
// 差分判定は件数のみで行う。件数が変わらない編集（同数での入れ替えなど）は検出しない。
type Poller struct {
	fetch  FetchFunc
	render RenderFunc
	logger *slog.Logger

	mu        sync.Mutex
	lastCount int

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// New は新しいPollerを生成する。
func New(fetch FetchFunc, render RenderFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetch:     fetch,
		render:    render,
		logger:    logger,
		lastCount: -1,
	}
}

// Start はポーリングを開始する。開始直後に1回取得し、以降interval間隔で取得する。
// すでに開始済みの場合は何もしない。
func (p *Poller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, interval, p.done)

	p.logger.Info("ポーリングを開始しました", slog.Duration("interval", interval))
}

// loop は単一のgoroutineでティックを処理するため、ティック同士は重ならない。
func (p *Poller) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		// 取得失敗は次のティックでそのまま再試行する
		p.logger.Warn("フィードの取得に失敗しました", slog.String("error", err.Error()))
	}
}

// Stop はポーリングを停止し、実行中のティックの終了を待つ。
// 開始していない場合は何もしない。
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("ポーリングを停止しました")
}

// Running はポーリング中かどうかを返す。
func (p *Poller) Running() bool {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	return p.cancel != nil
}

// Refresh はフィードを1回取得し、前回描画時から件数が変わっていれば描画する。
// 描画した場合にtrueを返す。ティックと並行して呼ばれてもよい。
func (p *Poller) Refresh(ctx context.Context) (bool, error) {
	items, err := p.fetch(ctx)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	if len(items) == p.lastCount {
		p.mu.Unlock()
		return false, nil
	}
	p.lastCount = len(items)
	p.mu.Unlock()

	if p.render != nil {
		p.render(items)
	}
	return true, nil
}

// Invalidate は記録済みの件数を破棄し、次回の取得で必ず描画させる。
// 件数比較そのものは変えない。自分の操作で内容が変わったと分かっている場合にだけ使う。
func (p *Poller) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastCount = -1
}

// LastCount は最後に描画した件数を返す。未描画の場合は-1。
func (p *Poller) LastCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCount
}
