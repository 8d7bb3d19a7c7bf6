package dispatch

import (
	"context"
	"log/slog"
	"time"
)

const gateTarget = "self"

// Gate はリストコンテナに属さない単独の操作要素の2段階確認。
// 内部的には要素1つだけを持つDispatcherで、確認状態の扱いは同一。
type Gate struct {
	d     *Dispatcher
	kind  ActionKind
	label string
}

// GateConfig はGateの構成。
type GateConfig struct {
	Kind        ActionKind
	Label       string
	Handler     func(ctx context.Context) error
	Scheduler   Scheduler
	RevertDelay time.Duration
	// OnChange は表示状態の変化時にロック外で呼ばれる。nil可。
	OnChange func(Presentation)
	Logger   *slog.Logger
}

// NewGate は新しいGateを生成する。Kindは常に確認必須として扱う。
func NewGate(cfg GateConfig) *Gate {
	label := cfg.Label
	if label == "" {
		label = DefaultLabel(cfg.Kind)
	}
	var onChange func(Change)
	if cfg.OnChange != nil {
		onChange = func(c Change) { cfg.OnChange(c.Presentation) }
	}
	h := cfg.Handler
	return &Gate{
		d: New(Config{
			Container:       "gate:" + cfg.Kind.String(),
			ConfirmRequired: []ActionKind{cfg.Kind},
			Handlers: map[ActionKind]Handler{
				cfg.Kind: func(ctx context.Context, _ string) error { return h(ctx) },
			},
			Scheduler:   cfg.Scheduler,
			RevertDelay: cfg.RevertDelay,
			OnChange:    onChange,
			Logger:      cfg.Logger,
		}),
		kind:  cfg.Kind,
		label: label,
	}
}

// Activate は要素の操作を受け付ける。1回目は確定待ち、2回目で実行する。
func (g *Gate) Activate(ctx context.Context) (Outcome, error) {
	return g.d.OnAction(ctx, g.kind, gateTarget, g.label)
}

// Presentation は要素の現在の表示状態を返す。
func (g *Gate) Presentation() Presentation {
	return g.d.Presentation(g.kind, gateTarget, g.label)
}

// Armed は確定待ちかどうかを返す。
func (g *Gate) Armed() bool {
	return g.d.Armed(g.kind, gateTarget)
}

// Reset は確定待ちを破棄する。
func (g *Gate) Reset() {
	g.d.Reset()
}
