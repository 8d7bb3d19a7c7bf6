package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRevertDelay は確定待ちから自動復帰するまでの既定時間。
const DefaultRevertDelay = 3 * time.Second

// Handler はアクションの実処理。targetIDは描画要素に付与された対象ID。
type Handler func(ctx context.Context, targetID string) error

// Key は確認状態を識別する (アクション種別, 対象ID) の組。
type Key struct {
	Kind     ActionKind
	TargetID string
}

// Element はコンテナ内で操作された描画要素。
// Actionは描画時に付与されたアクション名、Labelは現在の表示ラベル。
type Element struct {
	Action   string
	TargetID string
	Label    string
}

// Presentation は描画層が参照する要素の表示状態。
type Presentation struct {
	Label   string
	Urgency Urgency
	Armed   bool
}

// Outcome はActivateの結果。
type Outcome int

const (
	// OutcomeIgnored はアクション名・対象IDの欠落や未登録ハンドラで何もしなかったことを示す。
	OutcomeIgnored Outcome = iota
	// OutcomeExecuted は確認不要アクションを即時実行したことを示す。
	OutcomeExecuted
	// OutcomeArmed は確定待ち状態に遷移したことを示す。
	OutcomeArmed
	// OutcomeConfirmed は確定待ち中の2回目の操作で実行したことを示す。
	OutcomeConfirmed
)

// String はOutcomeの名前を返す。
func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeArmed:
		return "armed"
	case OutcomeConfirmed:
		return "confirmed"
	default:
		return "ignored"
	}
}

// ChangeReason は表示状態が変化した理由。
type ChangeReason int

const (
	ChangeArmed ChangeReason = iota + 1
	ChangeConfirmed
	ChangeReverted
)

// Change は表示状態の変化通知。
type Change struct {
	Key          Key
	Reason       ChangeReason
	Presentation Presentation
}

// Config はDispatcherの構成。
type Config struct {
	// Container はログ出力用のコンテナ名。
	Container string
	// ConfirmRequired は2段階確認が必要なアクション種別。
	ConfirmRequired []ActionKind
	// Handlers はアクション種別ごとの実処理。
	Handlers map[ActionKind]Handler
	// Scheduler は自動復帰タイマーの予約に使う。nilの場合はSystemScheduler。
	Scheduler Scheduler
	// RevertDelay は確定待ちから自動復帰するまでの時間。0以下の場合はDefaultRevertDelay。
	RevertDelay time.Duration
	// OnChange は表示状態の変化時にロック外で呼ばれる。nil可。
	OnChange func(Change)
	Logger   *slog.Logger
}

type token struct {
	originalLabel string
	seq           uint64
	revert        Task
}

// Dispatcher は1つのコンテナに対するアクション操作を1か所で受け付ける。
// 描画要素ごとにリスナーを持たず、再描画で要素が作り直されても
// 確認状態はキー単位で保持される。
type Dispatcher struct {
	mu       sync.Mutex
	tokens   map[Key]*token
	seq      uint64
	handlers map[ActionKind]Handler

	container string
	confirm   map[ActionKind]bool
	sched     Scheduler
	delay     time.Duration
	onChange  func(Change)
	logger    *slog.Logger
}

// New は新しいDispatcherを生成する。
func New(cfg Config) *Dispatcher {
	sched := cfg.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.RevertDelay
	if delay <= 0 {
		delay = DefaultRevertDelay
	}
	confirm := make(map[ActionKind]bool, len(cfg.ConfirmRequired))
	for _, k := range cfg.ConfirmRequired {
		confirm[k] = true
	}
	handlers := make(map[ActionKind]Handler, len(cfg.Handlers))
	for k, h := range cfg.Handlers {
		handlers[k] = h
	}
	return &Dispatcher{
		tokens:    make(map[Key]*token),
		handlers:  handlers,
		container: cfg.Container,
		confirm:   confirm,
		sched:     sched,
		delay:     delay,
		onChange:  cfg.OnChange,
		logger:    logger,
	}
}

// SetHandler はアクション種別のハンドラを登録または置き換える。
func (d *Dispatcher) SetHandler(kind ActionKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Activate は描画要素の操作を受け付ける。
// アクション名が未知、または対象IDが空の場合は何もしない。
func (d *Dispatcher) Activate(ctx context.Context, el Element) (Outcome, error) {
	kind, ok := ParseActionKind(el.Action)
	if !ok {
		return OutcomeIgnored, nil
	}
	return d.OnAction(ctx, kind, el.TargetID, el.Label)
}

// OnAction はアクション種別と対象IDを指定して操作を受け付ける。
//
// 確認不要の種別は即時実行する。確認が必要な種別は、確定待ちでなければ
// 確定待ちに遷移して自動復帰タイマーを予約し、確定待ちであれば
// タイマーを取り消して確認状態を破棄したうえでハンドラを1回だけ実行する。
// ハンドラはロックの外で実行される。
func (d *Dispatcher) OnAction(ctx context.Context, kind ActionKind, targetID, label string) (Outcome, error) {
	if targetID == "" {
		return OutcomeIgnored, nil
	}

	d.mu.Lock()
	h, ok := d.handlers[kind]
	if !ok || h == nil {
		d.mu.Unlock()
		d.logger.Warn("ハンドラ未登録のアクションを無視",
			slog.String("container", d.container),
			slog.String("action", kind.String()),
		)
		return OutcomeIgnored, nil
	}

	if !d.confirm[kind] {
		d.mu.Unlock()
		return OutcomeExecuted, d.run(ctx, h, kind, targetID)
	}

	key := Key{Kind: kind, TargetID: targetID}
	if tok, armed := d.tokens[key]; armed {
		tok.revert.Stop()
		delete(d.tokens, key)
		original := tok.originalLabel
		d.mu.Unlock()

		d.notify(Change{Key: key, Reason: ChangeConfirmed, Presentation: Presentation{Label: original}})
		return OutcomeConfirmed, d.run(ctx, h, kind, targetID)
	}

	if label == "" {
		label = DefaultLabel(kind)
	}
	d.seq++
	seq := d.seq
	tok := &token{originalLabel: label, seq: seq}
	d.tokens[key] = tok
	tok.revert = d.sched.AfterFunc(d.delay, func() { d.revert(key, seq) })
	pres := armedPresentation(kind)
	d.mu.Unlock()

	d.notify(Change{Key: key, Reason: ChangeArmed, Presentation: pres})
	return OutcomeArmed, nil
}

// revert は自動復帰タイマーの発火処理。
// 確定や再描画で既に破棄・再生成されたトークンには作用しない。
func (d *Dispatcher) revert(key Key, seq uint64) {
	d.mu.Lock()
	tok, ok := d.tokens[key]
	if !ok || tok.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.tokens, key)
	original := tok.originalLabel
	d.mu.Unlock()

	d.logger.Debug("確認待ちを自動復帰",
		slog.String("container", d.container),
		slog.String("action", key.Kind.String()),
		slog.String("target_id", key.TargetID),
	)
	d.notify(Change{Key: key, Reason: ChangeReverted, Presentation: Presentation{Label: original}})
}

func (d *Dispatcher) run(ctx context.Context, h Handler, kind ActionKind, targetID string) error {
	if err := h(ctx, targetID); err != nil {
		d.logger.Error("アクションの実行に失敗",
			slog.String("container", d.container),
			slog.String("action", kind.String()),
			slog.String("target_id", targetID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (d *Dispatcher) notify(c Change) {
	if d.onChange != nil {
		d.onChange(c)
	}
}

// Presentation は要素の現在の表示状態を返す。
// 確定待ちでなければdefaultLabelをそのまま返す。
func (d *Dispatcher) Presentation(kind ActionKind, targetID, defaultLabel string) Presentation {
	d.mu.Lock()
	_, armed := d.tokens[Key{Kind: kind, TargetID: targetID}]
	d.mu.Unlock()
	if armed {
		return armedPresentation(kind)
	}
	return Presentation{Label: defaultLabel}
}

// Armed は要素が確定待ちかどうかを返す。
func (d *Dispatcher) Armed(kind ActionKind, targetID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tokens[Key{Kind: kind, TargetID: targetID}]
	return ok
}

// Pending は確定待ちの要素数を返す。
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tokens)
}

// Reset はすべての確定待ちを破棄し、予約済みの自動復帰タイマーを取り消す。
// コンテナの対象（コンテンツ種別など）を切り替える際に呼ぶ。
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, tok := range d.tokens {
		tok.revert.Stop()
		delete(d.tokens, key)
	}
}

func armedPresentation(kind ActionKind) Presentation {
	return Presentation{
		Label:   ConfirmPhrase(kind),
		Urgency: ArmedUrgency(kind),
		Armed:   true,
	}
}
