// Package cleanup は未参照画像の「スキャン → 確認 → 実行 → 再スキャン」の
// 保守ワークフローを提供する。実行ボタンは単独のdispatch.Gateで2段階確認する。
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/model"
)

const (
	busyLabel     = "清理中..."
	failedMessage = "清理失败"
)

// State はワークフローの表示状態。
type State int

const (
	StateIdle State = iota
	StateScanning
	StateReport
	StateScanFailed
)

// String は状態名を返す。
func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateReport:
		return "report"
	case StateScanFailed:
		return "scan-failed"
	default:
		return "idle"
	}
}

// API はワークフローが利用するREST呼び出し。
type API interface {
	ScanImages(ctx context.Context) (*model.ScanResult, error)
	ExecuteCleanup(ctx context.Context) (*model.CleanupResult, error)
}

// Control は実行ボタンの表示状態。
type Control struct {
	Visible bool
	Enabled bool
	Label   string
	Urgency dispatch.Urgency
}

// View は描画層に渡すスナップショット。
type View struct {
	State   State
	Result  *model.ScanResult
	Execute Control
}

// Config はWorkflowの構成。
type Config struct {
	API         API
	Notifier    ui.Notifier
	Scheduler   dispatch.Scheduler
	RevertDelay time.Duration
	// OnChange は表示状態が変わるたびにロック外で呼ばれる。nil可。
	OnChange func(View)
	Logger   *slog.Logger
}

// Workflow は画像クリーンアップの保守ワークフロー。
type Workflow struct {
	api      API
	notifier ui.Notifier
	onChange func(View)
	logger   *slog.Logger
	gate     *dispatch.Gate

	mu     sync.Mutex
	state  State
	result *model.ScanResult
	busy   bool
}

// New は新しいWorkflowを生成する。
func New(cfg Config) *Workflow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Workflow{
		api:      cfg.API,
		notifier: cfg.Notifier,
		onChange: cfg.OnChange,
		logger:   logger,
	}
	w.gate = dispatch.NewGate(dispatch.GateConfig{
		Kind:        dispatch.ActionCleanupExecute,
		Handler:     w.execute,
		Scheduler:   cfg.Scheduler,
		RevertDelay: cfg.RevertDelay,
		OnChange:    func(dispatch.Presentation) { w.emit() },
		Logger:      logger,
	})
	return w
}

// Scan はドライランのスキャンを要求し、結果のレポートを表示状態に反映する。
// 実行ボタンは未参照画像が1件以上ある場合のみ表示される。
func (w *Workflow) Scan(ctx context.Context) error {
	w.gate.Reset()
	w.setState(StateScanning, nil)

	result, err := w.api.ScanImages(ctx)
	if err != nil {
		w.logger.Error("画像スキャンに失敗しました", slog.String("error", err.Error()))
		w.setState(StateScanFailed, nil)
		return err
	}
	if result.UnreferencedDetails == nil {
		result.UnreferencedDetails = []model.ImageStat{}
	}
	w.setState(StateReport, result)
	return nil
}

// Activate は実行ボタンの操作を受け付ける。1回目は確定待ち、2回目で削除を実行する。
// ボタンが表示されていない、または実行中の場合は何もしない。
func (w *Workflow) Activate(ctx context.Context) (dispatch.Outcome, error) {
	w.mu.Lock()
	available := w.executeVisibleLocked() && !w.busy
	w.mu.Unlock()
	if !available {
		return dispatch.OutcomeIgnored, nil
	}
	return w.gate.Activate(ctx)
}

func (w *Workflow) execute(ctx context.Context) error {
	w.mu.Lock()
	w.busy = true
	w.mu.Unlock()
	w.emit()

	result, err := w.api.ExecuteCleanup(ctx)
	if err == nil && !result.Success {
		err = errors.New("cleanup reported failure")
	}
	if err != nil {
		w.logger.Error("画像クリーンアップに失敗しました", slog.String("error", err.Error()))
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
		w.emit()
		w.notify(func(n ui.Notifier) { n.Error(failedMessage) })
		return err
	}

	w.logger.Info("画像クリーンアップを実行しました",
		slog.Int("deleted_count", result.DeletedCount),
		slog.Int64("freed_space", result.FreedSpace),
	)
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
	w.notify(func(n ui.Notifier) { n.Success(SuccessMessage(result)) })

	// 再スキャンの失敗はスキャン失敗状態として表示されるため、実行自体は成功とする
	_ = w.Scan(ctx)
	return nil
}

// SuccessMessage はクリーンアップ成功時の通知文言を返す。
func SuccessMessage(r *model.CleanupResult) string {
	return fmt.Sprintf("清理成功：删除 %d 个文件，释放 %s MB 空间",
		r.DeletedCount, strconv.FormatFloat(r.FreedSpaceMB, 'f', -1, 64))
}

// View は現在の表示状態を返す。
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// Armed は実行ボタンが確定待ちかどうかを返す。
func (w *Workflow) Armed() bool {
	return w.gate.Armed()
}

func (w *Workflow) viewLocked() View {
	v := View{State: w.state, Result: w.result}
	if !w.executeVisibleLocked() {
		return v
	}
	p := w.gate.Presentation()
	v.Execute = Control{Visible: true, Enabled: !w.busy, Label: p.Label, Urgency: p.Urgency}
	if w.busy {
		v.Execute.Label = busyLabel
		v.Execute.Urgency = dispatch.UrgencyNone
	}
	return v
}

func (w *Workflow) executeVisibleLocked() bool {
	return w.state == StateReport && w.result != nil && w.result.UnreferencedCount > 0
}

func (w *Workflow) setState(s State, result *model.ScanResult) {
	w.mu.Lock()
	w.state = s
	w.result = result
	w.mu.Unlock()
	w.emit()
}

func (w *Workflow) emit() {
	if w.onChange != nil {
		w.onChange(w.View())
	}
}

func (w *Workflow) notify(f func(ui.Notifier)) {
	if w.notifier != nil {
		f(w.notifier)
	}
}
