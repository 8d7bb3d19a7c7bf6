// Package ui はコンソールのビューが依存する外部協調者（通知・画像アップロード・
// 認証情報ストア）のインターフェースと、その標準実装を提供する。
package ui

import "sync"

// Level は通知の種類。
type Level int

const (
	LevelInfo Level = iota + 1
	LevelSuccess
	LevelError
)

// String は通知の種類名を返す。
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier は利用者への通知先。
type Notifier interface {
	Info(message string)
	Success(message string)
	Error(message string)
}

// Notification は1件の通知。
type Notification struct {
	Level   Level
	Message string
}

// Recorder は通知を順に記録するNotifier実装。
// 端末描画では溜まった通知をDrainで取り出して表示する。
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

var _ Notifier = (*Recorder)(nil)

// Info は情報通知を記録する。
func (r *Recorder) Info(message string) { r.add(LevelInfo, message) }

// Success は成功通知を記録する。
func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }

// Error はエラー通知を記録する。
func (r *Recorder) Error(message string) { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message})
}

// All は記録済みの通知のコピーを返す。
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Drain は記録済みの通知を返して消去する。
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Last は最後の通知を返す。通知がなければfalse。
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
