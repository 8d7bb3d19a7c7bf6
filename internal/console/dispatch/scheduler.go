package dispatch

import "time"

// Task はキャンセル可能な予約タスク。
// Stopは発火前に停止できた場合にtrueを返す。
type Task interface {
	Stop() bool
}

// Scheduler は遅延実行タスクを予約する。
// テストでは決定的に時間を進められる実装に差し替える。
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// SystemScheduler はtime.AfterFuncによるScheduler実装。
type SystemScheduler struct{}

// AfterFunc はdの経過後に別goroutineでfを実行する。
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}
