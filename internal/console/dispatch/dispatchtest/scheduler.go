// Package dispatchtest はdispatchパッケージのテスト用ユーティリティを提供する。
package dispatchtest

import (
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
)

// ManualScheduler は手動で時間を進めるScheduler。
// 予約されたタスクはAdvanceを呼んだgoroutineで同期的に実行される。
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*task
}

type task struct {
	s       *ManualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Stop はタスクを取り消す。発火前に取り消せた場合にtrueを返す。
func (t *task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc はdの経過後にfを実行するタスクを予約する。
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) dispatch.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &task{s: s, at: s.now + d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance は時間をd進め、期限に達したタスクを予約時刻順に実行する。
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*task
	for _, t := range s.tasks {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending は未発火かつ未取消のタスク数を返す。
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// FireAll は取消済みのものも含め、未発火のタスクをすべて実行する。
// 取り消しに失敗した古いタイマーが遅れて発火する競合を再現するために使う。
func (s *ManualScheduler) FireAll() {
	s.mu.Lock()
	var all []*task
	for _, t := range s.tasks {
		if !t.fired {
			t.fired = true
			all = append(all, t)
		}
	}
	s.mu.Unlock()
	for _, t := range all {
		t.f()
	}
}
