package poller

import "sync"

// ColorCount は投稿者に割り当てる色の数。
const ColorCount = 6

// ColorAssigner は投稿者名に色番号（1〜ColorCount）を割り当てる。
// 初出順に1から順に割り当て、ColorCountを超えると1に戻る。
// 割り当てはセッション中保持される。
type ColorAssigner struct {
	mu     sync.Mutex
	colors map[string]int
}

// NewColorAssigner は新しいColorAssignerを生成する。
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{colors: make(map[string]int)}
}

// Color は投稿者の色番号を返す。未割り当ての場合は新たに割り当てる。
func (a *ColorAssigner) Color(user string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.colors[user]; ok {
		return c
	}
	c := len(a.colors)%ColorCount + 1
	a.colors[user] = c
	return c
}

// Len は割り当て済みの投稿者数を返す。
func (a *ColorAssigner) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.colors)
}
