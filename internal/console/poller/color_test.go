package poller

import (
	"fmt"
	"testing"
)

func TestColorAssigner_FirstSeenOrderWithWraparound(t *testing.T) {
	a := NewColorAssigner()

	for i := 0; i < 8; i++ {
		want := i%ColorCount + 1
		if got := a.Color(fmt.Sprintf("user%d", i)); got != want {
			t.Errorf("user%d: color = %d, want %d", i, got, want)
		}
	}
	if a.Len() != 8 {
		t.Errorf("Len = %d, want 8", a.Len())
	}
}

func TestColorAssigner_StableForKnownUser(t *testing.T) {
	a := NewColorAssigner()

	first := a.Color("小明")
	a.Color("小红")
	a.Color("小刚")
	if got := a.Color("小明"); got != first {
		t.Errorf("color = %d, want %d", got, first)
	}
	if a.Len() != 3 {
		t.Errorf("Len = %d, want 3", a.Len())
	}
}

func TestColorAssigner_Range(t *testing.T) {
	a := NewColorAssigner()
	for i := 0; i < 50; i++ {
		c := a.Color(fmt.Sprint(i))
		if c < 1 || c > ColorCount {
			t.Fatalf("color = %d, out of range", c)
		}
	}
}
