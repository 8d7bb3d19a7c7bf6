package dispatch_test

import (
	"context"
	"testing"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/console/dispatch/dispatchtest"
)

func TestGate_ArmConfirmAndRevert(t *testing.T) {
	sched := &dispatchtest.ManualScheduler{}
	calls := 0
	var seen []dispatch.Presentation
	g := dispatch.NewGate(dispatch.GateConfig{
		Kind:        dispatch.ActionCleanupExecute,
		Handler:     func(context.Context) error { calls++; return nil },
		Scheduler:   sched,
		RevertDelay: revertDelay,
		OnChange:    func(p dispatch.Presentation) { seen = append(seen, p) },
	})
	ctx := context.Background()

	if p := g.Presentation(); p.Label != "清理全部" || p.Armed {
		t.Errorf("initial presentation = %+v", p)
	}

	g.Activate(ctx)
	if p := g.Presentation(); p.Label != "确认清理" || p.Urgency != dispatch.UrgencyDanger {
		t.Errorf("armed presentation = %+v", p)
	}
	sched.Advance(revertDelay)
	if g.Armed() {
		t.Fatal("期限後も確定待ちのまま")
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}

	g.Activate(ctx)
	out, _ := g.Activate(ctx)
	if out != dispatch.OutcomeConfirmed || calls != 1 {
		t.Errorf("outcome = %v, calls = %d", out, calls)
	}
	if len(seen) != 4 {
		t.Errorf("presentation changes = %d, want 4", len(seen))
	}
}

func TestGate_Reset(t *testing.T) {
	sched := &dispatchtest.ManualScheduler{}
	g := dispatch.NewGate(dispatch.GateConfig{
		Kind:      dispatch.ActionCleanupExecute,
		Label:     "清理全部",
		Handler:   func(context.Context) error { return nil },
		Scheduler: sched,
	})
	g.Activate(context.Background())
	g.Reset()
	if g.Armed() || sched.Pending() != 0 {
		t.Error("Reset後も確定待ちが残っている")
	}
}
