package term

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hitoshi/inkpost/internal/console/admin"
	"github.com/hitoshi/inkpost/internal/console/cleanup"
	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/model"
)

// AdminShell は管理コンソールの端末フロントエンド。
type AdminShell struct {
	*Shell
	console  *admin.Console
	cleanup  *cleanup.Workflow
	notes    *ui.Recorder
	uploader *ui.MemoryUploader
	st       Styles
}

// NewAdminShell は管理コンソール用のシェルを生成する。
// notesとuploaderはconsole・cleanupに渡したものと同じインスタンスを渡す。
func NewAdminShell(out *SyncWriter, c *admin.Console, w *cleanup.Workflow, notes *ui.Recorder, uploader *ui.MemoryUploader, logger *slog.Logger) *AdminShell {
	a := &AdminShell{
		Shell:    NewShell(out, "inkpost> ", logger),
		console:  c,
		cleanup:  w,
		notes:    notes,
		uploader: uploader,
		st:       NewStyles(),
	}
	a.after = a.flushNotes

	a.Handle(Command{Name: "type", Usage: "type <research|media|activity|shop|announcement|message>", Run: a.cmdType})
	a.Handle(Command{Name: "list", Usage: "list", Run: a.cmdList})
	a.Handle(Command{Name: "new", Usage: "new", Run: a.cmdNew})
	a.Handle(Command{Name: "title", Usage: "title <标题>", Run: a.cmdTitle})
	a.Handle(Command{Name: "content", Usage: "content <内容>", Run: a.cmdContent})
	a.Handle(Command{Name: "img", Usage: "img <add|rm> <url>", Run: a.cmdImage})
	a.Handle(Command{Name: "show", Usage: "show", Run: a.cmdShow})
	a.Handle(Command{Name: "save", Usage: "save", Run: a.cmdSave})
	for _, action := range []string{"edit", "publish", "delete", "delete-chat"} {
		action := action
		a.Handle(Command{Name: action, Usage: action + " <id>", Run: func(ctx context.Context, id string) error {
			return a.activate(ctx, action, id)
		}})
	}
	a.Handle(Command{Name: "scan", Usage: "scan", Run: a.cmdScan})
	a.Handle(Command{Name: "cleanup", Usage: "cleanup（两次确认）", Run: a.cmdCleanup})
	return a
}

// Start は初期表示として一覧を読み込んで描画する。
func (a *AdminShell) Start(ctx context.Context) {
	a.console.Reload(ctx)
	a.flushNotes()
	a.renderList()
}

func (a *AdminShell) cmdType(ctx context.Context, args string) error {
	t, ok := model.ParseContentType(args)
	if !ok {
		a.out.Println(a.st.Error.Render("未知类型: " + args))
		return nil
	}
	a.console.SwitchType(ctx, t)
	a.renderList()
	return nil
}

func (a *AdminShell) cmdList(ctx context.Context, _ string) error {
	a.console.Reload(ctx)
	a.renderList()
	return nil
}

func (a *AdminShell) cmdNew(context.Context, string) error {
	a.console.NewDraft()
	a.renderEditor()
	return nil
}

func (a *AdminShell) cmdTitle(_ context.Context, args string) error {
	a.console.SetTitle(args)
	return nil
}

func (a *AdminShell) cmdContent(_ context.Context, args string) error {
	a.console.SetContent(args)
	return nil
}

func (a *AdminShell) cmdImage(_ context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		a.out.Println("用法: img <add|rm> <url>")
		return nil
	}
	op, ref := fields[0], fields[1]
	switch op {
	case "add":
		a.uploader.Add(ref)
	case "rm":
		a.uploader.Remove(ref)
	default:
		a.out.Println("用法: img <add|rm> <url>")
		return nil
	}
	a.renderEditor()
	return nil
}

func (a *AdminShell) cmdShow(context.Context, string) error {
	a.renderEditor()
	return nil
}

func (a *AdminShell) cmdSave(ctx context.Context, _ string) error {
	if a.console.Save(ctx) {
		a.renderList()
	}
	return nil
}

func (a *AdminShell) activate(ctx context.Context, action, id string) error {
	out, err := a.console.Activate(ctx, action, id)
	if out == dispatch.OutcomeIgnored {
		a.out.Println(a.st.Meta.Render("无效的操作或ID"))
		return nil
	}
	a.flushNotes()
	a.renderList()
	if action == "edit" && a.console.Editor().ID != "" {
		a.renderEditor()
	}
	return err
}

func (a *AdminShell) cmdScan(ctx context.Context, _ string) error {
	a.cleanup.Scan(ctx)
	a.out.Println(RenderScan(a.st, a.cleanup.View()))
	return nil
}

func (a *AdminShell) cmdCleanup(ctx context.Context, _ string) error {
	out, err := a.cleanup.Activate(ctx)
	if out == dispatch.OutcomeIgnored {
		a.out.Println(a.st.Meta.Render("没有可清理的图片，请先执行 scan"))
		return nil
	}
	a.flushNotes()
	a.out.Println(RenderScan(a.st, a.cleanup.View()))
	return err
}

func (a *AdminShell) renderList() {
	a.out.Println(RenderTabs(a.st, a.console.Current()))
	a.out.Println(RenderRows(a.st, a.console.Rows()))
}

func (a *AdminShell) renderEditor() {
	a.out.Println(RenderEditor(a.st, a.console.Editor(), a.uploader.UploadedImages()))
}

func (a *AdminShell) flushNotes() {
	for _, n := range a.notes.Drain() {
		a.out.Println(RenderNotification(a.st, n))
	}
}
