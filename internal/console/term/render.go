package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/inkpost/internal/console/admin"
	"github.com/hitoshi/inkpost/internal/console/board"
	"github.com/hitoshi/inkpost/internal/console/cleanup"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/model"
)

var typeLabels = map[model.ContentType]string{
	model.ContentTypeResearch:     "研究",
	model.ContentTypeMedia:        "媒体",
	model.ContentTypeActivity:     "活动",
	model.ContentTypeShop:         "商店",
	model.ContentTypeAnnouncement: "公告",
	model.ContentTypeMessage:      "留言",
}

// RenderTabs は種別の切り替えタブを描画する。
func RenderTabs(st Styles, current model.ContentType) string {
	types := append(append([]model.ContentType{}, model.StandardContentTypes...), model.ContentTypeMessage)
	tabs := make([]string, 0, len(types))
	for _, t := range types {
		label := fmt.Sprintf("%s(%s)", typeLabels[t], t)
		if t == current {
			tabs = append(tabs, st.TabOn.Render(label))
		} else {
			tabs = append(tabs, st.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderRows は一覧を描画する。空の場合は"暂无内容"を表示する。
func RenderRows(st Styles, rows []admin.Row) string {
	if len(rows) == 0 {
		return st.Empty.Render(admin.EmptyText)
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		meta := []string{r.ID}
		if r.Status != "" {
			meta = append(meta, string(r.Status))
		}
		if !r.Time.IsZero() {
			meta = append(meta, r.Time.Local().Format("2006-01-02 15:04"))
		}
		if r.Images > 0 {
			meta = append(meta, fmt.Sprintf("%d张图片", r.Images))
		}
		b.WriteString(st.Title.Render(r.Title))
		b.WriteString(" ")
		b.WriteString(st.Meta.Render(strings.Join(meta, " · ")))
		b.WriteString("\n  ")
		b.WriteString(st.Preview.Render(r.Preview))
		b.WriteString("\n  ")
		b.WriteString(renderButtons(st, r.Actions))
	}
	return b.String()
}

func renderButtons(st Styles, actions []admin.ActionButton) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = st.button(a.Urgency).Render(fmt.Sprintf("[%s %s]", a.Label, a.Kind))
	}
	return strings.Join(parts, " ")
}

// RenderEditor はエディタの入力状態を描画する。
func RenderEditor(st Styles, ed admin.Editor, images []model.ImageRef) string {
	mode := "新建"
	if ed.ID != "" {
		mode = "编辑 " + ed.ID
	}
	lines := []string{
		st.Title.Render(mode),
		"标题: " + ed.Title,
		"内容: " + ed.Content,
	}
	for _, img := range images {
		lines = append(lines, "图片: "+img)
	}
	return st.Panel.Render(strings.Join(lines, "\n"))
}

// RenderNotification は通知を1行で描画する。
func RenderNotification(st Styles, n ui.Notification) string {
	return st.notification(n.Level).Render(n.Message)
}

// RenderScan は画像クリーンアップのスキャン結果と実行ボタンを描画する。
func RenderScan(st Styles, v cleanup.View) string {
	switch v.State {
	case cleanup.StateScanning:
		return st.Meta.Render("扫描中...")
	case cleanup.StateScanFailed:
		return st.Error.Render("扫描失败")
	case cleanup.StateIdle:
		return ""
	}

	r := v.Result
	lines := []string{
		fmt.Sprintf("图片总数: %d", r.TotalImages),
		fmt.Sprintf("已引用: %d", r.ReferencedImages),
		fmt.Sprintf("未引用: %d (%.2f MB)", r.UnreferencedCount, r.TotalSizeMB),
	}
	for _, d := range r.UnreferencedDetails {
		lines = append(lines, st.Meta.Render(fmt.Sprintf("  %s  %.2f MB", d.Filename, d.SizeMB)))
	}
	if v.Execute.Visible {
		label := fmt.Sprintf("[%s]", v.Execute.Label)
		if v.Execute.Enabled {
			lines = append(lines, st.button(v.Execute.Urgency).Render(label))
		} else {
			lines = append(lines, st.Disabled.Render(label))
		}
	}
	return st.Panel.Render(strings.Join(lines, "\n"))
}

// RenderFeedLine はフィードの1行を投稿者の色で描画する。
func RenderFeedLine(st Styles, l board.Line) string {
	return fmt.Sprintf("[%s] %s %s",
		l.Time.Format("15:04"),
		st.author(l.Color).Render("<"+l.User+">"),
		l.Text,
	)
}

// RenderAnnouncement は公告ビューアを描画する。
func RenderAnnouncement(st Styles, v board.AnnouncementView) string {
	if v.Placeholder != "" {
		return st.Panel.Render(st.Empty.Render(v.Placeholder))
	}
	lines := make([]string, 0, len(v.Items)+1)
	for _, item := range v.Items {
		switch item.Type {
		case "image":
			lines = append(lines, st.Meta.Render("[图片] "+item.Content))
		default:
			lines = append(lines, item.Content)
		}
	}
	if v.UpdatedAt != nil {
		lines = append(lines, st.Meta.Render("更新于 "+v.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return st.Panel.Render(strings.Join(lines, "\n"))
}
