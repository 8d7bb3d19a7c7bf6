package admin

import (
	"time"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/model"
)

// ActionButton は行に描画するアクション要素。
type ActionButton struct {
	Kind    dispatch.ActionKind
	Label   string
	Urgency dispatch.Urgency
	Armed   bool
}

// Row は一覧の1行の表示内容。
type Row struct {
	ID      string
	Title   string
	Preview string
	Status  model.ContentStatus
	Time    time.Time
	Images  int
	Actions []ActionButton
}

// Rows は現在のスナップショットを描画用の行に変換する。
// ボタンのラベルと強調はディスパッチャの確認状態から決まる。
func (c *Console) Rows() []Row {
	items := c.Items()
	rows := make([]Row, 0, len(items))
	for _, e := range items {
		switch v := e.(type) {
		case *model.ContentItem:
			kinds := []dispatch.ActionKind{dispatch.ActionEdit}
			if v.Status == model.ContentStatusDraft {
				kinds = append(kinds, dispatch.ActionPublish)
			}
			kinds = append(kinds, dispatch.ActionDelete)
			rows = append(rows, Row{
				ID:      v.ID,
				Title:   v.DisplayTitle(),
				Preview: Preview(v.Content),
				Status:  v.Status,
				Time:    v.CreatedAt,
				Images:  len(v.Images),
				Actions: c.buttons(v.ID, kinds),
			})
		case *model.ChatMessage:
			rows = append(rows, Row{
				ID:      v.ID,
				Title:   v.DisplayUser(),
				Preview: Preview(v.Text),
				Time:    v.Timestamp,
				Actions: c.buttons(v.ID, []dispatch.ActionKind{dispatch.ActionDeleteMessage}),
			})
		}
	}
	return rows
}

func (c *Console) buttons(id string, kinds []dispatch.ActionKind) []ActionButton {
	out := make([]ActionButton, len(kinds))
	for i, k := range kinds {
		p := c.actions.Presentation(k, id, dispatch.DefaultLabel(k))
		out[i] = ActionButton{Kind: k, Label: p.Label, Urgency: p.Urgency, Armed: p.Armed}
	}
	return out
}

// Preview は本文をPreviewRunes文字までに切り詰める。切り詰めた場合は"..."を付ける。
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= PreviewRunes {
		return s
	}
	return string(r[:PreviewRunes]) + "..."
}
