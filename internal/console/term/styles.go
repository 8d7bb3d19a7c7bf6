// Package term は端末向けの描画とコマンドシェルを提供する。
// 描画はlipglossのスタイルで行い、入力は1行1コマンドで読み取る。
package term

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hitoshi/inkpost/internal/console/dispatch"
	"github.com/hitoshi/inkpost/internal/console/poller"
	"github.com/hitoshi/inkpost/internal/console/ui"
)

// Styles は端末描画のスタイル一式。
type Styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Meta     lipgloss.Style
	Preview  lipgloss.Style
	Empty    lipgloss.Style
	Button   lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	Disabled lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
	Prompt   lipgloss.Style
	Authors  [poller.ColorCount]lipgloss.Style
}

// NewStyles は既定のスタイルを返す。
func NewStyles() Styles {
	base := lipgloss.NewStyle()
	authorColors := [poller.ColorCount]lipgloss.Color{"9", "10", "11", "12", "13", "14"}

	st := Styles{
		Title:    base.Bold(true),
		Tab:      base.Padding(0, 1).Faint(true),
		TabOn:    base.Padding(0, 1).Bold(true).Underline(true),
		Meta:     base.Faint(true),
		Preview:  base,
		Empty:    base.Faint(true).Italic(true),
		Button:   base,
		Warning:  base.Bold(true).Foreground(lipgloss.Color("3")),
		Danger:   base.Bold(true).Foreground(lipgloss.Color("1")),
		Disabled: base.Faint(true),
		Info:     base.Foreground(lipgloss.Color("4")),
		Success:  base.Foreground(lipgloss.Color("2")),
		Error:    base.Bold(true).Foreground(lipgloss.Color("1")),
		Panel:    base.Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Prompt:   base.Bold(true),
	}
	for i, c := range authorColors {
		st.Authors[i] = base.Bold(true).Foreground(c)
	}
	return st
}

// button は確定待ちの強調度に応じたボタンのスタイルを返す。
func (s Styles) button(u dispatch.Urgency) lipgloss.Style {
	switch u {
	case dispatch.UrgencyWarning:
		return s.Warning
	case dispatch.UrgencyDanger:
		return s.Danger
	default:
		return s.Button
	}
}

// notification は通知の種類に応じたスタイルを返す。
func (s Styles) notification(l ui.Level) lipgloss.Style {
	switch l {
	case ui.LevelSuccess:
		return s.Success
	case ui.LevelError:
		return s.Error
	default:
		return s.Info
	}
}

// author は色番号（1〜poller.ColorCount）に対応するスタイルを返す。
func (s Styles) author(color int) lipgloss.Style {
	if color < 1 || color > poller.ColorCount {
		return s.Authors[0]
	}
	return s.Authors[color-1]
}
