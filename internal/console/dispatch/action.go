// Package dispatch は「1回目で確定待ち、2回目で実行、時間切れで自動復帰」の
// 2段階確認アクションディスパッチャを提供する。
//
// 確認状態は描画要素の属性ではなく、(アクション種別, 対象ID) をキーとする
// インメモリのマップで管理する。描画層はPresentationを読み取るだけでよく、
// 描画面がなくても状態遷移をテストできる。
package dispatch

// ActionKind はディスパッチ可能なアクションの閉じた列挙。
type ActionKind int

const (
	// ActionEdit は編集（ソフトロック後にエディタを開く）。確認不要。
	ActionEdit ActionKind = iota + 1
	// ActionPublish は下書きの公開。
	ActionPublish
	// ActionDelete はコンテンツの削除。
	ActionDelete
	// ActionDeleteMessage は掲示板メッセージの削除。
	ActionDeleteMessage
	// ActionCleanupExecute は未参照画像の一括削除。
	ActionCleanupExecute
)

// AllActionKinds は定義済みの全アクション種別を返す。
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionEdit,
		ActionPublish,
		ActionDelete,
		ActionDeleteMessage,
		ActionCleanupExecute,
	}
}

// DefaultConfirmRequired はリストコンテナで確認が必要なアクション種別を返す。
func DefaultConfirmRequired() []ActionKind {
	return []ActionKind{ActionPublish, ActionDelete, ActionDeleteMessage}
}

// String は描画要素に付与されるアクション名を返す。
func (k ActionKind) String() string {
	switch k {
	case ActionEdit:
		return "edit"
	case ActionPublish:
		return "publish"
	case ActionDelete:
		return "delete"
	case ActionDeleteMessage:
		return "delete-chat"
	case ActionCleanupExecute:
		return "cleanup-execute"
	default:
		return ""
	}
}

// ParseActionKind はアクション名をActionKindに変換する。
// 未知の名前や空文字列の場合はfalseを返す。
func ParseActionKind(s string) (ActionKind, bool) {
	for _, k := range AllActionKinds() {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Urgency は確定待ち状態で付与される視覚的な強調度。
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyWarning
	UrgencyDanger
)

// String は強調度の名前を返す。
func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "warning"
	case UrgencyDanger:
		return "danger"
	default:
		return "none"
	}
}

// DefaultLabel はアクション種別ごとの通常時ラベルを返す。
func DefaultLabel(k ActionKind) string {
	switch k {
	case ActionEdit:
		return "编辑"
	case ActionPublish:
		return "发布"
	case ActionDelete, ActionDeleteMessage:
		return "删除"
	case ActionCleanupExecute:
		return "清理全部"
	default:
		return ""
	}
}

// ConfirmPhrase は確定待ち状態で表示する確認文言を返す。
func ConfirmPhrase(k ActionKind) string {
	switch k {
	case ActionPublish:
		return "确认发布"
	case ActionDelete, ActionDeleteMessage:
		return "确认删除"
	case ActionCleanupExecute:
		return "确认清理"
	default:
		return DefaultLabel(k)
	}
}

// ArmedUrgency は確定待ち状態の強調度を返す。
// 公開は警告、削除系は危険として扱う。
func ArmedUrgency(k ActionKind) Urgency {
	switch k {
	case ActionPublish:
		return UrgencyWarning
	case ActionDelete, ActionDeleteMessage, ActionCleanupExecute:
		return UrgencyDanger
	default:
		return UrgencyNone
	}
}
