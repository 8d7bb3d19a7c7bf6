package model

import "time"

// ChatMessage は掲示板に投稿されたメッセージを表す。
// 追加と削除のみが可能で、編集操作は存在しない。
type ChatMessage struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityID はEntityインターフェースを実装する。
func (m *ChatMessage) EntityID() string { return m.ID }

// EntityType はEntityインターフェースを実装する。
func (m *ChatMessage) EntityType() ContentType { return ContentTypeMessage }

// DisplayUser は表示用の投稿者名を返す。
func (m *ChatMessage) DisplayUser() string {
	if m.User == "" {
		return "匿名用户"
	}
	return m.User
}

// NewChatMessage は投稿リクエストのペイロード。
// Timestampが省略された場合はサーバー側で現在時刻を設定する。
type NewChatMessage struct {
	User      string     `json:"user"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
