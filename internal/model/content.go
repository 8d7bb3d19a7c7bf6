// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// ContentType はコンソールが扱うコンテンツ種別を表す。
// 標準の5種別に加えて、構造の異なるメッセージフィード（message）を含む。
type ContentType string

const (
	ContentTypeResearch     ContentType = "research"
	ContentTypeMedia        ContentType = "media"
	ContentTypeActivity     ContentType = "activity"
	ContentTypeShop         ContentType = "shop"
	ContentTypeAnnouncement ContentType = "announcement"
	// ContentTypeMessage は掲示板メッセージのフィードを表す。
	// 作成・公開・編集はできず、一覧と削除のみをサポートする。
	ContentTypeMessage ContentType = "message"
)

// StandardContentTypes は下書き/公開のCRUDを持つ標準コンテンツ種別の一覧。
var StandardContentTypes = []ContentType{
	ContentTypeResearch,
	ContentTypeMedia,
	ContentTypeActivity,
	ContentTypeShop,
	ContentTypeAnnouncement,
}

// ParseContentType は文字列をContentTypeに変換する。
// 未知の種別の場合はfalseを返す。"chat"はmessageの別名として受け付ける。
func ParseContentType(s string) (ContentType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "chat" {
		return ContentTypeMessage, true
	}
	t := ContentType(s)
	if t == ContentTypeMessage || t.IsStandard() {
		return t, true
	}
	return "", false
}

// IsStandard は標準コンテンツ種別かどうかを返す。
func (t ContentType) IsStandard() bool {
	for _, st := range StandardContentTypes {
		if t == st {
			return true
		}
	}
	return false
}

// ContentStatus はコンテンツの公開状態を表す。
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// ImageRef は画像のURL参照。ファイル名はURLの最後のパス要素。
type ImageRef = string

// ImageFilename は画像URLからファイル名部分を取り出す。
func ImageFilename(ref ImageRef) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// ContentItem は管理対象のコンテンツ（記事・メディア・公告など）を表す。
// バックエンドが所有し、クライアントはビューごとに取得したスナップショットのみを保持する。
type ContentItem struct {
	ID          string        `json:"id"`
	Title       *string       `json:"title"`
	Content     string        `json:"content"`
	Images      []ImageRef    `json:"images"`
	Status      ContentStatus `json:"status"`
	Type        ContentType   `json:"type"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// EntityID はEntityインターフェースを実装する。
func (c *ContentItem) EntityID() string { return c.ID }

// EntityType はEntityインターフェースを実装する。
func (c *ContentItem) EntityType() ContentType { return c.Type }

// DisplayTitle は表示用タイトルを返す。タイトルなしの場合は"(无标题)"。
func (c *ContentItem) DisplayTitle() string {
	if c.Title == nil || *c.Title == "" {
		return "(无标题)"
	}
	return *c.Title
}

// ContentDraft は保存（新規作成・更新）リクエストのペイロード。
// IDが空の場合は新規作成として扱われる。
type ContentDraft struct {
	ID      string        `json:"id,omitempty"`
	Title   *string       `json:"title"`
	Content string        `json:"content"`
	Images  []ImageRef    `json:"images"`
	Status  ContentStatus `json:"status"`
	Type    ContentType   `json:"type"`
}

// Entity はコンテンツ種別ルーターが一覧で扱う共通の契約。
// ContentItemとChatMessageが実装する。
type Entity interface {
	EntityID() string
	EntityType() ContentType
}

// AnnouncementItem は公開公告の表示単位。Typeは"text"または"image"。
type AnnouncementItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Announcement は最新の公開公告を表示用に展開したもの。
type Announcement struct {
	Items     []AnnouncementItem `json:"items"`
	Status    ContentStatus      `json:"status"`
	UpdatedAt *time.Time         `json:"updated_at"`
}
