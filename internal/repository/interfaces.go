// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/inkpost/internal/model"
)

// ContentRepository はコンテンツの下書きと公開セットの永続化インターフェース。
// 下書きが正のデータで、公開セットは公開読者向けのコピー。
type ContentRepository interface {
	// ListDrafts は指定種別の下書きを作成日時の降順（新しいものが先頭）で返す。
	ListDrafts(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error)

	// FindDraft は指定IDの下書きを取得する。見つからない場合はnilを返す。
	FindDraft(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error)

	// UpsertDraft は下書きを作成または上書きする。created_atは既存の値を維持する。
	UpsertDraft(ctx context.Context, item *model.ContentItem) error

	// DeleteDraft は指定IDの下書きを削除する。存在しない場合もエラーにしない。
	DeleteDraft(ctx context.Context, t model.ContentType, id string) error

	// ListPublished は指定種別の公開セットを掲載順（新しいものが先頭）で返す。
	ListPublished(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error)

	// LatestPublished は指定種別の公開セットの先頭を返す。空の場合はnilを返す。
	LatestPublished(ctx context.Context, t model.ContentType) (*model.ContentItem, error)

	// UpsertPublished は公開セットに追加または上書きする。
	// 既存の場合は掲載位置を維持し、新規の場合は先頭に掲載する。
	UpsertPublished(ctx context.Context, item *model.ContentItem) error

	// DeletePublished は公開セットから削除する。存在しない場合もエラーにしない。
	DeletePublished(ctx context.Context, t model.ContentType, id string) error

	// ListImageRefs は指定種別の下書きと公開セットが参照する画像URLをすべて返す（重複あり）。
	ListImageRefs(ctx context.Context, types []model.ContentType) ([]model.ImageRef, error)
}

// MessageRepository は掲示板メッセージの永続化インターフェース。
type MessageRepository interface {
	// List は最新limit件を投稿順（古いものが先頭）で返す。limitが0以下の場合は全件を返す。
	List(ctx context.Context, limit int) ([]*model.ChatMessage, error)

	// Create はメッセージを追加する。
	Create(ctx context.Context, msg *model.ChatMessage) error

	// Trim は最新keep件を残してそれより古いメッセージを削除し、削除件数を返す。
	Trim(ctx context.Context, keep int) (int64, error)

	// Delete は指定IDのメッセージを削除する。存在しなかった場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteAll はすべてのメッセージを削除し、削除件数を返す。
	DeleteAll(ctx context.Context) (int64, error)
}
