package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/inkpost/internal/model"
)

const contentColumns = `id, type, title, content, images, status, created_at, updated_at, published_at`

// PostgresContentRepo はPostgreSQLを使用したコンテンツリポジトリ。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

// ListDrafts は指定種別の下書きを作成日時の降順で返す。
func (r *PostgresContentRepo) ListDrafts(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+`
		 FROM content_drafts WHERE type = $1
		 ORDER BY created_at DESC, id DESC`,
		string(t),
	)
	if err != nil {
		return nil, fmt.Errorf("下書き一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()
	return scanContentRows(rows)
}

// FindDraft は指定IDの下書きを取得する。見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindDraft(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	item, err := scanContent(r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_drafts WHERE type = $1 AND id = $2`,
		string(t), id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("下書きの取得に失敗しました: %w", err)
	}
	return item, nil
}

// UpsertDraft は下書きを作成または上書きする。
func (r *PostgresContentRepo) UpsertDraft(ctx context.Context, item *model.ContentItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO content_drafts (`+contentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (type, id) DO UPDATE SET
		     title = EXCLUDED.title,
		     content = EXCLUDED.content,
		     images = EXCLUDED.images,
		     status = EXCLUDED.status,
		     updated_at = EXCLUDED.updated_at,
		     published_at = EXCLUDED.published_at`,
		item.ID, string(item.Type), item.Title, item.Content, pq.Array(nonNilImages(item.Images)),
		string(item.Status), item.CreatedAt, item.UpdatedAt, item.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("下書きの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteDraft は指定IDの下書きを削除する。
func (r *PostgresContentRepo) DeleteDraft(ctx context.Context, t model.ContentType, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM content_drafts WHERE type = $1 AND id = $2`,
		string(t), id,
	)
	if err != nil {
		return fmt.Errorf("下書きの削除に失敗しました: %w", err)
	}
	return nil
}

// ListPublished は指定種別の公開セットを掲載順で返す。
func (r *PostgresContentRepo) ListPublished(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+`
		 FROM content_published WHERE type = $1
		 ORDER BY listed_at DESC, id DESC`,
		string(t),
	)
	if err != nil {
		return nil, fmt.Errorf("公開一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()
	return scanContentRows(rows)
}

// LatestPublished は指定種別の公開セットの先頭を返す。空の場合はnilを返す。
func (r *PostgresContentRepo) LatestPublished(ctx context.Context, t model.ContentType) (*model.ContentItem, error) {
	item, err := scanContent(r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+`
		 FROM content_published WHERE type = $1
		 ORDER BY listed_at DESC, id DESC LIMIT 1`,
		string(t),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("最新の公開コンテンツの取得に失敗しました: %w", err)
	}
	return item, nil
}

// UpsertPublished は公開セットに追加または上書きする。
// listed_atは新規追加時にのみ設定されるため、既存の掲載位置は維持される。
func (r *PostgresContentRepo) UpsertPublished(ctx context.Context, item *model.ContentItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO content_published (`+contentColumns+`, listed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (type, id) DO UPDATE SET
		     title = EXCLUDED.title,
		     content = EXCLUDED.content,
		     images = EXCLUDED.images,
		     status = EXCLUDED.status,
		     created_at = EXCLUDED.created_at,
		     updated_at = EXCLUDED.updated_at,
		     published_at = EXCLUDED.published_at`,
		item.ID, string(item.Type), item.Title, item.Content, pq.Array(nonNilImages(item.Images)),
		string(item.Status), item.CreatedAt, item.UpdatedAt, item.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("公開セットへの保存に失敗しました: %w", err)
	}
	return nil
}

// DeletePublished は公開セットから削除する。
func (r *PostgresContentRepo) DeletePublished(ctx context.Context, t model.ContentType, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM content_published WHERE type = $1 AND id = $2`,
		string(t), id,
	)
	if err != nil {
		return fmt.Errorf("公開セットからの削除に失敗しました: %w", err)
	}
	return nil
}

// ListImageRefs は指定種別の下書きと公開セットが参照する画像URLをすべて返す。
func (r *PostgresContentRepo) ListImageRefs(ctx context.Context, types []model.ContentType) ([]model.ImageRef, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT unnest(images) FROM content_drafts WHERE type = ANY($1)
		 UNION ALL
		 SELECT unnest(images) FROM content_published WHERE type = ANY($1)`,
		pq.Array(names),
	)
	if err != nil {
		return nil, fmt.Errorf("画像参照の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var refs []model.ImageRef
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("画像参照の読み取りに失敗しました: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("画像参照の走査に失敗しました: %w", err)
	}
	return refs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*model.ContentItem, error) {
	item := &model.ContentItem{}
	var (
		typ, status string
		title       sql.NullString
		images      pq.StringArray
		publishedAt pq.NullTime
	)
	if err := row.Scan(&item.ID, &typ, &title, &item.Content, &images, &status,
		&item.CreatedAt, &item.UpdatedAt, &publishedAt); err != nil {
		return nil, err
	}
	item.Type = model.ContentType(typ)
	item.Status = model.ContentStatus(status)
	if title.Valid {
		s := title.String
		item.Title = &s
	}
	item.Images = nonNilImages(images)
	if publishedAt.Valid {
		ts := publishedAt.Time
		item.PublishedAt = &ts
	}
	return item, nil
}

func scanContentRows(rows *sql.Rows) ([]*model.ContentItem, error) {
	items := []*model.ContentItem{}
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("コンテンツ行の読み取りに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コンテンツ一覧の走査に失敗しました: %w", err)
	}
	return items, nil
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
