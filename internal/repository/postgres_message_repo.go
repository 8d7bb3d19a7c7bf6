package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/inkpost/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用した掲示板メッセージリポジトリ。
// 投稿順はBIGSERIALのseqで保持する。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// List は最新limit件を投稿順で返す。limitが0以下の場合は全件を返す。
func (r *PostgresMessageRepo) List(ctx context.Context, limit int) ([]*model.ChatMessage, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, user_name, text, timestamp FROM (
			     SELECT seq, id, user_name, text, timestamp
			     FROM chat_messages ORDER BY seq DESC LIMIT $1
			 ) latest ORDER BY seq ASC`,
			limit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, user_name, text, timestamp FROM chat_messages ORDER BY seq ASC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	msgs := []*model.ChatMessage{}
	for rows.Next() {
		m := &model.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.User, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("メッセージ行の読み取りに失敗しました: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メッセージ一覧の走査に失敗しました: %w", err)
	}
	return msgs, nil
}

// Create はメッセージを追加する。
func (r *PostgresMessageRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_name, text, timestamp) VALUES ($1, $2, $3, $4)`,
		msg.ID, msg.User, msg.Text, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("メッセージの作成に失敗しました: %w", err)
	}
	return nil
}

// Trim は最新keep件を残して古いメッセージを削除する。
func (r *PostgresMessageRepo) Trim(ctx context.Context, keep int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE seq < (
		     SELECT COALESCE(MIN(seq), 0) FROM (
		         SELECT seq FROM chat_messages ORDER BY seq DESC LIMIT $1
		     ) kept
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("メッセージの切り詰めに失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return n, nil
}

// Delete は指定IDのメッセージを削除する。
func (r *PostgresMessageRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("メッセージの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return n > 0, nil
}

// DeleteAll はすべてのメッセージを削除する。
func (r *PostgresMessageRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`)
	if err != nil {
		return 0, fmt.Errorf("全メッセージの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return n, nil
}
