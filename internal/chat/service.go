// Package chat は公開掲示板メッセージの投稿・一覧・削除を提供する。
// 保持件数を超えた古いメッセージは投稿のたびに切り詰める。
package chat

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/inkpost/internal/metrics"
	"github.com/hitoshi/inkpost/internal/model"
	"github.com/hitoshi/inkpost/internal/repository"
	"github.com/hitoshi/inkpost/internal/security"
)

const (
	// MinUserRunes は昵称の最小文字数。
	MinUserRunes = 2
	// MaxUserRunes は昵称の最大文字数。
	MaxUserRunes = 64
	// MaxTextRunes は本文の最大文字数。
	MaxTextRunes = 2000
)

// Options は掲示板の保持・取得件数の設定。
type Options struct {
	MaxMessages  int
	DefaultLimit int
}

// Service は掲示板のビジネスロジックを提供する。
type Service struct {
	repo      repository.MessageRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	opts      Options

	now func() time.Time
}

// NewService は新しいServiceを生成する。
func NewService(repo repository.MessageRepository, sanitizer security.TextSanitizer, mc metrics.MetricsCollector, logger *slog.Logger, opts Options) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 100
	}
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = 50
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   mc,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// DefaultLimit は一覧取得で件数が指定されなかった場合の件数を返す。
func (s *Service) DefaultLimit() int { return s.opts.DefaultLimit }

// List は最新limit件を投稿順で返す。limitが0以下の場合は全件を返す。
func (s *Service) List(ctx context.Context, limit int) ([]*model.ChatMessage, error) {
	return s.repo.List(ctx, limit)
}

// Post はメッセージを投稿する。昵称と本文はサニタイズ後に検証し、
// IDを採番して保存した後、保持件数を超えた古いメッセージを削除する。
// タイムスタンプが省略された場合はサーバー時刻を使う。
func (s *Service) Post(ctx context.Context, in *model.NewChatMessage) (*model.ChatMessage, error) {
	user := s.sanitizer.Sanitize(in.User)
	text := s.sanitizer.Sanitize(in.Text)

	switch {
	case user == "":
		return nil, model.NewInvalidMessageError("请输入昵称")
	case text == "":
		return nil, model.NewInvalidMessageError("请输入留言内容")
	case utf8.RuneCountInString(user) < MinUserRunes:
		return nil, model.NewInvalidMessageError("昵称至少需要2个字符")
	case utf8.RuneCountInString(user) > MaxUserRunes:
		return nil, model.NewInvalidMessageError("昵称过长")
	case utf8.RuneCountInString(text) > MaxTextRunes:
		return nil, model.NewInvalidMessageError("留言内容过长")
	}

	msg := &model.ChatMessage{
		ID:        uuid.NewString(),
		User:      user,
		Text:      text,
		Timestamp: s.now(),
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		msg.Timestamp = *in.Timestamp
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.metrics.RecordMessagePosted()

	trimmed, err := s.repo.Trim(ctx, s.opts.MaxMessages)
	if err != nil {
		// 投稿自体は成功しているため、切り詰め失敗はログのみ
		s.logger.Warn("古いメッセージの切り詰めに失敗しました",
			slog.String("error", err.Error()),
		)
	} else if trimmed > 0 {
		s.metrics.RecordMessagesDeleted(int(trimmed))
	}

	s.logger.Info("メッセージを投稿しました",
		slog.String("id", msg.ID),
		slog.Int("text_runes", utf8.RuneCountInString(text)),
	)
	return msg, nil
}

// Delete は指定IDのメッセージを削除する。存在しない場合はMESSAGE_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewMessageNotFoundError(id)
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewMessageNotFoundError(id)
	}
	s.metrics.RecordMessagesDeleted(1)
	s.logger.Info("メッセージを削除しました", slog.String("id", id))
	return nil
}

// Clear はすべてのメッセージを削除し、削除件数を返す。
func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordMessagesDeleted(int(n))
	s.logger.Info("全メッセージを削除しました", slog.Int64("deleted_count", n))
	return n, nil
}
