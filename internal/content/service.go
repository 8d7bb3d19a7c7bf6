// Package content はコンテンツの下書き・公開・編集（ソフトロック）・削除と、
// 公開公告の表示用変換を提供する。
//
// 下書きが正のデータで、公開セットは公開読者向けのコピー。
// 編集開始時には公開セットから取り除き、再公開まで読者には見えなくなる。
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hitoshi/inkpost/internal/metrics"
	"github.com/hitoshi/inkpost/internal/model"
	"github.com/hitoshi/inkpost/internal/repository"
)

// ImageRemover はコンテンツから外れた画像ファイルを削除する。
type ImageRemover interface {
	RemoveRefs(refs []model.ImageRef) int
}

// Service はコンテンツ管理のビジネスロジックを提供する。
type Service struct {
	repo    repository.ContentRepository
	images  ImageRemover
	metrics metrics.MetricsCollector
	logger  *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService は新しいServiceを生成する。
func NewService(repo repository.ContentRepository, images ImageRemover, mc metrics.MetricsCollector, logger *slog.Logger) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		images:  images,
		metrics: mc,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return ulid.Make().String() },
	}
}

// ListDrafts は指定種別の下書きを状態に関わらずすべて返す。
func (s *Service) ListDrafts(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error) {
	if !t.IsStandard() {
		return nil, model.NewInvalidContentTypeError(string(t))
	}
	return s.repo.ListDrafts(ctx, t)
}

// Save は下書きを新規作成または更新する。
//
// IDが空なら新規作成として時刻順にソート可能なIDを採番する。更新時は
// created_atを維持し、外された画像のファイルを削除する。draft状態で
// 保存した場合は公開セットから取り除く（公開取り消し）。
func (s *Service) Save(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error) {
	if !t.IsStandard() {
		return nil, model.NewInvalidContentTypeError(string(t))
	}
	if strings.TrimSpace(draft.Content) == "" {
		return nil, model.NewEmptyContentError()
	}

	var existing *model.ContentItem
	if draft.ID != "" {
		found, err := s.repo.FindDraft(ctx, t, draft.ID)
		if err != nil {
			return nil, err
		}
		existing = found
	}

	now := s.now()
	item := &model.ContentItem{
		ID:        draft.ID,
		Title:     normalizeTitle(draft.Title),
		Content:   draft.Content,
		Images:    draft.Images,
		Status:    draft.Status,
		Type:      t,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.ID == "" {
		item.ID = s.newID()
	}
	if item.Images == nil {
		item.Images = []model.ImageRef{}
	}
	if item.Status != model.ContentStatusPublished {
		item.Status = model.ContentStatusDraft
	}
	if existing != nil {
		item.CreatedAt = existing.CreatedAt
		item.PublishedAt = existing.PublishedAt
	}

	if err := s.repo.UpsertDraft(ctx, item); err != nil {
		return nil, err
	}

	if existing != nil {
		if removed := diffImages(existing.Images, item.Images); len(removed) > 0 {
			n := s.images.RemoveRefs(removed)
			s.metrics.RecordImagesRemoved(n)
		}
	}

	if item.Status == model.ContentStatusDraft {
		if err := s.repo.DeletePublished(ctx, t, item.ID); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordContentOp("save", string(t))
	s.logger.Info("下書きを保存しました",
		slog.String("content_type", string(t)),
		slog.String("id", item.ID),
		slog.Bool("created", existing == nil),
	)
	return item, nil
}

// Publish は下書きを公開状態にし、公開セットに追加（既存なら上書き）する。
func (s *Service) Publish(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	item, err := s.findDraft(ctx, t, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item.Status = model.ContentStatusPublished
	item.PublishedAt = &now

	if err := s.repo.UpsertDraft(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertPublished(ctx, item); err != nil {
		return nil, err
	}

	s.metrics.RecordContentOp("publish", string(t))
	s.logger.Info("コンテンツを公開しました",
		slog.String("content_type", string(t)),
		slog.String("id", id),
	)
	return item, nil
}

// BeginEdit は編集開始（ソフトロック）を行う。
// 公開セットから取り除き、下書きの状態をdraftに戻す。
func (s *Service) BeginEdit(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	item, err := s.findDraft(ctx, t, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeletePublished(ctx, t, id); err != nil {
		return nil, err
	}

	item.Status = model.ContentStatusDraft
	item.UpdatedAt = s.now()
	if err := s.repo.UpsertDraft(ctx, item); err != nil {
		return nil, err
	}

	s.metrics.RecordContentOp("edit", string(t))
	s.logger.Info("編集モードに入りました",
		slog.String("content_type", string(t)),
		slog.String("id", id),
	)
	return item, nil
}

// Delete は下書き・公開コピー・関連画像ファイルを削除する。
// 下書きが存在しない場合も公開コピーの削除を試み、エラーにはしない。
func (s *Service) Delete(ctx context.Context, t model.ContentType, id string) error {
	if !t.IsStandard() {
		return model.NewInvalidContentTypeError(string(t))
	}

	item, err := s.repo.FindDraft(ctx, t, id)
	if err != nil {
		return err
	}
	if item != nil && len(item.Images) > 0 {
		n := s.images.RemoveRefs(item.Images)
		s.metrics.RecordImagesRemoved(n)
	}

	if err := s.repo.DeleteDraft(ctx, t, id); err != nil {
		return err
	}
	if err := s.repo.DeletePublished(ctx, t, id); err != nil {
		return err
	}

	s.metrics.RecordContentOp("delete", string(t))
	s.logger.Info("コンテンツを削除しました",
		slog.String("content_type", string(t)),
		slog.String("id", id),
		slog.Bool("found", item != nil),
	)
	return nil
}

// Announcement は最新の公開公告を表示用の項目列に変換して返す。
// 本文があればtext項目、画像ごとにimage項目を並べる。
// 公開公告がない場合は空の項目列とdraft状態を返す。
func (s *Service) Announcement(ctx context.Context) (*model.Announcement, error) {
	latest, err := s.repo.LatestPublished(ctx, model.ContentTypeAnnouncement)
	if err != nil {
		return nil, fmt.Errorf("公告の取得に失敗しました: %w", err)
	}
	if latest == nil || latest.Status != model.ContentStatusPublished {
		return &model.Announcement{Items: []model.AnnouncementItem{}, Status: model.ContentStatusDraft}, nil
	}

	items := []model.AnnouncementItem{}
	if latest.Content != "" {
		items = append(items, model.AnnouncementItem{Type: "text", Content: latest.Content})
	}
	for _, img := range latest.Images {
		items = append(items, model.AnnouncementItem{Type: "image", Content: img})
	}
	updated := latest.UpdatedAt
	return &model.Announcement{
		Items:     items,
		Status:    model.ContentStatusPublished,
		UpdatedAt: &updated,
	}, nil
}

func (s *Service) findDraft(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	if !t.IsStandard() {
		return nil, model.NewInvalidContentTypeError(string(t))
	}
	item, err := s.repo.FindDraft(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NewContentNotFoundError(id)
	}
	return item, nil
}

// normalizeTitle は空白のみのタイトルをnil（タイトルなし）として扱う。
func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*title)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// diffImages はbeforeに含まれafterに含まれない画像を返す。
func diffImages(before, after []model.ImageRef) []model.ImageRef {
	keep := make(map[model.ImageRef]bool, len(after))
	for _, img := range after {
		keep[img] = true
	}
	var removed []model.ImageRef
	seen := make(map[model.ImageRef]bool)
	for _, img := range before {
		if !keep[img] && !seen[img] {
			removed = append(removed, img)
			seen[img] = true
		}
	}
	return removed
}
