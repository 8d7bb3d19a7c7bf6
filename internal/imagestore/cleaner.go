package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/inkpost/internal/metrics"
	"github.com/hitoshi/inkpost/internal/model"
)

// RefSource はコンテンツが参照する画像URLの取得元。
type RefSource interface {
	ListImageRefs(ctx context.Context, types []model.ContentType) ([]model.ImageRef, error)
}

// Cleaner は未参照画像のスキャン（ドライラン）と削除を行う。
// 参照判定は全標準種別の下書きと公開セットを対象とする。
type Cleaner struct {
	store   *Store
	refs    RefSource
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewCleaner は新しいCleanerを生成する。
func NewCleaner(store *Store, refs RefSource, mc metrics.MetricsCollector, logger *slog.Logger) *Cleaner {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Cleaner{store: store, refs: refs, metrics: mc, logger: logger}
}

// Scan は未参照画像を集計する。ファイルは削除しない。
func (c *Cleaner) Scan(ctx context.Context) (*model.ScanResult, error) {
	files, referenced, err := c.collect(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.ScanResult{
		TotalImages:         len(files),
		ReferencedImages:    len(referenced),
		UnreferencedDetails: []model.ImageStat{},
	}
	for _, f := range files {
		if referenced[f.Name] {
			continue
		}
		result.UnreferencedCount++
		result.TotalSize += f.Size
		result.UnreferencedDetails = append(result.UnreferencedDetails, model.ImageStat{
			Filename: f.Name,
			Size:     f.Size,
			SizeMB:   model.BytesToMB(f.Size),
		})
	}
	result.TotalSizeMB = model.BytesToMB(result.TotalSize)

	c.logger.Info("未参照画像のスキャンが完了しました",
		slog.Int("total_images", result.TotalImages),
		slog.Int("unreferenced_count", result.UnreferencedCount),
		slog.Int64("total_size", result.TotalSize),
	)
	return result, nil
}

// Execute は未参照画像を削除する。スキャン時点から参照状態が
// 変わっている可能性があるため、実行時に改めて参照を集計する。
func (c *Cleaner) Execute(ctx context.Context) (*model.CleanupResult, error) {
	start := time.Now()

	files, referenced, err := c.collect(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.CleanupResult{Success: true}
	for _, f := range files {
		if referenced[f.Name] {
			continue
		}
		size, ok, err := c.store.Remove(f.Name)
		if err != nil {
			c.logger.Warn("未参照画像の削除に失敗しました",
				slog.String("filename", f.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			result.DeletedCount++
			result.FreedSpace += size
		}
	}
	result.FreedSpaceMB = model.BytesToMB(result.FreedSpace)
	c.metrics.RecordCleanupRun(result.DeletedCount, result.FreedSpace)

	c.logger.Info("未参照画像のクリーンアップが完了しました",
		slog.Int("deleted_count", result.DeletedCount),
		slog.Int64("freed_space", result.FreedSpace),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return result, nil
}

func (c *Cleaner) collect(ctx context.Context) ([]FileInfo, map[string]bool, error) {
	files, err := c.store.List()
	if err != nil {
		return nil, nil, err
	}
	refs, err := c.refs.ListImageRefs(ctx, model.StandardContentTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("画像参照の集計に失敗しました: %w", err)
	}
	referenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		referenced[model.ImageFilename(ref)] = true
	}
	return files, referenced, nil
}
