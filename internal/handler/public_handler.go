package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/inkpost/internal/model"
)

// AnnouncementSource は公開公告の取得元。
type AnnouncementSource interface {
	Announcement(ctx context.Context) (*model.Announcement, error)
}

// HealthChecker はDB接続の疎通確認を行う。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// PublicHandler は認証不要の公開エンドポイント（公告・ヘルスチェック）のハンドラー。
type PublicHandler struct {
	announcements AnnouncementSource
	health        HealthChecker
	logger        *slog.Logger
}

// NewPublicHandler はPublicHandlerを生成する。
func NewPublicHandler(announcements AnnouncementSource, health HealthChecker, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{announcements: announcements, health: health, logger: logger}
}

// Announcement は最新の公開公告を表示用項目に展開して返す。
// GET /announcement, /api/announcement
func (h *PublicHandler) Announcement(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcements.Announcement(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Health はDBに疎通できれば200、できなければ503を返す。
// GET /health
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.health.PingContext(ctx); err != nil {
		h.logger.Error("ヘルスチェックに失敗しました", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
