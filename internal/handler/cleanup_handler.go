package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/inkpost/internal/model"
)

// CleanerInterface は未参照画像のスキャンと削除を行う。
type CleanerInterface interface {
	Scan(ctx context.Context) (*model.ScanResult, error)
	Execute(ctx context.Context) (*model.CleanupResult, error)
}

// CleanupHandler は画像クリーンアップのHTTPハンドラー。
type CleanupHandler struct {
	cleaner CleanerInterface
	logger  *slog.Logger
}

// NewCleanupHandler はCleanupHandlerを生成する。
func NewCleanupHandler(cleaner CleanerInterface, logger *slog.Logger) *CleanupHandler {
	return &CleanupHandler{cleaner: cleaner, logger: logger}
}

// Scan は未参照画像をドライランで集計する。
// GET /api/admin/cleanup/scan
func (h *CleanupHandler) Scan(w http.ResponseWriter, r *http.Request) {
	res, err := h.cleaner.Scan(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Execute は未参照画像を削除する。
// POST /api/admin/cleanup/execute
func (h *CleanupHandler) Execute(w http.ResponseWriter, r *http.Request) {
	res, err := h.cleaner.Execute(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
