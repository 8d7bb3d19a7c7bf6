package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/inkpost/internal/metrics"
	"github.com/hitoshi/inkpost/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	ChatRateLimiter   *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler
	Logger            *slog.Logger

	// 公開エンドポイント
	HealthChecker HealthChecker
	Announcements AnnouncementSource

	// 管理・掲示板
	ContentService ContentServiceInterface
	ChatService    ChatServiceInterface
	Cleaner        CleanerInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Metrics → Recovery → SecurityHeaders → CORS → (BearerAuth | ChatRateLimit)
//
// /api/admin/* とメッセージ削除はBearer認証が必要。
// メッセージ投稿は認証不要だがクライアントIPごとにレート制限する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, middleware.ErrorResponseBody{
			Code:     "NOT_FOUND",
			Message:  "接口不存在",
			Category: "system",
			Action:   "URLを確認してください。",
		})
	})

	publicHandler := NewPublicHandler(deps.Announcements, deps.HealthChecker, logger)
	contentHandler := NewContentHandler(deps.ContentService, logger)
	chatHandler := NewChatHandler(deps.ChatService, logger)
	cleanupHandler := NewCleanupHandler(deps.Cleaner, logger)

	// --- 認証不要のルート ---
	r.Get("/health", publicHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Get("/announcement", publicHandler.Announcement)
	r.Get("/api/announcement", publicHandler.Announcement)

	r.Get("/api/chat/messages", chatHandler.List)
	if deps.ChatRateLimiter != nil {
		r.With(deps.ChatRateLimiter.Middleware()).Post("/api/chat/messages", chatHandler.Post)
	} else {
		r.Post("/api/chat/messages", chatHandler.Post)
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier, logger))

		r.Delete("/api/chat/messages", chatHandler.Clear)
		r.Delete("/api/chat/messages/{id}", chatHandler.Delete)

		r.Route("/api/admin", func(r chi.Router) {
			// 静的パスは{type}より優先してマッチする
			r.Get("/cleanup/scan", cleanupHandler.Scan)
			r.Post("/cleanup/execute", cleanupHandler.Execute)

			r.Get("/{type}", contentHandler.List)
			r.Post("/{type}", contentHandler.Save)
			r.Delete("/{type}/{id}", contentHandler.Delete)
			r.Post("/{type}/{id}/publish", contentHandler.Publish)
			r.Post("/{type}/{id}/edit", contentHandler.Edit)
		})
	})

	return r
}
