// Package app はサブコマンドごとに依存関係を組み立ててアプリケーションを起動する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/inkpost/internal/auth"
	"github.com/hitoshi/inkpost/internal/chat"
	"github.com/hitoshi/inkpost/internal/config"
	"github.com/hitoshi/inkpost/internal/content"
	"github.com/hitoshi/inkpost/internal/database"
	"github.com/hitoshi/inkpost/internal/handler"
	"github.com/hitoshi/inkpost/internal/imagestore"
	"github.com/hitoshi/inkpost/internal/logger"
	"github.com/hitoshi/inkpost/internal/metrics"
	"github.com/hitoshi/inkpost/internal/middleware"
	"github.com/hitoshi/inkpost/internal/repository"
	"github.com/hitoshi/inkpost/internal/security"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Terminal は端末コマンド（console・board・token）の入出力先。
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// Init はAPIサーバーの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再設定する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// SIGINT・SIGTERMでキャンセルされるコンテキストでRunContextを呼ぶ。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, w, Terminal{In: os.Stdin, Out: os.Stdout}, args)
}

// RunContext はサブコマンドを解析し、対応するモードで起動する。
// wはログの出力先、termは端末コマンドの入出力先。
func RunContext(ctx context.Context, w io.Writer, term Terminal, args []string) error {
	cmd := ParseCommand(args)

	switch cmd {
	case CommandHealthcheck:
		// 軽量サブコマンドのため、フル初期化をスキップする
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(ctx, fmt.Sprintf("http://localhost:%s/health", port))
	case CommandMigrate:
		return runMigrate(w)
	case CommandToken:
		return runToken(w, term)
	case CommandConsole:
		return runConsole(ctx, w, term)
	case CommandBoard:
		return runBoard(ctx, w, term)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("images_dir", cfg.ImagesDir),
	)
	return runServe(ctx, cfg, slog.Default())
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, 5*time.Second); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリ・ストレージの初期化
	contentRepo := repository.NewPostgresContentRepo(db)
	messageRepo := repository.NewPostgresMessageRepo(db)
	images := imagestore.NewStore(cfg.ImagesDir, log)

	// 4. ドメインサービスの初期化
	tokens, err := auth.NewService(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	contentService := content.NewService(contentRepo, images, collector, log)
	chatService := chat.NewService(messageRepo, security.NewTextSanitizer(), collector, log, chat.Options{
		MaxMessages:  cfg.ChatMaxMessages,
		DefaultLimit: cfg.ChatDefaultLimit,
	})
	cleaner := imagestore.NewCleaner(images, contentRepo, collector, log)

	// 5. ルーターの構築
	chatLimiter := middleware.NewRateLimiter(middleware.ChatRateLimiterConfig(cfg.RateLimitChat), log)
	defer chatLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		TokenVerifier:     tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		ChatRateLimiter:   chatLimiter,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),
		Logger:            log,

		HealthChecker: db,
		Announcements: contentService,

		ContentService: contentService,
		ChatService:    chatService,
		Cleaner:        cleaner,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(w io.Writer) error {
	cfg, err := config.LoadMigrate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
