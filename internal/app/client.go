package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hitoshi/inkpost/internal/apiclient"
	"github.com/hitoshi/inkpost/internal/auth"
	"github.com/hitoshi/inkpost/internal/config"
	"github.com/hitoshi/inkpost/internal/console/admin"
	"github.com/hitoshi/inkpost/internal/console/board"
	"github.com/hitoshi/inkpost/internal/console/cleanup"
	"github.com/hitoshi/inkpost/internal/console/router"
	"github.com/hitoshi/inkpost/internal/console/term"
	"github.com/hitoshi/inkpost/internal/console/ui"
	"github.com/hitoshi/inkpost/internal/logger"
)

// adminSubject は発行するトークンのsubject。
const adminSubject = "admin"

// ErrLoginRequired は資格情報が保存されていないため管理コンソールを起動できないことを示す。
var ErrLoginRequired = errors.New("login required: run `inkpost token` to store an admin token")

// runToken は管理者トークンを発行し、資格情報ファイルに保存する。
func runToken(w io.Writer, t Terminal) error {
	cfg, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.SetupDefault(w, slog.LevelInfo)

	issuer, err := auth.NewService(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	token, err := issuer.Issue(adminSubject, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	store := &ui.FileCredentialStore{Path: cfg.CredentialFile}
	if err := store.Save(token); err != nil {
		return err
	}

	log.Info("管理者トークンを発行しました",
		slog.String("credential_file", cfg.CredentialFile),
		slog.Duration("ttl", cfg.TokenTTL),
	)
	fmt.Fprintf(t.Out, "令牌已保存到 %s（有效期 %s）\n", cfg.CredentialFile, cfg.TokenTTL)
	return nil
}

// newClient は端末コマンド共通のAPIクライアントを生成する。
func newClient(cfg *config.ClientConfig, token string, log *slog.Logger) (*apiclient.Client, error) {
	return apiclient.New(apiclient.Options{
		BaseURL:   cfg.APIBaseURL,
		Token:     token,
		Timeout:   cfg.ClientTimeout,
		RateLimit: cfg.ClientRateLimit,
		Logger:    log,
	})
}

// runConsole は端末の管理コンソールを起動する。
// 資格情報は起動時に1回だけ読み込み、なければErrLoginRequiredを返す。
func runConsole(ctx context.Context, w io.Writer, t Terminal) error {
	cfg := config.LoadClient()
	log := logger.Setup(w, logger.ParseLevel(cfg.LogLevel))

	store := &ui.FileCredentialStore{Path: cfg.CredentialFile}
	token, err := store.Token()
	if errors.Is(err, ui.ErrNoCredentials) {
		return ErrLoginRequired
	}
	if err != nil {
		return err
	}

	client, err := newClient(cfg, token, log)
	if err != nil {
		return err
	}

	notes := &ui.Recorder{}
	uploader := &ui.MemoryUploader{}
	console := admin.New(admin.Config{
		Router:      router.New(client, cfg.AdminMessageLimit, log),
		Notifier:    notes,
		Uploader:    uploader,
		RevertDelay: cfg.ConfirmRevertDelay,
		Logger:      log,
	})
	workflow := cleanup.New(cleanup.Config{
		API:         client,
		Notifier:    notes,
		RevertDelay: cfg.ConfirmRevertDelay,
		Logger:      log,
	})

	out := term.NewSyncWriter(t.Out)
	shell := term.NewAdminShell(out, console, workflow, notes, uploader, log)
	shell.Start(ctx)
	return shell.Run(ctx, t.In)
}

// runBoard は端末の公開掲示板を起動する。認証は不要。
func runBoard(ctx context.Context, w io.Writer, t Terminal) error {
	cfg := config.LoadClient()
	log := logger.Setup(w, logger.ParseLevel(cfg.LogLevel))

	client, err := newClient(cfg, "", log)
	if err != nil {
		return err
	}

	out := term.NewSyncWriter(t.Out)
	notes := &ui.Recorder{}
	b := board.New(board.Config{
		API:      client,
		Notifier: notes,
		OnFeed:   term.FeedWriter(out),
		Logger:   log,
	})

	b.Start(cfg.PollInterval)
	defer b.Stop()

	return term.NewBoardShell(out, b, notes, log).Run(ctx, t.In)
}
