// Package apiclient は端末コンソールからREST APIを呼び出すクライアントを提供する。
// 管理系の呼び出しにはBearerトークンを付与し、送信レートをクライアント側で制限する。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes はレスポンスボディの読み取り上限。
const maxResponseBytes = 8 << 20

// ErrMalformedResponse はレスポンスボディがJSONとして解釈できない場合のエラー。
var ErrMalformedResponse = errors.New("apiclient: malformed response")

// StatusError は2xx以外のステータスが返された場合のエラー。
// サーバーの統一エラーフォーマットを解釈できた場合はCodeとMessageを持つ。
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: status %d [%s] %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus はerrが指定ステータスのStatusErrorかどうかを返す。
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

// Options はClientの設定。
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
	RateLimit  float64 // req/sec。0以下で無制限
	Logger     *slog.Logger
}

// Client はREST APIクライアント。複数のgoroutineから同時に使用できる。
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// New はClientを生成する。BaseURLが不正な場合はエラーを返す。
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		token:      opts.Token,
	}, nil
}

// SetToken はBearerトークンを差し替える。
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// HasToken はBearerトークンが設定されているかを返す。
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// do はリクエストを送信し、2xxの場合にレスポンスボディを返す。
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("APIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	c.logger.Debug("API呼び出し",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var eb struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &eb) == nil {
			se.Code, se.Message = eb.Code, eb.Message
		}
		c.logger.Warn("APIがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("code", se.Code),
		)
		return nil, se
	}
	return data, nil
}

// doJSON はリクエストを送信し、レスポンスをoutにデコードする。outがnilの場合は読み捨てる。
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

// getRaw はGETリクエストを送信し、JSONとして妥当なレスポンスボディをそのまま返す。
func (c *Client) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: GET %s", ErrMalformedResponse, path)
	}
	return json.RawMessage(data), nil
}

// resolve はAPIパス（クエリ文字列を含んでよい）をベースURLと結合する。
func (c *Client) resolve(path string) string {
	return c.baseURL.String() + path
}
