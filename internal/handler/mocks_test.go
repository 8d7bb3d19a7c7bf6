package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/inkpost/internal/auth"
	"github.com/hitoshi/inkpost/internal/model"
)

// --- モック定義 ---

type mockContentService struct {
	listDraftsFn func(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error)
	saveFn       func(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error)
	publishFn    func(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error)
	beginEditFn  func(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error)
	deleteFn     func(ctx context.Context, t model.ContentType, id string) error
}

func (m *mockContentService) ListDrafts(ctx context.Context, t model.ContentType) ([]*model.ContentItem, error) {
	if m.listDraftsFn != nil {
		return m.listDraftsFn(ctx, t)
	}
	return nil, nil
}

func (m *mockContentService) Save(ctx context.Context, t model.ContentType, draft *model.ContentDraft) (*model.ContentItem, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, t, draft)
	}
	return &model.ContentItem{}, nil
}

func (m *mockContentService) Publish(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, t, id)
	}
	return &model.ContentItem{}, nil
}

func (m *mockContentService) BeginEdit(ctx context.Context, t model.ContentType, id string) (*model.ContentItem, error) {
	if m.beginEditFn != nil {
		return m.beginEditFn(ctx, t, id)
	}
	return &model.ContentItem{}, nil
}

func (m *mockContentService) Delete(ctx context.Context, t model.ContentType, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, t, id)
	}
	return nil
}

type mockChatService struct {
	listFn   func(ctx context.Context, limit int) ([]*model.ChatMessage, error)
	postFn   func(ctx context.Context, in *model.NewChatMessage) (*model.ChatMessage, error)
	deleteFn func(ctx context.Context, id string) error
	clearFn  func(ctx context.Context) (int64, error)
}

func (m *mockChatService) List(ctx context.Context, limit int) ([]*model.ChatMessage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockChatService) Post(ctx context.Context, in *model.NewChatMessage) (*model.ChatMessage, error) {
	if m.postFn != nil {
		return m.postFn(ctx, in)
	}
	return &model.ChatMessage{}, nil
}

func (m *mockChatService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockChatService) Clear(ctx context.Context) (int64, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	return 0, nil
}

func (m *mockChatService) DefaultLimit() int { return 50 }

type mockCleaner struct {
	scanFn    func(ctx context.Context) (*model.ScanResult, error)
	executeFn func(ctx context.Context) (*model.CleanupResult, error)
}

func (m *mockCleaner) Scan(ctx context.Context) (*model.ScanResult, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx)
	}
	return &model.ScanResult{UnreferencedDetails: []model.ImageStat{}}, nil
}

func (m *mockCleaner) Execute(ctx context.Context) (*model.CleanupResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx)
	}
	return &model.CleanupResult{Success: true}, nil
}

type mockAnnouncements struct {
	announcementFn func(ctx context.Context) (*model.Announcement, error)
}

func (m *mockAnnouncements) Announcement(ctx context.Context) (*model.Announcement, error) {
	if m.announcementFn != nil {
		return m.announcementFn(ctx)
	}
	return &model.Announcement{Items: []model.AnnouncementItem{}, Status: model.ContentStatusDraft}, nil
}

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// --- テストヘルパー ---

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// withChiURLParams はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseAPIErrorResponse はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// testVerifier は"valid-token"のみを受け付けるTokenVerifier。
type testVerifier struct{}

func (testVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "valid-token" {
		return nil, auth.ErrInvalidToken
	}
	c := &auth.Claims{}
	c.Subject = "admin"
	return c, nil
}
