package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/inkpost/internal/model"
	"github.com/hitoshi/inkpost/internal/security"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

type mockMessageRepo struct {
	ListFn      func(ctx context.Context, limit int) ([]*model.ChatMessage, error)
	CreateFn    func(ctx context.Context, msg *model.ChatMessage) error
	TrimFn      func(ctx context.Context, keep int) (int64, error)
	DeleteFn    func(ctx context.Context, id string) (bool, error)
	DeleteAllFn func(ctx context.Context) (int64, error)
}

func (m *mockMessageRepo) List(ctx context.Context, limit int) ([]*model.ChatMessage, error) {
	return m.ListFn(ctx, limit)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, msg)
}

func (m *mockMessageRepo) Trim(ctx context.Context, keep int) (int64, error) {
	if m.TrimFn == nil {
		return 0, nil
	}
	return m.TrimFn(ctx, keep)
}

func (m *mockMessageRepo) Delete(ctx context.Context, id string) (bool, error) {
	return m.DeleteFn(ctx, id)
}

func (m *mockMessageRepo) DeleteAll(ctx context.Context) (int64, error) {
	return m.DeleteAllFn(ctx)
}

func newTestService(repo *mockMessageRepo) (*Service, *bytes.Buffer) {
	var buf bytes.Buffer
	svc := NewService(repo, security.NewTextSanitizer(), nil, newTestLogger(&buf), Options{MaxMessages: 100, DefaultLimit: 50})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC) }
	return svc, &buf
}

func TestPost_Validation(t *testing.T) {
	svc, _ := newTestService(&mockMessageRepo{})

	tests := []struct {
		name string
		user string
		text string
		want string
	}{
		{"昵称が空", "", "你好", "请输入昵称"},
		{"昵称と本文が空なら昵称を優先", " ", "", "请输入昵称"},
		{"本文が空", "小明", "  ", "请输入留言内容"},
		{"昵称が1文字", "明", "你好", "昵称至少需要2个字符"},
		{"タグ除去後に空", "<b></b>", "你好", "请输入昵称"},
		{"昵称が長すぎる", strings.Repeat("名", MaxUserRunes+1), "你好", "昵称过长"},
		{"本文が長すぎる", "小明", strings.Repeat("字", MaxTextRunes+1), "留言内容过长"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(context.Background(), &model.NewChatMessage{User: tt.user, Text: tt.text})
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidMessage || apiErr.Message != tt.want {
				t.Errorf("err = %s %q, want %q", apiErr.Code, apiErr.Message, tt.want)
			}
		})
	}
}

func TestPost_AssignsIDAndTimestampThenTrims(t *testing.T) {
	var created *model.ChatMessage
	var keep int
	repo := &mockMessageRepo{
		CreateFn: func(_ context.Context, msg *model.ChatMessage) error {
			created = msg
			return nil
		},
		TrimFn: func(_ context.Context, k int) (int64, error) {
			keep = k
			return 1, nil
		},
	}
	svc, _ := newTestService(repo)

	msg, err := svc.Post(context.Background(), &model.NewChatMessage{User: " 小明 ", Text: "<i>大家好</i>"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		t.Errorf("ID is not a UUID: %q", msg.ID)
	}
	if msg.User != "小明" || msg.Text != "大家好" {
		t.Errorf("msg = %+v", msg)
	}
	if !msg.Timestamp.Equal(time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", msg.Timestamp)
	}
	if created != msg {
		t.Error("保存されたメッセージが返り値と一致しない")
	}
	if keep != 100 {
		t.Errorf("Trim keep = %d, want 100", keep)
	}
}

func TestPost_UsesClientTimestamp(t *testing.T) {
	svc, _ := newTestService(&mockMessageRepo{})
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	msg, err := svc.Post(context.Background(), &model.NewChatMessage{User: "小红", Text: "早", Timestamp: &ts})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !msg.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, ts)
	}
}

func TestPost_TrimFailureIsLoggedNotReturned(t *testing.T) {
	repo := &mockMessageRepo{
		TrimFn: func(context.Context, int) (int64, error) { return 0, errors.New("lock timeout") },
	}
	svc, buf := newTestService(repo)

	if _, err := svc.Post(context.Background(), &model.NewChatMessage{User: "小明", Text: "hi"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !strings.Contains(buf.String(), "lock timeout") {
		t.Errorf("切り詰め失敗がログに出力されていない: %s", buf.String())
	}
}

func TestPost_CreateFailure(t *testing.T) {
	repo := &mockMessageRepo{
		CreateFn: func(context.Context, *model.ChatMessage) error { return errors.New("db down") },
	}
	svc, _ := newTestService(repo)
	if _, err := svc.Post(context.Background(), &model.NewChatMessage{User: "小明", Text: "hi"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDelete(t *testing.T) {
	existing := uuid.NewString()
	repo := &mockMessageRepo{
		DeleteFn: func(_ context.Context, id string) (bool, error) { return id == existing, nil },
	}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, existing); err != nil {
		t.Errorf("Delete(existing) = %v", err)
	}

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		err := svc.Delete(ctx, id)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMessageNotFound {
			t.Errorf("Delete(%q) = %v, want MESSAGE_NOT_FOUND", id, err)
		}
	}
}

func TestList_PassesLimit(t *testing.T) {
	var got int
	repo := &mockMessageRepo{
		ListFn: func(_ context.Context, limit int) ([]*model.ChatMessage, error) {
			got = limit
			return []*model.ChatMessage{}, nil
		},
	}
	svc, _ := newTestService(repo)
	svc.List(context.Background(), 0)
	if got != 0 {
		t.Errorf("limit = %d, want 0", got)
	}
	if svc.DefaultLimit() != 50 {
		t.Errorf("DefaultLimit = %d, want 50", svc.DefaultLimit())
	}
}

func TestClear(t *testing.T) {
	repo := &mockMessageRepo{
		DeleteAllFn: func(context.Context) (int64, error) { return 7, nil },
	}
	svc, _ := newTestService(repo)
	n, err := svc.Clear(context.Background())
	if err != nil || n != 7 {
		t.Errorf("Clear = %d, %v; want 7", n, err)
	}
}
