// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/inkpost/internal/auth"
	"github.com/hitoshi/inkpost/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subjectContextKey はリクエストコンテキストにトークンのsubjectを格納するためのキー。
var subjectContextKey = contextKey("subject")

// subjectHolderContextKey は外側のミドルウェアが認証結果を受け取るためのキー。
var subjectHolderContextKey = contextKey("subject_holder")

// subjectHolder は内側で確定したsubjectを外側のアクセスログへ渡す入れ物。
type subjectHolder struct {
	subject string
}

func contextWithSubjectHolder(ctx context.Context, h *subjectHolder) context.Context {
	return context.WithValue(ctx, subjectHolderContextKey, h)
}

// TokenVerifier はBearerトークンの検証に必要なインターフェース。
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証済みのsubjectをリクエストコンテキストに注入する。
// トークンがない・不正な場合は401 Unauthorizedを返す。
func NewBearerAuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("トークンの検証に失敗しました",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if h, ok := r.Context().Value(subjectHolderContextKey).(*subjectHolder); ok {
				h.subject = claims.Subject
			}
			ctx := ContextWithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SubjectFromContext はリクエストコンテキストから認証済みsubjectを取得する。
// Bearer認証ミドルウェアを通過したリクエストでのみ値を持つ。
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok && subject != ""
}

// ContextWithSubject はコンテキストにsubjectを注入する。
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
