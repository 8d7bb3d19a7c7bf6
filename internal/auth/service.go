// Package auth は管理APIのBearerトークン（HS256署名のJWT）の発行と検証を提供する。
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer は管理トークンの発行者名（iss）。
const Issuer = "inkpost"

var (
	// ErrEmptySecret は署名鍵が空の場合のエラー。
	ErrEmptySecret = errors.New("auth: jwt secret is empty")
	// ErrInvalidToken はトークンが不正・期限切れ・署名不一致の場合のエラー。
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims は管理トークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
}

// Service はトークンの発行と検証を行う。
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService は署名鍵からServiceを生成する。
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Service{secret: []byte(secret), now: time.Now}, nil
}

// Issue はsubjectを持つ有効期間ttlのトークンを発行する。
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証してクレームを返す。
// HS256以外のアルゴリズム、発行者不一致、期限切れはErrInvalidTokenとなる。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyIssuer(Issuer, true) {
		return nil, ErrInvalidToken
	}
	// jwt/v4はexp未設定を許容するため、ここで必須にする
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
