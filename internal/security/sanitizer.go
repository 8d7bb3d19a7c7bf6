// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は掲示板に投稿された昵称と本文をプレーンテキストに正規化する。
// 端末で表示されるため、HTMLタグに加えて制御文字（ANSIエスケープシーケンスを含む）も除去する。
package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストのサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// Sanitize はHTMLタグと制御文字を除去したプレーンテキストを返す。
	// 改行とタブは保持し、前後の空白は取り除く。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのStrictPolicyは並行利用に対して安全。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はHTMLタグを除去し、エスケープされた実体参照を元の文字に戻してから
// 制御文字を取り除く。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := html.UnescapeString(s.policy.Sanitize(raw))
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, stripped)
	return strings.TrimSpace(cleaned)
}
