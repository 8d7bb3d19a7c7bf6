package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCredentials は認証情報が保存されていない（要ログイン）ことを示す。
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialStore はBearerトークンの保存先。起動時に1回だけ読み込む。
type CredentialStore interface {
	Token() (string, error)
}

// FileCredentialStore はファイルにトークンを保存するCredentialStore実装。
type FileCredentialStore struct {
	Path string
}

var _ CredentialStore = (*FileCredentialStore)(nil)

// Token は保存済みのトークンを返す。ファイルがない、または空の場合はErrNoCredentials。
func (s *FileCredentialStore) Token() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}

// Save はトークンを所有者のみ読み書き可能なファイルとして保存する。
func (s *FileCredentialStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
