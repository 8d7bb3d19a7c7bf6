// Package imagestore はアップロード画像ディレクトリの管理と、
// どのコンテンツからも参照されない画像のスキャン・削除を提供する。
package imagestore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hitoshi/inkpost/internal/model"
)

// imageExtensions は管理対象とする画像ファイルの拡張子。
var imageExtensions = []string{".webp", ".gif"}

// FileInfo はディレクトリ内の画像ファイル1件。
type FileInfo struct {
	Name string
	Size int64
}

// Store は画像ディレクトリへのアクセスを提供する。
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore は新しいStoreを生成する。ディレクトリは存在しなくてもよい。
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir は画像ディレクトリのパスを返す。
func (s *Store) Dir() string { return s.dir }

// List は画像ディレクトリ内の管理対象ファイルをファイル名順で返す。
// ディレクトリが存在しない場合は空のリストを返す。
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("画像ディレクトリの読み取りに失敗しました: %w", err)
	}

	files := []FileInfo{}
	for _, e := range entries {
		if e.IsDir() || !isImageName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// 読み取り中に削除されたファイルは無視する
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Remove は指定ファイルを削除し、削除したバイト数を返す。
// ファイルが存在しない場合は (0, false, nil) を返す。
func (s *Store) Remove(name string) (int64, bool, error) {
	path, ok := s.resolve(name)
	if !ok {
		return 0, false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("画像ファイルの確認に失敗しました: %w", err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("画像ファイルの削除に失敗しました: %w", err)
	}
	return info.Size(), true, nil
}

// RemoveRefs は画像URL参照に対応するファイルを削除し、削除件数を返す。
// 個々の削除失敗はログに記録して処理を続ける。
func (s *Store) RemoveRefs(refs []model.ImageRef) int {
	removed := 0
	for _, ref := range refs {
		name := model.ImageFilename(ref)
		_, ok, err := s.Remove(name)
		if err != nil {
			s.logger.Warn("画像ファイルの削除に失敗しました",
				slog.String("filename", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			removed++
		}
	}
	return removed
}

// resolve はファイル名をディレクトリ内のパスに変換する。
// パス区切りや親ディレクトリ参照を含む名前は拒否する。
func (s *Store) resolve(name string) (string, bool) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

func isImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
