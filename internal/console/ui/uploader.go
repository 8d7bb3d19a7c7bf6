package ui

import (
	"sync"

	"github.com/hitoshi/inkpost/internal/model"
)

// Uploader はエディタに添付された画像参照を保持するウィジェット。
type Uploader interface {
	SetImages(images []model.ImageRef)
	Clear()
	UploadedImages() []model.ImageRef
}

// MemoryUploader はメモリ上で画像参照を保持するUploader実装。
// ファイルの送信は行わず、アップロード済みのURLを受け取って並べるだけ。
type MemoryUploader struct {
	mu     sync.Mutex
	images []model.ImageRef
}

var _ Uploader = (*MemoryUploader)(nil)

// SetImages は画像参照を置き換える。
func (u *MemoryUploader) SetImages(images []model.ImageRef) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.images = append([]model.ImageRef(nil), images...)
}

// Add は画像参照を末尾に追加する。空文字列や重複は無視する。
func (u *MemoryUploader) Add(ref model.ImageRef) bool {
	if ref == "" {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, img := range u.images {
		if img == ref {
			return false
		}
	}
	u.images = append(u.images, ref)
	return true
}

// Remove は画像参照を取り除く。
func (u *MemoryUploader) Remove(ref model.ImageRef) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, img := range u.images {
		if img == ref {
			u.images = append(u.images[:i], u.images[i+1:]...)
			return true
		}
	}
	return false
}

// Clear はすべての画像参照を取り除く。
func (u *MemoryUploader) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.images = nil
}

// UploadedImages は保持している画像参照のコピーを返す。空の場合も非nil。
func (u *MemoryUploader) UploadedImages() []model.ImageRef {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]model.ImageRef, len(u.images))
	copy(out, u.images)
	return out
}
