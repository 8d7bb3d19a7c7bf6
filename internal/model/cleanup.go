package model

import "math"

// ImageStat は未参照画像1件のサイズ情報。
type ImageStat struct {
	Filename string  `json:"filename"`
	Size     int64   `json:"size"`
	SizeMB   float64 `json:"size_mb"`
}

// ScanResult は未参照画像スキャン（ドライラン）の結果。
// 保守レポートの表示と実行ボタンの表示判定にのみ使われる。
type ScanResult struct {
	TotalImages         int         `json:"total_images"`
	ReferencedImages    int         `json:"referenced_images"`
	UnreferencedCount   int         `json:"unreferenced_count"`
	UnreferencedDetails []ImageStat `json:"unreferenced_details"`
	TotalSize           int64       `json:"total_size"`
	TotalSizeMB         float64     `json:"total_size_mb"`
}

// CleanupResult は未参照画像削除の実行結果。
type CleanupResult struct {
	Success      bool    `json:"success"`
	DeletedCount int     `json:"deleted_count"`
	FreedSpace   int64   `json:"freed_space"`
	FreedSpaceMB float64 `json:"freed_space_mb"`
}

// BytesToMB はバイト数を小数点以下2桁に丸めたMBに変換する。
func BytesToMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}
