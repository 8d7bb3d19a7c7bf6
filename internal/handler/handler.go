// Package handler はREST APIのHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/inkpost/internal/middleware"
	"github.com/hitoshi/inkpost/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// successResponse は状態変更系エンドポイントの共通レスポンス。
// Messageには表示用の文字列か、作成されたリソースが入る。
type successResponse struct {
	Success bool `json:"success"`
	Message any  `json:"message"`
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSuccess は{"success":true,"message":...}を200で書き込む。
func writeSuccess(w http.ResponseWriter, message any) {
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: message})
}

// decodeJSON はリクエストボディをvにデコードする。
// 失敗した場合はINVALID_REQUESTを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewInvalidRequestError()
	}
	return nil
}

// handleServiceError はサービス層のエラーを統一フォーマットのレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	middleware.WriteError(w, r, logger, err)
}
