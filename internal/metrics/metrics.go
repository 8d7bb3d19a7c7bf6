// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ミドルウェアから利用する。
type MetricsCollector interface {
	RecordContentOp(op, contentType string)
	RecordMessagePosted()
	RecordMessagesDeleted(count int)
	RecordImagesRemoved(count int)
	RecordCleanupRun(deleted int, freed int64)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	contentOps      *prometheus.CounterVec
	messagesPosted  prometheus.Counter
	messagesDeleted prometheus.Counter
	imagesRemoved   prometheus.Counter
	cleanupRuns     prometheus.Counter
	cleanupDeleted  prometheus.Counter
	cleanupFreed    prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		contentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpost_content_ops_total",
			Help: "コンテンツ操作（save/publish/edit/delete）の合計数",
		}, []string{"op", "type"}),
		messagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_chat_messages_posted_total",
			Help: "投稿された掲示板メッセージの合計数",
		}),
		messagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_chat_messages_deleted_total",
			Help: "削除（切り詰め含む）された掲示板メッセージの合計数",
		}),
		imagesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_images_removed_total",
			Help: "コンテンツ更新・削除に伴って削除された画像ファイル数",
		}),
		cleanupRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_cleanup_runs_total",
			Help: "未参照画像クリーンアップの実行回数",
		}),
		cleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_cleanup_deleted_files_total",
			Help: "未参照画像クリーンアップで削除されたファイル数",
		}),
		cleanupFreed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkpost_cleanup_freed_bytes_total",
			Help: "未参照画像クリーンアップで解放されたバイト数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpost_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkpost_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.contentOps,
		c.messagesPosted,
		c.messagesDeleted,
		c.imagesRemoved,
		c.cleanupRuns,
		c.cleanupDeleted,
		c.cleanupFreed,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordContentOp はコンテンツ操作を記録する。
func (c *Collector) RecordContentOp(op, contentType string) {
	c.contentOps.WithLabelValues(op, contentType).Inc()
}

// RecordMessagePosted はメッセージ投稿を記録する。
func (c *Collector) RecordMessagePosted() {
	c.messagesPosted.Inc()
}

// RecordMessagesDeleted はメッセージ削除件数を記録する。
func (c *Collector) RecordMessagesDeleted(count int) {
	c.messagesDeleted.Add(float64(count))
}

// RecordImagesRemoved はコンテンツに紐づく画像の削除を記録する。
func (c *Collector) RecordImagesRemoved(count int) {
	c.imagesRemoved.Add(float64(count))
}

// RecordCleanupRun はクリーンアップ実行結果を記録する。
func (c *Collector) RecordCleanupRun(deleted int, freed int64) {
	c.cleanupRuns.Inc()
	c.cleanupDeleted.Add(float64(deleted))
	c.cleanupFreed.Add(float64(freed))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。メトリクス不要の構成やテストで使う。
type Nop struct{}

func (Nop) RecordContentOp(string, string)     {}
func (Nop) RecordMessagePosted()               {}
func (Nop) RecordMessagesDeleted(int)          {}
func (Nop) RecordImagesRemoved(int)            {}
func (Nop) RecordCleanupRun(int, int64)        {}
func (Nop) RecordHTTPStatus(int)               {}
func (Nop) RecordRequestLatency(time.Duration) {}
