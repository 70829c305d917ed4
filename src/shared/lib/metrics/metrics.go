package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_http_requests_total",
			Help: "Count of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hymnbook_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReviewDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_review_decisions_total",
			Help: "Committed review decisions on song changes",
		},
		[]string{"action"},
	)

	SupersededChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hymnbook_superseded_changes_total",
		Help: "Pending changes rejected as a side effect of an approval or a deletion",
	})

	TransactionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_transaction_retries_total",
			Help: "Transactions retried after losing a race with a concurrent writer",
		},
		[]string{"operation"},
	)

	SyncRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_sync_requests_total",
			Help: "Sync requests, split by full and incremental",
		},
		[]string{"mode"},
	)

	MusicMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_music_mutations_total",
			Help: "Music uploads and removals committed to songs",
		},
		[]string{"operation"},
	)

	BlobCleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hymnbook_blob_cleanup_failures_total",
			Help: "Music blobs that could not be deleted inline",
		},
		[]string{"source"},
	)
)

// Middleware records request counts and durations per route template,
// so path parameters don't blow up label cardinality
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			status := strconv.Itoa(c.Response().Status)
			httpRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
