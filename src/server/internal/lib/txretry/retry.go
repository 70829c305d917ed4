package txretry

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
)

const MaxAttempts = 3

// Run calls attempt until it stops losing races with concurrent writers.
// Each attempt is expected to re-read whatever it writes, since the
// conditions it committed against went stale.
func Run[T any](operation string, attempt func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)

	for i := 1; i <= MaxAttempts; i++ {
		result, err = attempt()
		if err == nil || !markers.Is(err, songstorage.ConcurrentUpdateMark) {
			return result, err
		}

		if i < MaxAttempts {
			metrics.TransactionRetries.WithLabelValues(operation).Inc()
			log.WithError(err).
				WithFields(log.Fields{
					"operation": operation,
					"attempt":   i,
				}).
				Warn("Retrying transaction after a concurrent update")
		}
	}

	return result, err
}
