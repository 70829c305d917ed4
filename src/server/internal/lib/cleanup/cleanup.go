package cleanup

import (
	"context"

	"github.com/apex/log"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
)

// MusicCleaner removes music blobs once the database no longer points at
// them. Blob storage isn't transactional with the database, so this only
// ever runs after a commit, and nothing it does can fail the request.
type MusicCleaner struct {
	files     blobstore.FileStore
	publisher rabbitmq.Publisher
}

func NewMusicCleaner(files blobstore.FileStore, publisher rabbitmq.Publisher) MusicCleaner {
	return MusicCleaner{
		files:     files,
		publisher: publisher,
	}
}

// Remove deletes what it can inline and hands the rest to the worker. It
// keeps going when the request that triggered it is cancelled.
func (m MusicCleaner) Remove(ctx context.Context, source string, songID int, fileNames []string) {
	ctx = context.WithoutCancel(ctx)
	leftovers := []string{}

	for _, fileName := range fileNames {
		if fileName == "" {
			continue
		}

		err := m.files.DeleteFile(ctx, fileName)
		if err == nil || markers.Is(err, blobstore.ObjectNotExistMark) {
			continue
		}

		metrics.BlobCleanupFailures.WithLabelValues(source).Inc()
		log.WithError(err).
			WithFields(log.Fields{
				"song_id":   songID,
				"file_name": fileName,
				"source":    source,
			}).
			Warn("Failed to delete music blob inline, queueing it")

		leftovers = append(leftovers, fileName)
	}

	if len(leftovers) == 0 {
		return
	}

	job := rabbitmq.CleanupMusicJob{
		SongID:    songID,
		FileNames: leftovers,
	}

	if err := rabbitmq.PublishJob(ctx, m.publisher, rabbitmq.CleanupMusicType, job); err != nil {
		log.WithError(err).
			WithFields(log.Fields{
				"song_id":    songID,
				"file_names": leftovers,
			}).
			Error("Failed to queue music blob cleanup, blobs are orphaned")
	}
}
