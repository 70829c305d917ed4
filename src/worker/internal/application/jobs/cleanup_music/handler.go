package cleanup_music

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	"github.com/sourcegraph/conc/pool"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const (
	JobType      = rabbitmq.CleanupMusicType
	ErrorMessage = "Failed to clean up music files"

	maxConcurrentDeletes = 4
)

//counterfeiter:generate . CleanupMusicJobHandler
type CleanupMusicJobHandler interface {
	HandleCleanupMusicJob(ctx context.Context, message []byte) (rabbitmq.CleanupMusicJob, error)
}

var _ CleanupMusicJobHandler = JobHandler{}

func NewJobHandler(fileStore blobstore.FileStore) JobHandler {
	return JobHandler{
		fileStore: fileStore,
	}
}

type JobHandler struct {
	fileStore blobstore.FileStore
}

// HandleCleanupMusicJob deletes every file in the job. Files that are already
// gone count as cleaned up, so redelivered jobs are harmless.
func (j JobHandler) HandleCleanupMusicJob(ctx context.Context, message []byte) (rabbitmq.CleanupMusicJob, error) {
	job, err := unmarshalMessage(message)
	if err != nil {
		return rabbitmq.CleanupMusicJob{}, err
	}

	deletes := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(maxConcurrentDeletes)
	for _, fileName := range job.FileNames {
		fileName := fileName

		deletes.Go(func(ctx context.Context) error {
			err := j.fileStore.DeleteFile(ctx, fileName)
			if err != nil && !markers.Is(err, blobstore.ObjectNotExistMark) {
				return errors.Wrapf(err, "Failed to delete %s", fileName)
			}

			return nil
		})
	}

	if err = deletes.Wait(); err != nil {
		return rabbitmq.CleanupMusicJob{}, errors.WithDetailf(err, "song_id: %d", job.SongID)
	}

	log.WithFields(log.Fields{
		"song_id":    job.SongID,
		"file_names": job.FileNames,
	}).Info("Cleaned up music files")

	return job, nil
}

func unmarshalMessage(message []byte) (rabbitmq.CleanupMusicJob, error) {
	job := rabbitmq.CleanupMusicJob{}
	if err := json.Unmarshal(message, &job); err != nil {
		return rabbitmq.CleanupMusicJob{}, errors.Wrap(err, "Failed to unmarshal message JSON")
	}

	if len(job.FileNames) == 0 {
		return rabbitmq.CleanupMusicJob{}, errors.Newf("Cleanup job for song %d has no files", job.SongID)
	}

	for _, fileName := range job.FileNames {
		if fileName == "" {
			return rabbitmq.CleanupMusicJob{}, errors.Newf("Cleanup job for song %d has an empty file name", job.SongID)
		}
	}

	return job, nil
}
