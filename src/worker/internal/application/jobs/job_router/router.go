package job_router

import (
	"context"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/jobs/cleanup_music"
	"github.com/rabbitmq/amqp091-go"
)

var UnrecognizedJobType = errors.New("Unrecognized job type")

func NewJobRouter(cleanupHandler cleanup_music.CleanupMusicJobHandler) JobRouter {
	return JobRouter{
		cleanupHandler: cleanupHandler,
	}
}

type JobRouter struct {
	cleanupHandler cleanup_music.CleanupMusicJobHandler
}

func (j JobRouter) HandleMessage(ctx context.Context, message amqp091.Delivery) error {
	switch message.Type {
	case cleanup_music.JobType:
		return j.handleCleanupMusicJob(ctx, message)

	default:
		return errors.Wrapf(UnrecognizedJobType, "message type: %s", message.Type)
	}
}

func (j JobRouter) handleCleanupMusicJob(ctx context.Context, message amqp091.Delivery) error {
	job, err := j.cleanupHandler.HandleCleanupMusicJob(ctx, message.Body)
	if err != nil {
		return errors.Wrap(err, cleanup_music.ErrorMessage)
	}

	log.WithFields(log.Fields{
		"song_id": job.SongID,
		"files":   len(job.FileNames),
	}).Debug("Cleanup job routed")

	return nil
}
