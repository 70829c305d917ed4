package application

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/jobs/cleanup_music"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/jobs/job_router"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/worker"
	"github.com/rabbitmq/amqp091-go"
)

type Config struct {
	RabbitMQURL        string
	RabbitMQQueueName  string
	CloudStorageConfig config.CloudStorage
	JSONLogs           bool
}

type App struct {
	worker worker.QueueWorker
}

func NewApp(ctx context.Context, config Config) (App, error) {
	if config.JSONLogs {
		log.SetHandler(json.New(os.Stdout))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	fileStore, err := blobstore.NewGoogleFileStore(ctx, config.CloudStorageConfig)
	if err != nil {
		return App{}, errors.Wrap(err, "Failed to create the music file store")
	}

	consumerConn, err := amqp091.Dial(config.RabbitMQURL)
	if err != nil {
		return App{}, errors.Wrap(err, "Failed to dial rabbitMQ")
	}

	queueWorker, err := worker.NewQueueWorkerFromConnection(
		consumerConn,
		config.RabbitMQQueueName,
		NewJobRouter(fileStore))
	if err != nil {
		return App{}, errors.Wrap(err, "Failed to create the queue worker")
	}

	return App{
		worker: queueWorker,
	}, nil
}

func NewJobRouter(fileStore blobstore.FileStore) job_router.JobRouter {
	return job_router.NewJobRouter(cleanup_music.NewJobHandler(fileStore))
}

func (a *App) Start(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return errors.Wrap(err, "Failed to start worker")
	}

	return nil
}

func (a *App) Stop() {
	a.worker.Stop()
}
