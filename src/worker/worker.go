package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/config/dev"
	"github.com/hymnbook/hymnbook-be/src/shared/config/envvar"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/env"
	"github.com/hymnbook/hymnbook-be/src/worker/application"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		appConfig = application.Config{
			CloudStorageConfig: config.ProdCloudStorage{
				SecretKey:  envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName: envvar.MustGet(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME),
			},
			RabbitMQURL:       envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName: envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			JSONLogs:          true,
		}

	case env.Development:
		appConfig = application.Config{
			CloudStorageConfig: dev.CloudStorageConfig,
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			JSONLogs:           false,
		}

	default:
		panic("Unexpected environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := application.NewApp(ctx, appConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up the worker")
	}

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	if err = app.Start(ctx); err != nil {
		log.WithError(err).Fatal("Worker stopped unexpectedly")
	}
}
