package main

import (
	"strings"

	"github.com/apex/log"
	"github.com/hymnbook/hymnbook-be/src/server/application"
	"github.com/hymnbook/hymnbook-be/src/server/google_id"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/config/dev"
	"github.com/hymnbook/hymnbook-be/src/shared/config/envvar"
	"github.com/hymnbook/hymnbook-be/src/shared/config/prod"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/env"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			CloudStorageConfig: config.ProdCloudStorage{
				SecretKey:  envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName: envvar.MustGet(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME),
			},
			RabbitMQURL:        envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:  envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			CORSAllowedOrigins: allowedOrigins,
			UserValidator:      google_id.GoogleValidator{ClientID: envvar.MustGet(envvar.GOOGLE_CLIENT_ID)},
			Port:               ":" + envvar.GetOr(envvar.PORT, "5000"),
			Log:                application.JSONLog,
		}

	case env.Development:
		appConfig = application.Config{
			DynamoConfig:       dev.DynamoConfig,
			CloudStorageConfig: dev.CloudStorageConfig,
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			CORSAllowedOrigins: []string{"*"},
			UserValidator:      google_id.GoogleValidator{ClientID: envvar.MustGet(envvar.GOOGLE_CLIENT_ID)},
			Port:               ":" + envvar.GetOr(envvar.PORT, "5000"),
			Log:                application.TextLog,
		}

	default:
		panic("Unexpected environment")
	}

	app, err := application.NewApp(appConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up the server")
	}

	if err = app.Start(); err != nil {
		log.WithError(err).Fatal("Server stopped unexpectedly")
	}
}
