package dev

import "github.com/hymnbook/hymnbook-be/src/shared/config"

// DynamoDB
const (
	DynamoAccessKeyID     = "local"
	DynamoSecretAccessKey = "local"
	DynamoDBHost          = "http://localhost:8000"
	DynamoDBRegion        = "localhost"
)

var DynamoConfig = config.LocalDynamo{
	AccessKeyID:     DynamoAccessKeyID,
	SecretAccessKey: DynamoSecretAccessKey,
	Region:          DynamoDBRegion,
	Host:            DynamoDBHost,
}

// RabbitMQ
const (
	RabbitMQHost      = "amqp://localhost:5672"
	RabbitMQQueueName = "hymnbook-cleanup-dev"
)

// Cloud storage, served by fake-gcs-server
const (
	CloudStorageHost   = "http://localhost:4443/storage/v1/"
	CloudStorageBucket = "hymnbook-music-dev"
)

var CloudStorageConfig = config.LocalCloudStorage{
	HostEndpoint: CloudStorageHost,
	BucketName:   CloudStorageBucket,
}
