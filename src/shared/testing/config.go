package testing

import (
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/config/dev"
)

// DynamoDB
const (
	DynamoAccessKeyID     = dev.DynamoAccessKeyID
	DynamoSecretAccessKey = dev.DynamoSecretAccessKey
	DynamoDBHost          = dev.DynamoDBHost
)

// each suite uses its own region so that suites running in parallel
// against the same DynamoDB local don't see each other's tables
func DynamoConfig(region string) config.LocalDynamo {
	return config.LocalDynamo{
		AccessKeyID:     DynamoAccessKeyID,
		SecretAccessKey: DynamoSecretAccessKey,
		Region:          region,
		Host:            DynamoDBHost,
	}
}

// Cloud storage
const (
	CloudStorageBucket = "hymnbook-music-test"
)
