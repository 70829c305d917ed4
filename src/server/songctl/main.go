package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/config/dev"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	dynamoHostKey      = "dynamo-host"
	dynamoRegionKey    = "dynamo-region"
	accessKeyIDKey     = "aws-access-key-id"
	secretAccessKeyKey = "aws-secret-access-key"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

var rootCmd = &cobra.Command{
	Use:   "songctl",
	Short: "Operate the hymnbook song catalog",
	Long: `songctl sets up the catalog's DynamoDB tables, seeds songs from JSON files
and manages reviewer roles. Settings come from flags or HYMNBOOK_* environment variables,
and default to the local development DynamoDB.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String(dynamoHostKey, dev.DynamoDBHost, "DynamoDB endpoint, empty for AWS itself")
	flags.String(dynamoRegionKey, dev.DynamoDBRegion, "DynamoDB region")
	flags.String(accessKeyIDKey, dev.DynamoAccessKeyID, "AWS access key ID")
	flags.String(secretAccessKeyKey, dev.DynamoSecretAccessKey, "AWS secret access key")

	for _, key := range []string{dynamoHostKey, dynamoRegionKey, accessKeyIDKey, secretAccessKeyKey} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(tablesCmd, seedCmd, usersCmd)
}

func initConfig() {
	log.SetHandler(text.New(os.Stderr))

	viper.SetEnvPrefix("HYMNBOOK")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

func dynamoConfig() config.Dynamo {
	host := viper.GetString(dynamoHostKey)
	if host == "" {
		return config.ProdDynamo{
			AccessKeyID:     viper.GetString(accessKeyIDKey),
			SecretAccessKey: viper.GetString(secretAccessKeyKey),
			Region:          viper.GetString(dynamoRegionKey),
		}
	}

	return config.LocalDynamo{
		AccessKeyID:     viper.GetString(accessKeyIDKey),
		SecretAccessKey: viper.GetString(secretAccessKeyKey),
		Region:          viper.GetString(dynamoRegionKey),
		Host:            host,
	}
}

func connect() dynamolib.DynamoDBWrapper {
	log.WithField("region", viper.GetString(dynamoRegionKey)).Debug("Connecting to DynamoDB")
	return dynamolib.Connect(dynamoConfig())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
