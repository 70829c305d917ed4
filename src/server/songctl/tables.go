package main

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/storage"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage the catalog's DynamoDB tables",
}

var createTablesCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the song, change, deletion and user tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db := connect()

		if err := songstorage.CreateTables(ctx, db); err != nil {
			return errors.Wrap(err, "Failed to create song tables")
		}

		if err := userstorage.CreateTable(ctx, db); err != nil {
			return errors.Wrap(err, "Failed to create user table")
		}

		log.Info("Tables created")
		return nil
	},
}

func init() {
	tablesCmd.AddCommand(createTablesCmd)
}
