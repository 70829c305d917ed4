package main

import (
	"encoding/json"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/song/seed"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const seedDirKey = "seed-dir"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create songs from a directory of JSON files",
	Long: `seed reads every *.json file in --dir, each holding
{"number", "title", "category", "sections"}, and creates the songs that don't exist yet
at version 1.0. Existing songs keep their approved edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString(seedDirKey)
		if dir == "" {
			return errors.New("--dir is required")
		}

		store := songstorage.NewDB(connect())
		report, err := songseed.SeedDir(cmd.Context(), store, dir, time.Now())
		if err != nil {
			return errors.Wrap(err, "Failed to seed songs")
		}

		log.WithFields(log.Fields{
			"count":   report.Count,
			"created": report.Created,
			"skipped": report.Skipped,
		}).Info("Songs seeded")

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	},
}

func init() {
	seedCmd.Flags().String("dir", "", "directory of song JSON files")
	if err := viper.BindPFlag(seedDirKey, seedCmd.Flags().Lookup("dir")); err != nil {
		panic(err)
	}
}
