package songseed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
)

const (
	ExistsReason    = "Song already exists"
	InvalidReason   = "Invalid payload in file"
	MalformedReason = "File is not valid JSON"
)

// File is how songs are kept on disk. Number becomes the song ID.
type File struct {
	Number   int                  `json:"number"`
	Title    string               `json:"title"`
	Category string               `json:"category"`
	Sections []songentity.Section `json:"sections"`
}

type Outcome struct {
	File    string `json:"file"`
	ID      int    `json:"id"`
	Created bool   `json:"created"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

type Report struct {
	Count   int       `json:"count"`
	Created int       `json:"created"`
	Skipped int       `json:"skipped"`
	Results []Outcome `json:"results"`
}

func (r *Report) add(outcome Outcome) {
	r.Count++
	if outcome.Created {
		r.Created++
	}
	if outcome.Skipped {
		r.Skipped++
	}

	r.Results = append(r.Results, outcome)
}

// SeedDir creates a version 1.0 song for every JSON file in dir. Songs that
// already exist are left alone so approved edits survive a reseed.
func SeedDir(ctx context.Context, store songentity.SongStore, dir string, now time.Time) (Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, errors.Wrapf(err, "Failed to read seed directory %s", dir)
	}

	report := Report{Results: []Outcome{}}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		outcome, err := seedFile(ctx, store, filepath.Join(dir, entry.Name()), now)
		if err != nil {
			return report, err
		}

		outcome.File = entry.Name()
		report.add(outcome)
	}

	return report, nil
}

func seedFile(ctx context.Context, store songentity.SongStore, path string, now time.Time) (Outcome, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "Failed to read seed file %s", path)
	}

	file := File{}
	if err = json.Unmarshal(raw, &file); err != nil {
		return Outcome{Skipped: true, Reason: MalformedReason}, nil
	}

	skip := Outcome{ID: file.Number, Skipped: true}

	if file.Number <= 0 {
		skip.Reason = InvalidReason
		return skip, nil
	}

	_, err = store.GetSong(ctx, file.Number)
	switch {
	case err == nil:
		skip.Reason = ExistsReason
		return skip, nil
	case !markers.Is(err, songstorage.SongNotFoundMark):
		return Outcome{}, errors.Wrapf(err, "Failed to look up song %d", file.Number)
	}

	content, err := songentity.NormalizeContent(songentity.Content{
		Title:    file.Title,
		Category: file.Category,
		Sections: file.Sections,
	})
	if err != nil {
		skip.Reason = InvalidReason
		return skip, nil
	}

	err = store.CreateSong(ctx, songentity.NewSong(file.Number, content, now))
	if err != nil {
		if markers.Is(err, songstorage.SongAlreadyExistsMark) {
			skip.Reason = ExistsReason
			return skip, nil
		}

		return Outcome{}, errors.Wrapf(err, "Failed to create song %d", file.Number)
	}

	return Outcome{ID: file.Number, Created: true}, nil
}
