package syncusecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cast"
)

const RecentWindow = 7 * 24 * time.Hour

type Deletion struct {
	SongID      int       `json:"songId"`
	DeletedAt   time.Time `json:"deletedAt"`
	LastVersion string    `json:"lastVersion"`
}

// Delta is everything a client needs to catch up from Since. Clients send
// ServerTime back as their next since.
type Delta struct {
	ServerTime time.Time             `json:"serverTime"`
	Since      *time.Time            `json:"since"`
	Updates    []songentity.SyncSong `json:"updates"`
	Deletions  []Deletion            `json:"deletions"`
	Categories []string              `json:"categories"`
}

type Usecase struct {
	db    songentity.Store
	clock func() time.Time
}

func NewUsecase(db songentity.Store) Usecase {
	return Usecase{
		db:    db,
		clock: time.Now,
	}
}

// ParseSince accepts ISO-8601 and the other layouts cast understands,
// reading zone-less times as UTC. An empty value means no bound.
func ParseSince(rawSince string) (*time.Time, *api.Error) {
	rawSince = strings.TrimSpace(rawSince)
	if rawSince == "" {
		return nil, nil
	}

	since, err := cast.ToTimeInDefaultLocationE(rawSince, time.UTC)
	if err != nil {
		return nil, api.CommitError(errors.Wrapf(err, "Failed to parse since %q", rawSince),
			syncerrors.InvalidSinceCode,
			"Invalid since timestamp. Use ISO format.")
	}

	since = since.UTC()
	return &since, nil
}

func (u Usecase) Sync(ctx context.Context, rawSince string) (Delta, *api.Error) {
	serverTime := songentity.Timestamp(u.clock())

	since, apiErr := ParseSince(rawSince)
	if apiErr != nil {
		return Delta{}, apiErr
	}

	var (
		songs     []songentity.Song
		deletions []songentity.Deletion
	)

	reads := pool.New().WithErrors().WithContext(ctx)
	reads.Go(func(ctx context.Context) error {
		var err error
		songs, err = u.db.ListSongs(ctx)
		return errors.Wrap(err, "Failed to list songs")
	})
	reads.Go(func(ctx context.Context) error {
		var err error
		deletions, err = u.db.ListDeletions(ctx)
		return errors.Wrap(err, "Failed to list deletions")
	})

	if err := reads.Wait(); err != nil {
		return Delta{}, api.WrapError(songusecase.StoreError(err), "Failed to read the catalog for sync")
	}

	mode := "full"
	if since != nil {
		mode = "incremental"
	}
	metrics.SyncRequests.WithLabelValues(mode).Inc()

	updates := []songentity.SyncSong{}
	for _, song := range songentity.PublishedAfter(songs, since) {
		updates = append(updates, song.ForSync())
	}

	removed := []Deletion{}
	for _, deletion := range songentity.DeletedAfter(deletions, since) {
		removed = append(removed, Deletion{
			SongID:      deletion.SongID,
			DeletedAt:   deletion.DeletedAt,
			LastVersion: deletion.LastVersion,
		})
	}

	return Delta{
		ServerTime: serverTime,
		Since:      since,
		Updates:    updates,
		Deletions:  removed,
		Categories: songentity.Categories(songs),
	}, nil
}

// Recent lists songs published after since, newest first. Without a since
// it looks back a week.
func (u Usecase) Recent(ctx context.Context, rawSince string) ([]songentity.Song, *api.Error) {
	since, apiErr := ParseSince(rawSince)
	if apiErr != nil {
		return nil, apiErr
	}

	if since == nil {
		weekAgo := u.clock().Add(-RecentWindow).UTC()
		since = &weekAgo
	}

	songs, err := u.db.ListSongs(ctx)
	if err != nil {
		return nil, api.WrapError(songusecase.StoreError(err), "Failed to list recent songs")
	}

	recent := songentity.PublishedAfter(songs, since)
	songentity.SortByRecency(recent)
	return recent, nil
}
