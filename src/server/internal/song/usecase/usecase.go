package songusecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/cleanup"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/txretry"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
)

type Usecase struct {
	db          songentity.Store
	userUsecase userusecase.Usecase
	cleaner     cleanup.MusicCleaner
	clock       func() time.Time
}

func NewUsecase(db songentity.Store, userUsecase userusecase.Usecase, cleaner cleanup.MusicCleaner) Usecase {
	return Usecase{
		db:          db,
		userUsecase: userUsecase,
		cleaner:     cleaner,
		clock:       time.Now,
	}
}

// ParseSongID reads a song ID out of a path. IDs that can't be a song's
// are reported the same as songs that don't exist.
func ParseSongID(rawID string) (int, *api.Error) {
	songID, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil || songID <= 0 {
		if err == nil {
			err = errors.Newf("Song ID %d is not positive", songID)
		}

		return 0, api.CommitError(errors.Wrapf(err, "Failed to parse song ID %q", rawID),
			songerrors.SongNotFoundCode,
			"The song could not be found")
	}

	return songID, nil
}

// StoreError translates a song store failure for the caller
func StoreError(err error) *api.Error {
	switch {
	case markers.Is(err, songstorage.SongNotFoundMark):
		return api.CommitError(err,
			songerrors.SongNotFoundCode,
			"The song could not be found")

	case markers.Is(err, songstorage.ConcurrentUpdateMark):
		return api.CommitError(err,
			songerrors.ConcurrentUpdateCode,
			"The song was changed by someone else at the same time. Please try again")

	case markers.Is(err, songstorage.DefaultErrorMark):
		fallthrough
	default:
		return api.CommitError(err,
			api.DefaultErrorCode,
			"Failed to reach the song catalog")
	}
}

func (u Usecase) GetSong(ctx context.Context, rawID string) (songentity.Song, *api.Error) {
	songID, apiErr := ParseSongID(rawID)
	if apiErr != nil {
		return songentity.Song{}, apiErr
	}

	return u.FindSong(ctx, songID)
}

func (u Usecase) FindSong(ctx context.Context, songID int) (songentity.Song, *api.Error) {
	song, err := u.db.GetSong(ctx, songID)
	if err != nil {
		return songentity.Song{}, StoreError(err)
	}

	return song, nil
}

func (u Usecase) ListSongs(ctx context.Context) ([]songentity.Song, *api.Error) {
	songs, err := u.db.ListSongs(ctx)
	if err != nil {
		return nil, api.WrapError(StoreError(err), "Failed to list songs")
	}

	return songs, nil
}

// DeleteSong hard deletes a song for an admin. The song row goes away, a
// tombstone records its last version for syncing clients, and any change
// still waiting on the song is rejected, all in one transaction. Its music
// blobs are removed after the commit.
func (u Usecase) DeleteSong(ctx context.Context, authHeader string, rawID string) *api.Error {
	admin, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.AdminRole)
	if apiErr != nil {
		return apiErr
	}

	songID, apiErr := ParseSongID(rawID)
	if apiErr != nil {
		return apiErr
	}

	commit, err := txretry.Run("delete_song", func() (songentity.DeletionCommit, error) {
		return u.commitDeletion(ctx, songID, admin.ID)
	})
	if err != nil {
		return api.WrapError(StoreError(err), "Failed to delete song")
	}

	metrics.SupersededChanges.Add(float64(len(commit.Rejected)))
	log.WithFields(log.Fields{
		"song_id":          songID,
		"deleted_by":       admin.ID,
		"last_version":     commit.Tombstone.LastVersion,
		"rejected_changes": len(commit.Rejected),
	}).Info("Song deleted")

	u.cleaner.Remove(ctx, "delete_song", songID, musicFileNames(commit.Song))
	return nil
}

func (u Usecase) commitDeletion(ctx context.Context, songID int, deletedBy string) (songentity.DeletionCommit, error) {
	song, err := u.db.GetSong(ctx, songID)
	if err != nil {
		return songentity.DeletionCommit{}, err
	}

	pending, err := u.db.ListPendingChanges(ctx, songID)
	if err != nil {
		return songentity.DeletionCommit{}, err
	}

	now := u.clock()
	rejected := make([]songentity.Change, 0, len(pending))
	for _, change := range pending {
		if err := change.Decide(songentity.RejectedStatus, deletedBy, songentity.DeletedNote, now); err != nil {
			return songentity.DeletionCommit{}, err
		}

		rejected = append(rejected, change)
	}

	commit := songentity.DeletionCommit{
		Song:      song,
		Tombstone: songentity.NewDeletion(song, deletedBy, now),
		Rejected:  rejected,
	}

	if err := u.db.CommitDeletion(ctx, commit); err != nil {
		return songentity.DeletionCommit{}, err
	}

	return commit, nil
}

// every blob key the song still points at, including a legacy mirror that
// somehow drifted out of the track list
func musicFileNames(song songentity.Song) []string {
	fileNames := []string{}
	for _, track := range song.MusicFiles {
		fileNames = append(fileNames, track.FileName)
	}

	if song.MusicFileName != nil {
		if _, ok := song.FindTrack(*song.MusicFileName); !ok {
			fileNames = append(fileNames, *song.MusicFileName)
		}
	}

	return fileNames
}
