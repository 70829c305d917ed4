package songentity

import (
	"context"
)

type SongStore interface {
	GetSong(ctx context.Context, songID int) (Song, error)
	ListSongs(ctx context.Context) ([]Song, error)
	// CreateSong only succeeds for IDs that aren't taken, and clears any
	// tombstone left for the ID
	CreateSong(ctx context.Context, song Song) error
	// UpdateSong only succeeds if the stored song is still at priorVersion
	UpdateSong(ctx context.Context, song Song, priorVersion string) error
}

type ChangeStore interface {
	GetChange(ctx context.Context, changeID string) (Change, error)
	// ListChanges returns every change when status is empty
	ListChanges(ctx context.Context, status ChangeStatus) ([]Change, error)
	ListPendingChanges(ctx context.Context, songID int) ([]Change, error)
	CreateChange(ctx context.Context, change Change) error
}

type DeletionStore interface {
	ListDeletions(ctx context.Context) ([]Deletion, error)
}

type Store interface {
	SongStore
	ChangeStore
	DeletionStore

	CommitReview(ctx context.Context, commit ReviewCommit) error
	CommitDeletion(ctx context.Context, commit DeletionCommit) error
}

// ReviewCommit is written all or nothing. The decided change must still be
// pending in the store, the song must still be at PriorSongVersion, and every
// superseded change must still be pending.
type ReviewCommit struct {
	Change           Change
	Song             *Song
	PriorSongVersion string
	Superseded       []Change
}

func (r ReviewCommit) Approved() bool {
	return r.Song != nil
}

// DeletionCommit is written all or nothing. The song must still be at the
// version it was loaded with, and every rejected change must still be pending.
type DeletionCommit struct {
	Song      Song
	Tombstone Deletion
	Rejected  []Change
}
