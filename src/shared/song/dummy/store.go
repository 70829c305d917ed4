package dummy

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
)

var _ songentity.Store = &SongStore{}

var NetworkFailure = mark.Message(songstorage.DefaultErrorMark, "Dummy store is unavailable")

func NewDummySongStore() *SongStore {
	return &SongStore{
		Unavailable: false,
		Songs:       make(map[int]songentity.Song),
		Changes:     make(map[string]songentity.Change),
		Deletions:   make(map[int]songentity.Deletion),
	}
}

// SongStore keeps everything in memory and checks the same conditions the
// DynamoDB transactions do, all under one lock
type SongStore struct {
	Unavailable bool
	// BeforeCommit runs before a review or deletion commit is checked,
	// to let tests interleave a competing writer
	BeforeCommit func()

	Songs     map[int]songentity.Song
	Changes   map[string]songentity.Change
	Deletions map[int]songentity.Deletion
	mutex     sync.RWMutex
}

func (s *SongStore) GetSong(ctx context.Context, songID int) (songentity.Song, error) {
	if s.Unavailable {
		return songentity.Song{}, NetworkFailure
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	song, ok := s.Songs[songID]
	if !ok {
		return songentity.Song{}, mark.Message(songstorage.SongNotFoundMark, "Song not found")
	}

	return song, nil
}

func (s *SongStore) ListSongs(ctx context.Context) ([]songentity.Song, error) {
	if s.Unavailable {
		return nil, NetworkFailure
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	songs := []songentity.Song{}
	for _, song := range s.Songs {
		songs = append(songs, song)
	}

	songentity.SortSongs(songs)
	return songs, nil
}

func (s *SongStore) CreateSong(ctx context.Context, song songentity.Song) error {
	if s.Unavailable {
		return NetworkFailure
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.Songs[song.ID]; ok {
		return mark.Message(songstorage.SongAlreadyExistsMark, "Song already exists")
	}

	s.Songs[song.ID] = song
	delete(s.Deletions, song.ID)
	return nil
}

func (s *SongStore) UpdateSong(ctx context.Context, song songentity.Song, priorVersion string) error {
	if s.Unavailable {
		return NetworkFailure
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, ok := s.Songs[song.ID]
	if !ok || stored.Version != priorVersion {
		return mark.Message(songstorage.ConcurrentUpdateMark, "Song was deleted or changed")
	}

	s.Songs[song.ID] = song
	return nil
}

func (s *SongStore) GetChange(ctx context.Context, changeID string) (songentity.Change, error) {
	if s.Unavailable {
		return songentity.Change{}, NetworkFailure
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	change, ok := s.Changes[changeID]
	if !ok {
		return songentity.Change{}, mark.Message(songstorage.ChangeNotFoundMark, "Change not found")
	}

	return change, nil
}

func (s *SongStore) ListChanges(ctx context.Context, status songentity.ChangeStatus) ([]songentity.Change, error) {
	return s.filterChanges(func(change songentity.Change) bool {
		return status == "" || change.Status == status
	})
}

func (s *SongStore) ListPendingChanges(ctx context.Context, songID int) ([]songentity.Change, error) {
	return s.filterChanges(func(change songentity.Change) bool {
		return change.SongID == songID && change.IsPending()
	})
}

func (s *SongStore) filterChanges(keep func(change songentity.Change) bool) ([]songentity.Change, error) {
	if s.Unavailable {
		return nil, NetworkFailure
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	changes := []songentity.Change{}
	for _, change := range s.Changes {
		if keep(change) {
			changes = append(changes, change)
		}
	}

	songentity.SortChanges(changes)
	return changes, nil
}

func (s *SongStore) CreateChange(ctx context.Context, change songentity.Change) error {
	if s.Unavailable {
		return NetworkFailure
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.Changes[change.ID]; ok {
		return mark.Message(songstorage.DefaultErrorMark, "Change already exists")
	}

	s.Changes[change.ID] = change
	return nil
}

func (s *SongStore) ListDeletions(ctx context.Context) ([]songentity.Deletion, error) {
	if s.Unavailable {
		return nil, NetworkFailure
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	deletions := []songentity.Deletion{}
	for _, deletion := range s.Deletions {
		deletions = append(deletions, deletion)
	}

	return deletions, nil
}

func (s *SongStore) CommitReview(ctx context.Context, commit songentity.ReviewCommit) error {
	if s.Unavailable {
		return NetworkFailure
	}

	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isPending(commit.Change.ID) {
		return mark.Message(songentity.AlreadyReviewedMark, "Change was reviewed concurrently")
	}

	if commit.Approved() {
		stored, ok := s.Songs[commit.Song.ID]
		if !ok || stored.Version != commit.PriorSongVersion {
			return mark.Message(songstorage.ConcurrentUpdateMark, "Song was deleted or changed")
		}

		for _, superseded := range commit.Superseded {
			if !s.isPending(superseded.ID) {
				return mark.Message(songstorage.ConcurrentUpdateMark, "Sibling change was reviewed")
			}
		}

		s.Songs[commit.Song.ID] = *commit.Song
		for _, superseded := range commit.Superseded {
			s.Changes[superseded.ID] = superseded
		}
		delete(s.Deletions, commit.Song.ID)
	}

	s.Changes[commit.Change.ID] = commit.Change
	return nil
}

func (s *SongStore) CommitDeletion(ctx context.Context, commit songentity.DeletionCommit) error {
	if s.Unavailable {
		return NetworkFailure
	}

	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, ok := s.Songs[commit.Song.ID]
	if !ok || stored.Version != commit.Song.Version {
		return mark.Message(songstorage.ConcurrentUpdateMark, "Song was deleted or changed")
	}

	for _, rejected := range commit.Rejected {
		if !s.isPending(rejected.ID) {
			return mark.Message(songstorage.ConcurrentUpdateMark, "Pending change was reviewed")
		}
	}

	delete(s.Songs, commit.Song.ID)
	s.Deletions[commit.Song.ID] = commit.Tombstone
	for _, rejected := range commit.Rejected {
		s.Changes[rejected.ID] = rejected
	}

	return nil
}

func (s *SongStore) isPending(changeID string) bool {
	change, ok := s.Changes[changeID]
	return ok && change.IsPending()
}

// Seed puts songs in place without going through any checks
func (s *SongStore) Seed(songs ...songentity.Song) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, song := range songs {
		s.Songs[song.ID] = song
	}
}

func (s *SongStore) MustGetChange(changeID string) songentity.Change {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	change, ok := s.Changes[changeID]
	if !ok {
		panic(errors.Newf("change %s is not in the dummy store", changeID))
	}

	return change
}
