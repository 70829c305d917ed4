package songentity

import "time"

// Deletion is the tombstone left behind by a hard delete, keyed by song ID
type Deletion struct {
	SongID      int       `json:"songId"`
	DeletedBy   string    `json:"deletedBy"`
	DeletedAt   time.Time `json:"deletedAt"`
	LastVersion string    `json:"lastVersion"`
}

func NewDeletion(song Song, deletedBy string, now time.Time) Deletion {
	return Deletion{
		SongID:      song.ID,
		DeletedBy:   deletedBy,
		DeletedAt:   Timestamp(now),
		LastVersion: song.Version,
	}
}
