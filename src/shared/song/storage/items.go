package songstorage

import (
	"time"

	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

const (
	idKey       = "id"
	songIDKey   = "songId"
	statusKey   = "status"
	versionKey  = "version"
	statusIndex = "status-index"
)

// the struct tags double as the table schema, see CreateTables

type dbSong struct {
	ID       int                  `dynamo:"id,hash"`
	Title    string               `dynamo:"title"`
	Category string               `dynamo:"category"`
	Sections []songentity.Section `dynamo:"sections"`
	Version  string               `dynamo:"version"`

	HasMusic       bool                    `dynamo:"hasMusic"`
	MusicFiles     []songentity.MusicTrack `dynamo:"musicFiles"`
	MusicFileName  *string                 `dynamo:"musicFileName"`
	MusicMimeType  *string                 `dynamo:"musicMimeType"`
	MusicUpdatedAt *time.Time              `dynamo:"musicUpdatedAt"`

	LastPublishedAt time.Time `dynamo:"lastPublishedAt"`
	CreatedAt       time.Time `dynamo:"createdAt"`
	UpdatedAt       time.Time `dynamo:"updatedAt"`
}

func fromSong(song songentity.Song) dbSong {
	return dbSong{
		ID:              song.ID,
		Title:           song.Title,
		Category:        song.Category,
		Sections:        song.Sections,
		Version:         song.Version,
		HasMusic:        song.HasMusic,
		MusicFiles:      song.MusicFiles,
		MusicFileName:   song.MusicFileName,
		MusicMimeType:   song.MusicMimeType,
		MusicUpdatedAt:  song.MusicUpdatedAt,
		LastPublishedAt: song.LastPublishedAt,
		CreatedAt:       song.CreatedAt,
		UpdatedAt:       song.UpdatedAt,
	}
}

func (d dbSong) toSong() songentity.Song {
	// empty lists don't survive a round trip through dynamo
	sections := d.Sections
	if sections == nil {
		sections = []songentity.Section{}
	}

	musicFiles := d.MusicFiles
	if musicFiles == nil {
		musicFiles = []songentity.MusicTrack{}
	}

	return songentity.Song{
		ID:              d.ID,
		Title:           d.Title,
		Category:        d.Category,
		Sections:        sections,
		Version:         d.Version,
		HasMusic:        d.HasMusic,
		MusicFiles:      musicFiles,
		MusicFileName:   d.MusicFileName,
		MusicMimeType:   d.MusicMimeType,
		MusicUpdatedAt:  d.MusicUpdatedAt,
		LastPublishedAt: d.LastPublishedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type dbChange struct {
	ID               string                  `dynamo:"id,hash"`
	SongID           int                     `dynamo:"songId"`
	BaseVersion      string                  `dynamo:"baseVersion"`
	ProposedTitle    string                  `dynamo:"proposedTitle"`
	ProposedCategory string                  `dynamo:"proposedCategory"`
	ProposedContent  songentity.Lyrics       `dynamo:"proposedContent"`
	ChangeNotes      *string                 `dynamo:"changeNotes"`
	Status           songentity.ChangeStatus `dynamo:"status" index:"status-index,hash"`
	RequestedBy      string                  `dynamo:"requestedBy"`
	ReviewedBy       *string                 `dynamo:"reviewedBy"`
	ReviewNotes      *string                 `dynamo:"reviewNotes"`
	ReviewedAt       *time.Time              `dynamo:"reviewedAt"`
	CreatedAt        time.Time               `dynamo:"createdAt" index:"status-index,range"`
	UpdatedAt        time.Time               `dynamo:"updatedAt"`
}

func fromChange(change songentity.Change) dbChange {
	return dbChange{
		ID:               change.ID,
		SongID:           change.SongID,
		BaseVersion:      change.BaseVersion,
		ProposedTitle:    change.ProposedTitle,
		ProposedCategory: change.ProposedCategory,
		ProposedContent:  change.ProposedContent,
		ChangeNotes:      change.ChangeNotes,
		Status:           change.Status,
		RequestedBy:      change.RequestedBy,
		ReviewedBy:       change.ReviewedBy,
		ReviewNotes:      change.ReviewNotes,
		ReviewedAt:       change.ReviewedAt,
		CreatedAt:        change.CreatedAt,
		UpdatedAt:        change.UpdatedAt,
	}
}

func (d dbChange) toChange() songentity.Change {
	content := d.ProposedContent
	if content.Sections == nil {
		content.Sections = []songentity.Section{}
	}

	return songentity.Change{
		ID:               d.ID,
		SongID:           d.SongID,
		BaseVersion:      d.BaseVersion,
		ProposedTitle:    d.ProposedTitle,
		ProposedCategory: d.ProposedCategory,
		ProposedContent:  content,
		ChangeNotes:      d.ChangeNotes,
		Status:           d.Status,
		RequestedBy:      d.RequestedBy,
		ReviewedBy:       d.ReviewedBy,
		ReviewNotes:      d.ReviewNotes,
		ReviewedAt:       d.ReviewedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type dbDeletion struct {
	SongID      int       `dynamo:"songId,hash"`
	DeletedBy   string    `dynamo:"deletedBy"`
	DeletedAt   time.Time `dynamo:"deletedAt"`
	LastVersion string    `dynamo:"lastVersion"`
}

func fromDeletion(deletion songentity.Deletion) dbDeletion {
	return dbDeletion{
		SongID:      deletion.SongID,
		DeletedBy:   deletion.DeletedBy,
		DeletedAt:   deletion.DeletedAt,
		LastVersion: deletion.LastVersion,
	}
}

func (d dbDeletion) toDeletion() songentity.Deletion {
	return songentity.Deletion{
		SongID:      d.SongID,
		DeletedBy:   d.DeletedBy,
		DeletedAt:   d.DeletedAt,
		LastVersion: d.LastVersion,
	}
}
