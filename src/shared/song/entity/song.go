package songentity

import (
	"time"
)

const InitialVersion = "1.0"

type Section struct {
	Type  string   `json:"type" dynamo:"type"`
	Lines []string `json:"lines" dynamo:"lines"`
}

type MusicTrack struct {
	FileName     string    `json:"fileName" dynamo:"fileName"`
	OriginalName string    `json:"originalName" dynamo:"originalName"`
	MimeType     string    `json:"mimeType" dynamo:"mimeType"`
	UploadedAt   time.Time `json:"uploadedAt" dynamo:"uploadedAt"`
}

// Content is the part of a song an editor can propose changes to
type Content struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Sections []Section `json:"sections"`
}

type Song struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Sections []Section `json:"sections"`
	Version  string    `json:"version"`

	HasMusic   bool         `json:"hasMusic"`
	MusicFiles []MusicTrack `json:"musicFiles"`

	// mirrors of the last element of MusicFiles, for older readers
	MusicFileName  *string    `json:"musicFileName"`
	MusicMimeType  *string    `json:"musicMimeType"`
	MusicUpdatedAt *time.Time `json:"musicUpdatedAt"`

	LastPublishedAt time.Time `json:"lastPublishedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewSong builds a freshly seeded song at the initial version
func NewSong(id int, content Content, now time.Time) Song {
	now = Timestamp(now)

	return Song{
		ID:              id,
		Title:           content.Title,
		Category:        content.Category,
		Sections:        content.Sections,
		Version:         InitialVersion,
		HasMusic:        false,
		MusicFiles:      []MusicTrack{},
		LastPublishedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s Song) Content() Content {
	return Content{
		Title:    s.Title,
		Category: s.Category,
		Sections: s.Sections,
	}
}

func (s Song) Summary() Summary {
	return Summary{
		ID:       s.ID,
		Title:    s.Title,
		Category: s.Category,
		Version:  s.Version,
	}
}

func (s Song) FindTrack(fileName string) (MusicTrack, bool) {
	for _, track := range s.MusicFiles {
		if track.FileName == fileName {
			return track, true
		}
	}

	return MusicTrack{}, false
}

// Summary is the slice of a song embedded in change listings
type Summary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Version  string `json:"version"`
}

// Timestamp normalizes times to what the clients can represent,
// which is UTC at millisecond resolution
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
