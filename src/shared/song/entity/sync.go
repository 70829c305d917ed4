package songentity

import (
	"sort"
	"time"
)

// SyncSong is the shape mobile clients cache
type SyncSong struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Category       string     `json:"category"`
	Sections       []Section  `json:"sections"`
	Version        string     `json:"version"`
	HasMusic       bool       `json:"hasMusic"`
	MusicUpdatedAt *time.Time `json:"musicUpdatedAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (s Song) ForSync() SyncSong {
	sections := s.Sections
	if sections == nil {
		sections = []Section{}
	}

	return SyncSong{
		ID:             s.ID,
		Title:          s.Title,
		Category:       s.Category,
		Sections:       sections,
		Version:        s.Version,
		HasMusic:       s.HasMusic && s.MusicFileName != nil && *s.MusicFileName != "",
		MusicUpdatedAt: s.MusicUpdatedAt,
		UpdatedAt:      s.LastPublishedAt,
	}
}

// PublishedAfter keeps songs published strictly after since, ordered by ID
func PublishedAfter(songs []Song, since *time.Time) []Song {
	filtered := []Song{}
	for _, song := range songs {
		if since == nil || song.LastPublishedAt.After(*since) {
			filtered = append(filtered, song)
		}
	}

	SortSongs(filtered)
	return filtered
}

// DeletedAfter keeps tombstones written strictly after since, oldest first
func DeletedAfter(deletions []Deletion, since *time.Time) []Deletion {
	filtered := []Deletion{}
	for _, deletion := range deletions {
		if since == nil || deletion.DeletedAt.After(*since) {
			filtered = append(filtered, deletion)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].DeletedAt.Equal(filtered[j].DeletedAt) {
			return filtered[i].SongID < filtered[j].SongID
		}

		return filtered[i].DeletedAt.Before(filtered[j].DeletedAt)
	})
	return filtered
}

// Categories is the full distinct list, sorted, without blanks
func Categories(songs []Song) []string {
	seen := map[string]bool{}
	categories := []string{}

	for _, song := range songs {
		if song.Category == "" || seen[song.Category] {
			continue
		}

		seen[song.Category] = true
		categories = append(categories, song.Category)
	}

	sort.Strings(categories)
	return categories
}

func SortSongs(songs []Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].ID < songs[j].ID
	})
}

// SortByRecency orders songs newest publication first
func SortByRecency(songs []Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].LastPublishedAt.After(songs[j].LastPublishedAt)
	})
}

// SortChanges orders by status, then oldest submission first
func SortChanges(changes []Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Status != changes[j].Status {
			return changes[i].Status < changes[j].Status
		}

		if !changes[i].CreatedAt.Equal(changes[j].CreatedAt) {
			return changes[i].CreatedAt.Before(changes[j].CreatedAt)
		}

		return changes[i].ID < changes[j].ID
	})
}
