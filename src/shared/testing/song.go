package testing

import (
	"time"

	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

// SeedTime is when every fixture song was published
var SeedTime = time.Date(2024, time.March, 3, 9, 30, 0, 0, time.UTC)

func Section(sectionType string, lines ...string) songentity.Section {
	return songentity.Section{
		Type:  sectionType,
		Lines: lines,
	}
}

func Content(title string, category string, sections ...songentity.Section) songentity.Content {
	return songentity.Content{
		Title:    title,
		Category: category,
		Sections: sections,
	}
}

// MakeSong builds a song at version 1.0 with a single verse
func MakeSong(id int, title string, category string) songentity.Song {
	content := Content(title, category, Section("verse", title+" line one", title+" line two"))
	return songentity.NewSong(id, content, SeedTime)
}

// ProposalBody is the JSON body an editor sends to propose new content
func ProposalBody(content songentity.Content, changeNotes string) map[string]any {
	sections := []map[string]any{}
	for _, section := range content.Sections {
		sections = append(sections, map[string]any{
			"type":  section.Type,
			"lines": section.Lines,
		})
	}

	body := map[string]any{
		"title":    content.Title,
		"category": content.Category,
		"sections": sections,
	}

	if changeNotes != "" {
		body["changeNotes"] = changeNotes
	}

	return body
}
