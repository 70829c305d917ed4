package songentity

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
)

var InvalidContentMark = domains.New("invalid_song_content")

// NormalizeContent trims the title, category and section types, drops blank
// lines, and drops sections left without a type or without lines.
// Content without a title, a category, or any surviving section is rejected.
func NormalizeContent(content Content) (Content, error) {
	normalized := Content{
		Title:    strings.TrimSpace(content.Title),
		Category: strings.TrimSpace(content.Category),
		Sections: normalizeSections(content.Sections),
	}

	switch {
	case normalized.Title == "":
		return Content{}, errors.Mark(errors.New("Title is empty"), InvalidContentMark)
	case normalized.Category == "":
		return Content{}, errors.Mark(errors.New("Category is empty"), InvalidContentMark)
	case len(normalized.Sections) == 0:
		return Content{}, errors.Mark(errors.New("No section has any lyric lines"), InvalidContentMark)
	}

	return normalized, nil
}

func normalizeSections(sections []Section) []Section {
	normalized := []Section{}

	for _, section := range sections {
		sectionType := strings.TrimSpace(section.Type)
		if sectionType == "" {
			continue
		}

		lines := []string{}
		for _, line := range section.Lines {
			// lines keep their own whitespace, only blank ones go
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}

		if len(lines) == 0 {
			continue
		}

		normalized = append(normalized, Section{
			Type:  sectionType,
			Lines: lines,
		})
	}

	return normalized
}
