package songentity

import (
	"time"

	"github.com/cockroachdb/errors/domains"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

var TrackNotFoundMark = domains.New("track_not_found")

// Every client-visible mutation goes through republish, which bumps the
// version and moves lastPublishedAt strictly forward
func (s *Song) republish(now time.Time) {
	now = Timestamp(now)

	published := now
	if !published.After(s.LastPublishedAt) {
		published = s.LastPublishedAt.Add(time.Millisecond)
	}

	s.Version = BumpVersion(s.Version)
	s.LastPublishedAt = published
	s.UpdatedAt = now
}

func (s *Song) ApplyApproved(content Content, now time.Time) {
	s.Title = content.Title
	s.Category = content.Category
	s.Sections = content.Sections
	s.republish(now)
}

func (s *Song) AttachMusic(track MusicTrack, now time.Time) {
	track.UploadedAt = Timestamp(track.UploadedAt)

	tracks := make([]MusicTrack, 0, len(s.MusicFiles)+1)
	tracks = append(tracks, s.MusicFiles...)
	s.MusicFiles = append(tracks, track)

	s.HasMusic = true
	s.mirrorTrack(track)
	s.republish(now)
}

func (s *Song) DetachMusic(fileName string, now time.Time) error {
	remaining := []MusicTrack{}
	found := false
	for _, track := range s.MusicFiles {
		if track.FileName == fileName {
			found = true
			continue
		}

		remaining = append(remaining, track)
	}

	if !found {
		return mark.Message(TrackNotFoundMark, "Music file is not one of the song's tracks")
	}

	s.MusicFiles = remaining
	s.HasMusic = len(remaining) > 0

	// the mirror only moves when it pointed at the removed file
	if s.MusicFileName != nil && *s.MusicFileName == fileName {
		if len(remaining) > 0 {
			s.mirrorTrack(remaining[len(remaining)-1])
		} else {
			s.clearMirror()
		}
	}

	s.republish(now)
	return nil
}

func (s *Song) mirrorTrack(track MusicTrack) {
	fileName := track.FileName
	mimeType := track.MimeType
	uploadedAt := track.UploadedAt

	s.MusicFileName = &fileName
	s.MusicMimeType = &mimeType
	s.MusicUpdatedAt = &uploadedAt
}

func (s *Song) clearMirror() {
	s.MusicFileName = nil
	s.MusicMimeType = nil
	s.MusicUpdatedAt = nil
}

// DefaultTrack picks the track to play when none is named:
// the mirrored file first, then the first track
func (s Song) DefaultTrack() (MusicTrack, bool) {
	if s.MusicFileName != nil {
		if track, ok := s.FindTrack(*s.MusicFileName); ok {
			return track, true
		}

		mimeType := ""
		if s.MusicMimeType != nil {
			mimeType = *s.MusicMimeType
		}

		return MusicTrack{
			FileName: *s.MusicFileName,
			MimeType: mimeType,
		}, true
	}

	if len(s.MusicFiles) > 0 {
		return s.MusicFiles[0], true
	}

	return MusicTrack{}, false
}
