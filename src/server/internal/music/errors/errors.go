package musicerrors

import (
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
)

const (
	MusicFileRequiredCode = api.ErrorCode("music_file_required")
	MusicFileTooLargeCode = api.ErrorCode("music_file_too_large")
	MusicFileNotAudioCode = api.ErrorCode("music_file_not_audio")
	BadMusicDataCode      = api.ErrorCode("bad_music_data")

	// the named file isn't one of the song's tracks
	MusicFileNotFoundCode = api.ErrorCode("music_file_not_found")

	// the song has no music at all, or the blob behind a track is gone
	MusicNotFoundCode = api.ErrorCode("music_not_found")
)
