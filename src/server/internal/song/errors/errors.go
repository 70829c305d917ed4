package songerrors

import (
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
)

const (
	SongNotFoundCode     = api.ErrorCode("song_not_found")
	BadSongDataCode      = api.ErrorCode("bad_song_data")
	ConcurrentUpdateCode = api.ErrorCode("concurrent_update")
)
