package songstorage

import "github.com/cockroachdb/errors/domains"

var (
	SongNotFoundMark      = domains.New("song_not_found")
	SongAlreadyExistsMark = domains.New("song_already_exists")
	ChangeNotFoundMark    = domains.New("change_not_found")
	ConcurrentUpdateMark  = domains.New("concurrent_update")
	DefaultErrorMark      = domains.New("default_error")
)
