package changeerrors

import (
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
)

const (
	ChangeNotFoundCode        = api.ErrorCode("change_not_found")
	InvalidReviewActionCode   = api.ErrorCode("invalid_review_action")
	ChangeAlreadyReviewedCode = api.ErrorCode("change_already_reviewed")

	// the proposal points at a song that was deleted after it was submitted
	ChangeSongMissingCode = api.ErrorCode("change_song_missing")
)
