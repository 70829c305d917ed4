package changeusecase

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/cockroachdb/errors/markers"
	"github.com/hymnbook/hymnbook-be/src/server/internal/change/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/txretry"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
	"github.com/sourcegraph/conc/pool"
)

const (
	SubmittedMessage = "Song edit submitted for admin review."
	ApprovedMessage  = "Song change approved and published."
	RejectedMessage  = "Song change rejected."
)

// Proposal is what an editor sends to propose new content for a song
type Proposal struct {
	Title       string               `json:"title"`
	Category    string               `json:"category"`
	Sections    []songentity.Section `json:"sections"`
	ChangeNotes string               `json:"changeNotes"`
}

func (p Proposal) content() songentity.Content {
	return songentity.Content{
		Title:    p.Title,
		Category: p.Category,
		Sections: p.Sections,
	}
}

type Review struct {
	Action      string `json:"action"`
	ReviewNotes string `json:"reviewNotes"`
}

type Submission struct {
	Message string            `json:"message"`
	Change  songentity.Change `json:"change"`
}

// Decision is the outcome of a review. Song is only set on approval.
type Decision struct {
	Message string            `json:"message"`
	Change  songentity.Change `json:"change"`
	Song    *songentity.Song  `json:"song"`
}

// Listing is a change as admins see it, next to the song it targets and
// the people involved. Song is nil once the song is deleted.
type Listing struct {
	songentity.Change
	Song      *songentity.Summary  `json:"song"`
	Requester *userentity.Identity `json:"requestedByUser"`
	Reviewer  *userentity.Identity `json:"reviewedByUser"`
}

type Usecase struct {
	db          songentity.Store
	userUsecase userusecase.Usecase
	clock       func() time.Time
}

func NewUsecase(db songentity.Store, userUsecase userusecase.Usecase) Usecase {
	return Usecase{
		db:          db,
		userUsecase: userUsecase,
		clock:       time.Now,
	}
}

func (u Usecase) SubmitChange(ctx context.Context, authHeader string, rawSongID string, proposal Proposal) (Submission, *api.Error) {
	editor, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.EditorRole)
	if apiErr != nil {
		return Submission{}, apiErr
	}

	songID, apiErr := songusecase.ParseSongID(rawSongID)
	if apiErr != nil {
		return Submission{}, apiErr
	}

	content, err := songentity.NormalizeContent(proposal.content())
	if err != nil {
		return Submission{}, api.CommitError(err,
			songerrors.BadSongDataCode,
			"title, category, and sections are required.")
	}

	song, err := u.db.GetSong(ctx, songID)
	if err != nil {
		return Submission{}, api.WrapError(songusecase.StoreError(err), "Failed to load the song to change")
	}

	change := songentity.NewChange(song, editor.ID, content, proposal.ChangeNotes, u.clock())
	if err = u.db.CreateChange(ctx, change); err != nil {
		return Submission{}, api.CommitError(errors.Wrap(err, "Failed to save change"),
			api.DefaultErrorCode,
			"Failed to save the proposed change")
	}

	return Submission{
		Message: SubmittedMessage,
		Change:  change,
	}, nil
}

// ListChanges shows changes by status, pending when none is asked for.
// Anything that isn't a known status lists every change.
func (u Usecase) ListChanges(ctx context.Context, authHeader string, rawStatus string) ([]Listing, *api.Error) {
	_, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.AdminRole)
	if apiErr != nil {
		return nil, apiErr
	}

	status := songentity.PendingStatus
	if rawStatus != "" {
		status, _ = songentity.ParseChangeStatus(rawStatus)
	}

	changes, err := u.db.ListChanges(ctx, status)
	if err != nil {
		return nil, api.WrapError(songusecase.StoreError(err), "Failed to list changes")
	}

	userIDs := []string{}
	for _, change := range changes {
		userIDs = append(userIDs, change.RequestedBy)
		if change.ReviewedBy != nil {
			userIDs = append(userIDs, *change.ReviewedBy)
		}
	}

	var (
		songs       map[int]songentity.Summary
		identities  map[string]userentity.Identity
		identityErr *api.Error
	)

	lookups := pool.New().WithErrors().WithContext(ctx)
	lookups.Go(func(ctx context.Context) error {
		allSongs, err := u.db.ListSongs(ctx)
		if err != nil {
			return err
		}

		songs = map[int]songentity.Summary{}
		for _, song := range allSongs {
			songs[song.ID] = song.Summary()
		}
		return nil
	})
	lookups.Go(func(ctx context.Context) error {
		found, apiErr := u.userUsecase.Identities(ctx, userIDs)
		if apiErr != nil {
			identityErr = apiErr
			return apiErr
		}

		identities = found
		return nil
	})

	if err = lookups.Wait(); err != nil {
		if identityErr != nil {
			return nil, api.WrapError(identityErr, "Failed to look up change reviewers")
		}

		return nil, api.WrapError(songusecase.StoreError(err), "Failed to look up changed songs")
	}

	listings := make([]Listing, 0, len(changes))
	for _, change := range changes {
		listing := Listing{Change: change}

		if summary, ok := songs[change.SongID]; ok {
			listing.Song = &summary
		}

		if requester, ok := identities[change.RequestedBy]; ok {
			listing.Requester = &requester
		}

		if change.ReviewedBy != nil {
			if reviewer, ok := identities[*change.ReviewedBy]; ok {
				listing.Reviewer = &reviewer
			}
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

// ReviewChange decides a pending change. Approving publishes the proposed
// content as the song's next version and rejects every other change still
// pending for the song, in one transaction. Only one reviewer can ever
// decide a change; the loser of a race sees it as already reviewed.
func (u Usecase) ReviewChange(ctx context.Context, authHeader string, changeID string, review Review) (Decision, *api.Error) {
	admin, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.AdminRole)
	if apiErr != nil {
		return Decision{}, apiErr
	}

	action, err := songentity.ParseReviewAction(review.Action)
	if err != nil {
		return Decision{}, api.CommitError(err,
			changeerrors.InvalidReviewActionCode,
			"action must be either 'approve' or 'reject'.")
	}

	commit, err := txretry.Run("review_change", func() (songentity.ReviewCommit, error) {
		return u.commitReview(ctx, changeID, action, admin.ID, review.ReviewNotes)
	})
	if err != nil {
		return Decision{}, reviewError(err)
	}

	metrics.ReviewDecisions.WithLabelValues(string(action)).Inc()
	metrics.SupersededChanges.Add(float64(len(commit.Superseded)))

	logFields := log.Fields{
		"change_id":   changeID,
		"song_id":     commit.Change.SongID,
		"action":      action,
		"reviewed_by": admin.ID,
	}

	if !commit.Approved() {
		log.WithFields(logFields).Info("Song change rejected")
		return Decision{
			Message: RejectedMessage,
			Change:  commit.Change,
			Song:    nil,
		}, nil
	}

	logFields["version"] = commit.Song.Version
	logFields["superseded"] = len(commit.Superseded)
	log.WithFields(logFields).Info("Song change approved")

	return Decision{
		Message: ApprovedMessage,
		Change:  commit.Change,
		Song:    commit.Song,
	}, nil
}

var songMissingMark = domains.New("song_missing_for_change")

func (u Usecase) commitReview(ctx context.Context, changeID string, action songentity.ReviewAction,
	reviewedBy string, reviewNotes string) (songentity.ReviewCommit, error) {
	change, err := u.db.GetChange(ctx, changeID)
	if err != nil {
		return songentity.ReviewCommit{}, err
	}

	now := u.clock()

	if action == songentity.RejectAction {
		if err = change.Decide(songentity.RejectedStatus, reviewedBy, reviewNotes, now); err != nil {
			return songentity.ReviewCommit{}, err
		}

		commit := songentity.ReviewCommit{Change: change}
		if err = u.db.CommitReview(ctx, commit); err != nil {
			return songentity.ReviewCommit{}, err
		}

		return commit, nil
	}

	if !change.IsPending() {
		return songentity.ReviewCommit{}, change.Decide(songentity.ApprovedStatus, reviewedBy, reviewNotes, now)
	}

	// the change stays pending when its song is gone, so an admin can
	// work out what happened
	song, err := u.db.GetSong(ctx, change.SongID)
	if err != nil {
		if markers.Is(err, songstorage.SongNotFoundMark) {
			return songentity.ReviewCommit{}, errors.Mark(err, songMissingMark)
		}

		return songentity.ReviewCommit{}, err
	}

	siblings, err := u.db.ListPendingChanges(ctx, change.SongID)
	if err != nil {
		return songentity.ReviewCommit{}, err
	}

	superseded := []songentity.Change{}
	for _, sibling := range siblings {
		if sibling.ID == change.ID {
			continue
		}

		if err = sibling.Decide(songentity.RejectedStatus, reviewedBy, songentity.SupersededNote, now); err != nil {
			return songentity.ReviewCommit{}, err
		}

		superseded = append(superseded, sibling)
	}

	priorVersion := song.Version
	song.ApplyApproved(change.Proposal(), now)

	if err = change.Decide(songentity.ApprovedStatus, reviewedBy, reviewNotes, now); err != nil {
		return songentity.ReviewCommit{}, err
	}

	commit := songentity.ReviewCommit{
		Change:           change,
		Song:             &song,
		PriorSongVersion: priorVersion,
		Superseded:       superseded,
	}

	if err = u.db.CommitReview(ctx, commit); err != nil {
		return songentity.ReviewCommit{}, err
	}

	return commit, nil
}

func reviewError(err error) *api.Error {
	switch {
	case markers.Is(err, songstorage.ChangeNotFoundMark):
		return api.CommitError(err,
			changeerrors.ChangeNotFoundCode,
			"Song change request not found.")

	case markers.Is(err, songentity.AlreadyReviewedMark):
		return api.CommitError(err,
			changeerrors.ChangeAlreadyReviewedCode,
			"Song change has already been reviewed.")

	case markers.Is(err, songMissingMark):
		return api.CommitError(err,
			changeerrors.ChangeSongMissingCode,
			"Song no longer exists.")

	default:
		return api.WrapError(songusecase.StoreError(err), "Failed to review change")
	}
}
