package songentity

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/google/uuid"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

type ChangeStatus string

const (
	PendingStatus  ChangeStatus = "pending"
	ApprovedStatus ChangeStatus = "approved"
	RejectedStatus ChangeStatus = "rejected"
)

func ParseChangeStatus(status string) (ChangeStatus, bool) {
	switch ChangeStatus(strings.ToLower(strings.TrimSpace(status))) {
	case PendingStatus:
		return PendingStatus, true
	case ApprovedStatus:
		return ApprovedStatus, true
	case RejectedStatus:
		return RejectedStatus, true
	default:
		return "", false
	}
}

type ReviewAction string

const (
	ApproveAction ReviewAction = "approve"
	RejectAction  ReviewAction = "reject"
)

var InvalidActionMark = domains.New("invalid_review_action")

func ParseReviewAction(action string) (ReviewAction, error) {
	switch ReviewAction(strings.ToLower(strings.TrimSpace(action))) {
	case ApproveAction:
		return ApproveAction, nil
	case RejectAction:
		return RejectAction, nil
	default:
		return "", mark.Message(InvalidActionMark, "Review action must be approve or reject")
	}
}

const (
	SupersededNote = "Superseded by a newer approved change."
	DeletedNote    = "Song deleted by admin before review."
)

// Lyrics wraps proposed sections the way clients already read them
type Lyrics struct {
	Sections []Section `json:"sections" dynamo:"sections"`
}

var AlreadyReviewedMark = domains.New("change_already_reviewed")

// Change is a proposed edit of a song, waiting on or decided by an admin.
// BaseVersion is the song's version at submission and is informational only.
type Change struct {
	ID               string       `json:"id"`
	SongID           int          `json:"songId"`
	BaseVersion      string       `json:"baseVersion"`
	ProposedTitle    string       `json:"proposedTitle"`
	ProposedCategory string       `json:"proposedCategory"`
	ProposedContent  Lyrics       `json:"proposedContent"`
	ChangeNotes      *string      `json:"changeNotes"`
	Status           ChangeStatus `json:"status"`
	RequestedBy      string       `json:"requestedBy"`
	ReviewedBy       *string      `json:"reviewedBy"`
	ReviewNotes      *string      `json:"reviewNotes"`
	ReviewedAt       *time.Time   `json:"reviewedAt"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// NewChange expects content that already went through NormalizeContent
func NewChange(song Song, requestedBy string, content Content, changeNotes string, now time.Time) Change {
	now = Timestamp(now)

	return Change{
		ID:               uuid.New().String(),
		SongID:           song.ID,
		BaseVersion:      song.Version,
		ProposedTitle:    content.Title,
		ProposedCategory: content.Category,
		ProposedContent:  Lyrics{Sections: content.Sections},
		ChangeNotes:      optionalText(changeNotes),
		Status:           PendingStatus,
		RequestedBy:      requestedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (c Change) Proposal() Content {
	return Content{
		Title:    c.ProposedTitle,
		Category: c.ProposedCategory,
		Sections: c.ProposedContent.Sections,
	}
}

func (c Change) IsPending() bool {
	return c.Status == PendingStatus
}

// Decide moves a pending change to its terminal status. A decided change
// can never be decided again.
func (c *Change) Decide(status ChangeStatus, reviewedBy string, reviewNotes string, now time.Time) error {
	if !c.IsPending() {
		err := errors.Newf("Change %s is already %s", c.ID, c.Status)
		return errors.Mark(err, AlreadyReviewedMark)
	}

	if status == PendingStatus {
		return errors.New("A change can't be decided back into pending")
	}

	now = Timestamp(now)

	c.Status = status
	c.ReviewedBy = &reviewedBy
	c.ReviewNotes = optionalText(reviewNotes)
	c.ReviewedAt = &now
	c.UpdatedAt = now
	return nil
}

func optionalText(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return &text
}
