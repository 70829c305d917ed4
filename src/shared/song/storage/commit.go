package songstorage

import (
	"context"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

const pendingCondition = "$ = ?"

// CommitReview writes a decision as one transaction. Item 0 is always the
// decided change, so a failure there means someone else decided it first.
// Superseded changes that don't fit in the transaction are rejected right
// after it commits.
func (d DB) CommitReview(ctx context.Context, commit songentity.ReviewCommit) error {
	changesTable := d.dynamoDB.Table(ChangesTable)

	tx := d.dynamoDB.Tx()
	tx.Put(changesTable.
		Put(fromChange(commit.Change)).
		If(pendingCondition, statusKey, songentity.PendingStatus))

	overflow := []songentity.Change{}
	if commit.Approved() {
		tx.Put(d.dynamoDB.Table(SongsTable).
			Put(fromSong(*commit.Song)).
			If("attribute_exists($) AND $ = ?", idKey, versionKey, commit.PriorSongVersion))
		tx.Delete(d.dynamoDB.Table(DeletionsTable).Delete(songIDKey, commit.Song.ID))

		overflow = d.addPendingPuts(tx, commit.Superseded)
	}

	err := tx.RunWithContext(ctx)
	if err != nil {
		return classifyTxError(err, songentity.AlreadyReviewedMark, "Change was reviewed concurrently")
	}

	d.decideOverflow(ctx, overflow)
	return nil
}

// CommitDeletion removes the song, upserts its tombstone and rejects its
// pending changes in one transaction. Item 0 is the song delete. Rejected
// changes that don't fit are written right after it commits.
func (d DB) CommitDeletion(ctx context.Context, commit songentity.DeletionCommit) error {
	tx := d.dynamoDB.Tx()
	tx.Delete(d.dynamoDB.Table(SongsTable).
		Delete(idKey, commit.Song.ID).
		If("attribute_exists($) AND $ = ?", idKey, versionKey, commit.Song.Version))
	tx.Put(d.dynamoDB.Table(DeletionsTable).Put(fromDeletion(commit.Tombstone)))

	overflow := d.addPendingPuts(tx, commit.Rejected)

	err := tx.RunWithContext(ctx)
	if err != nil {
		return classifyTxError(err, ConcurrentUpdateMark, "Song was changed or deleted concurrently")
	}

	d.decideOverflow(ctx, overflow)
	return nil
}

// addPendingPuts adds conditional writes for as many decided changes as the
// transaction has room for, and returns the rest
func (d DB) addPendingPuts(tx *dynamolib.TxWrapper, changes []songentity.Change) []songentity.Change {
	changesTable := d.dynamoDB.Table(ChangesTable)

	for i, change := range changes {
		if tx.Len() >= dynamolib.MaxTransactionItems {
			return changes[i:]
		}

		tx.Put(changesTable.
			Put(fromChange(change)).
			If(pendingCondition, statusKey, songentity.PendingStatus))
	}

	return nil
}

// decideOverflow writes each decision on its own. A change someone else
// decided in the meantime keeps that decision.
func (d DB) decideOverflow(ctx context.Context, changes []songentity.Change) {
	changesTable := d.dynamoDB.Table(ChangesTable)

	for _, change := range changes {
		err := changesTable.
			Put(fromChange(change)).
			If(pendingCondition, statusKey, songentity.PendingStatus).
			RunWithContext(ctx)

		if err != nil && !dynamolib.ConditionalCheckFailed(err) {
			log.WithError(err).
				WithFields(log.Fields{
					"change_id": change.ID,
					"song_id":   change.SongID,
				}).
				Error("Failed to write a decision that didn't fit in the transaction")
		}
	}
}

func classifyTxError(err error, firstItemMark error, firstItemMsg string) error {
	reasons, cancelled := dynamolib.CancellationReasons(err)
	if !cancelled {
		return mark.Wrap(err, DefaultErrorMark, "Failed to run transaction")
	}

	if dynamolib.ItemFailed(reasons, 0) {
		return mark.Wrap(err, firstItemMark, firstItemMsg)
	}

	// any other condition or a conflicting transaction means the inputs
	// went stale, so the caller can re-read and try again
	err = errors.Wrapf(err, "Transaction cancelled with reasons %v", reasons)
	return mark.Wrap(err, ConcurrentUpdateMark, "Transaction lost a race with another writer")
}
