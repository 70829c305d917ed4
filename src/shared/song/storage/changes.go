package songstorage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

func (d DB) GetChange(ctx context.Context, changeID string) (songentity.Change, error) {
	if changeID == "" {
		return songentity.Change{}, mark.Message(ChangeNotFoundMark, "No ID provided to fetch change")
	}

	value := dbChange{}
	err := d.dynamoDB.Table(ChangesTable).
		Get(idKey, changeID).
		Consistent(true).
		OneWithContext(ctx, &value)

	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return songentity.Change{}, mark.Wrap(err, ChangeNotFoundMark, "Change for this ID couldn't be found")
		}

		return songentity.Change{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch change")
	}

	return value.toChange(), nil
}

func (d DB) ListChanges(ctx context.Context, status songentity.ChangeStatus) ([]songentity.Change, error) {
	values := []dbChange{}
	table := d.dynamoDB.Table(ChangesTable)

	var err error
	if status == "" {
		err = table.Scan().AllWithContext(ctx, &values)
	} else {
		err = table.Get(statusKey, status).
			Index(statusIndex).
			AllWithContext(ctx, &values)
	}

	if err != nil {
		return nil, mark.Wrap(err, DefaultErrorMark, "Failed to list changes")
	}

	return toChanges(values), nil
}

// ListPendingChanges reads consistently, since its result decides which
// changes an approval or a deletion rejects
func (d DB) ListPendingChanges(ctx context.Context, songID int) ([]songentity.Change, error) {
	values := []dbChange{}
	err := d.dynamoDB.Table(ChangesTable).
		Scan().
		Filter("$ = ? AND $ = ?", songIDKey, songID, statusKey, songentity.PendingStatus).
		Consistent(true).
		AllWithContext(ctx, &values)

	if err != nil {
		return nil, mark.Wrap(err, DefaultErrorMark, "Failed to list pending changes for song")
	}

	return toChanges(values), nil
}

func (d DB) CreateChange(ctx context.Context, change songentity.Change) error {
	if change.ID == "" {
		return mark.Message(DefaultErrorMark, "No ID provided to create change")
	}

	err := d.dynamoDB.Table(ChangesTable).
		Put(fromChange(change)).
		If("attribute_not_exists($)", idKey).
		RunWithContext(ctx)

	if err != nil {
		if dynamolib.ConditionalCheckFailed(err) {
			return mark.Wrap(err, DefaultErrorMark, "Cannot create: a change with this ID already exists")
		}

		return mark.Wrap(err, DefaultErrorMark, "Failed to put change into DB")
	}

	return nil
}

func toChanges(values []dbChange) []songentity.Change {
	changes := make([]songentity.Change, 0, len(values))
	for _, value := range values {
		changes = append(changes, value.toChange())
	}

	songentity.SortChanges(changes)
	return changes
}
