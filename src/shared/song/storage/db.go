package songstorage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

const (
	SongsTable     = "Songs"
	ChangesTable   = "SongChanges"
	DeletionsTable = "SongDeletions"
)

var _ songentity.Store = DB{}

type DB struct {
	dynamoDB dynamolib.DynamoDBWrapper
}

func NewDB(dynamoDB dynamolib.DynamoDBWrapper) DB {
	return DB{
		dynamoDB: dynamoDB,
	}
}

// CreateTables sets up every table this package reads and writes
func CreateTables(ctx context.Context, dynamoDB dynamolib.DynamoDBWrapper) error {
	tables := []struct {
		name   string
		schema any
	}{
		{SongsTable, dbSong{}},
		{ChangesTable, dbChange{}},
		{DeletionsTable, dbDeletion{}},
	}

	for _, table := range tables {
		err := dynamoDB.CreateTable(table.name, table.schema).
			OnDemand(true).
			RunWithContext(ctx)
		if err != nil {
			return errors.Wrapf(err, "Failed to create table %s", table.name)
		}
	}

	return nil
}

func (d DB) GetSong(ctx context.Context, songID int) (songentity.Song, error) {
	value := dbSong{}
	err := d.dynamoDB.Table(SongsTable).
		Get(idKey, songID).
		Consistent(true).
		OneWithContext(ctx, &value)

	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return songentity.Song{}, mark.Wrap(err, SongNotFoundMark, "Song for this ID couldn't be found")
		}

		return songentity.Song{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch song due to unknown data store error")
	}

	return value.toSong(), nil
}

func (d DB) ListSongs(ctx context.Context) ([]songentity.Song, error) {
	values := []dbSong{}
	err := d.dynamoDB.Table(SongsTable).
		Scan().
		Consistent(true).
		AllWithContext(ctx, &values)

	if err != nil {
		return nil, mark.Wrap(err, DefaultErrorMark, "Failed to scan songs")
	}

	songs := make([]songentity.Song, 0, len(values))
	for _, value := range values {
		songs = append(songs, value.toSong())
	}

	songentity.SortSongs(songs)
	return songs, nil
}

func (d DB) CreateSong(ctx context.Context, song songentity.Song) error {
	tx := d.dynamoDB.Tx()
	tx.Put(d.dynamoDB.Table(SongsTable).
		Put(fromSong(song)).
		If("attribute_not_exists($)", idKey))
	tx.Delete(d.dynamoDB.Table(DeletionsTable).Delete(songIDKey, song.ID))

	err := tx.RunWithContext(ctx)
	if err != nil {
		reasons, cancelled := dynamolib.CancellationReasons(err)
		if cancelled && dynamolib.ItemFailed(reasons, 0) {
			return mark.Wrap(err, SongAlreadyExistsMark, "Cannot create: a song with this ID already exists")
		}

		return mark.Wrap(err, DefaultErrorMark, "Failed to create song")
	}

	return nil
}

func (d DB) UpdateSong(ctx context.Context, song songentity.Song, priorVersion string) error {
	err := d.dynamoDB.Table(SongsTable).
		Put(fromSong(song)).
		If("attribute_exists($) AND $ = ?", idKey, versionKey, priorVersion).
		RunWithContext(ctx)

	if err != nil {
		if dynamolib.ConditionalCheckFailed(err) {
			return mark.Wrap(err, ConcurrentUpdateMark, "Song was deleted or changed since it was read")
		}

		return mark.Wrap(err, DefaultErrorMark, "Failed to put song into DB")
	}

	return nil
}

func (d DB) ListDeletions(ctx context.Context) ([]songentity.Deletion, error) {
	values := []dbDeletion{}
	err := d.dynamoDB.Table(DeletionsTable).
		Scan().
		Consistent(true).
		AllWithContext(ctx, &values)

	if err != nil {
		return nil, mark.Wrap(err, DefaultErrorMark, "Failed to scan song deletions")
	}

	deletions := make([]songentity.Deletion, 0, len(values))
	for _, value := range values {
		deletions = append(deletions, value.toDeletion())
	}

	return deletions, nil
}
