package blobstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

var (
	ObjectNotExistMark = domains.New("blob_not_exist")
	DefaultErrorMark   = domains.New("blob_default_error")
)

//counterfeiter:generate . FileStore
type FileStore interface {
	WriteFile(ctx context.Context, name string, contentType string, content io.Reader) error
	ReadFile(ctx context.Context, name string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, name string) error
}

var _ FileStore = GoogleFileStore{}

type GoogleFileStore struct {
	client *storage.Client
	bucket string
}

func NewGoogleFileStore(ctx context.Context, storageConfig config.CloudStorage) (GoogleFileStore, error) {
	client, err := storage.NewClient(ctx, storageConfig.ClientOptions()...)
	if err != nil {
		return GoogleFileStore{}, errors.Wrap(err, "Failed to create cloud storage client")
	}

	return NewGoogleFileStoreFromClient(client, storageConfig.GetBucket()), nil
}

func NewGoogleFileStoreFromClient(client *storage.Client, bucket string) GoogleFileStore {
	return GoogleFileStore{
		client: client,
		bucket: bucket,
	}
}

func (g GoogleFileStore) object(name string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(name)
}

func (g GoogleFileStore) WriteFile(ctx context.Context, name string, contentType string, content io.Reader) error {
	if name == "" {
		return mark.Message(DefaultErrorMark, "No name provided for the file")
	}

	writer := g.object(name).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		return mark.Wrap(err, DefaultErrorMark, "Failed to write file contents to cloud storage")
	}

	// the upload is only committed on close
	if err := writer.Close(); err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to commit file to cloud storage")
	}

	return nil
}

func (g GoogleFileStore) ReadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	reader, err := g.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, mark.Wrap(err, ObjectNotExistMark, "File doesn't exist in cloud storage")
		}

		return nil, mark.Wrap(err, DefaultErrorMark, "Failed to open file from cloud storage")
	}

	return reader, nil
}

func (g GoogleFileStore) DeleteFile(ctx context.Context, name string) error {
	err := g.object(name).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return mark.Wrap(err, ObjectNotExistMark, "File to delete doesn't exist in cloud storage")
		}

		return mark.Wrap(err, DefaultErrorMark, "Failed to delete file from cloud storage")
	}

	return nil
}
