package dummy

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/errors/mark"
)

var _ blobstore.FileStore = &FileStore{}

type File struct {
	ContentType string
	Content     []byte
}

func NewDummyFileStore() *FileStore {
	return &FileStore{
		Unavailable: false,
		Files:       make(map[string]File),
	}
}

type FileStore struct {
	Unavailable bool
	// DeleteUnavailable fails deletes only, so cleanup paths can be exercised
	DeleteUnavailable bool
	// AfterWrite runs once a write lands, to let tests race the caller
	AfterWrite func()
	Files      map[string]File
	mutex      sync.RWMutex
}

func (f *FileStore) WriteFile(ctx context.Context, name string, contentType string, content io.Reader) error {
	if f.Unavailable {
		return mark.Message(blobstore.DefaultErrorMark, "Dummy file store is unavailable")
	}

	contentBytes, err := io.ReadAll(content)
	if err != nil {
		return mark.Wrap(err, blobstore.DefaultErrorMark, "Failed to read content")
	}

	f.mutex.Lock()
	f.Files[name] = File{
		ContentType: contentType,
		Content:     contentBytes,
	}
	f.mutex.Unlock()

	if f.AfterWrite != nil {
		f.AfterWrite()
	}

	return nil
}

func (f *FileStore) ReadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	if f.Unavailable {
		return nil, mark.Message(blobstore.DefaultErrorMark, "Dummy file store is unavailable")
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	file, ok := f.Files[name]
	if !ok {
		return nil, mark.Message(blobstore.ObjectNotExistMark, "File not found")
	}

	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (f *FileStore) DeleteFile(ctx context.Context, name string) error {
	if f.Unavailable || f.DeleteUnavailable {
		return mark.Message(blobstore.DefaultErrorMark, "Dummy file store is unavailable")
	}

	if err := ctx.Err(); err != nil {
		return mark.Wrap(err, blobstore.DefaultErrorMark, "Delete was cancelled")
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if _, ok := f.Files[name]; !ok {
		return mark.Message(blobstore.ObjectNotExistMark, "File not found")
	}

	delete(f.Files, name)
	return nil
}

func (f *FileStore) Has(name string) bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	_, ok := f.Files[name]
	return ok
}
