package musicusecase

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/dustin/go-humanize"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/cleanup"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/txretry"
	"github.com/hymnbook/hymnbook-be/src/server/internal/music/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/metrics"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

const (
	MaxFileSize      = 25 << 20
	DefaultExtension = ".mp3"

	UploadedMessage = "Music uploaded successfully."
	RemovedMessage  = "Music removed successfully."
)

type Result struct {
	Message string          `json:"message"`
	Song    songentity.Song `json:"song"`
}

// Track is an open music blob. Callers close Content.
type Track struct {
	FileName string
	MimeType string
	Content  io.ReadCloser
}

type Usecase struct {
	db          songentity.SongStore
	files       blobstore.FileStore
	userUsecase userusecase.Usecase
	cleaner     cleanup.MusicCleaner
	clock       func() time.Time
}

func NewUsecase(db songentity.SongStore, files blobstore.FileStore, userUsecase userusecase.Usecase, cleaner cleanup.MusicCleaner) Usecase {
	return Usecase{
		db:          db,
		files:       files,
		userUsecase: userUsecase,
		cleaner:     cleaner,
		clock:       time.Now,
	}
}

// FileName is the blob key for a track, unique per song and upload time
func FileName(songID int, originalName string, uploadedAt time.Time) string {
	extension := filepath.Ext(originalName)
	if extension == "" {
		extension = DefaultExtension
	}

	return fmt.Sprintf("%d-%d%s", songID, uploadedAt.UnixMilli(), extension)
}

func (u Usecase) Upload(ctx context.Context, authHeader string, rawSongID string, file *multipart.FileHeader) (Result, *api.Error) {
	_, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.EditorRole)
	if apiErr != nil {
		return Result{}, apiErr
	}

	songID, apiErr := songusecase.ParseSongID(rawSongID)
	if apiErr != nil {
		return Result{}, apiErr
	}

	if apiErr = validateUpload(file); apiErr != nil {
		return Result{}, apiErr
	}

	if _, err := u.db.GetSong(ctx, songID); err != nil {
		return Result{}, api.WrapError(songusecase.StoreError(err), "Failed to load song for upload")
	}

	now := songentity.Timestamp(u.clock())
	mimeType := file.Header.Get("Content-Type")
	track := songentity.MusicTrack{
		FileName:     FileName(songID, file.Filename, now),
		OriginalName: file.Filename,
		MimeType:     mimeType,
		UploadedAt:   now,
	}

	if apiErr = u.storeBlob(ctx, file, track); apiErr != nil {
		return Result{}, apiErr
	}

	song, err := txretry.Run("upload_music", func() (songentity.Song, error) {
		return u.updateSong(ctx, songID, func(song *songentity.Song) error {
			song.AttachMusic(track, u.clock())
			return nil
		})
	})
	if err != nil {
		u.cleaner.Remove(ctx, "upload_orphan", songID, []string{track.FileName})
		return Result{}, api.WrapError(songusecase.StoreError(err), "Failed to attach music to song")
	}

	metrics.MusicMutations.WithLabelValues("upload").Inc()
	log.WithFields(log.Fields{
		"song_id":   songID,
		"file_name": track.FileName,
		"size":      humanize.IBytes(uint64(file.Size)),
		"version":   song.Version,
	}).Info("Music uploaded")

	return Result{
		Message: UploadedMessage,
		Song:    song,
	}, nil
}

func validateUpload(file *multipart.FileHeader) *api.Error {
	if file == nil {
		return api.CommitError(errors.New("No music file on request"),
			musicerrors.MusicFileRequiredCode,
			"Music file is required. Use form field `music`.")
	}

	if file.Size > MaxFileSize {
		err := errors.Newf("Music file is %d bytes", file.Size)
		return api.CommitError(err,
			musicerrors.MusicFileTooLargeCode,
			fmt.Sprintf("Music files can be at most %s.", humanize.IBytes(MaxFileSize)))
	}

	mimeType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "audio/") {
		err := errors.Newf("Music file has content type %q", mimeType)
		return api.CommitError(err,
			musicerrors.MusicFileNotAudioCode,
			"Only audio files are allowed.")
	}

	return nil
}

func (u Usecase) storeBlob(ctx context.Context, file *multipart.FileHeader, track songentity.MusicTrack) *api.Error {
	content, err := file.Open()
	if err != nil {
		return api.CommitError(errors.Wrap(err, "Failed to open uploaded file"),
			musicerrors.BadMusicDataCode,
			"The music file couldn't be read")
	}
	defer content.Close()

	if err = u.files.WriteFile(ctx, track.FileName, track.MimeType, content); err != nil {
		return api.CommitError(errors.Wrap(err, "Failed to store music blob"),
			api.DefaultErrorCode,
			"Failed to store the music file")
	}

	return nil
}

func (u Usecase) Remove(ctx context.Context, authHeader string, rawSongID string, fileName string) (Result, *api.Error) {
	_, apiErr := u.userUsecase.Authorize(ctx, authHeader, userentity.EditorRole)
	if apiErr != nil {
		return Result{}, apiErr
	}

	songID, apiErr := songusecase.ParseSongID(rawSongID)
	if apiErr != nil {
		return Result{}, apiErr
	}

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Result{}, api.CommitError(errors.New("No file name to remove"),
			musicerrors.BadMusicDataCode,
			"File name is required to remove music.")
	}

	song, err := txretry.Run("remove_music", func() (songentity.Song, error) {
		return u.updateSong(ctx, songID, func(song *songentity.Song) error {
			return song.DetachMusic(fileName, u.clock())
		})
	})
	if err != nil {
		if markers.Is(err, songentity.TrackNotFoundMark) {
			return Result{}, api.CommitError(err,
				musicerrors.MusicFileNotFoundCode,
				"Music file not found in song records.")
		}

		return Result{}, api.WrapError(songusecase.StoreError(err), "Failed to remove music from song")
	}

	metrics.MusicMutations.WithLabelValues("remove").Inc()
	u.cleaner.Remove(ctx, "remove_music", songID, []string{fileName})

	return Result{
		Message: RemovedMessage,
		Song:    song,
	}, nil
}

// updateSong applies mutate to a fresh read of the song, and only writes it
// back if nobody else moved the song's version in between
func (u Usecase) updateSong(ctx context.Context, songID int, mutate func(song *songentity.Song) error) (songentity.Song, error) {
	song, err := u.db.GetSong(ctx, songID)
	if err != nil {
		return songentity.Song{}, err
	}

	priorVersion := song.Version
	if err = mutate(&song); err != nil {
		return songentity.Song{}, err
	}

	if err = u.db.UpdateSong(ctx, song, priorVersion); err != nil {
		return songentity.Song{}, err
	}

	return song, nil
}

// Download opens one of the song's tracks, or its default track when no
// file name is given
func (u Usecase) Download(ctx context.Context, rawSongID string, fileName string) (Track, *api.Error) {
	song, apiErr := u.findSong(ctx, rawSongID)
	if apiErr != nil {
		return Track{}, apiErr
	}

	track, ok := song.DefaultTrack()
	if fileName != "" {
		track, ok = song.FindTrack(fileName)
		if !ok {
			return Track{}, api.CommitError(errors.Newf("Song %d has no track %s", song.ID, fileName),
				musicerrors.MusicFileNotFoundCode,
				"Music file not found in song records.")
		}
	}

	if !ok {
		return Track{}, api.CommitError(errors.Newf("Song %d has no music", song.ID),
			musicerrors.MusicNotFoundCode,
			"Music not found for this song.")
	}

	content, err := u.files.ReadFile(ctx, track.FileName)
	if err != nil {
		if markers.Is(err, blobstore.ObjectNotExistMark) {
			return Track{}, api.CommitError(err,
				musicerrors.MusicNotFoundCode,
				"Music file is missing on server.")
		}

		return Track{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Failed to read the music file")
	}

	return Track{
		FileName: track.FileName,
		MimeType: track.MimeType,
		Content:  content,
	}, nil
}

func (u Usecase) findSong(ctx context.Context, rawSongID string) (songentity.Song, *api.Error) {
	songID, apiErr := songusecase.ParseSongID(rawSongID)
	if apiErr != nil {
		return songentity.Song{}, apiErr
	}

	song, err := u.db.GetSong(ctx, songID)
	if err != nil {
		return songentity.Song{}, songusecase.StoreError(err)
	}

	return song, nil
}
