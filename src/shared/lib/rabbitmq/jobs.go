package rabbitmq

const CleanupMusicType = "cleanup_music"

// CleanupMusicJob asks the worker to delete music blobs that the server
// couldn't remove inline
type CleanupMusicJob struct {
	SongID    int      `json:"songId"`
	FileNames []string `json:"fileNames"`
}
