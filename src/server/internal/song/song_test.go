package song_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/lib/cleanup"
	"github.com/hymnbook/hymnbook-be/src/server/internal/shared_tests/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/song/usecase"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore/dummy"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	rabbitdummy "github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq/dummy"
	songdummy "github.com/hymnbook/hymnbook-be/src/shared/song/dummy"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Song", func() {
	var (
		songStore   *songdummy.SongStore
		fileStore   *dummy.FileStore
		publisher   *rabbitdummy.Publisher
		songGateway songgateway.Gateway
	)

	BeforeEach(func() {
		songStore = songdummy.NewDummySongStore()
		fileStore = dummy.NewDummyFileStore()
		publisher = &rabbitdummy.Publisher{}

		userUsecase := userusecase.NewUsecase(authtest.SeededUserStore(), testing.Validator{})
		cleaner := cleanup.NewMusicCleaner(fileStore, publisher)
		songUsecase := songusecase.NewUsecase(songStore, userUsecase, cleaner)
		songGateway = songgateway.NewGateway(songUsecase)
	})

	BeforeEach(func() {
		songStore.Seed(
			testing.MakeSong(3, "Amazing Grace", "Hymn"),
			testing.MakeSong(7, "Grace", "Worship"),
			testing.MakeSong(12, "Holy Holy Holy", "Hymn"),
		)
	})

	Describe("Get Song", func() {
		var (
			response *httptest.ResponseRecorder
			songID   string
		)

		JustBeforeEach(func() {
			request := testing.RequestFactory{
				Method: "GET",
				Target: "/songs/:id",
			}.MakeFake()
			response = httptest.NewRecorder()

			c := testing.PrepareEchoContext(request, response)
			err := songGateway.GetSong(c, songID)
			Expect(err).NotTo(HaveOccurred())
		})

		Describe("For an existing song", func() {
			BeforeEach(func() {
				songID = "7"
			})

			It("returns success", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("returns the song", func() {
				song := testing.DecodeJSON[songentity.Song](response.Body)
				Expect(song.ID).To(Equal(7))
				Expect(song.Title).To(Equal("Grace"))
				Expect(song.Version).To(Equal("1.0"))
				Expect(song.MusicFiles).To(BeEmpty())
			})
		})

		Describe("For song IDs that can't be found", func() {
			for _, rawID := range []string{"", "boat", "-7", "999"} {
				rawID := rawID

				Describe(fmt.Sprintf("For ID %q", rawID), func() {
					BeforeEach(func() {
						songID = rawID
					})

					It("fails with the right error code", func() {
						resErr := testing.DecodeJSONError(response.Body)
						Expect(resErr.Code).To(BeEquivalentTo(songerrors.SongNotFoundCode))
					})

					It("fails with the right status code", func() {
						Expect(response.Code).To(Equal(http.StatusNotFound))
					})
				})
			}
		})

		Describe("When the store is down", func() {
			BeforeEach(func() {
				songID = "7"
				songStore.Unavailable = true
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(api.DefaultErrorCode))
			})

			It("fails with the right status code", func() {
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("List Songs", func() {
		It("returns every song ordered by ID", func() {
			request := testing.RequestFactory{
				Method: "GET",
				Target: "/songs",
			}.MakeFake()
			response := httptest.NewRecorder()

			c := testing.PrepareEchoContext(request, response)
			err := songGateway.ListSongs(c)
			Expect(err).NotTo(HaveOccurred())

			Expect(response.Code).To(Equal(http.StatusOK))
			songs := testing.DecodeJSON[[]songentity.Song](response.Body)

			ids := []int{}
			for _, song := range songs {
				ids = append(ids, song.ID)
			}
			Expect(ids).To(Equal([]int{3, 7, 12}))
		})
	})

	Describe("Delete Song", func() {
		Describe("Unpermitted requests", func() {
			BeforeEach(func() {
				authtest.Endpoint = func(c echo.Context) error {
					return songGateway.DeleteSong(c, "7")
				}
			})

			authtest.ItRejectsUnpermittedRequests("DELETE", "/songs/7", testing.EditorUser, testing.ReaderUser)
		})

		Describe("Authorized", func() {
			var (
				response *httptest.ResponseRecorder
				songID   string
			)

			JustBeforeEach(func() {
				request := testing.RequestFactory{
					Method: "DELETE",
					Target: "/songs/:id",
					Mods:   testing.RequestModifiers{testing.WithUserCred(testing.AdminUser)},
				}.MakeFake()
				response = httptest.NewRecorder()

				c := testing.PrepareEchoContext(request, response)
				err := songGateway.DeleteSong(c, songID)
				Expect(err).NotTo(HaveOccurred())
			})

			Describe("For a song that's not there", func() {
				BeforeEach(func() {
					songID = "999"
				})

				It("fails with the right error code", func() {
					resErr := testing.DecodeJSONError(response.Body)
					Expect(resErr.Code).To(BeEquivalentTo(songerrors.SongNotFoundCode))
				})

				It("fails with the right status code", func() {
					Expect(response.Code).To(Equal(http.StatusNotFound))
				})

				It("doesn't leave a tombstone", func() {
					Expect(songStore.Deletions).To(BeEmpty())
				})
			})

			Describe("For a song with pending changes and music", func() {
				var (
					pendingChange songentity.Change
					decidedChange songentity.Change
				)

				BeforeEach(func() {
					songID = "7"

					song := songStore.Songs[7]
					song.AttachMusic(songentity.MusicTrack{
						FileName:     "7-1700000000000.mp3",
						OriginalName: "grace.mp3",
						MimeType:     "audio/mpeg",
						UploadedAt:   time.Now(),
					}, time.Now())
					songStore.Seed(song)
					fileStore.Files["7-1700000000000.mp3"] = dummy.File{ContentType: "audio/mpeg", Content: []byte("la la")}

					content := testing.Content("Grace", "Worship", testing.Section("verse", "new line"))
					pendingChange = songentity.NewChange(song, testing.EditorUser.ID, content, "", time.Now())
					decidedChange = songentity.NewChange(song, testing.EditorUser.ID, content, "", time.Now())
					Expect(decidedChange.Decide(songentity.RejectedStatus, testing.AdminUser.ID, "no", time.Now())).To(Succeed())

					Expect(songStore.CreateChange(context.Background(), pendingChange)).To(Succeed())
					Expect(songStore.CreateChange(context.Background(), decidedChange)).To(Succeed())
				})

				It("returns no content", func() {
					Expect(response.Code).To(Equal(http.StatusNoContent))
					Expect(response.Body.Len()).To(BeZero())
				})

				It("removes the song", func() {
					Expect(songStore.Songs).NotTo(HaveKey(7))
					Expect(songStore.Songs).To(HaveKey(3))
				})

				It("leaves a tombstone with the last version", func() {
					Expect(songStore.Deletions).To(HaveKey(7))
					tombstone := songStore.Deletions[7]
					Expect(tombstone.LastVersion).To(Equal("1.1"))
					Expect(tombstone.DeletedBy).To(Equal(testing.AdminUser.ID))
				})

				It("rejects the pending change with a note", func() {
					change := songStore.MustGetChange(pendingChange.ID)
					Expect(change.Status).To(Equal(songentity.RejectedStatus))
					Expect(*change.ReviewNotes).To(Equal(songentity.DeletedNote))
					Expect(*change.ReviewedBy).To(Equal(testing.AdminUser.ID))
				})

				It("leaves decided changes alone", func() {
					change := songStore.MustGetChange(decidedChange.ID)
					Expect(*change.ReviewNotes).To(Equal("no"))
				})

				It("removes the music blob", func() {
					Expect(fileStore.Has("7-1700000000000.mp3")).To(BeFalse())
					Expect(publisher.Published()).To(BeEmpty())
				})

				Describe("When the blob can't be deleted inline", func() {
					BeforeEach(func() {
						fileStore.DeleteUnavailable = true
					})

					It("still deletes the song", func() {
						Expect(response.Code).To(Equal(http.StatusNoContent))
						Expect(songStore.Songs).NotTo(HaveKey(7))
					})

					It("queues the blob for cleanup", func() {
						messages := publisher.Published()
						Expect(messages).To(HaveLen(1))
						Expect(messages[0].Type).To(Equal(rabbitmq.CleanupMusicType))

						job := rabbitmq.CleanupMusicJob{}
						Expect(json.Unmarshal(messages[0].Body, &job)).To(Succeed())
						Expect(job.SongID).To(Equal(7))
						Expect(job.FileNames).To(ConsistOf("7-1700000000000.mp3"))
					})
				})
			})

			Describe("When another writer moves the song during the delete", func() {
				BeforeEach(func() {
					songID = "7"

					raced := false
					songStore.BeforeCommit = func() {
						if raced {
							return
						}
						raced = true

						song := songStore.Songs[7]
						priorVersion := song.Version
						song.ApplyApproved(testing.Content("Grace", "Worship", testing.Section("verse", "raced")), time.Now())
						Expect(songStore.UpdateSong(context.Background(), song, priorVersion)).To(Succeed())
					}
				})

				It("retries and succeeds", func() {
					Expect(response.Code).To(Equal(http.StatusNoContent))
				})

				It("records the version the song had when it was actually deleted", func() {
					Expect(songStore.Deletions[7].LastVersion).To(Equal("1.1"))
				})
			})

			Describe("When every attempt loses a race", func() {
				BeforeEach(func() {
					songID = "7"

					songStore.BeforeCommit = func() {
						song := songStore.Songs[7]
						priorVersion := song.Version
						song.ApplyApproved(song.Content(), time.Now())
						Expect(songStore.UpdateSong(context.Background(), song, priorVersion)).To(Succeed())
					}
				})

				It("fails with the right error code", func() {
					resErr := testing.DecodeJSONError(response.Body)
					Expect(resErr.Code).To(BeEquivalentTo(songerrors.ConcurrentUpdateCode))
				})

				It("fails with the right status code", func() {
					Expect(response.Code).To(Equal(http.StatusConflict))
				})

				It("keeps the song", func() {
					Expect(songStore.Songs).To(HaveKey(7))
					Expect(songStore.Deletions).To(BeEmpty())
				})
			})
		})
	})
})
