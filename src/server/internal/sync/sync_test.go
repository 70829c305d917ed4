package sync_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/sync/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/song/dummy"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sync", func() {
	var (
		songStore   *dummy.SongStore
		syncGateway syncgateway.Gateway
		revisedAt   time.Time
		deletedAt   time.Time
	)

	BeforeEach(func() {
		songStore = dummy.NewDummySongStore()
		syncGateway = syncgateway.NewGateway(syncusecase.NewUsecase(songStore))

		revisedAt = testing.SeedTime.Add(2 * time.Hour)
		deletedAt = testing.SeedTime.Add(3 * time.Hour)

		revised := testing.MakeSong(7, "Grace", "Worship")
		revised.ApplyApproved(testing.Content("Grace Renewed", "Worship", testing.Section("verse", "new")), revisedAt)

		songStore.Seed(
			testing.MakeSong(3, "Amazing Grace", "Hymn"),
			revised,
			testing.MakeSong(12, "Holy Holy Holy", "Hymn"),
			testing.MakeSong(15, "Untitled", ""),
		)

		songStore.Deletions[20] = songentity.Deletion{
			SongID:      20,
			DeletedBy:   testing.AdminUser.ID,
			DeletedAt:   deletedAt,
			LastVersion: "1.4",
		}
		songStore.Deletions[21] = songentity.Deletion{
			SongID:      21,
			DeletedBy:   testing.AdminUser.ID,
			DeletedAt:   testing.SeedTime.Add(-time.Hour),
			LastVersion: "1.0",
		}
	})

	get := func(target string, endpoint func(c echo.Context) error) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method: "GET",
			Target: target,
		}.MakeFake()
		response := httptest.NewRecorder()

		c := testing.PrepareEchoContext(request, response)
		ExpectWithOffset(1, endpoint(c)).To(Succeed())
		return response
	}

	syncSongIDs := func(delta syncusecase.Delta) []int {
		ids := []int{}
		for _, song := range delta.Updates {
			ids = append(ids, song.ID)
		}
		return ids
	}

	Describe("Sync", func() {
		Describe("Without a since", func() {
			var (
				response *httptest.ResponseRecorder
				before   time.Time
			)

			BeforeEach(func() {
				before = time.Now().Add(-time.Second)
				response = get("/songs/sync", syncGateway.Sync)
			})

			It("returns success", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("returns every song ordered by ID", func() {
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(syncSongIDs(delta)).To(Equal([]int{3, 7, 12, 15}))
				Expect(delta.Since).To(BeNil())
			})

			It("returns every tombstone oldest first", func() {
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(delta.Deletions).To(HaveLen(2))
				Expect(delta.Deletions[0].SongID).To(Equal(21))
				Expect(delta.Deletions[1].SongID).To(Equal(20))
				Expect(delta.Deletions[1].LastVersion).To(Equal("1.4"))
			})

			It("returns the distinct categories", func() {
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(delta.Categories).To(Equal([]string{"Hymn", "Worship"}))
			})

			It("stamps the server time", func() {
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(delta.ServerTime).To(BeTemporally(">", before))
			})

			It("uses the publication time as the song's update time", func() {
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				for _, song := range delta.Updates {
					if song.ID == 7 {
						Expect(song.UpdatedAt).To(BeTemporally("==", revisedAt))
						Expect(song.Version).To(Equal("1.1"))
					}
				}
			})
		})

		Describe("With a since", func() {
			It("only returns what changed strictly after it", func() {
				since := revisedAt.Add(-time.Minute).Format(time.RFC3339)
				response := get("/songs/sync?since="+since, syncGateway.Sync)

				Expect(response.Code).To(Equal(http.StatusOK))
				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(syncSongIDs(delta)).To(Equal([]int{7}))
				Expect(delta.Deletions).To(HaveLen(1))
				Expect(delta.Deletions[0].SongID).To(Equal(20))
				Expect(delta.Since).NotTo(BeNil())
			})

			It("doesn't return a song published exactly at since", func() {
				since := revisedAt.Format(time.RFC3339Nano)
				response := get("/songs/sync?since="+since, syncGateway.Sync)

				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(delta.Updates).To(BeEmpty())
			})

			It("still returns every category", func() {
				since := deletedAt.Add(time.Hour).Format(time.RFC3339)
				response := get("/songs/sync?since="+since, syncGateway.Sync)

				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(delta.Updates).To(BeEmpty())
				Expect(delta.Deletions).To(BeEmpty())
				Expect(delta.Categories).To(Equal([]string{"Hymn", "Worship"}))
			})

			It("reads a time without a zone as UTC", func() {
				since := revisedAt.Add(-time.Minute).Format("2006-01-02T15:04:05")
				response := get("/songs/sync?since="+since, syncGateway.Sync)

				delta := testing.DecodeJSON[syncusecase.Delta](response.Body)
				Expect(syncSongIDs(delta)).To(Equal([]int{7}))
			})
		})

		Describe("With a since that isn't a time", func() {
			It("fails with invalid since", func() {
				response := get("/songs/sync?since=last-tuesday", syncGateway.Sync)

				Expect(response.Code).To(Equal(http.StatusBadRequest))
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(syncerrors.InvalidSinceCode))
				Expect(resErr.Msg).To(Equal("Invalid since timestamp. Use ISO format."))
			})
		})

		Describe("After a song is deleted", func() {
			It("moves the song from the updates to the deletions", func() {
				first := testing.DecodeJSON[syncusecase.Delta](get("/songs/sync", syncGateway.Sync).Body)

				song := songStore.Songs[12]
				delete(songStore.Songs, 12)
				songStore.Deletions[12] = songentity.NewDeletion(song, testing.AdminUser.ID, time.Now().Add(time.Second))

				since := first.ServerTime.Format(time.RFC3339Nano)
				delta := testing.DecodeJSON[syncusecase.Delta](get("/songs/sync?since="+since, syncGateway.Sync).Body)

				Expect(delta.Updates).To(BeEmpty())
				Expect(delta.Deletions).To(HaveLen(1))
				Expect(delta.Deletions[0].SongID).To(Equal(12))
				Expect(delta.Deletions[0].LastVersion).To(Equal("1.0"))
			})
		})

		Describe("When the store is down", func() {
			It("fails with a server error", func() {
				songStore.Unavailable = true
				response := get("/songs/sync", syncGateway.Sync)
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("Recent", func() {
		var fresh songentity.Song

		BeforeEach(func() {
			fresh = testing.MakeSong(30, "Fresh", "Worship")
			fresh.ApplyApproved(fresh.Content(), time.Now().Add(-time.Hour))

			fresher := testing.MakeSong(31, "Fresher", "Worship")
			fresher.ApplyApproved(fresher.Content(), time.Now().Add(-time.Minute))

			songStore.Seed(fresh, fresher)
		})

		recentIDs := func(response *httptest.ResponseRecorder) []int {
			songs := testing.DecodeJSON[[]songentity.Song](response.Body)
			ids := []int{}
			for _, song := range songs {
				ids = append(ids, song.ID)
			}
			return ids
		}

		It("looks back a week by default, newest first", func() {
			response := get("/songs/recent", syncGateway.Recent)

			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(recentIDs(response)).To(Equal([]int{31, 30}))
		})

		It("honors a since", func() {
			since := testing.SeedTime.Add(time.Hour).Format(time.RFC3339)
			response := get("/songs/recent?since="+since, syncGateway.Recent)

			Expect(recentIDs(response)).To(Equal([]int{31, 30, 7}))
		})

		It("rejects a since that isn't a time", func() {
			response := get("/songs/recent?since=soon", syncGateway.Recent)

			Expect(response.Code).To(Equal(http.StatusBadRequest))
			resErr := testing.DecodeJSONError(response.Body)
			Expect(resErr.Code).To(BeEquivalentTo(syncerrors.InvalidSinceCode))
		})
	})
})
