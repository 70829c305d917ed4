package cleanup_music_test

import (
	"context"
	"encoding/json"

	"github.com/hymnbook/hymnbook-be/src/shared/lib/blobstore/dummy"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/jobs/cleanup_music"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cleanup music", func() {
	var (
		fileStore *dummy.FileStore
		handler   cleanup_music.JobHandler
		message   []byte
	)

	BeforeEach(func() {
		By("Setting up the dummy file store", func() {
			fileStore = dummy.NewDummyFileStore()
			fileStore.Files["7-1.mp3"] = dummy.File{ContentType: "audio/mpeg", Content: []byte("one")}
			fileStore.Files["7-2.mp3"] = dummy.File{ContentType: "audio/mpeg", Content: []byte("two")}
			fileStore.Files["12-1.mp3"] = dummy.File{ContentType: "audio/mpeg", Content: []byte("keep")}
		})

		By("Instantiating the handler", func() {
			handler = cleanup_music.NewJobHandler(fileStore)
		})
	})

	jobMessage := func(job any) []byte {
		body, err := json.Marshal(job)
		Expect(err).NotTo(HaveOccurred())
		return body
	}

	Describe("Well formed message", func() {
		BeforeEach(func() {
			message = jobMessage(rabbitmq.CleanupMusicJob{
				SongID:    7,
				FileNames: []string{"7-1.mp3", "7-2.mp3", "7-already-gone.mp3"},
			})
		})

		It("deletes the files and treats missing ones as done", func() {
			job, err := handler.HandleCleanupMusicJob(context.Background(), message)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.SongID).To(Equal(7))

			Expect(fileStore.Has("7-1.mp3")).To(BeFalse())
			Expect(fileStore.Has("7-2.mp3")).To(BeFalse())
			Expect(fileStore.Has("12-1.mp3")).To(BeTrue())
		})

		It("can be handled twice", func() {
			_, err := handler.HandleCleanupMusicJob(context.Background(), message)
			Expect(err).NotTo(HaveOccurred())

			_, err = handler.HandleCleanupMusicJob(context.Background(), message)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails when the file store is down", func() {
			fileStore.DeleteUnavailable = true

			_, err := handler.HandleCleanupMusicJob(context.Background(), message)
			Expect(err).To(HaveOccurred())
			Expect(fileStore.Has("7-1.mp3")).To(BeTrue())
		})
	})

	DescribeTable("Malformed messages",
		func(message []byte) {
			_, err := handler.HandleCleanupMusicJob(context.Background(), message)
			Expect(err).To(HaveOccurred())
			Expect(fileStore.Files).To(HaveLen(3))
		},
		Entry("not JSON", []byte("{{")),
		Entry("no files", []byte(`{"songId": 7, "fileNames": []}`)),
		Entry("an empty file name", []byte(`{"songId": 7, "fileNames": ["7-1.mp3", ""]}`)),
	)
})
