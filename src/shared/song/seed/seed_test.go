package songseed_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hymnbook/hymnbook-be/src/shared/song/dummy"
	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/song/seed"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SeedDir", func() {
	var (
		songStore *dummy.SongStore
		dir       string
		now       time.Time
	)

	writeFile := func(name string, content string) {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		songStore = dummy.NewDummySongStore()
		now = time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)

		var err error
		dir, err = os.MkdirTemp("", "songseed")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		writeFile("001.json", `{
			"number": 1,
			"title": " Amazing Grace ",
			"category": "Hymn",
			"sections": [{"type": "verse", "lines": ["Amazing grace", "", "how sweet the sound"]}]
		}`)
		writeFile("002.json", `{"number": 2, "title": "Grace", "category": "Worship",
			"sections": [{"type": "chorus", "lines": ["Grace"]}]}`)
		writeFile("003.json", `{"number": 3, "title": "", "category": "Hymn", "sections": []}`)
		writeFile("004.json", `{"number": 4,`)
		writeFile("notes.txt", "not a song")
		Expect(os.Mkdir(filepath.Join(dir, "drafts.json"), 0o755)).To(Succeed())
	})

	Describe("Into an empty catalog", func() {
		var report songseed.Report

		BeforeEach(func() {
			var err error
			report, err = songseed.SeedDir(context.Background(), songStore, dir, now)
			Expect(err).NotTo(HaveOccurred())
		})

		It("counts every song file", func() {
			Expect(report.Count).To(Equal(4))
			Expect(report.Created).To(Equal(2))
			Expect(report.Skipped).To(Equal(2))
		})

		It("creates valid songs at the initial version", func() {
			song := songStore.Songs[1]
			Expect(song.Title).To(Equal("Amazing Grace"))
			Expect(song.Version).To(Equal(songentity.InitialVersion))
			Expect(song.Sections).To(Equal([]songentity.Section{
				testing.Section("verse", "Amazing grace", "how sweet the sound"),
			}))
			Expect(song.LastPublishedAt).To(BeTemporally("==", now))
		})

		It("says why files were skipped", func() {
			Expect(report.Results).To(ContainElement(songseed.Outcome{
				File:    "003.json",
				ID:      3,
				Skipped: true,
				Reason:  songseed.InvalidReason,
			}))
			Expect(report.Results).To(ContainElement(songseed.Outcome{
				File:    "004.json",
				Skipped: true,
				Reason:  songseed.MalformedReason,
			}))
		})
	})

	Describe("Over songs that already exist", func() {
		BeforeEach(func() {
			edited := testing.MakeSong(2, "Grace Renewed", "Worship")
			edited.ApplyApproved(edited.Content(), testing.SeedTime)
			songStore.Seed(edited)
		})

		It("keeps the approved edits", func() {
			report, err := songseed.SeedDir(context.Background(), songStore, dir, now)
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Created).To(Equal(1))
			Expect(songStore.Songs[2].Title).To(Equal("Grace Renewed"))
			Expect(songStore.Songs[2].Version).To(Equal("1.1"))
		})
	})

	Describe("Over a deleted song", func() {
		BeforeEach(func() {
			songStore.Deletions[1] = songentity.NewDeletion(testing.MakeSong(1, "Amazing Grace", "Hymn"), "admin", now)
		})

		It("brings it back and clears the tombstone", func() {
			_, err := songseed.SeedDir(context.Background(), songStore, dir, now)
			Expect(err).NotTo(HaveOccurred())

			Expect(songStore.Songs).To(HaveKey(1))
			Expect(songStore.Deletions).NotTo(HaveKey(1))
		})
	})

	It("fails when the store is down", func() {
		songStore.Unavailable = true

		_, err := songseed.SeedDir(context.Background(), songStore, dir, now)
		Expect(err).To(HaveOccurred())
	})

	It("fails for a directory that isn't there", func() {
		_, err := songseed.SeedDir(context.Background(), songStore, filepath.Join(dir, "missing"), now)
		Expect(err).To(HaveOccurred())
	})
})
