package songentity_test

import (
	"time"

	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

var _ = Describe("Publishing", func() {
	var (
		song    songentity.Song
		created time.Time
	)

	track := func(name string, uploadedAt time.Time) songentity.MusicTrack {
		return songentity.MusicTrack{
			FileName:     name,
			OriginalName: name,
			MimeType:     "audio/mpeg",
			UploadedAt:   uploadedAt,
		}
	}

	BeforeEach(func() {
		created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		song = songentity.NewSong(7, songentity.Content{
			Title:    "Grace",
			Category: "Hymns",
			Sections: []songentity.Section{{Type: "verse", Lines: []string{"line"}}},
		}, created)
	})

	Describe("ApplyApproved", func() {
		It("overwrites content and bumps the version", func() {
			content := songentity.Content{
				Title:    "Grace Renewed",
				Category: "Praise",
				Sections: []songentity.Section{
					{Type: "verse", Lines: []string{"a"}},
					{Type: "chorus", Lines: []string{"b"}},
				},
			}

			later := created.Add(time.Hour)
			song.ApplyApproved(content, later)

			Expect(song.Content()).To(Equal(content))
			Expect(song.Version).To(Equal("1.1"))
			Expect(song.LastPublishedAt).To(Equal(later))
		})

		It("always moves lastPublishedAt forward", func() {
			song.ApplyApproved(song.Content(), created)
			Expect(song.LastPublishedAt.After(created)).To(BeTrue())

			previous := song.LastPublishedAt
			song.ApplyApproved(song.Content(), created.Add(-time.Hour))
			Expect(song.LastPublishedAt.After(previous)).To(BeTrue())
			Expect(song.Version).To(Equal("1.2"))
		})
	})

	Describe("Music", func() {
		var first, second songentity.MusicTrack

		BeforeEach(func() {
			first = track("7-1.mp3", created.Add(time.Minute))
			second = track("7-2.mp3", created.Add(2*time.Minute))

			song.AttachMusic(first, created.Add(time.Minute))
			song.AttachMusic(second, created.Add(2*time.Minute))
		})

		It("bumps the version on every attachment", func() {
			Expect(song.Version).To(Equal("1.2"))
			Expect(song.HasMusic).To(BeTrue())
			Expect(song.MusicFiles).To(Equal([]songentity.MusicTrack{first, second}))
		})

		It("mirrors the last track", func() {
			Expect(*song.MusicFileName).To(Equal(second.FileName))
			Expect(*song.MusicMimeType).To(Equal(second.MimeType))
			Expect(*song.MusicUpdatedAt).To(Equal(second.UploadedAt))
		})

		It("falls back to the new last track when the mirrored one is removed", func() {
			err := song.DetachMusic(second.FileName, created.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())

			Expect(song.Version).To(Equal("1.3"))
			Expect(*song.MusicFileName).To(Equal(first.FileName))
			Expect(song.HasMusic).To(BeTrue())
		})

		It("keeps the mirror when another track is removed", func() {
			err := song.DetachMusic(first.FileName, created.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())

			Expect(*song.MusicFileName).To(Equal(second.FileName))
			Expect(song.MusicFiles).To(Equal([]songentity.MusicTrack{second}))
		})

		It("clears the mirror once the last track is gone", func() {
			Expect(song.DetachMusic(first.FileName, created.Add(time.Hour))).To(Succeed())
			Expect(song.DetachMusic(second.FileName, created.Add(2*time.Hour))).To(Succeed())

			Expect(song.HasMusic).To(BeFalse())
			Expect(song.MusicFiles).To(BeEmpty())
			Expect(song.MusicFileName).To(BeNil())
			Expect(song.MusicMimeType).To(BeNil())
			Expect(song.MusicUpdatedAt).To(BeNil())
			Expect(song.Version).To(Equal("1.4"))
		})

		It("refuses to remove a track the song doesn't have, without bumping", func() {
			err := song.DetachMusic("someone-else.mp3", created.Add(time.Hour))
			Expect(markers.Is(err, songentity.TrackNotFoundMark)).To(BeTrue())
			Expect(song.Version).To(Equal("1.2"))
		})

		It("picks the mirrored track to play by default", func() {
			defaultTrack, ok := song.DefaultTrack()
			Expect(ok).To(BeTrue())
			Expect(defaultTrack).To(Equal(second))
		})
	})

	It("has no default track without music", func() {
		_, ok := song.DefaultTrack()
		Expect(ok).To(BeFalse())
	})
})
