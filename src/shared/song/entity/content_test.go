package songentity_test

import (
	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

var _ = Describe("NormalizeContent", func() {
	var content songentity.Content

	BeforeEach(func() {
		content = songentity.Content{
			Title:    "  Grace  ",
			Category: " Hymns ",
			Sections: []songentity.Section{
				{Type: " verse ", Lines: []string{"Amazing grace", "   ", "how sweet the sound"}},
				{Type: "", Lines: []string{"no type"}},
				{Type: "chorus", Lines: []string{"", "  "}},
			},
		}
	})

	It("trims and drops empty parts", func() {
		normalized, err := songentity.NormalizeContent(content)
		Expect(err).NotTo(HaveOccurred())

		Expect(normalized.Title).To(Equal("Grace"))
		Expect(normalized.Category).To(Equal("Hymns"))
		Expect(normalized.Sections).To(Equal([]songentity.Section{
			{Type: "verse", Lines: []string{"Amazing grace", "how sweet the sound"}},
		}))
	})

	It("rejects a blank title", func() {
		content.Title = "   "
		_, err := songentity.NormalizeContent(content)
		Expect(markers.Is(err, songentity.InvalidContentMark)).To(BeTrue())
	})

	It("rejects a blank category", func() {
		content.Category = ""
		_, err := songentity.NormalizeContent(content)
		Expect(markers.Is(err, songentity.InvalidContentMark)).To(BeTrue())
	})

	It("rejects content whose sections are all blank", func() {
		content.Sections = []songentity.Section{
			{Type: "verse", Lines: []string{" ", ""}},
			{Type: "chorus", Lines: nil},
		}
		_, err := songentity.NormalizeContent(content)
		Expect(markers.Is(err, songentity.InvalidContentMark)).To(BeTrue())
	})

	It("rejects content without sections", func() {
		content.Sections = nil
		_, err := songentity.NormalizeContent(content)
		Expect(markers.Is(err, songentity.InvalidContentMark)).To(BeTrue())
	})
})
