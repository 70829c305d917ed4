package google_id

import (
	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Claims", func() {
	claims := map[string]any{
		"name":           "Ada",
		"email_verified": true,
	}

	It("reads typed claims", func() {
		Expect(claim[string](claims, "name")).To(Equal("Ada"))
		Expect(claim[bool](claims, "email_verified")).To(BeTrue())
	})

	It("marks claims of the wrong type", func() {
		_, err := claim[string](claims, "email_verified")
		Expect(markers.Is(err, unexpectedType)).To(BeTrue())
	})

	It("treats missing optional claims as empty", func() {
		value, err := optionalClaim[string](claims, "email")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(BeEmpty())
	})

	It("still fails missing required claims", func() {
		_, err := claim[string](claims, "email")
		Expect(markers.Is(err, keyNotFound)).To(BeTrue())
	})
})
