package songentity_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hymnbook/hymnbook-be/src/shared/song/entity"
)

var _ = Describe("BumpVersion", func() {
	DescribeTable("bumps the minor component",
		func(before string, after string) {
			Expect(songentity.BumpVersion(before)).To(Equal(after))
		},
		Entry("from the initial version", "1.0", "1.1"),
		Entry("past single digits", "1.9", "1.10"),
		Entry("keeping the major", "3.41", "3.42"),
		Entry("with a missing minor", "2", "2.1"),
		Entry("ignoring extra components", "1.2.3", "1.3"),
	)

	DescribeTable("resets unparsable versions",
		func(before string) {
			Expect(songentity.BumpVersion(before)).To(Equal(songentity.InitialVersion))
		},
		Entry("empty", ""),
		Entry("words", "latest"),
		Entry("bad minor", "1.x"),
		Entry("bad major", "v1.0"),
	)
})
