package searchcmder

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSearch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Search Command Suite")
}

var _ = Describe("previewText", func() {
	It("leaves short bodies unchanged", func() {
		Expect(previewText("charge for outcomes")).To(Equal("charge for outcomes"))
	})

	It("flattens newlines onto one line", func() {
		Expect(previewText("line one\nline two")).To(Equal("line one line two"))
	})

	It("truncates long bodies with an ellipsis", func() {
		long := strings.Repeat("a", 100)
		got := previewText(long)
		Expect(got).To(HaveSuffix("..."))
		Expect([]rune(got)).To(HaveLen(80))
	})

	It("truncates multibyte bodies on a rune boundary", func() {
		long := strings.Repeat("ありがとう", 30)
		got := previewText(long)
		Expect(got).To(HaveSuffix("..."))
		Expect([]rune(got)).To(HaveLen(80))
		Expect(strings.HasPrefix(long, strings.TrimSuffix(got, "..."))).To(BeTrue())
	})
})
