package digest_test

import (
	"context"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/embeddings/digest"
)

func TestDigest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Digest Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var (
		ctx      context.Context
		embedder *digest.Embedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = digest.NewEmbedder(0)
	})

	It("defaults to 768 dimensions", func() {
		Expect(embedder.Dimensions()).To(Equal(digest.DefaultDimensions))

		vec, err := embedder.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(HaveLen(digest.DefaultDimensions))
	})

	It("is deterministic for the same input", func() {
		a, err := embedder.Embed(ctx, "pricing your services")
		Expect(err).NotTo(HaveOccurred())

		b, err := embedder.Embed(ctx, "pricing your services")
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(Equal(b))
	})

	It("produces different vectors for different inputs", func() {
		a, err := embedder.Embed(ctx, "pricing")
		Expect(err).NotTo(HaveOccurred())

		b, err := embedder.Embed(ctx, "hiring")
		Expect(err).NotTo(HaveOccurred())

		Expect(a).NotTo(Equal(b))
	})

	It("returns unit-norm vectors for non-empty input", func() {
		vec, err := embedder.Embed(ctx, "some text")
		Expect(err).NotTo(HaveOccurred())

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		Expect(math.Sqrt(norm)).To(BeNumerically("~", 1.0, 1e-5))
	})

	It("returns the zero vector for empty input", func() {
		vec, err := embedder.Embed(ctx, "")
		Expect(err).NotTo(HaveOccurred())

		for _, v := range vec {
			Expect(v).To(BeZero())
		}
	})

	It("respects a custom dimension", func() {
		small := digest.NewEmbedder(16)
		vec, err := small.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(HaveLen(16))
	})
})
