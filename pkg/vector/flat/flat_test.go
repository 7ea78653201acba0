package flat_test

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/vector"
	"github.com/draftloop/exemplar/pkg/vector/flat"
)

func TestFlat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Flat Index Suite")
}

var _ = Describe("Index", func() {
	var (
		ctx context.Context
		idx *flat.Index
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		idx, err = flat.NewIndex(flat.Config{Dimensions: 3}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a configured dimension", func() {
		_, err := flat.NewIndex(flat.Config{}, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	Describe("Append and Count", func() {
		It("assigns ordinal positions in insertion order", func() {
			pos, err := idx.Append(ctx, []float32{1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(pos).To(Equal(0))

			pos, err = idx.Append(ctx, []float32{0, 1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(pos).To(Equal(1))

			count, err := idx.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		It("rejects vectors with the wrong dimension", func() {
			_, err := idx.Append(ctx, []float32{1, 0})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			_, err := idx.Append(ctx, []float32{1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			_, err = idx.Append(ctx, []float32{0, 1, 0})
			Expect(err).NotTo(HaveOccurred())
			_, err = idx.Append(ctx, []float32{0.5, 0.5, 0})
			Expect(err).NotTo(HaveOccurred())
		})

		It("orders matches by descending inner product", func() {
			matches, err := idx.Search(ctx, []float32{1, 0, 0}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(3))

			Expect(matches[0].Position).To(Equal(0))
			Expect(matches[0].Score).To(BeNumerically("~", 1.0, 1e-6))
			Expect(matches[1].Position).To(Equal(2))
			Expect(matches[2].Position).To(Equal(1))
		})

		It("breaks score ties by ascending position", func() {
			matches, err := idx.Search(ctx, []float32{0, 0, 1}, 0)
			Expect(err).NotTo(HaveOccurred())

			// All scores are zero against an orthogonal query.
			Expect(matches[0].Position).To(Equal(0))
			Expect(matches[1].Position).To(Equal(1))
			Expect(matches[2].Position).To(Equal(2))
		})

		It("truncates to topK", func() {
			matches, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
		})

		It("rejects queries with the wrong dimension", func() {
			_, err := idx.Search(ctx, []float32{1}, 0)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Rebuild", func() {
		It("replaces the index contents wholesale", func() {
			_, err := idx.Append(ctx, []float32{1, 0, 0})
			Expect(err).NotTo(HaveOccurred())

			err = idx.Rebuild(ctx, [][]float32{
				{0, 1, 0},
				{0, 0, 1},
			})
			Expect(err).NotTo(HaveOccurred())

			count, err := idx.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))

			matches, err := idx.Search(ctx, []float32{0, 0, 1}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches[0].Position).To(Equal(1))
		})

		It("rejects a rebuild containing a mismatched vector", func() {
			err := idx.Rebuild(ctx, [][]float32{
				{0, 1, 0},
				{1, 2},
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("persistence", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "index.bin")
		})

		It("round-trips vectors through the artifact", func() {
			first, err := flat.NewIndex(flat.Config{Path: path, Dimensions: 3}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = first.Append(ctx, []float32{1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			_, err = first.Append(ctx, []float32{0, 1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Save()).To(Succeed())

			second, err := flat.NewIndex(flat.Config{Path: path, Dimensions: 3}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			count, err := second.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))

			matches, err := second.Search(ctx, []float32{0, 1, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches[0].Position).To(Equal(1))
		})

		It("discards an artifact with a different dimensionality", func() {
			first, err := flat.NewIndex(flat.Config{Path: path, Dimensions: 3}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			_, err = first.Append(ctx, []float32{1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Save()).To(Succeed())

			second, err := flat.NewIndex(flat.Config{Path: path, Dimensions: 4}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			count, err := second.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("treats a missing artifact as an empty index", func() {
			idx, err := flat.NewIndex(flat.Config{Path: path, Dimensions: 3}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			count, err := idx.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})
