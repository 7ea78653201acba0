package embeddings_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/embeddings"
)

func TestEmbeddings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Embeddings Suite")
}

var _ = Describe("Normalize", func() {
	It("scales a vector to unit length", func() {
		vec := embeddings.Normalize([]float32{3, 4})
		Expect(vec[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(vec[1]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("leaves a unit vector unchanged", func() {
		vec := embeddings.Normalize([]float32{0, 1, 0})
		Expect(vec).To(Equal([]float32{0, 1, 0}))
	})

	It("leaves the zero vector unchanged", func() {
		vec := embeddings.Normalize([]float32{0, 0, 0})
		Expect(vec).To(Equal([]float32{0, 0, 0}))
	})

	It("produces unit norm for arbitrary input", func() {
		vec := embeddings.Normalize([]float32{-7.5, 2.25, 100, 0.003})

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		Expect(math.Sqrt(norm)).To(BeNumerically("~", 1.0, 1e-6))
	})
})
