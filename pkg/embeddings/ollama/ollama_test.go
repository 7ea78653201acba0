package ollama_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/embeddings"
	"github.com/draftloop/exemplar/pkg/embeddings/ollama"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("normalizes the embedding returned by the API", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"embeddings": [[3, 4]]}`))
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()

		vec, err := e.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(HaveLen(2))
		Expect(vec[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(vec[1]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("wraps API failures in the embedding sentinel", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()

		_, err = e.Embed(ctx, "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("errors when the API returns no embeddings", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"embeddings": []}`))
		}))
		defer srv.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: srv.URL})
		Expect(err).NotTo(HaveOccurred())
		defer e.Close()

		_, err = e.Embed(ctx, "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})
})
