// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/draftloop/exemplar/pkg/embeddings"
	"github.com/draftloop/exemplar/pkg/embeddings/digest"
	"github.com/draftloop/exemplar/pkg/embeddings/ollama"
	"github.com/draftloop/exemplar/pkg/embeddings/openai"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Dimensions   int
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "digest":
		return digest.NewEmbedder(o.Dimensions), nil
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
