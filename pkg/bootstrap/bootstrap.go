// Package bootstrap assembles a memory store from configuration: resolved
// data directory, embedding provider, optional similarity index. Every CLI
// command goes through here so they all agree on wiring.
package bootstrap

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/config"
	"github.com/draftloop/exemplar/pkg/dotdir"
	"github.com/draftloop/exemplar/pkg/embeddings/utils"
	"github.com/draftloop/exemplar/pkg/store"
	"github.com/draftloop/exemplar/pkg/vector"
	vectorutils "github.com/draftloop/exemplar/pkg/vector/utils"
)

// LoadConfig resolves configuration via viper (defaults, config.toml, and
// EXEMPLAR_* environment variables) and returns it together with the
// resolved data directory.
func LoadConfig(configDir string) (*config.Config, string, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", err
	}

	cfg := &config.Config{
		Version: v.GetInt("version"),
		Store: config.StoreConfig{
			Dir: v.GetString("store.dir"),
		},
		Embedding: config.EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			APIKey:     v.GetString("embedding.api_key"),
			Dimensions: v.GetInt("embedding.dimensions"),
		},
		Index: config.IndexConfig{
			Provider: v.GetString("index.provider"),
			Path:     v.GetString("index.path"),
		},
		Ledger: config.LedgerConfig{
			Path:        v.GetString("ledger.path"),
			PollSeconds: v.GetInt("ledger.poll_seconds"),
		},
		Cleanup: config.CleanupConfig{
			MaxAgeDays: v.GetInt("cleanup.max_age_days"),
		},
	}

	dataDir := cfg.Store.Dir
	if dataDir == "" {
		ddm := dotdir.NewManager()
		dataDir, err = ddm.Target(configDir)
		if err != nil {
			return nil, "", fmt.Errorf("resolving data directory: %w", err)
		}
	}

	return cfg, dataDir, nil
}

// OpenStore builds the embedder, the index, and the store. An index
// backend that fails to initialize is not fatal: the store runs with
// fallback ranking and reports the degradation through Stats.
func OpenStore(cfg *config.Config, dataDir string, logger *zap.Logger) (*store.Store, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       cfg.Embedding.APIKey,
		Dimensions:   cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	index := newIndex(cfg, dataDir, logger)

	s, err := store.NewStore(store.Config{Dir: dataDir}, embedder, index, logger)
	if err != nil {
		embedder.Close()
		if index != nil {
			index.Close()
		}
		return nil, err
	}

	return s, nil
}

func newIndex(cfg *config.Config, dataDir string, logger *zap.Logger) vector.Index {
	path := cfg.Index.Path
	if path == "" {
		switch cfg.Index.Provider {
		case "sqlite":
			path = filepath.Join(dataDir, "index.db")
		default:
			path = filepath.Join(dataDir, "index.bin")
		}
	}

	index, err := vectorutils.NewIndex(&vectorutils.NewIndexOpts{
		ProviderType: cfg.Index.Provider,
		Path:         path,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		logger.Warn("similarity index unavailable, using fallback ranking",
			zap.String("provider", cfg.Index.Provider),
			zap.Error(err),
		)
		return nil
	}

	return index
}
