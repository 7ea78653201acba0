package config

const (
	defaultEmbeddingProvider   = "digest"
	defaultEmbeddingDimensions = 768

	defaultIndexProvider = "flat"

	defaultLedgerPollSeconds = 30

	defaultCleanupMaxAgeDays = 45
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Dimensions: defaultEmbeddingDimensions,
		},
		Index: IndexConfig{
			Provider: defaultIndexProvider,
		},
		Ledger: LedgerConfig{
			PollSeconds: defaultLedgerPollSeconds,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: defaultCleanupMaxAgeDays,
		},
	}
}
