// Package store implements the exemplar memory store.
//
// The store composes three parts: a durable record collection
// (metadata.json plus a hashes.json dedup set, both loaded fully into
// memory at construction), an embedding provider, and an optional
// similarity index. Producers add approved posts; consumers retrieve them
// ranked by semantic similarity to a query, or by a quality/recency
// composite when the index is absent or has not caught up with the corpus.
//
// The store is single-writer: one coarse mutex guards every operation that
// mutates corpus state and index state together, so readers never observe
// metadata and index out of sync.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/embeddings"
	"github.com/draftloop/exemplar/pkg/post"
	"github.com/draftloop/exemplar/pkg/vector"
)

const (
	metadataFile = "metadata.json"
	hashesFile   = "hashes.json"
)

// ErrNoHash is returned when a post without a content hash is added.
var ErrNoHash = errors.New("post has no content hash")

// Config holds configuration for the store.
type Config struct {
	// Dir is the directory holding metadata.json and hashes.json.
	Dir string

	// Now overrides the clock used for insertion timestamps, recency
	// scoring, and cleanup cutoffs. Nil means time.Now.
	Now func() time.Time
}

// Store is the memory store orchestrator.
type Store struct {
	mu sync.RWMutex

	dir          string
	metadataPath string
	hashesPath   string

	// posts is the live corpus in insertion order.
	posts []post.Post

	// hashes maps content hash -> topic, the O(1) dedup set.
	hashes map[string]string

	// nextSeq is the sequence ordinal for the next insertion. Sequence
	// ordinals are historical: cleanup never renumbers survivors.
	nextSeq int

	embedder embeddings.Embedder
	index    vector.Index

	now    func() time.Time
	logger *zap.Logger
}

// NewStore opens (or creates) a store rooted at cfg.Dir. Corrupt or
// missing state files are tolerated: the store logs a warning and starts
// from the recoverable portion, since metadata is authoritative and the
// index is a rebuildable artifact. The index may be nil, in which case
// retrieval always uses fallback ranking.
func NewStore(cfg Config, embedder embeddings.Embedder, index vector.Index, logger *zap.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("store directory is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", cfg.Dir, err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		dir:          cfg.Dir,
		metadataPath: filepath.Join(cfg.Dir, metadataFile),
		hashesPath:   filepath.Join(cfg.Dir, hashesFile),
		hashes:       make(map[string]string),
		embedder:     embedder,
		index:        index,
		now:          now,
		logger:       logger,
	}

	s.loadMetadata()
	s.loadHashes()

	for _, p := range s.posts {
		if p.SequenceID >= s.nextSeq {
			s.nextSeq = p.SequenceID + 1
		}
	}

	logger.Info("memory store opened",
		zap.String("dir", cfg.Dir),
		zap.Int("posts", len(s.posts)),
		zap.Bool("index_available", index != nil),
	)

	return s, nil
}

// Add inserts a post into the store. Adding a post whose content hash is
// already present is an idempotent no-op that reports success. A failure
// to append to the similarity index is logged and does not roll back the
// metadata write; metadata is authoritative and the index is rebuildable.
// Persistence failures propagate: callers should treat them as "state
// uncertain, safe to retry" since retry is idempotent by hash.
func (s *Store) Add(ctx context.Context, p post.Post) error {
	if p.ContentHash == "" {
		return ErrNoHash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hashes[p.ContentHash]; ok {
		s.logger.Info("post already exists, skipping",
			zap.String("topic", p.Topic),
			zap.String("hash", p.ContentHash),
		)
		return nil
	}

	if s.index != nil {
		vec, err := s.embedder.Embed(ctx, p.EmbeddingInput())
		if err != nil {
			s.logger.Warn("embedding failed, index will lag corpus",
				zap.String("hash", p.ContentHash),
				zap.Error(err),
			)
		} else if _, err := s.index.Append(ctx, vec); err != nil {
			s.logger.Warn("index append failed, index will lag corpus",
				zap.String("hash", p.ContentHash),
				zap.Error(err),
			)
		} else if err := s.index.Save(); err != nil {
			s.logger.Warn("saving index artifact failed", zap.Error(err))
		}
	}

	p.SequenceID = s.nextSeq
	p.AddedAt = s.now().UTC().Format(time.RFC3339)
	s.nextSeq++

	s.posts = append(s.posts, p)
	if err := s.persistMetadata(); err != nil {
		return fmt.Errorf("persisting metadata: %w", err)
	}

	s.hashes[p.ContentHash] = p.Topic
	if err := s.persistHashes(); err != nil {
		return fmt.Errorf("persisting hash set: %w", err)
	}

	s.logger.Info("added post",
		zap.String("topic", p.Topic),
		zap.String("scope", p.ClientScope),
		zap.Int("sequence", p.SequenceID),
	)

	return nil
}

// Exists reports whether a post with the given content hash is stored.
// Collaborators use this to avoid re-processing already-approved posts.
func (s *Store) Exists(contentHash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.hashes[contentHash]
	return ok
}

// Stats summarizes the store. Quality means cover only posts with a
// positive score; zero or absent scores are excluded from the mean rather
// than counted as zero.
type Stats struct {
	TotalPosts        int     `json:"total_posts"`
	UniqueScopes      int     `json:"unique_scopes"`
	AvgVoiceQuality   float64 `json:"avg_voice_quality"`
	AvgContentQuality float64 `json:"avg_content_quality"`
	IndexAvailable    bool    `json:"index_available"`
	IndexSize         int     `json:"index_size"`
}

// Stats computes store statistics. Side-effect free, O(corpus size).
func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalPosts:     len(s.posts),
		IndexAvailable: s.index != nil,
	}

	scopes := make(map[string]struct{})
	var voiceSum, voiceN, contentSum, contentN int
	for _, p := range s.posts {
		if p.ClientScope != "" {
			scopes[p.ClientScope] = struct{}{}
		}
		if p.VoiceQuality > 0 {
			voiceSum += p.VoiceQuality
			voiceN++
		}
		if p.ContentQuality > 0 {
			contentSum += p.ContentQuality
			contentN++
		}
	}
	stats.UniqueScopes = len(scopes)

	if voiceN > 0 {
		stats.AvgVoiceQuality = round2(float64(voiceSum) / float64(voiceN))
	}
	if contentN > 0 {
		stats.AvgContentQuality = round2(float64(contentSum) / float64(contentN))
	}

	if s.index != nil {
		if size, err := s.index.Count(ctx); err != nil {
			s.logger.Warn("index count failed", zap.Error(err))
		} else {
			stats.IndexSize = size
		}
	}

	return stats
}

// Size reports the live corpus size.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Close releases the embedder and index backends.
func (s *Store) Close() error {
	var errs []error
	if err := s.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) loadMetadata() {
	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not load metadata, starting empty", zap.Error(err))
		}
		return
	}

	var posts []post.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.logger.Warn("could not parse metadata, starting empty", zap.Error(err))
		return
	}

	s.posts = posts
}

func (s *Store) loadHashes() {
	data, err := os.ReadFile(s.hashesPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not load hash set, rebuilding from metadata", zap.Error(err))
		}
		s.rebuildHashes()
		return
	}

	hashes := make(map[string]string)
	if err := json.Unmarshal(data, &hashes); err != nil {
		s.logger.Warn("could not parse hash set, rebuilding from metadata", zap.Error(err))
		s.rebuildHashes()
		return
	}

	s.hashes = hashes

	// Metadata is authoritative; repair any drift in the derived set.
	for _, p := range s.posts {
		if _, ok := s.hashes[p.ContentHash]; !ok {
			s.hashes[p.ContentHash] = p.Topic
		}
	}
}

func (s *Store) rebuildHashes() {
	s.hashes = make(map[string]string, len(s.posts))
	for _, p := range s.posts {
		s.hashes[p.ContentHash] = p.Topic
	}
}

func (s *Store) persistMetadata() error {
	return writeJSONAtomic(s.metadataPath, s.posts)
}

func (s *Store) persistHashes() error {
	return writeJSONAtomic(s.hashesPath, s.hashes)
}

// writeJSONAtomic writes via temp-file-then-rename so a crash mid-write
// never leaves a torn state file behind.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".exemplar-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}

	return nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
