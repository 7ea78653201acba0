package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/post"
)

// Cleanup removes every post strictly older than maxAgeDays and returns
// the count removed. Posts with unparsable timestamps are conservatively
// retained. Because the index backends support append but not point
// deletion, cleanup rebuilds the index wholesale from the surviving
// corpus; a rebuild failure is logged but not fatal, since the store's
// completeness check routes retrieval to fallback ranking until the next
// successful rebuild. Sequence ordinals of survivors are not renumbered.
func (s *Store) Cleanup(ctx context.Context, maxAgeDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().AddDate(0, 0, -maxAgeDays)

	survivors := make([]post.Post, 0, len(s.posts))
	removed := 0
	for _, p := range s.posts {
		created, ok := p.CreatedTime()
		if ok && created.Before(cutoff) {
			delete(s.hashes, p.ContentHash)
			removed++
			s.logger.Info("removing old post",
				zap.String("topic", p.Topic),
				zap.String("hash", p.ContentHash),
			)
			continue
		}
		survivors = append(survivors, p)
	}

	if removed == 0 {
		s.logger.Info("no posts past max age", zap.Int("max_age_days", maxAgeDays))
		return 0, nil
	}

	s.posts = survivors

	if s.index != nil {
		s.rebuildIndex(ctx)
	}

	if err := s.persistMetadata(); err != nil {
		return removed, fmt.Errorf("persisting metadata: %w", err)
	}
	if err := s.persistHashes(); err != nil {
		return removed, fmt.Errorf("persisting hash set: %w", err)
	}

	s.logger.Info("cleanup complete",
		zap.Int("removed", removed),
		zap.Int("max_age_days", maxAgeDays),
		zap.Int("surviving", len(survivors)),
	)

	return removed, nil
}

// rebuildIndex re-embeds every surviving post in corpus order and
// replaces the index contents. Re-embedding is reproducible because the
// embedder contract requires determinism. An embedding failure for a
// single post would desynchronize index positions, so the whole rebuild
// is abandoned on any failure and retried on the next cleanup.
func (s *Store) rebuildIndex(ctx context.Context) {
	started := time.Now()

	vecs := make([][]float32, 0, len(s.posts))
	for _, p := range s.posts {
		vec, err := s.embedder.Embed(ctx, p.EmbeddingInput())
		if err != nil {
			s.logger.Warn("embedding failed during rebuild, keeping stale index",
				zap.String("hash", p.ContentHash),
				zap.Error(err),
			)
			return
		}
		vecs = append(vecs, vec)
	}

	if err := s.index.Rebuild(ctx, vecs); err != nil {
		s.logger.Warn("index rebuild failed", zap.Error(err))
		return
	}
	if err := s.index.Save(); err != nil {
		s.logger.Warn("saving rebuilt index failed", zap.Error(err))
		return
	}

	s.logger.Info("index rebuilt",
		zap.Int("vectors", len(vecs)),
		zap.Duration("took", time.Since(started)),
	)
}
