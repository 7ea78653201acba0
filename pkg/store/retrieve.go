package store

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/post"
)

// Fallback ranking weights: quality dominates, recency nudges.
const (
	qualityWeight = 0.7
	recencyWeight = 0.3

	// neutralRecency is used when a post's timestamp cannot be parsed.
	neutralRecency = 5.0

	// legacyNeutralQuality substitutes for non-positive scores on records
	// written before scores were normalized at the boundary.
	legacyNeutralQuality = 5.0
)

// Retrieve returns posts in the given client scope ranked for use as
// writing-style exemplars. When the similarity index is available and its
// vector count covers the filtered set, posts are ranked by inner product
// of their embeddings against the query embedding. Otherwise ranking falls
// back to a quality/recency composite so callers always receive a usable,
// deterministically-ordered result (e.g. right after a bulk import, before
// the index has caught up).
//
// minAgeDays is accepted for interface stability but currently not
// applied: retrieval feeds tone and style learning, which wants the full
// history rather than a recency-bounded slice. Limit <= 0 returns the
// whole filtered set. Retrieve never fails; degraded inputs rank with
// neutral scores.
func (s *Store) Retrieve(ctx context.Context, topicQuery, scope string, minAgeDays, limit int) []post.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if minAgeDays != 0 {
		s.logger.Debug("minAgeDays is accepted but not applied to retrieval",
			zap.Int("min_age_days", minAgeDays),
		)
	}

	filtered := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.ClientScope != scope {
			continue
		}
		filtered = append(filtered, p)
	}

	if len(filtered) == 0 {
		s.logger.Debug("no posts in scope", zap.String("scope", scope))
		return nil
	}

	var ranked []post.Post
	if s.indexCovers(ctx, len(filtered)) {
		ranked = s.rankBySimilarity(ctx, topicQuery, filtered)
	} else {
		ranked = s.rankByFallback(filtered)
	}

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	s.logger.Info("retrieved posts",
		zap.String("scope", scope),
		zap.Int("count", len(ranked)),
	)

	return ranked
}

// indexCovers reports whether the similarity index is present and its
// vector count is at least n. An index that lags the corpus must not
// drive ranking: a partial index would silently skew results, so the
// store falls back to metadata-only scoring instead.
func (s *Store) indexCovers(ctx context.Context, n int) bool {
	if s.index == nil {
		return false
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		s.logger.Warn("index count failed, using fallback ranking", zap.Error(err))
		return false
	}

	if count < n {
		s.logger.Debug("index incomplete, using fallback ranking",
			zap.Int("indexed", count),
			zap.Int("needed", n),
		)
		return false
	}

	return true
}

type scoredPost struct {
	score float64
	post  post.Post
}

func sortScored(scored []scoredPost) {
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].score != scored[b].score {
			return scored[a].score > scored[b].score
		}
		return scored[a].post.SequenceID < scored[b].post.SequenceID
	})
}

func collectScored(scored []scoredPost) []post.Post {
	ranked := make([]post.Post, len(scored))
	for i, sp := range scored {
		ranked[i] = sp.post
	}
	return ranked
}

// rankBySimilarity orders posts by descending inner product between each
// post's embedding and the query embedding. Embeddings are recomputed from
// record content, which is sound because the provider contract requires
// determinism. Any embedding failure degrades to fallback ranking rather
// than erroring.
func (s *Store) rankBySimilarity(ctx context.Context, topicQuery string, filtered []post.Post) []post.Post {
	queryVec, err := s.embedder.Embed(ctx, topicQuery)
	if err != nil {
		s.logger.Warn("query embedding failed, using fallback ranking", zap.Error(err))
		return s.rankByFallback(filtered)
	}

	scored := make([]scoredPost, 0, len(filtered))
	for _, p := range filtered {
		vec, err := s.embedder.Embed(ctx, p.EmbeddingInput())
		if err != nil {
			s.logger.Warn("post embedding failed, using fallback ranking",
				zap.String("hash", p.ContentHash),
				zap.Error(err),
			)
			return s.rankByFallback(filtered)
		}

		var sim float64
		for i := range queryVec {
			if i >= len(vec) {
				break
			}
			sim += float64(queryVec[i]) * float64(vec[i])
		}

		scored = append(scored, scoredPost{score: sim, post: p})
	}

	sortScored(scored)
	return collectScored(scored)
}

// rankByFallback orders posts by a quality/recency composite:
// 0.7 * avg(voice, content) + 0.3 * max(0, 10 - ageDays/10).
func (s *Store) rankByFallback(filtered []post.Post) []post.Post {
	now := s.now().UTC()

	scored := make([]scoredPost, 0, len(filtered))
	for _, p := range filtered {
		scored = append(scored, scoredPost{score: fallbackScore(p, now), post: p})
	}

	sortScored(scored)
	return collectScored(scored)
}

func fallbackScore(p post.Post, now time.Time) float64 {
	voice := float64(p.VoiceQuality)
	if voice <= 0 {
		voice = legacyNeutralQuality
	}
	content := float64(p.ContentQuality)
	if content <= 0 {
		content = legacyNeutralQuality
	}
	avgQuality := (voice + content) / 2

	recency := neutralRecency
	if ageDays, ok := p.AgeDays(now); ok {
		recency = 10 - ageDays/10
		if recency < 0 {
			recency = 0
		}
	}

	return avgQuality*qualityWeight + recency*recencyWeight
}
