// Package post defines the stored record type for the exemplar memory store.
//
// A Post is one approved text artifact with its topic, client scope, quality
// scores, and approval feedback. Posts are immutable once stored; the store
// deduplicates them by content hash. Input normalizes the loosely-shaped
// records produced by the various import paths (feedback ledger scans, CSV
// and JSON imports, direct CLI adds) into a single validated shape at the
// boundary.
package post

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultQuality is the neutral score assigned when a caller supplies none.
	DefaultQuality = 8

	// MinQuality and MaxQuality bound the 1-10 scoring scale.
	MinQuality = 1
	MaxQuality = 10
)

// ErrNoContent is returned when a post has neither a caller-supplied hash nor
// any content to derive one from.
var ErrNoContent = errors.New("post has no content to hash")

// Post is one stored text artifact. JSON field names match the on-disk
// metadata layout so existing store files load unchanged.
type Post struct {
	// SequenceID is the insertion-order ordinal assigned by the store.
	// It is never renumbered, even after cleanup removes earlier posts.
	SequenceID int `json:"id"`

	// ContentHash uniquely identifies the post and is the dedup key.
	ContentHash string `json:"post_hash"`

	Topic       string `json:"topic"`
	Text        string `json:"post"`
	ClientScope string `json:"client_id"`

	// Feedback is the free-text approval signal. The store does not
	// validate its shape.
	Feedback string `json:"feedback"`

	VoiceQuality   int `json:"voice_quality"`
	ContentQuality int `json:"post_quality"`

	// CreatedAt is the artifact timestamp as supplied by the producer,
	// kept as a string because upstream sources emit several ISO variants.
	CreatedAt string `json:"timestamp"`

	// AddedAt is the UTC insertion time set by the store.
	AddedAt string `json:"added_at"`
}

// Input is the loosely-shaped record accepted at the boundary. Zero-value
// fields are filled with defaults by New.
type Input struct {
	ContentHash    string
	Topic          string
	Text           string
	ClientScope    string
	Feedback       string
	VoiceQuality   int
	ContentQuality int
	CreatedAt      string
}

// New validates and normalizes an Input into a Post. The content hash is
// computed from the normalized topic and text when the caller does not
// supply one; caller-supplied hashes are honored so collaborators that
// precompute hashes keep their dedup keys. Quality scores default to
// DefaultQuality when absent and are clamped to the 1-10 scale. A missing
// CreatedAt is set to the current UTC time.
func New(in Input) (Post, error) {
	p := Post{
		ContentHash:    strings.TrimSpace(in.ContentHash),
		Topic:          strings.TrimSpace(in.Topic),
		Text:           strings.TrimSpace(in.Text),
		ClientScope:    strings.TrimSpace(in.ClientScope),
		Feedback:       strings.TrimSpace(in.Feedback),
		VoiceQuality:   clampQuality(in.VoiceQuality),
		ContentQuality: clampQuality(in.ContentQuality),
		CreatedAt:      strings.TrimSpace(in.CreatedAt),
	}

	if p.ContentHash == "" {
		if p.Topic == "" && p.Text == "" {
			return Post{}, ErrNoContent
		}
		p.ContentHash = HashContent(p.Topic, p.Text)
	}

	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	return p, nil
}

// HashContent derives a content hash from normalized topic and text.
// Normalization lowercases and collapses whitespace so that equivalent
// content hashes identically regardless of the import path that produced it.
func HashContent(topic, text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(topic+" "+text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// EmbeddingInput returns the text embedded for this post: topic and body
// concatenated, matching the query-side embedding input shape.
func (p Post) EmbeddingInput() string {
	return p.Topic + " " + p.Text
}

// ShortHash returns a display-friendly prefix of the content hash.
// Caller-supplied hashes may be shorter than the prefix length.
func (p Post) ShortHash() string {
	if len(p.ContentHash) <= 12 {
		return p.ContentHash
	}
	return p.ContentHash[:12]
}

// createdAtLayouts are the timestamp shapes seen across producers: RFC 3339
// with or without fractional seconds, and naive ISO timestamps treated as UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime parses CreatedAt. The second return is false when the
// timestamp cannot be parsed; callers fall back to neutral behavior
// (retain during cleanup, neutral recency score during ranking).
func (p Post) CreatedTime() (time.Time, bool) {
	s := strings.TrimSpace(p.CreatedAt)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// AgeDays returns the post's age in whole days at the given instant.
// The second return is false when CreatedAt is unparsable.
func (p Post) AgeDays(now time.Time) (float64, bool) {
	created, ok := p.CreatedTime()
	if !ok {
		return 0, false
	}
	return now.Sub(created).Hours() / 24, true
}

func clampQuality(q int) int {
	switch {
	case q == 0:
		return DefaultQuality
	case q < MinQuality:
		return MinQuality
	case q > MaxQuality:
		return MaxQuality
	default:
		return q
	}
}
