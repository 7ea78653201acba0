// Package ledger reads the feedback ledger that collaborators append
// approval decisions to, and feeds approved entries into the memory store.
//
// The ledger is a JSON lines file (one entry per line) or a single JSON
// array; both shapes appear in practice depending on which tool exported
// it. Entries are normalized through post.New at this boundary, so
// heterogeneous field shapes never reach the store.
package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/post"
)

// Entry is one feedback ledger row. Field names match the ledger export
// format used by the approval tooling.
type Entry struct {
	Topic          string `json:"topic"`
	Post           string `json:"post"`
	Timestamp      string `json:"timestamp"`
	ClientID       string `json:"client_id"`
	Feedback       string `json:"feedback"`
	VoiceQuality   int    `json:"voice_quality"`
	ContentQuality int    `json:"post_quality"`
	PostHash       string `json:"post_hash"`
}

// approvals are the affirmative feedback values that mark an entry as an
// approved exemplar worth storing.
var approvals = map[string]struct{}{
	"yes":      {},
	"y":        {},
	"approve":  {},
	"approved": {},
	"ok":       {},
	"good":     {},
}

// Approved reports whether the entry's feedback marks it approved.
// Free-text feedback that merely begins with an affirmative ("yes, but
// tighten the hook") counts: the watcher stores the post and keeps the
// full feedback text alongside it.
func (e Entry) Approved() bool {
	feedback := strings.ToLower(strings.TrimSpace(e.Feedback))
	if feedback == "" {
		return false
	}
	if _, ok := approvals[feedback]; ok {
		return true
	}

	first := strings.FieldsFunc(feedback, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == ':'
	})
	if len(first) == 0 {
		return false
	}
	_, ok := approvals[first[0]]
	return ok
}

// ToPost normalizes the entry into a store record.
func (e Entry) ToPost() (post.Post, error) {
	return post.New(post.Input{
		ContentHash:    e.PostHash,
		Topic:          e.Topic,
		Text:           e.Post,
		ClientScope:    e.ClientID,
		Feedback:       e.Feedback,
		VoiceQuality:   e.VoiceQuality,
		ContentQuality: e.ContentQuality,
		CreatedAt:      e.Timestamp,
	})
}

// ParseFile reads ledger entries from path. A leading '[' selects JSON
// array parsing; anything else is treated as JSON lines. Malformed lines
// are skipped with a warning rather than failing the whole scan, since a
// partially-written tail line is normal while a producer is appending.
func ParseFile(path string, logger *zap.Logger) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing ledger array: %w", err)
		}
		return entries, nil
	}

	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logger.Warn("skipping malformed ledger line",
				zap.Int("line", lineNo),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ledger: %w", err)
	}

	return entries, nil
}

// Memory is the slice of the store the ledger scanner needs.
type Memory interface {
	Exists(contentHash string) bool
	Add(ctx context.Context, p post.Post) error
}

// Scan parses the ledger at path and adds every approved, not-yet-stored
// entry to the memory store. Returns the number of posts added.
func Scan(ctx context.Context, path string, mem Memory, logger *zap.Logger) (int, error) {
	entries, err := ParseFile(path, logger)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, entry := range entries {
		if !entry.Approved() {
			continue
		}

		p, err := entry.ToPost()
		if err != nil {
			if errors.Is(err, post.ErrNoContent) {
				logger.Warn("skipping ledger entry with no content",
					zap.String("topic", entry.Topic),
				)
				continue
			}
			return added, err
		}

		if mem.Exists(p.ContentHash) {
			continue
		}

		if err := mem.Add(ctx, p); err != nil {
			return added, fmt.Errorf("adding approved post: %w", err)
		}
		added++
	}

	return added, nil
}
