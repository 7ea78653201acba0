// Package importcmder provides the import command for bulk-loading posts
// from CSV or JSON exports.
package importcmder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/ledger"
	"github.com/draftloop/exemplar/pkg/logger"
	"github.com/draftloop/exemplar/pkg/post"
	"github.com/draftloop/exemplar/pkg/store"
)

type importCommander struct {
	csvPath  string
	jsonPath string
	scope    string

	configDir string
	debug     bool
	logger    *zap.Logger
}

const importLongDesc string = `Bulk-import posts from a CSV or JSON export.

CSV files need a header row; column names are matched loosely (topic,
post/text/content, client_id/scope, feedback, voice_quality, post_quality,
timestamp, post_hash). JSON files hold an array of post objects or one
object per line. Already-stored posts are skipped by content hash.

Example:
  exemplar import --csv approved_posts.csv
  exemplar import --json posts.json --scope sam_eaton`

const importShortDesc string = "Bulk-import posts from CSV or JSON"

func NewImportCmd() *cobra.Command {
	cmder := &importCommander{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: importShortDesc,
		Long:  importLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			if (cmder.csvPath == "") == (cmder.jsonPath == "") {
				return errors.New("exactly one of --csv or --json is required")
			}

			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.csvPath, "csv", "", "CSV file to import")
	cmd.Flags().StringVar(&cmder.jsonPath, "json", "", "JSON file to import")
	cmd.Flags().StringVarP(&cmder.scope, "scope", "s", "", "Scope for rows that carry none")

	return cmd
}

func (c *importCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfg, dataDir, err := bootstrap.LoadConfig(c.configDir)
	if err != nil {
		return err
	}

	s, err := bootstrap.OpenStore(cfg, dataDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var inputs []post.Input
	if c.csvPath != "" {
		inputs, err = readCSV(c.csvPath)
	} else {
		inputs, err = readJSON(c.jsonPath, c.logger)
	}
	if err != nil {
		return err
	}

	added, skipped, err := c.importAll(s, inputs)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d posts (%d skipped)\n", added, skipped)

	return nil
}

func (c *importCommander) importAll(s *store.Store, inputs []post.Input) (added, skipped int, err error) {
	ctx := context.Background()

	for _, in := range inputs {
		if in.ClientScope == "" {
			in.ClientScope = c.scope
		}

		p, err := post.New(in)
		if err != nil {
			if errors.Is(err, post.ErrNoContent) {
				c.logger.Warn("skipping row with no content", zap.String("topic", in.Topic))
				skipped++
				continue
			}
			return added, skipped, err
		}

		if s.Exists(p.ContentHash) {
			skipped++
			continue
		}

		if err := s.Add(ctx, p); err != nil {
			return added, skipped, fmt.Errorf("adding post %s: %w", p.ShortHash(), err)
		}
		added++
	}

	return added, skipped, nil
}

// columnAliases maps canonical input fields to the header names seen
// across the various spreadsheet exports.
var columnAliases = map[string][]string{
	"topic":     {"topic", "title", "subject"},
	"text":      {"post", "text", "content", "body"},
	"scope":     {"client_id", "client", "scope"},
	"feedback":  {"feedback", "approval"},
	"voice":     {"voice_quality", "voice"},
	"quality":   {"post_quality", "content_quality", "quality"},
	"timestamp": {"timestamp", "date", "created_at"},
	"hash":      {"post_hash", "hash"},
}

func readCSV(path string) ([]post.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := resolveColumns(rows[0])

	inputs := make([]post.Input, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		inputs = append(inputs, post.Input{
			ContentHash:    get("hash"),
			Topic:          get("topic"),
			Text:           get("text"),
			ClientScope:    get("scope"),
			Feedback:       get("feedback"),
			VoiceQuality:   atoiOrZero(get("voice")),
			ContentQuality: atoiOrZero(get("quality")),
			CreatedAt:      get("timestamp"),
		})
	}

	return inputs, nil
}

func resolveColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range columnAliases {
			if _, done := cols[field]; done {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
					break
				}
			}
		}
	}
	return cols
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func readJSON(path string, log *zap.Logger) ([]post.Input, error) {
	entries, err := ledger.ParseFile(path, log)
	if err != nil {
		return nil, err
	}

	inputs := make([]post.Input, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, post.Input{
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

	return inputs, nil
}
