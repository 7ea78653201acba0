// Package searchcmder provides the search command for retrieving ranked
// exemplars.
package searchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/logger"
	"github.com/draftloop/exemplar/pkg/post"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	topicStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type searchCommander struct {
	query  string
	scope  string
	topK   int
	asJSON bool

	configDir string
	debug     bool
	logger    *zap.Logger
}

const searchLongDesc string = `Retrieve stored posts ranked for use as writing-style exemplars.

Posts in the given scope are ranked by similarity to the query when the
similarity index covers the corpus, and by a quality/recency composite
otherwise. Use --top 0 to return the full scope.

Example:
  exemplar search "pricing your services" --scope sam_eaton
  exemplar search "hiring" --scope acme --top 10
  exemplar search "pricing" --scope acme --json | jq '.[].topic'`

const searchShortDesc string = "Retrieve ranked exemplars for a topic"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.scope, "scope", "s", "", "Client scope to search in")
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 5, "Number of results to return (0 = all)")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Output results as JSON")

	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func (c *searchCommander) run() error {
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

	results := s.Retrieve(context.Background(), c.query, c.scope, 0, c.topK)

	if c.asJSON {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Exemplars for:"),
		topicStyle.Render(fmt.Sprintf("%q", c.query)),
	)

	for i, p := range results {
		printResult(i+1, p)
	}

	return nil
}

// previewText flattens the post body onto one line and truncates it on a
// rune boundary so multibyte content never renders a torn character.
func previewText(text string) string {
	preview := strings.ReplaceAll(text, "\n", " ")
	if runes := []rune(preview); len(runes) > 80 {
		preview = string(runes[:77]) + "..."
	}
	return preview
}

func printResult(rank int, p post.Post) {
	fmt.Printf("  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		topicStyle.Render(p.Topic),
		scoreStyle.Render(fmt.Sprintf("voice: %d  quality: %d", p.VoiceQuality, p.ContentQuality)),
	)

	fmt.Printf("  %s\n", previewStyle.Render(previewText(p.Text)))
	fmt.Printf("  %s\n\n", dimStyle.Render(fmt.Sprintf("%s  %s", p.CreatedAt, p.ShortHash())))
}
