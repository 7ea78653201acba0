// Package statscmder provides the stats command.
package statscmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/logger"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
)

type statsCommander struct {
	asJSON bool

	configDir string
	debug     bool
	logger    *zap.Logger
}

const statsShortDesc string = "Show store statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  `Show post counts, quality means, and similarity index status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Output stats as JSON")

	return cmd
}

func (c *statsCommander) run() error {
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

	stats := s.Stats(context.Background())

	if c.asJSON {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printRow("Total posts", fmt.Sprintf("%d", stats.TotalPosts))
	printRow("Unique scopes", fmt.Sprintf("%d", stats.UniqueScopes))
	printRow("Avg voice quality", fmt.Sprintf("%.2f", stats.AvgVoiceQuality))
	printRow("Avg content quality", fmt.Sprintf("%.2f", stats.AvgContentQuality))
	printRow("Index available", fmt.Sprintf("%t", stats.IndexAvailable))
	printRow("Index size", fmt.Sprintf("%d", stats.IndexSize))

	return nil
}

func printRow(label, value string) {
	fmt.Printf("  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-22s", label+":")),
		valueStyle.Render(value),
	)
}
