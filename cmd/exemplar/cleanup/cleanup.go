// Package cleanupcmder provides the cleanup command for age-based eviction.
package cleanupcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/logger"
)

type cleanupCommander struct {
	maxAgeDays int

	configDir string
	debug     bool
	logger    *zap.Logger
}

const cleanupLongDesc string = `Remove posts older than the age limit and rebuild the similarity index.

Posts with unparsable timestamps are retained. The index is reconstructed
from the surviving posts because the index backends do not support point
deletion. Safe to run on a schedule; removing nothing is a normal outcome.

Example:
  exemplar cleanup
  exemplar cleanup --max-age-days 90`

const cleanupShortDesc string = "Evict posts past the age limit"

func NewCleanupCmd() *cobra.Command {
	cmder := &cleanupCommander{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: cleanupShortDesc,
		Long:  cleanupLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVar(&cmder.maxAgeDays, "max-age-days", 0, "Age limit in days (default: configured cleanup.max_age_days)")

	return cmd
}

func (c *cleanupCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfg, dataDir, err := bootstrap.LoadConfig(c.configDir)
	if err != nil {
		return err
	}

	maxAgeDays := c.maxAgeDays
	if !cmd.Flags().Changed("max-age-days") {
		maxAgeDays = cfg.Cleanup.MaxAgeDays
	}
	if maxAgeDays <= 0 {
		return fmt.Errorf("max-age-days must be positive, got %d", maxAgeDays)
	}

	s, err := bootstrap.OpenStore(cfg, dataDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Cleanup(context.Background(), maxAgeDays)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d posts older than %d days (%d remaining)\n", removed, maxAgeDays, s.Size())

	return nil
}
