// Package watchcmder provides the watch command for tailing a feedback
// ledger.
package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/ledger"
	"github.com/draftloop/exemplar/pkg/logger"
)

type watchCommander struct {
	ledgerPath  string
	pollSeconds int

	configDir string
	debug     bool
	logger    *zap.Logger
}

const watchLongDesc string = `Tail a feedback ledger and store approved posts as they appear.

The ledger is a JSON lines file appended to by the approval tooling.
Entries with affirmative feedback that are not yet stored (by content
hash) are added to the memory. Runs until interrupted.

Example:
  exemplar watch --ledger feedback.jsonl
  exemplar watch --ledger feedback.jsonl --poll-seconds 10`

const watchShortDesc string = "Tail a feedback ledger and store approvals"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
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

	cmd.Flags().StringVar(&cmder.ledgerPath, "ledger", "", "Feedback ledger file (default: configured ledger.path)")
	cmd.Flags().IntVar(&cmder.pollSeconds, "poll-seconds", 0, "Backstop scan interval (default: configured ledger.poll_seconds)")

	return cmd
}

func (c *watchCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfg, dataDir, err := bootstrap.LoadConfig(c.configDir)
	if err != nil {
		return err
	}

	ledgerPath := c.ledgerPath
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}
	if ledgerPath == "" {
		return errors.New("no ledger path: pass --ledger or set ledger.path")
	}

	pollSeconds := c.pollSeconds
	if !cmd.Flags().Changed("poll-seconds") {
		pollSeconds = cfg.Ledger.PollSeconds
	}

	s, err := bootstrap.OpenStore(cfg, dataDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	watcher, err := ledger.NewWatcher(ledger.WatcherConfig{
		Path:         ledgerPath,
		PollInterval: time.Duration(pollSeconds) * time.Second,
	}, s, c.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	c.logger.Info("watcher stopped")

	return nil
}
