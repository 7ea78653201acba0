// Package exemplarcmder
package exemplarcmder

import (
	"github.com/spf13/cobra"

	addcmder "github.com/draftloop/exemplar/cmd/exemplar/add"
	cleanupcmder "github.com/draftloop/exemplar/cmd/exemplar/cleanup"
	configcmder "github.com/draftloop/exemplar/cmd/exemplar/config"
	importcmder "github.com/draftloop/exemplar/cmd/exemplar/importer"
	searchcmder "github.com/draftloop/exemplar/cmd/exemplar/search"
	statscmder "github.com/draftloop/exemplar/cmd/exemplar/stats"
	watchcmder "github.com/draftloop/exemplar/cmd/exemplar/watch"
)

const exemplarLongDesc string = `Exemplar is the approved-post memory for your content pipeline.

Store approved posts with their quality scores and feedback, then retrieve
them ranked by similarity to a topic for use as writing-style exemplars.

Common commands:
  exemplar add        Store one approved post
  exemplar search     Retrieve ranked exemplars for a topic
  exemplar import     Bulk-import posts from CSV or JSON
  exemplar watch      Tail a feedback ledger and store approvals
  exemplar cleanup    Evict posts past the age limit
  exemplar stats      Show store statistics`

const exemplarShortDesc string = "Exemplar - Approved-post memory"

func NewExemplarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exemplar",
		Short: exemplarShortDesc,
		Long:  exemplarLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .exemplar/ directory")

	// Add subcommands
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(cleanupcmder.NewCleanupCmd())
	cmd.AddCommand(importcmder.NewImportCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
