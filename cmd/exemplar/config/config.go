// Package configcmder provides the config command for managing persistent
// exemplar configuration stored in the .exemplar/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent exemplar configuration.

Configuration is stored as config.toml in the .exemplar/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  store.dir,
  embedding.provider, embedding.target, embedding.model,
  embedding.api_key, embedding.dimensions,
  index.provider, index.path,
  ledger.path, ledger.poll_seconds,
  cleanup.max_age_days

Use subcommands to get, set, or list configuration values:
  exemplar config set <key> <value>    Set a configuration value
  exemplar config get <key>            Get a configuration value
  exemplar config list                 List all configuration values

Examples:
  exemplar config set embedding.provider ollama
  exemplar config set embedding.model nomic-embed-text
  exemplar config get index.provider
  exemplar config list`

const configShortDesc string = "Manage persistent exemplar configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
