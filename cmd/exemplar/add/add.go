// Package addcmder provides the add command for storing a single post.
package addcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/bootstrap"
	"github.com/draftloop/exemplar/pkg/logger"
	"github.com/draftloop/exemplar/pkg/post"
)

type addCommander struct {
	topic          string
	text           string
	scope          string
	feedback       string
	voiceQuality   int
	contentQuality int
	hash           string
	timestamp      string

	configDir string
	debug     bool
	logger    *zap.Logger
}

const addLongDesc string = `Store one approved post in the exemplar memory.

The content hash is computed from the normalized topic and text unless
--hash supplies one. Adding a post whose hash already exists is a no-op.

Example:
  exemplar add --topic "pricing your services" --text "..." --scope sam_eaton \
    --feedback yes --voice 8 --quality 9`

const addShortDesc string = "Store one approved post"

func NewAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: addShortDesc,
		Long:  addLongDesc,
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

	cmd.Flags().StringVarP(&cmder.topic, "topic", "t", "", "Post topic")
	cmd.Flags().StringVar(&cmder.text, "text", "", "Post body")
	cmd.Flags().StringVarP(&cmder.scope, "scope", "s", "", "Client scope the post belongs to")
	cmd.Flags().StringVar(&cmder.feedback, "feedback", "", "Approval feedback text")
	cmd.Flags().IntVar(&cmder.voiceQuality, "voice", 0, "Voice quality score 1-10 (default: neutral)")
	cmd.Flags().IntVar(&cmder.contentQuality, "quality", 0, "Content quality score 1-10 (default: neutral)")
	cmd.Flags().StringVar(&cmder.hash, "hash", "", "Explicit content hash (default: derived from content)")
	cmd.Flags().StringVar(&cmder.timestamp, "timestamp", "", "Creation timestamp (default: now)")

	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func (c *addCommander) run() error {
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

	p, err := post.New(post.Input{
		ContentHash:    c.hash,
		Topic:          c.topic,
		Text:           c.text,
		ClientScope:    c.scope,
		Feedback:       c.feedback,
		VoiceQuality:   c.voiceQuality,
		ContentQuality: c.contentQuality,
		CreatedAt:      c.timestamp,
	})
	if err != nil {
		return err
	}

	if err := s.Add(context.Background(), p); err != nil {
		return err
	}

	fmt.Printf("Stored post %s (scope %s)\n", p.ShortHash(), p.ClientScope)

	return nil
}
