package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/awsrotate/internal/config"
	"github.com/systmms/awsrotate/internal/rotate"
)

// NewRotateCommand creates the rotate command.
func NewRotateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Create a replacement access key and retire the old one",
		Long: `Rotate creates a new IAM access key for the calling user, writes it to
the shared credentials file, and deletes the key it replaced.

AWS caps each IAM user at two access keys. When the account is already
at the cap, rotate recommends a key to retire first: an inactive key if
one exists, otherwise the oldest active key. The previous file content
is kept next to the credentials file with a .backup suffix.`,
		Example: `  # Rotate the default profile using the ambient credential chain
  awsrotate rotate

  # Rotate a named profile, authenticating as that profile
  awsrotate rotate --profile staging --mode profile

  # Unattended rotation (accepts all recommendations)
  awsrotate rotate --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			gw, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}

			orch := rotate.New(gw, newStore(cfg), newTerminal(cfg), cfg.Logger)
			return orch.Rotate(ctx, cfg.Profile)
		},
	}
	return cmd
}
