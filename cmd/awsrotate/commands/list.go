package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/awsrotate/internal/config"
)

// NewListCommand creates the list command.
func NewListCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the calling user's access keys",
		Long: `List shows every access key on the calling IAM user, with a marker on
the key currently bound in the shared credentials file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			gw, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}

			identity, err := gw.ResolveIdentity(ctx)
			if err != nil {
				return err
			}
			cfg.Logger.Info("Authenticated as %s (account %s)", identity.ARN, identity.Account)

			keys, err := gw.ListKeys(ctx, identity)
			if err != nil {
				return err
			}

			profile := cfg.Profile
			if profile == "" {
				profile = "default"
			}
			boundID, _, err := newStore(cfg).ReadBinding(profile)
			if err != nil {
				cfg.Logger.Warn("Could not read credentials file: %v", err)
			}

			newTerminal(cfg).ShowKeys(keys, boundID)
			return nil
		},
	}
	return cmd
}
