package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/awsrotate/internal/config"
	arerrors "github.com/systmms/awsrotate/internal/errors"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <access-key-id>",
		Short: "Delete a specific access key",
		Long: `Delete removes one access key from the calling IAM user by ID. Unlike
the cleanup step of rotate, deleting a key that does not exist is an
error here: the ID was given explicitly, so a miss means a typo or a
key already gone that the caller should know about.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyID := args[0]

			gw, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}

			identity, err := gw.ResolveIdentity(ctx)
			if err != nil {
				return err
			}

			profile := cfg.Profile
			if profile == "" {
				profile = "default"
			}
			boundID, _, _ := newStore(cfg).ReadBinding(profile)
			if boundID == keyID {
				cfg.Logger.Warn("%s is the key bound in the credentials file; deleting it will break profile %q", keyID, profile)
			}

			ok, err := newTerminal(cfg).ConfirmDefaultYes(fmt.Sprintf("Delete access key %s for user %s?", keyID, identity.UserName))
			if err != nil {
				return err
			}
			if !ok {
				return arerrors.UserCancelledError{Step: "deletion"}
			}

			if err := gw.DeleteKey(ctx, identity, keyID); err != nil {
				return err
			}
			cfg.Logger.Info("Deleted access key %s", keyID)
			return nil
		},
	}
	return cmd
}
