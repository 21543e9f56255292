package commands

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/systmms/awsrotate/internal/awsgw"
	"github.com/systmms/awsrotate/internal/config"
	"github.com/systmms/awsrotate/internal/credstore"
	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/prompt"
)

func newStore(cfg *config.Config) *credstore.Store {
	return credstore.New(credstore.Resolve(cfg.CredentialsFile))
}

func newTerminal(cfg *config.Config) *prompt.Terminal {
	return prompt.NewTerminal(os.Stdin, os.Stdout, cfg.NonInteractive)
}

// newGateway builds the provider gateway from the configured session mode.
// In profile mode the SDK is pinned to the profile being rotated so the
// call identity matches the key pair under management.
func newGateway(ctx context.Context, cfg *config.Config) (*awsgw.Gateway, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Mode == config.ModeProfile && cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, awsconfig.WithSharedCredentialsFiles([]string{cfg.CredentialsFile}))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, arerrors.AuthenticationFailedError{Err: err}
	}
	return awsgw.New(awsCfg, cfg.Logger), nil
}
