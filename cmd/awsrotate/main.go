package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/awsrotate/cmd/awsrotate/commands"
	"github.com/systmms/awsrotate/internal/config"
	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	code := 0
	if err := run(); err != nil {
		if arerrors.IsUserCancelled(err) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		code = 1
	}
	// Wipe any secret material memguard still tracks before exiting.
	memguard.Purge()
	os.Exit(code)
}

func run() error {
	// Global flags
	var (
		configFile      string
		noColor         bool
		debug           bool
		assumeYes       bool
		profile         string
		mode            string
		credentialsFile string
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "awsrotate",
		Short: "Rotate AWS IAM access keys and update the shared credentials file",
		Long: `awsrotate creates a replacement IAM access key for the calling user,
writes it into the AWS shared credentials file (backing up the previous
content first), and retires the superseded key.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := config.LoadDefaults(configFile)
			if err != nil {
				return err
			}

			cfg.Path = configFile
			cfg.NonInteractive = assumeYes
			cfg.Profile = profile
			cfg.Mode = config.Mode(mode)
			cfg.CredentialsFile = credentialsFile
			cfg.Apply(defaults)
			cfg.Logger = logging.New(debug, noColor || defaults.NoColor)
			return cfg.Validate()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Assume yes on confirmations (non-interactive)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Credentials file profile to work with")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Session mode: ambient (default credential chain) or profile (pin to the rotated profile)")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials-file", "", "Credentials file path (overrides AWS_SHARED_CREDENTIALS_FILE)")

	// Add commands
	rootCmd.AddCommand(
		commands.NewRotateCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewDeleteCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
