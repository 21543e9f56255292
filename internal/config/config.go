package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/logging"
)

// Mode selects how the AWS session for provider calls is obtained.
type Mode string

const (
	// ModeAmbient uses the default AWS credential chain (env vars, shared
	// config, instance roles) regardless of which profile is rotated.
	ModeAmbient Mode = "ambient"
	// ModeProfile pins the session to the profile being rotated, so the
	// key that is rotated is also the key used to talk to AWS.
	ModeProfile Mode = "profile"
)

// Config holds the runtime configuration
type Config struct {
	Path            string // defaults file path
	Logger          *logging.Logger
	NonInteractive  bool
	Profile         string
	Mode            Mode
	CredentialsFile string
}

// Defaults is the optional ~/.config/awsrotate.yaml file. Flags win over
// it; it only fills in what the user did not pass.
type Defaults struct {
	Profile         string `yaml:"profile,omitempty"`
	Mode            string `yaml:"mode,omitempty"`
	NoColor         bool   `yaml:"no_color,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// DefaultPath returns ~/.config/awsrotate.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "awsrotate.yaml")
	}
	return filepath.Join(home, ".config", "awsrotate.yaml")
}

// LoadDefaults reads the defaults file. A missing file yields zero
// defaults, not an error.
func LoadDefaults(path string) (Defaults, error) {
	var defaults Defaults

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, arerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return Defaults{}, arerrors.UserError{
			Message:    "Invalid configuration file " + path,
			Details:    err.Error(),
			Suggestion: "Check for YAML indentation errors and missing quotes",
			Err:        err,
		}
	}
	return defaults, nil
}

// Apply fills unset Config fields from the defaults.
func (c *Config) Apply(defaults Defaults) {
	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if c.Mode == "" && defaults.Mode != "" {
		c.Mode = Mode(defaults.Mode)
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = defaults.CredentialsFile
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Mode {
	case "", ModeAmbient, ModeProfile:
		return nil
	}
	return arerrors.UserError{
		Message:    "Invalid mode " + string(c.Mode),
		Suggestion: "Use --mode ambient or --mode profile",
	}
}
