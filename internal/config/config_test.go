package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsMissingFile(t *testing.T) {
	t.Parallel()

	defaults, err := LoadDefaults(filepath.Join(t.TempDir(), "awsrotate.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults{}, defaults)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "awsrotate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: staging
mode: profile
no_color: true
credentials_file: /tmp/creds
`), 0o600))

	defaults, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", defaults.Profile)
	assert.Equal(t, "profile", defaults.Mode)
	assert.True(t, defaults.NoColor)
	assert.Equal(t, "/tmp/creds", defaults.CredentialsFile)
}

func TestLoadDefaultsInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "awsrotate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: [unclosed"), 0o600))

	_, err := LoadDefaults(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid configuration file")
}

func TestApplyDoesNotOverrideFlags(t *testing.T) {
	t.Parallel()

	cfg := &Config{Profile: "from-flag", Mode: ModeAmbient}
	cfg.Apply(Defaults{Profile: "from-file", Mode: "profile", CredentialsFile: "/tmp/creds"})

	assert.Equal(t, "from-flag", cfg.Profile)
	assert.Equal(t, ModeAmbient, cfg.Mode)
	assert.Equal(t, "/tmp/creds", cfg.CredentialsFile)
}

func TestApplyFillsUnsetFields(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Apply(Defaults{Profile: "staging", Mode: "profile"})

	assert.Equal(t, "staging", cfg.Profile)
	assert.Equal(t, ModeProfile, cfg.Mode)
}

func TestValidateMode(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&Config{Mode: ModeAmbient}).Validate())
	assert.NoError(t, (&Config{Mode: ModeProfile}).Validate())
	assert.NoError(t, (&Config{}).Validate())

	err := (&Config{Mode: "sso"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid mode")
}
