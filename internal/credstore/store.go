// Package credstore reads and rewrites profile bindings in the AWS shared
// credentials file. Rewrites go through a full parse-modify-serialize cycle
// so unknown keys, sections, and comments survive, and the previous content
// is copied to a sibling .backup file before the live file is touched.
package credstore

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	arerrors "github.com/systmms/awsrotate/internal/errors"
)

const (
	// EnvCredentialsFile overrides the credentials file location, matching
	// the variable the AWS SDKs honor.
	EnvCredentialsFile = "AWS_SHARED_CREDENTIALS_FILE"

	// BackupSuffix is appended to the store path for the pre-write copy.
	BackupSuffix = ".backup"

	keyAccessKeyID     = "aws_access_key_id"
	keySecretAccessKey = "aws_secret_access_key"
)

// Store is a handle on one credentials file.
type Store struct {
	path string
}

// New creates a store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Resolve returns the credentials file location: the explicit override if
// set, else the AWS_SHARED_CREDENTIALS_FILE environment variable, else
// ~/.aws/credentials. Resolution never touches the filesystem.
func Resolve(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(EnvCredentialsFile); env != "" {
		return env
	}
	return DefaultPath()
}

// DefaultPath returns ~/.aws/credentials, falling back to a relative path
// when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "credentials")
	}
	return filepath.Join(home, ".aws", "credentials")
}

// Path returns the file this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the sibling path the pre-write copy goes to.
func (s *Store) BackupPath() string {
	return s.path + BackupSuffix
}

// ListProfiles returns the profile names in the store. A missing file is a
// normal first-run state and yields an empty list.
func (s *Store) ListProfiles() ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}

	var profiles []string
	for _, name := range f.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		profiles = append(profiles, name)
	}
	return profiles, nil
}

// ReadBinding returns the access key ID and secret bound to the profile.
// A missing file, profile, or key yields empty strings, not an error.
func (s *Store) ReadBinding(profile string) (string, string, error) {
	f, err := s.load()
	if err != nil {
		return "", "", err
	}
	if f == nil {
		return "", "", nil
	}

	section, err := f.GetSection(profile)
	if err != nil {
		return "", "", nil
	}

	accessKeyID := section.Key(keyAccessKeyID).String()
	secret := section.Key(keySecretAccessKey).String()
	if accessKeyID == "" || secret == "" {
		return "", "", nil
	}
	return accessKeyID, secret, nil
}

// WriteBinding rebinds the profile to the given key pair. The existing file
// is copied to BackupPath first, parent directories are created as needed,
// and every other section is rewritten unchanged.
func (s *Store) WriteBinding(profile, accessKeyID, secret string) error {
	if err := s.backup(); err != nil {
		return err
	}

	f, err := s.load()
	if err != nil {
		return err
	}
	if f == nil {
		f = ini.Empty()
	}

	section := f.Section(profile)
	section.Key(keyAccessKeyID).SetValue(accessKeyID)
	section.Key(keySecretAccessKey).SetValue(secret)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return arerrors.StoreWriteFailedError{Path: s.path, Err: err}
	}
	if err := f.SaveTo(s.path); err != nil {
		return arerrors.StoreWriteFailedError{Path: s.path, Err: err}
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return arerrors.StoreWriteFailedError{Path: s.path, Err: err}
	}
	return nil
}

// load parses the store file. Returns (nil, nil) when the file is absent.
func (s *Store) load() (*ini.File, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := ini.Load(s.path)
	if err != nil {
		return nil, arerrors.StoreUnreadableError{Path: s.path, Err: err}
	}
	return f, nil
}

// backup copies the live file to BackupPath, overwriting any prior backup.
// No file, no backup.
func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return arerrors.StoreWriteFailedError{Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.BackupPath(), data, 0o600); err != nil {
		return arerrors.StoreWriteFailedError{Path: s.BackupPath(), Err: err}
	}
	return nil
}
