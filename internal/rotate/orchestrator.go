package rotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/systmms/awsrotate/internal/awsgw"
	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/logging"
)

// Gateway is the provider contract the orchestrator drives.
type Gateway interface {
	ResolveIdentity(ctx context.Context) (awsgw.Identity, error)
	ListKeys(ctx context.Context, identity awsgw.Identity) ([]awsgw.AccessKey, error)
	CreateKey(ctx context.Context, identity awsgw.Identity) (awsgw.NewAccessKey, error)
	DeleteKey(ctx context.Context, identity awsgw.Identity, keyID string) error
}

// Store is the local credential store contract.
type Store interface {
	ListProfiles() ([]string, error)
	ReadBinding(profile string) (string, string, error)
	WriteBinding(profile, accessKeyID, secret string) error
	Path() string
	BackupPath() string
}

// UI is the single confirmation/notification surface the orchestrator talks
// through. Implementations prompt a terminal or script the answers in tests.
type UI interface {
	// ConfirmDefaultYes asks a yes/no question; empty input means yes.
	ConfirmDefaultYes(prompt string) (bool, error)
	// SelectProfile asks which profile to rotate when several exist.
	SelectProfile(profiles []string) (string, error)
	// AskKeyID reads a free-form access key ID.
	AskKeyID(prompt string) (string, error)
	// ShowKeys renders the key table, marking the bound key.
	ShowKeys(keys []awsgw.AccessKey, boundID string)
	// RevealSecret prints a one-time secret that would otherwise be lost.
	RevealSecret(keyID, secret string)
}

// Orchestrator sequences one rotation run: resolve the caller, free a key
// slot when at the cap, create the replacement, persist it locally, then
// clean up the superseded key. Any failure aborts the remaining steps;
// nothing is retried.
type Orchestrator struct {
	gw     Gateway
	store  Store
	ui     UI
	logger *logging.Logger
}

// New creates an orchestrator.
func New(gw Gateway, store Store, ui UI, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, store: store, ui: ui, logger: logger}
}

// Rotate runs the full rotation for one profile. An empty profile means
// pick one from the store (single profile, or ask when several exist).
func (o *Orchestrator) Rotate(ctx context.Context, profile string) error {
	identity, err := o.gw.ResolveIdentity(ctx)
	if err != nil {
		return err
	}
	o.logger.Info("Rotating access keys for %s (account %s)", identity.UserName, identity.Account)

	profile, err = o.pickProfile(profile)
	if err != nil {
		return err
	}
	o.logger.Info("Working with profile %q in %s", profile, o.store.Path())

	boundID, _, err := o.store.ReadBinding(profile)
	if err != nil {
		return err
	}
	if boundID == "" {
		o.logger.Warn("No access key bound to profile %q yet", profile)
	}

	keys, err := o.gw.ListKeys(ctx, identity)
	if err != nil {
		return err
	}
	o.ui.ShowKeys(keys, boundID)

	// Capacity comes first: the new key can only be created once a slot is
	// free, and the retired ID feeds the double-deletion guard below.
	retiredID := ""
	if len(keys) >= awsgw.MaxAccessKeys {
		retiredID, err = o.freeCapacity(ctx, identity, keys, boundID)
		if err != nil {
			return err
		}
	}

	newKey, err := o.gw.CreateKey(ctx, identity)
	if err != nil {
		return err
	}
	o.logger.Info("Created access key %s", newKey.ID)

	// Persist before any cleanup deletion so the store never points at a
	// key this run deleted.
	if err := o.persist(profile, newKey); err != nil {
		return err
	}
	newKey.Secret.Destroy()
	o.logger.Info("Updated %s [%s], previous content backed up to %s",
		o.store.Path(), profile, o.store.BackupPath())

	if err := o.cleanup(ctx, identity, keys, boundID, retiredID); err != nil {
		return err
	}

	final, err := o.gw.ListKeys(ctx, identity)
	if err != nil {
		return err
	}
	o.ui.ShowKeys(final, newKey.ID)

	o.logger.Info("Rotation complete. Test your applications against the new key; the old credentials file is kept at %s", o.store.BackupPath())
	return nil
}

// pickProfile resolves which profile to rotate: the explicit one, the only
// one present, or the user's pick. A store with no profiles yet rotates
// into "default".
func (o *Orchestrator) pickProfile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	profiles, err := o.store.ListProfiles()
	if err != nil {
		return "", err
	}
	switch len(profiles) {
	case 0:
		return "default", nil
	case 1:
		return profiles[0], nil
	}
	return o.ui.SelectProfile(profiles)
}

// freeCapacity retires one key to make room, returning the retired ID. The
// selector's pick is a recommendation: the user confirms it or names
// another key. Deleting a key the user named explicitly is fatal when the
// key does not exist.
func (o *Orchestrator) freeCapacity(ctx context.Context, identity awsgw.Identity, keys []awsgw.AccessKey, boundID string) (string, error) {
	plan := Recommend(keys, boundID)
	if plan.Key == nil {
		// Should never happen past the capacity check; say so, don't hide it.
		o.logger.Warn("At the key limit but found no retirement candidate, continuing without retirement")
		return "", nil
	}

	o.logger.Warn("User %s already has %d access keys (the AWS limit)", identity.UserName, awsgw.MaxAccessKeys)

	confirmed, err := o.ui.ConfirmDefaultYes(fmt.Sprintf("Retire access key %s (%s)?", plan.Key.ID, plan.Reason))
	if err != nil {
		return "", err
	}

	target := plan.Key.ID
	if !confirmed {
		entered, err := o.ui.AskKeyID("Enter the access key ID to retire instead")
		if err != nil {
			return "", err
		}
		entered = strings.TrimSpace(entered)
		if entered == "" {
			return "", arerrors.UserCancelledError{Step: "retirement"}
		}
		target = entered
	}

	if err := o.gw.DeleteKey(ctx, identity, target); err != nil {
		return "", err
	}
	o.logger.Info("Retired access key %s", target)
	return target, nil
}

// persist writes the new binding to the store. When that fails the secret
// would be lost with the run, so it is revealed once before the error
// propagates.
func (o *Orchestrator) persist(profile string, newKey awsgw.NewAccessKey) error {
	locked, err := newKey.Secret.Open()
	if err != nil {
		return arerrors.UserError{
			Message: "Could not access the new key's secret",
			Err:     err,
		}
	}
	defer locked.Destroy()

	if err := o.store.WriteBinding(profile, newKey.ID, string(locked.Bytes())); err != nil {
		o.logger.Error("The new key %s exists in AWS but could not be saved locally; its secret is shown once below", newKey.ID)
		o.ui.RevealSecret(newKey.ID, string(locked.Bytes()))
		return err
	}
	return nil
}

// cleanup deletes the previously bound key after the replacement is safely
// persisted. Skipped when nothing was bound, when the bound key was already
// retired for capacity, or when it is no longer live. A racing manual
// deletion counts as success.
func (o *Orchestrator) cleanup(ctx context.Context, identity awsgw.Identity, keys []awsgw.AccessKey, boundID, retiredID string) error {
	if boundID == "" || boundID == retiredID {
		return nil
	}

	live := false
	for _, key := range keys {
		if key.ID == boundID {
			live = true
			break
		}
	}
	if !live {
		o.logger.Debug("Previously bound key %s no longer exists, skipping cleanup", boundID)
		return nil
	}

	confirmed, err := o.ui.ConfirmDefaultYes(fmt.Sprintf("Delete the replaced access key %s?", boundID))
	if err != nil {
		return err
	}
	if !confirmed {
		o.logger.Warn("Keeping %s; delete it manually once nothing depends on it", boundID)
		return arerrors.UserCancelledError{Step: "cleanup"}
	}

	if err := o.gw.DeleteKey(ctx, identity, boundID); err != nil {
		if arerrors.IsRecordNotFound(err) {
			o.logger.Debug("Key %s was already deleted", boundID)
			return nil
		}
		return err
	}
	o.logger.Info("Deleted old access key %s", boundID)
	return nil
}
