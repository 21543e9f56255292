package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// AuthenticationFailedError means no usable credential was available to even
// ask the provider who the caller is. Always fatal.
type AuthenticationFailedError struct {
	Err error
}

func (e AuthenticationFailedError) Error() string {
	msg := "AWS authentication failed: no usable credentials"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e AuthenticationFailedError) Unwrap() error {
	return e.Err
}

// ProviderCallError is any remote IAM/STS failure other than authentication
// or a missing delete target. Fatal, never retried.
type ProviderCallError struct {
	Op  string
	Err error
}

func (e ProviderCallError) Error() string {
	return fmt.Sprintf("AWS %s failed: %v", e.Op, e.Err)
}

func (e ProviderCallError) Unwrap() error {
	return e.Err
}

// RecordNotFoundError means the delete target no longer exists. During
// post-rotation cleanup this is success-equivalent; during an explicit
// user-requested deletion it is fatal.
type RecordNotFoundError struct {
	KeyID string
	Err   error
}

func (e RecordNotFoundError) Error() string {
	return fmt.Sprintf("access key %s not found", e.KeyID)
}

func (e RecordNotFoundError) Unwrap() error {
	return e.Err
}

// StoreUnreadableError means the credentials file exists but could not be
// parsed. A missing file is not an error.
type StoreUnreadableError struct {
	Path string
	Err  error
}

func (e StoreUnreadableError) Error() string {
	return fmt.Sprintf("credentials file %s is unreadable: %v", e.Path, e.Err)
}

func (e StoreUnreadableError) Unwrap() error {
	return e.Err
}

// StoreWriteFailedError means rewriting the credentials file failed. The
// backup is written before the rewrite, so the prior content survives at
// <path>.backup even when the live file is damaged mid-write.
type StoreWriteFailedError struct {
	Path string
	Err  error
}

func (e StoreWriteFailedError) Error() string {
	return fmt.Sprintf("failed to write credentials file %s: %v", e.Path, e.Err)
}

func (e StoreWriteFailedError) Unwrap() error {
	return e.Err
}

// UserCancelledError means the user declined a confirmation or left a
// required input empty. Exit status 1, but not an internal failure.
type UserCancelledError struct {
	Step string
}

func (e UserCancelledError) Error() string {
	if e.Step == "" {
		return "cancelled by user"
	}
	return fmt.Sprintf("cancelled by user at %s", e.Step)
}

// IsAuthenticationFailed reports whether err is an AuthenticationFailedError.
func IsAuthenticationFailed(err error) bool {
	var e AuthenticationFailedError
	return errors.As(err, &e)
}

// IsRecordNotFound reports whether err is a RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	var e RecordNotFoundError
	return errors.As(err, &e)
}

// IsUserCancelled reports whether err is a UserCancelledError.
func IsUserCancelled(err error) bool {
	var e UserCancelledError
	return errors.As(err, &e)
}
