// Package awsgw is the thin typed contract over the remote identity
// provider: STS for resolving the caller, IAM for listing, creating, and
// deleting access keys. Every call either succeeds or returns one of the
// typed errors from internal/errors; no call is retried here.
package awsgw

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/logging"
	"github.com/systmms/awsrotate/internal/secure"
)

// MaxAccessKeys is the IAM-imposed cap on access keys per user. The remote
// provider enforces it; this constant only exists so the caller never asks
// for a key it cannot get.
const MaxAccessKeys = 2

// KeyStatus is the activation state of an access key.
type KeyStatus string

const (
	StatusActive   KeyStatus = "Active"
	StatusInactive KeyStatus = "Inactive"
)

// Identity is the resolved caller. Immutable for the run.
type Identity struct {
	UserName string
	Account  string
	ARN      string
}

// AccessKey is the provider-side view of one access key.
type AccessKey struct {
	ID        string
	Status    KeyStatus
	CreatedAt time.Time
}

// NewAccessKey is a freshly created key. The secret is revealed exactly
// once by the provider and is held in a protected enclave until persisted.
type NewAccessKey struct {
	AccessKey
	Secret *secure.SecureBuffer
}

// STSAPI is the subset of the STS client the gateway uses.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IAMAPI is the subset of the IAM client the gateway uses.
type IAMAPI interface {
	ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	CreateAccessKey(ctx context.Context, params *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error)
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

// Gateway wraps the STS and IAM clients.
type Gateway struct {
	sts    STSAPI
	iam    IAMAPI
	logger *logging.Logger
}

// New creates a gateway from a loaded AWS config.
func New(cfg aws.Config, logger *logging.Logger) *Gateway {
	return &Gateway{
		sts:    sts.NewFromConfig(cfg),
		iam:    iam.NewFromConfig(cfg),
		logger: logger,
	}
}

// NewWithClients creates a gateway with explicit clients (used in tests).
func NewWithClients(stsClient STSAPI, iamClient IAMAPI, logger *logging.Logger) *Gateway {
	return &Gateway{sts: stsClient, iam: iamClient, logger: logger}
}

// ResolveIdentity asks STS who the caller is.
func (g *Gateway) ResolveIdentity(ctx context.Context) (Identity, error) {
	out, err := g.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		if isAuthenticationError(err) {
			return Identity{}, arerrors.AuthenticationFailedError{Err: err}
		}
		return Identity{}, arerrors.ProviderCallError{Op: "GetCallerIdentity", Err: err}
	}

	identity := Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}
	identity.UserName = userNameFromARN(identity.ARN)
	g.logger.Debug("resolved caller %s (account %s)", identity.UserName, identity.Account)
	return identity, nil
}

// ListKeys returns every access key of the identity, both states included.
// An empty result is valid for a user with no keys yet.
func (g *Gateway) ListKeys(ctx context.Context, identity Identity) ([]AccessKey, error) {
	out, err := g.iam.ListAccessKeys(ctx, &iam.ListAccessKeysInput{
		UserName: aws.String(identity.UserName),
	})
	if err != nil {
		return nil, arerrors.ProviderCallError{Op: "ListAccessKeys", Err: err}
	}

	keys := make([]AccessKey, 0, len(out.AccessKeyMetadata))
	for _, meta := range out.AccessKeyMetadata {
		keys = append(keys, AccessKey{
			ID:        aws.ToString(meta.AccessKeyId),
			Status:    KeyStatus(meta.Status),
			CreatedAt: aws.ToTime(meta.CreateDate),
		})
	}
	return keys, nil
}

// CreateKey creates a new access key for the identity. The caller must have
// freed a slot first when the user is at MaxAccessKeys; IAM rejects the call
// otherwise.
func (g *Gateway) CreateKey(ctx context.Context, identity Identity) (NewAccessKey, error) {
	out, err := g.iam.CreateAccessKey(ctx, &iam.CreateAccessKeyInput{
		UserName: aws.String(identity.UserName),
	})
	if err != nil {
		return NewAccessKey{}, arerrors.ProviderCallError{Op: "CreateAccessKey", Err: err}
	}

	key := out.AccessKey
	created := NewAccessKey{
		AccessKey: AccessKey{
			ID:        aws.ToString(key.AccessKeyId),
			Status:    KeyStatus(key.Status),
			CreatedAt: aws.ToTime(key.CreateDate),
		},
		Secret: secure.NewSecureBuffer([]byte(aws.ToString(key.SecretAccessKey))),
	}
	g.logger.Debug("created access key %s (secret %s)", created.ID, logging.Secret("redacted"))
	return created, nil
}

// DeleteKey deletes one access key. A key that is already gone surfaces as
// RecordNotFoundError so the caller can decide whether that counts as
// success.
func (g *Gateway) DeleteKey(ctx context.Context, identity Identity, keyID string) error {
	_, err := g.iam.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		UserName:    aws.String(identity.UserName),
		AccessKeyId: aws.String(keyID),
	})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			return arerrors.RecordNotFoundError{KeyID: keyID, Err: err}
		}
		return arerrors.ProviderCallError{Op: "DeleteAccessKey", Err: err}
	}
	return nil
}

// userNameFromARN extracts the user name from an IAM ARN
// (arn:aws:iam::account:user/path/name). Root ARNs have no slash; the
// segment after the last colon is used instead.
func userNameFromARN(arn string) string {
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// isAuthenticationError reports whether the STS failure means no usable
// credential rather than a generic remote failure.
func isAuthenticationError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidClientTokenId", "UnrecognizedClientException",
			"ExpiredToken", "SignatureDoesNotMatch", "MissingAuthenticationToken":
			return true
		}
	}

	errStr := err.Error()
	return strings.Contains(errStr, "failed to retrieve credentials") ||
		strings.Contains(errStr, "no EC2 IMDS role found") ||
		strings.Contains(errStr, "static credentials are empty")
}
