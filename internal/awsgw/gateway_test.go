package awsgw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arerrors "github.com/systmms/awsrotate/internal/errors"
	"github.com/systmms/awsrotate/internal/logging"
)

// fakeSTSClient implements STSAPI for tests.
type fakeSTSClient struct {
	output *sts.GetCallerIdentityOutput
	err    error
}

func (f *fakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

// fakeIAMClient implements IAMAPI for tests.
type fakeIAMClient struct {
	keys      []iamtypes.AccessKeyMetadata
	listErr   error
	createOut *iam.CreateAccessKeyOutput
	createErr error
	deleteErr error
	deleted   []string
}

func (f *fakeIAMClient) ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &iam.ListAccessKeysOutput{AccessKeyMetadata: f.keys}, nil
}

func (f *fakeIAMClient) CreateAccessKey(ctx context.Context, params *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeIAMClient) DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(params.AccessKeyId))
	return &iam.DeleteAccessKeyOutput{}, nil
}

func testLogger() *logging.Logger {
	return logging.New(false, true)
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	stsClient := &fakeSTSClient{output: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/ops/alice"),
	}}
	gw := NewWithClients(stsClient, &fakeIAMClient{}, testLogger())

	identity, err := gw.ResolveIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.UserName)
	assert.Equal(t, "123456789012", identity.Account)
}

func TestResolveIdentityAuthenticationFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"invalid token", &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"}},
		{"no credentials", errors.New("operation error STS: GetCallerIdentity, failed to retrieve credentials")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := NewWithClients(&fakeSTSClient{err: tt.err}, &fakeIAMClient{}, testLogger())
			_, err := gw.ResolveIdentity(context.Background())
			assert.True(t, arerrors.IsAuthenticationFailed(err))
		})
	}
}

func TestResolveIdentityOtherFailureIsProviderError(t *testing.T) {
	t.Parallel()

	gw := NewWithClients(&fakeSTSClient{err: &smithy.GenericAPIError{Code: "ServiceUnavailable"}}, &fakeIAMClient{}, testLogger())
	_, err := gw.ResolveIdentity(context.Background())

	var provider arerrors.ProviderCallError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, "GetCallerIdentity", provider.Op)
	assert.False(t, arerrors.IsAuthenticationFailed(err))
}

func TestListKeys(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	iamClient := &fakeIAMClient{keys: []iamtypes.AccessKeyMetadata{
		{AccessKeyId: aws.String("AKIA1"), Status: iamtypes.StatusTypeActive, CreateDate: aws.Time(t0)},
		{AccessKeyId: aws.String("AKIA2"), Status: iamtypes.StatusTypeInactive, CreateDate: aws.Time(t0.Add(time.Hour))},
	}}
	gw := NewWithClients(&fakeSTSClient{}, iamClient, testLogger())

	keys, err := gw.ListKeys(context.Background(), Identity{UserName: "alice"})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, AccessKey{ID: "AKIA1", Status: StatusActive, CreatedAt: t0}, keys[0])
	assert.Equal(t, StatusInactive, keys[1].Status)
}

func TestListKeysEmptyIsValid(t *testing.T) {
	t.Parallel()

	gw := NewWithClients(&fakeSTSClient{}, &fakeIAMClient{}, testLogger())
	keys, err := gw.ListKeys(context.Background(), Identity{UserName: "alice"})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCreateKeyProtectsSecret(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	iamClient := &fakeIAMClient{createOut: &iam.CreateAccessKeyOutput{
		AccessKey: &iamtypes.AccessKey{
			AccessKeyId:     aws.String("AKIANEW"),
			SecretAccessKey: aws.String("wJalrXUtnFEMI/K7MDENG"),
			Status:          iamtypes.StatusTypeActive,
			CreateDate:      aws.Time(now),
		},
	}}
	gw := NewWithClients(&fakeSTSClient{}, iamClient, testLogger())

	key, err := gw.CreateKey(context.Background(), Identity{UserName: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "AKIANEW", key.ID)
	assert.Equal(t, StatusActive, key.Status)

	locked, err := key.Secret.Open()
	require.NoError(t, err)
	defer locked.Destroy()
	assert.Equal(t, "wJalrXUtnFEMI/K7MDENG", string(locked.Bytes()))
}

func TestDeleteKey(t *testing.T) {
	t.Parallel()

	iamClient := &fakeIAMClient{}
	gw := NewWithClients(&fakeSTSClient{}, iamClient, testLogger())

	require.NoError(t, gw.DeleteKey(context.Background(), Identity{UserName: "alice"}, "AKIA1"))
	assert.Equal(t, []string{"AKIA1"}, iamClient.deleted)
}

func TestDeleteKeyNotFound(t *testing.T) {
	t.Parallel()

	iamClient := &fakeIAMClient{deleteErr: &iamtypes.NoSuchEntityException{Message: aws.String("no such key")}}
	gw := NewWithClients(&fakeSTSClient{}, iamClient, testLogger())

	err := gw.DeleteKey(context.Background(), Identity{UserName: "alice"}, "AKIAGONE")
	assert.True(t, arerrors.IsRecordNotFound(err))
}

func TestUserNameFromARN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arn  string
		want string
	}{
		{"arn:aws:iam::123456789012:user/alice", "alice"},
		{"arn:aws:iam::123456789012:user/ops/alice", "alice"},
		{"arn:aws:iam::123456789012:root", "root"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, userNameFromARN(tt.arn))
	}
}
