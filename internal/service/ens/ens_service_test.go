package ens

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serverWallet = "0x1111111111111111111111111111111111111111"
	memberWallet = "0x2222222222222222222222222222222222222222"
)

type fakeGateway struct {
	queryOut map[string][]string // keyed by function signature
	queryErr error
	executed []chain.ExecutionRequest
	execErr  error
}

func (f *fakeGateway) Execute(_ context.Context, req chain.ExecutionRequest) (string, error) {
	if f.execErr != nil {
		return "", f.execErr
	}
	f.executed = append(f.executed, req)
	return "tx-1", nil
}

func (f *fakeGateway) Query(_ context.Context, req chain.QueryRequest) ([]string, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryOut[req.FunctionSignature], nil
}

func (f *fakeGateway) GetTransaction(_ context.Context, id string) (chain.Transaction, error) {
	return chain.Transaction{ID: id, State: chain.TxStateComplete}, nil
}

func (f *fakeGateway) WaitForConfirmation(_ context.Context, id string) (chain.Transaction, error) {
	return chain.Transaction{ID: id, State: chain.TxStateComplete, TxHash: "0xhash"}, nil
}

func (f *fakeGateway) GetWalletBalance(_ context.Context, _, _ string) (int64, error) {
	return 0, nil
}

func newTestService(gw *fakeGateway) *Service {
	return NewService(gw, Config{
		RegistryAddress: "0xregistry",
		ResolverAddress: "0xresolver",
		WrapperAddress:  "0x3333333333333333333333333333333333333333",
		WalletID:        "wallet-1",
		WalletAddress:   serverWallet,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveAddress(t *testing.T) {
	gw := &fakeGateway{queryOut: map[string][]string{
		"addr(bytes32)": {memberWallet},
	}}
	svc := newTestService(gw)

	addr, err := svc.ResolveAddress(context.Background(), "alice.acme.eth")
	require.NoError(t, err)
	assert.Equal(t, memberWallet, addr)
}

func TestResolveAddressUnsetRecord(t *testing.T) {
	gw := &fakeGateway{queryOut: map[string][]string{
		"addr(bytes32)": {"0x0000000000000000000000000000000000000000"},
	}}
	svc := newTestService(gw)

	addr, err := svc.ResolveAddress(context.Background(), "alice.acme.eth")
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestVerifyOwnership(t *testing.T) {
	gw := &fakeGateway{queryOut: map[string][]string{
		"owner(bytes32)": {memberWallet},
	}}
	svc := newTestService(gw)

	verified, owner, err := svc.VerifyOwnership(context.Background(), "acme.eth", memberWallet)
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Equal(t, memberWallet, owner)

	// Case differences in the address do not break the match.
	verified, _, err = svc.VerifyOwnership(context.Background(), "acme.eth", "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.True(t, verified)

	verified, _, err = svc.VerifyOwnership(context.Background(), "acme.eth", serverWallet)
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestIssueSubname(t *testing.T) {
	gw := &fakeGateway{queryOut: map[string][]string{
		"owner(bytes32)": {serverWallet},
	}}
	svc := newTestService(gw)

	subname, err := svc.IssueSubname(context.Background(), "acme.eth", "Alice", memberWallet)
	require.NoError(t, err)
	assert.Equal(t, "alice.acme.eth", subname)

	require.Len(t, gw.executed, 1)
	req := gw.executed[0]
	assert.Equal(t, "setSubnodeRecord(bytes32,string,address,address,uint64,uint32,uint64)", req.FunctionSignature)
	assert.Equal(t, "alice", req.Parameters[1])
	assert.Equal(t, memberWallet, req.Parameters[2])
}

func TestIssueSubnameParentNotControlled(t *testing.T) {
	gw := &fakeGateway{queryOut: map[string][]string{
		"owner(bytes32)": {memberWallet},
	}}
	svc := newTestService(gw)

	_, err := svc.IssueSubname(context.Background(), "acme.eth", "alice", memberWallet)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, gw.executed)
}

func TestIssueSubnamePreservesRejectionKind(t *testing.T) {
	gw := &fakeGateway{
		queryOut: map[string][]string{
			"owner(bytes32)": {serverWallet},
		},
		execErr: apperr.New(apperr.KindOnChainRejection, "execution reverted"),
	}
	svc := newTestService(gw)

	_, err := svc.IssueSubname(context.Background(), "acme.eth", "alice", memberWallet)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOnChainRejection, apperr.KindOf(err))
	assert.False(t, apperr.Retryable(err))
}

func TestIssueSubnameValidatesOwnerAddress(t *testing.T) {
	svc := newTestService(&fakeGateway{})

	_, err := svc.IssueSubname(context.Background(), "acme.eth", "alice", "bogus")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
