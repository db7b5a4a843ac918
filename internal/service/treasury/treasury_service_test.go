package treasury

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultAddr = "0x4444444444444444444444444444444444444444"

type fakeGateway struct {
	queryOut []string
	execErr  error
	executed []chain.ExecutionRequest
}

func (f *fakeGateway) Execute(_ context.Context, req chain.ExecutionRequest) (string, error) {
	f.executed = append(f.executed, req)
	if f.execErr != nil {
		return "", f.execErr
	}
	return "tx-1", nil
}

func (f *fakeGateway) Query(_ context.Context, _ chain.QueryRequest) ([]string, error) {
	return f.queryOut, nil
}

func (f *fakeGateway) GetTransaction(_ context.Context, id string) (chain.Transaction, error) {
	return chain.Transaction{ID: id, State: chain.TxStateComplete}, nil
}

func (f *fakeGateway) WaitForConfirmation(_ context.Context, id string) (chain.Transaction, error) {
	return chain.Transaction{ID: id, State: chain.TxStateComplete, TxHash: "0xsettled"}, nil
}

func (f *fakeGateway) GetWalletBalance(_ context.Context, _, _ string) (int64, error) {
	return 0, nil
}

func newFixture(t *testing.T) (*Service, *fakeGateway, repository.OrganizationRepository) {
	t.Helper()
	repo := repository.NewMemoryOrganizationRepository()
	require.NoError(t, repo.CreateOrganization(context.Background(), &entity.Organization{
		Name:         "acme.eth",
		OwnerAddress: "0x1111111111111111111111111111111111111111",
	}))
	gw := &fakeGateway{queryOut: []string{"1000"}}
	svc := NewService(gw, repo, Config{
		WalletID:      "wallet-1",
		VaultAddress:  vaultAddr,
		TokenDecimals: 6,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, gw, repo
}

func TestDepositRecordsTreasuryRef(t *testing.T) {
	svc, gw, repo := newFixture(t)

	ref, err := svc.Deposit(context.Background(), "acme.eth", 500)
	require.NoError(t, err)
	assert.Equal(t, "0xsettled", ref)

	require.Len(t, gw.executed, 1)
	assert.Equal(t, "deposit(uint256)", gw.executed[0].FunctionSignature)
	assert.Equal(t, vaultAddr, gw.executed[0].ContractAddress)

	org, err := repo.GetByName(context.Background(), "acme.eth")
	require.NoError(t, err)
	require.NotNil(t, org.TreasuryRef)
	assert.Equal(t, vaultAddr, *org.TreasuryRef)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	svc, gw, _ := newFixture(t)

	_, err := svc.Deposit(context.Background(), "acme.eth", 0)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, gw.executed)
}

func TestBalanceForRequiresFundedTreasury(t *testing.T) {
	svc, _, repo := newFixture(t)

	_, err := svc.BalanceFor(context.Background(), "acme.eth")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, repo.SetTreasuryRef(context.Background(), "acme.eth", vaultAddr))
	balance, err := svc.BalanceFor(context.Background(), "acme.eth")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

func TestBatchTransferValidation(t *testing.T) {
	svc, gw, _ := newFixture(t)

	_, err := svc.BatchTransfer(context.Background(), vaultAddr, []string{"0xaa"}, []int64{1, 2}, "key")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.BatchTransfer(context.Background(), vaultAddr, nil, nil, "key")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, gw.executed)
}

func TestBatchTransferCarriesIdempotencyKey(t *testing.T) {
	svc, gw, _ := newFixture(t)

	ref, err := svc.BatchTransfer(context.Background(), vaultAddr,
		[]string{"0x0000000000000000000000000000000000000001"}, []int64{100}, "run-key")
	require.NoError(t, err)
	assert.Equal(t, "0xsettled", ref)

	require.Len(t, gw.executed, 1)
	assert.Equal(t, "batchDistribute(address[],uint256[])", gw.executed[0].FunctionSignature)
	assert.Equal(t, "run-key", gw.executed[0].IdempotencyKey)
	assert.Equal(t, []string{"100"}, gw.executed[0].Parameters[1])
}

func TestDepositScalesAmountToTokenUnits(t *testing.T) {
	svc, gw, _ := newFixture(t)

	_, err := svc.Deposit(context.Background(), "acme.eth", 500)
	require.NoError(t, err)

	require.Len(t, gw.executed, 1)
	assert.Equal(t, []interface{}{"500000000"}, gw.executed[0].Parameters)
}

func TestDepositPreservesRejectionKind(t *testing.T) {
	svc, gw, repo := newFixture(t)
	gw.execErr = apperr.New(apperr.KindOnChainRejection, "execution reverted")

	_, err := svc.Deposit(context.Background(), "acme.eth", 100)
	require.Error(t, err)
	assert.Equal(t, apperr.KindOnChainRejection, apperr.KindOf(err))
	assert.False(t, apperr.Retryable(err))

	// A rejected deposit must not record a funding account.
	org, err := repo.GetByName(context.Background(), "acme.eth")
	require.NoError(t, err)
	assert.Nil(t, org.TreasuryRef)
}

func TestBatchTransferPreservesRejectionKind(t *testing.T) {
	svc, gw, _ := newFixture(t)
	gw.execErr = apperr.New(apperr.KindOnChainRejection, "execution reverted")

	_, err := svc.BatchTransfer(context.Background(), vaultAddr,
		[]string{"0x0000000000000000000000000000000000000001"}, []int64{100}, "run-key")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOnChainRejection, apperr.KindOf(err))
	assert.False(t, apperr.Retryable(err))
}

func TestBatchTransferProviderOutageIsRetryable(t *testing.T) {
	svc, gw, _ := newFixture(t)
	gw.execErr = apperr.New(apperr.KindExternal, "provider unavailable")

	_, err := svc.BatchTransfer(context.Background(), vaultAddr,
		[]string{"0x0000000000000000000000000000000000000001"}, []int64{100}, "run-key")
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
}
