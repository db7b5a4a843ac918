package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFunding struct {
	balance    int64
	balanceErr error

	transferErr    error
	lastRecipients []string
	lastAmounts    []int64
	lastKey        string
	transfers      int
}

func (f *fakeFunding) Balance(_ context.Context, _ string) (int64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeFunding) BatchTransfer(_ context.Context, _ string, recipients []string, amounts []int64, idempotencyKey string) (string, error) {
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.transfers++
	f.lastRecipients = recipients
	f.lastAmounts = amounts
	f.lastKey = idempotencyKey
	return "settle-1", nil
}

type fakeAddressResolver struct {
	addresses map[string]string
	calls     int
}

func (f *fakeAddressResolver) ResolveAddress(_ context.Context, name string) (string, error) {
	f.calls++
	return f.addresses[name], nil
}

func walletAddr(i int) string {
	return fmt.Sprintf("0x%040d", i)
}

func seedOrganization(t *testing.T, repo repository.OrganizationRepository, memberCount int) {
	t.Helper()
	ctx := context.Background()

	org := &entity.Organization{Name: "acme.eth", OwnerAddress: walletAddr(99)}
	require.NoError(t, repo.CreateOrganization(ctx, org))
	require.NoError(t, repo.SetTreasuryRef(ctx, "acme.eth", "vault-1"))

	for i := 1; i <= memberCount; i++ {
		wallet := walletAddr(i)
		_, err := repo.AddEmployee(ctx, "acme.eth", &entity.Employee{
			ID:             entity.EmployeeID("acme.eth", wallet),
			WalletAddress:  wallet,
			SubEnsName:     fmt.Sprintf("member%d.acme.eth", i),
			OrganizationID: org.ID,
		})
		require.NoError(t, err)
	}
}

func newPayrollService(repo repository.OrganizationRepository, funding *fakeFunding, resolver *fakeAddressResolver, cfg Config) *Service {
	return NewService(repo, funding, resolver, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecuteRunEqualSplit(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 3)
	funding := &fakeFunding{balance: 300}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	report, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 100, 100}, funding.lastAmounts)
	assert.Equal(t, int64(300), report.TotalAmount)
	assert.Equal(t, int64(0), report.Remainder)
	assert.Equal(t, "settle-1", report.SettlementRef)
	assert.Len(t, report.Disbursements, 3)
}

func TestExecuteRunExplicitCarveOut(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 3)
	funding := &fakeFunding{balance: 1000}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	report, err := svc.ExecuteRun(context.Background(), "acme.eth", map[string]int64{
		walletAddr(1): 400,
	})
	require.NoError(t, err)

	// Member 1 takes 400; the remaining 600 splits across the other two.
	assert.Equal(t, []int64{400, 300, 300}, funding.lastAmounts)
	assert.True(t, report.Disbursements[0].ExplicitAmount)
	assert.False(t, report.Disbursements[1].ExplicitAmount)
}

func TestExecuteRunRemainderStaysInTreasury(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 3)
	funding := &fakeFunding{balance: 100}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	report, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{33, 33, 33}, funding.lastAmounts)
	assert.Equal(t, int64(99), report.TotalAmount)
	assert.Equal(t, int64(1), report.Remainder)
	assert.Less(t, report.Remainder, int64(3))
}

func TestExecuteRunExplicitExceedsBalance(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 2)
	funding := &fakeFunding{balance: 100}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	_, err := svc.ExecuteRun(context.Background(), "acme.eth", map[string]int64{
		walletAddr(1): 150,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, funding.transfers)
}

func TestExecuteRunShareTooSmall(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 3)
	funding := &fakeFunding{balance: 2}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	_, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, funding.transfers)
}

func TestExecuteRunNoTreasury(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	org := &entity.Organization{Name: "acme.eth", OwnerAddress: walletAddr(99)}
	require.NoError(t, repo.CreateOrganization(context.Background(), org))
	svc := newPayrollService(repo, &fakeFunding{balance: 100}, &fakeAddressResolver{}, Config{})

	_, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestExecuteRunEmptyRoster(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	org := &entity.Organization{Name: "acme.eth", OwnerAddress: walletAddr(99)}
	require.NoError(t, repo.CreateOrganization(context.Background(), org))
	require.NoError(t, repo.SetTreasuryRef(context.Background(), "acme.eth", "vault-1"))
	svc := newPayrollService(repo, &fakeFunding{balance: 100}, &fakeAddressResolver{}, Config{})

	_, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestExecuteRunBatchFailureProducesNoReport(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 2)
	funding := &fakeFunding{
		balance:     200,
		transferErr: apperr.New(apperr.KindOnChainRejection, "batch reverted"),
	}
	svc := newPayrollService(repo, funding, &fakeAddressResolver{}, Config{})

	report, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, apperr.KindOnChainRejection, apperr.KindOf(err))
}

func TestExecuteRunResolveAtPayout(t *testing.T) {
	repo := repository.NewMemoryOrganizationRepository()
	seedOrganization(t, repo, 2)
	rotated := walletAddr(77)
	resolver := &fakeAddressResolver{addresses: map[string]string{
		"member1.acme.eth": rotated,
	}}
	funding := &fakeFunding{balance: 200}
	svc := newPayrollService(repo, funding, resolver, Config{ResolveAtPayout: true})

	report, err := svc.ExecuteRun(context.Background(), "acme.eth", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, resolver.calls)
	assert.Equal(t, rotated, funding.lastRecipients[0])
	// Unresolvable names fall back to the stored wallet.
	assert.Equal(t, walletAddr(2), funding.lastRecipients[1])
	assert.Equal(t, rotated, report.Disbursements[0].Address)
}

func TestIdempotencyKeyStableWithinHour(t *testing.T) {
	plan := &entity.DistributionPlan{
		Recipients: []string{walletAddr(1), walletAddr(2)},
		Amounts:    []int64{100, 200},
	}
	at := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)

	first := idempotencyKey("acme.eth", plan, at)
	second := idempotencyKey("acme.eth", plan, at.Add(30*time.Minute))
	assert.Equal(t, first, second)

	nextHour := idempotencyKey("acme.eth", plan, at.Add(time.Hour))
	assert.NotEqual(t, first, nextHour)

	otherPlan := &entity.DistributionPlan{
		Recipients: []string{walletAddr(1), walletAddr(2)},
		Amounts:    []int64{100, 201},
	}
	assert.NotEqual(t, first, idempotencyKey("acme.eth", otherPlan, at))
}
