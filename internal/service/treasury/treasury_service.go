// Package treasury is the funding gateway: deposits into and balance
// queries against an organization's pooled vault, plus the batched
// transfer primitive payroll runs settle through. All operations are
// remote calls against the settlement provider with bounded
// confirmation waits.
package treasury

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/pkg/apperr"
)

type Config struct {
	WalletID     string
	VaultAddress string
	// TokenDecimals converts user-facing amounts into the token's
	// smallest unit (6 for USDC).
	TokenDecimals int
}

type Service struct {
	gateway chain.Gateway
	repo    repository.OrganizationRepository
	cfg     Config
	logger  *slog.Logger
}

func NewService(gateway chain.Gateway, repo repository.OrganizationRepository, cfg Config, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, repo: repo, cfg: cfg, logger: logger}
}

// Balance returns the vault's disbursable balance in smallest units.
func (s *Service) Balance(ctx context.Context, accountRef string) (int64, error) {
	out, err := s.gateway.Query(ctx, chain.QueryRequest{
		ContractAddress:   accountRef,
		FunctionSignature: "balance()",
		Parameters:        []interface{}{},
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindExternal, "query treasury balance", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	balance, err := strconv.ParseInt(out[0], 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindExternal, "unparseable treasury balance", err)
	}
	return balance, nil
}

// BalanceFor resolves the organization's funding account and returns
// its balance.
func (s *Service) BalanceFor(ctx context.Context, organizationName string) (int64, error) {
	org, err := s.repo.GetByName(ctx, organizationName)
	if err != nil {
		return 0, err
	}
	if org.TreasuryRef == nil {
		return 0, apperr.Newf(apperr.KindValidation, "organization %q has no funded treasury", organizationName)
	}
	return s.Balance(ctx, *org.TreasuryRef)
}

// Deposit moves amount (user-facing token units) into the
// organization's vault and records the funding-account reference
// against the organization. The submitted value is scaled into the
// token's smallest unit per Config.TokenDecimals.
func (s *Service) Deposit(ctx context.Context, organizationName string, amount int64) (string, error) {
	if amount <= 0 {
		return "", apperr.New(apperr.KindValidation, "deposit amount must be positive")
	}
	org, err := s.repo.GetByName(ctx, organizationName)
	if err != nil {
		return "", err
	}

	scaled := amount
	for i := 0; i < s.cfg.TokenDecimals; i++ {
		scaled *= 10
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   s.cfg.VaultAddress,
		FunctionSignature: "deposit(uint256)",
		Parameters:        []interface{}{fmt.Sprintf("%d", scaled)},
		RefID:             "deposit:" + org.Name,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindOf(err), "submit treasury deposit", err)
	}

	tx, err := s.gateway.WaitForConfirmation(ctx, txID)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetTreasuryRef(ctx, org.Name, s.cfg.VaultAddress); err != nil {
		return "", err
	}

	s.logger.Info("treasury funded",
		slog.String("organization", org.Name),
		slog.Int64("amount", amount),
		slog.String("tx", tx.TxHash))
	return settlementRef(tx, txID), nil
}

// BatchTransfer submits the all-or-nothing batched distribution. The
// idempotency key travels with the provider request so a blind retry
// after a crash cannot double-submit.
func (s *Service) BatchTransfer(ctx context.Context, accountRef string, recipients []string, amounts []int64, idempotencyKey string) (string, error) {
	if len(recipients) != len(amounts) {
		return "", apperr.New(apperr.KindValidation, "recipients and amounts must be the same length")
	}
	if len(recipients) == 0 {
		return "", apperr.New(apperr.KindValidation, "empty transfer batch")
	}

	amountStrs := make([]string, len(amounts))
	for i, a := range amounts {
		amountStrs[i] = strconv.FormatInt(a, 10)
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   accountRef,
		FunctionSignature: "batchDistribute(address[],uint256[])",
		Parameters:        []interface{}{recipients, amountStrs},
		IdempotencyKey:    idempotencyKey,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindOf(err), "submit batch transfer", err)
	}

	tx, err := s.gateway.WaitForConfirmation(ctx, txID)
	if err != nil {
		return "", err
	}
	return settlementRef(tx, txID), nil
}

func settlementRef(tx chain.Transaction, fallback string) string {
	if tx.TxHash != "" {
		return tx.TxHash
	}
	return fallback
}
