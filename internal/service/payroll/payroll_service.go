// Package payroll is the distribution orchestrator: it resolves the
// organization's member snapshot to payable addresses, prices each
// member (explicit amount or equal split), and settles the whole run
// through one atomic batched transfer.
package payroll

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/anbusan19/nominal/pkg/apperr"
)

// FundingGateway is the slice of the treasury service a run needs.
type FundingGateway interface {
	Balance(ctx context.Context, accountRef string) (int64, error)
	BatchTransfer(ctx context.Context, accountRef string, recipients []string, amounts []int64, idempotencyKey string) (string, error)
}

// AddressResolver re-resolves subordinate names at payout time when
// that mode is enabled.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, name string) (string, error)
}

type Config struct {
	// ResolveAtPayout re-resolves each member's subordinate name
	// immediately before payout, supporting wallet rotation at the cost
	// of making the run depend on naming-service availability.
	ResolveAtPayout bool
}

type Service struct {
	repo     repository.OrganizationRepository
	gateway  FundingGateway
	resolver AddressResolver
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo repository.OrganizationRepository, gateway FundingGateway, resolver AddressResolver, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ExecuteRun performs one payroll distribution. explicitAmounts is
// keyed by wallet address (case-insensitive), values in the funding
// token's smallest unit; members without an explicit amount share the
// remaining balance equally, truncating toward zero. The whole run
// settles in one batched transfer: there are no per-recipient retries
// and no partial reports.
func (s *Service) ExecuteRun(ctx context.Context, organizationName string, explicitAmounts map[string]int64) (*entity.DistributionReport, error) {
	normalized, err := ens.Normalize(organizationName)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.GetByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if org.TreasuryRef == nil || *org.TreasuryRef == "" {
		return nil, apperr.Newf(apperr.KindValidation, "organization %q has no funded treasury", normalized).At("plan")
	}

	// Point-in-time snapshot: members added mid-run are out of scope
	// for this run.
	members, err := s.repo.ListEmployees(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, apperr.Newf(apperr.KindValidation, "organization %q has no registered employees", normalized).At("plan")
	}

	explicit := make(map[string]int64, len(explicitAmounts))
	for wallet, amount := range explicitAmounts {
		if amount <= 0 {
			return nil, apperr.Newf(apperr.KindValidation, "explicit amount for %s must be positive", wallet)
		}
		explicit[strings.ToLower(wallet)] = amount
	}

	plan, disbursements, err := s.buildPlan(ctx, org, members, explicit)
	if err != nil {
		return nil, err
	}

	key := idempotencyKey(org.Name, plan, s.now())
	settlementRef, err := s.gateway.BatchTransfer(ctx, plan.TreasuryRef, plan.Recipients, plan.Amounts, key)
	if err != nil {
		// The settlement primitive is all-or-nothing: a batch failure
		// fails the entire run and no partial report exists.
		return nil, apperr.Wrap(apperr.KindOf(err), "payroll distribution failed", err).At("batch_transfer")
	}

	report := &entity.DistributionReport{
		OrganizationName: org.Name,
		SettlementRef:    settlementRef,
		IdempotencyKey:   key,
		Disbursements:    disbursements,
		TotalAmount:      plan.Total(),
		Remainder:        plan.Remainder,
		ExecutedAt:       s.now(),
	}

	s.logger.Info("payroll run complete",
		slog.String("organization", org.Name),
		slog.Int("recipients", len(disbursements)),
		slog.Int64("total", report.TotalAmount),
		slog.String("settlement_ref", settlementRef))
	return report, nil
}

// buildPlan prices every member and assembles the index-aligned
// address/amount arrays. Equal-split members divide what is left of
// the balance after explicit amounts are carved out; the integer
// remainder stays in the treasury.
func (s *Service) buildPlan(ctx context.Context, org *entity.Organization, members []entity.Employee, explicit map[string]int64) (*entity.DistributionPlan, []entity.Disbursement, error) {
	recipients := make([]string, len(members))
	amounts := make([]int64, len(members))
	isExplicit := make([]bool, len(members))

	var sumExplicit int64
	equalSplitCount := 0
	for i, m := range members {
		addr := m.WalletAddress
		if s.cfg.ResolveAtPayout {
			resolved, err := s.resolver.ResolveAddress(ctx, m.SubEnsName)
			if err != nil {
				return nil, nil, apperr.Wrap(apperr.KindOf(err), "resolve payout address for "+m.SubEnsName, err).At("resolve")
			}
			if resolved != "" {
				addr = resolved
			}
		}
		recipients[i] = addr

		if amount, ok := explicit[strings.ToLower(m.WalletAddress)]; ok {
			amounts[i] = amount
			isExplicit[i] = true
			sumExplicit += amount
		} else {
			equalSplitCount++
		}
	}

	balance, err := s.gateway.Balance(ctx, *org.TreasuryRef)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindOf(err), "fetch treasury balance", err).At("plan")
	}
	if sumExplicit > balance {
		return nil, nil, apperr.Newf(apperr.KindValidation,
			"explicit amounts (%d) exceed treasury balance (%d)", sumExplicit, balance).At("plan")
	}

	var remainder int64
	if equalSplitCount > 0 {
		splittable := balance - sumExplicit
		share := splittable / int64(equalSplitCount)
		if share <= 0 {
			return nil, nil, apperr.Newf(apperr.KindValidation,
				"treasury balance (%d) too low to split across %d members", balance, equalSplitCount).At("plan")
		}
		remainder = splittable - share*int64(equalSplitCount)
		for i := range amounts {
			if !isExplicit[i] {
				amounts[i] = share
			}
		}
	}

	plan := &entity.DistributionPlan{
		OrganizationName: org.Name,
		TreasuryRef:      *org.TreasuryRef,
		Recipients:       recipients,
		Amounts:          amounts,
		Remainder:        remainder,
		CreatedAt:        s.now(),
	}

	disbursements := make([]entity.Disbursement, len(members))
	for i, m := range members {
		disbursements[i] = entity.Disbursement{
			EmployeeID:     m.ID,
			SubEnsName:     m.SubEnsName,
			Address:        recipients[i],
			Amount:         amounts[i],
			ExplicitAmount: isExplicit[i],
		}
	}
	return plan, disbursements, nil
}

// idempotencyKey derives a UUIDv5 from (organization, plan hash,
// attempt epoch) so the settlement provider can dedupe a re-submitted
// batch. The epoch is the run's hour, letting an identical plan be
// retried safely within the crash window but re-run intentionally
// later.
func idempotencyKey(organizationName string, plan *entity.DistributionPlan, at time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(organizationName))
	for i, r := range plan.Recipients {
		h.Write([]byte(r))
		var amt [8]byte
		binary.BigEndian.PutUint64(amt[:], uint64(plan.Amounts[i]))
		h.Write(amt[:])
	}
	planHash := hex.EncodeToString(h.Sum(nil))
	epoch := at.UTC().Format("2006-01-02T15")

	return uuid.NewV5(uuid.NamespaceOID, organizationName+":"+planHash+":"+epoch).String()
}
