// Package claim drives the two-phase domain-claim flow: commit, the
// mandatory anti-front-running wait, reveal/register, and wrapping the
// fresh name for subname delegation.
package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/anbusan19/nominal/pkg/apperr"
)

// OwnerResolver is the slice of the identity resolver the state
// machine needs for crash recovery: querying who owns a name before
// re-submitting a possibly-duplicate registration.
type OwnerResolver interface {
	Owner(ctx context.Context, name string) (string, error)
}

// OrganizationRegistrar records the claimed root once wrapping
// confirms. Implemented by the organization service.
type OrganizationRegistrar interface {
	EnsureOrganization(ctx context.Context, name, ownerAddress string) error
}

type Config struct {
	ControllerAddress string
	WrapperAddress    string
	WalletID          string
	// WaitWindow is the mandatory delay between a confirmed commit and
	// the earliest permitted registration.
	WaitWindow time.Duration
	// RegisterCeiling bounds how long after the wait window a
	// registration is still accepted; past it the commitment is dead.
	RegisterCeiling time.Duration
	// RegistrationDuration is the term the name is registered for.
	RegistrationDuration time.Duration
	// PriceMarginPercent is added on top of the quoted price to
	// tolerate drift between quote and submission.
	PriceMarginPercent int64
}

func (c Config) withDefaults() Config {
	if c.WaitWindow == 0 {
		c.WaitWindow = 60 * time.Second
	}
	if c.RegisterCeiling == 0 {
		c.RegisterCeiling = 24 * time.Hour
	}
	if c.RegistrationDuration == 0 {
		c.RegistrationDuration = 365 * 24 * time.Hour
	}
	if c.PriceMarginPercent == 0 {
		c.PriceMarginPercent = 10
	}
	return c
}

// Status is the caller-visible view of a session, including the
// remaining wait so clients can tell "not ready yet" from "failed".
type Status struct {
	Label         string            `json:"label"`
	Name          string            `json:"name"`
	State         entity.ClaimState `json:"state"`
	RemainingWait int64             `json:"remaining_wait_secs"`
	CommittedAt   time.Time         `json:"committed_at"`
}

type Service struct {
	store   Store
	gateway chain.Gateway
	names   OwnerResolver
	orgs    OrganizationRegistrar
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, gateway chain.Gateway, names OwnerResolver, orgs OrganizationRegistrar, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		names:   names,
		orgs:    orgs,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		now:     time.Now,
	}
}

// Commit starts a claim: generates a fresh secret, submits the hiding
// commitment and, once the transaction confirms, persists the session
// and enters the wait window. A non-terminal session for the same
// label is a conflict; a failed one is replaced with a fresh secret.
func (s *Service) Commit(ctx context.Context, label, ownerAddress string) (*Status, error) {
	normalized, err := ens.NormalizeLabel(strings.TrimSuffix(label, ens.Suffix))
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.Get(ctx, normalized); err == nil && !existing.State.Terminal() {
		return nil, apperr.Newf(apperr.KindConflict, "claim already in flight for label %q", normalized).At(string(existing.State))
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	durationSecs := int64(s.cfg.RegistrationDuration.Seconds())
	commitment, err := makeCommitment(normalized, ownerAddress, durationSecs, secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "build commitment", err)
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   s.cfg.ControllerAddress,
		FunctionSignature: "commit(bytes32)",
		Parameters:        []interface{}{commitment},
		RefID:             "commit:" + normalized,
	})
	if err != nil {
		return nil, s.annotate(err, entity.ClaimStateCommit)
	}
	if _, err := s.gateway.WaitForConfirmation(ctx, txID); err != nil {
		return nil, s.annotate(err, entity.ClaimStateCommit)
	}

	// Persist only after the commit confirmed: the wait window counts
	// from confirmation, and an unconfirmed commit is worthless.
	session := &entity.ClaimSession{
		Label:        normalized,
		OwnerAddress: ownerAddress,
		Secret:       secret,
		Commitment:   commitment,
		DurationSecs: durationSecs,
		State:        entity.ClaimStateWaiting,
		CommitTxRef:  txID,
		CommittedAt:  s.now(),
	}
	if err := s.store.Save(ctx, session, s.sessionTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("domain claim committed",
		slog.String("label", normalized),
		slog.String("tx", txID))
	return s.statusOf(session), nil
}

// Status reports the session's current state, advancing Waiting to
// ReadyToRegister once the window has elapsed and failing the session
// once the registration ceiling has passed.
func (s *Service) Status(ctx context.Context, label string) (*Status, error) {
	session, err := s.load(ctx, label)
	if err != nil {
		return nil, err
	}
	return s.statusOf(session), nil
}

// Register reveals the label: fetches the current price quote, applies
// the safety margin and submits the register transaction with the
// stored secret. It refuses to touch the network before the wait
// window elapses.
func (s *Service) Register(ctx context.Context, label string) (*Status, error) {
	session, err := s.load(ctx, label)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case entity.ClaimStateWaiting:
		remaining := s.remainingWait(session)
		return nil, apperr.Newf(apperr.KindValidation,
			"wait window has not elapsed: %ds remaining", remaining).At(string(session.State))
	case entity.ClaimStateRegistering:
		// Crash boundary: a register may already have landed. Resolve
		// against on-chain state before re-submitting to avoid a
		// duplicate charge.
		recovered, err := s.recoverRegistering(ctx, session)
		if err != nil {
			return nil, err
		}
		if recovered {
			return s.statusOf(session), nil
		}
	case entity.ClaimStateReadyToRegister:
	case entity.ClaimStateFailed:
		return nil, apperr.New(apperr.KindClaimExpired, "claim session failed; start a new claim").At(string(session.State))
	default:
		return nil, apperr.Newf(apperr.KindConflict, "cannot register from state %q", session.State)
	}

	price, err := s.quotePrice(ctx, session)
	if err != nil {
		return nil, err
	}

	session.State = entity.ClaimStateRegistering
	if err := s.store.Save(ctx, session, s.sessionTTL()); err != nil {
		return nil, err
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   s.cfg.ControllerAddress,
		FunctionSignature: "register(string,address,uint256,bytes32)",
		Parameters: []interface{}{
			session.Label,
			session.OwnerAddress,
			fmt.Sprintf("%d", session.DurationSecs),
			session.Secret,
		},
		Value: price.String(),
		RefID: "register:" + session.Label,
	})
	if err != nil {
		return nil, s.failIfRejected(ctx, session, err, entity.ClaimStateRegistering)
	}
	if _, err := s.gateway.WaitForConfirmation(ctx, txID); err != nil {
		return nil, s.failIfRejected(ctx, session, err, entity.ClaimStateRegistering)
	}

	// Owned now: the secret has served its purpose and there is no
	// further front-running risk.
	session.Secret = ""
	session.State = entity.ClaimStateWrapping
	if err := s.store.Save(ctx, session, s.sessionTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("domain registered",
		slog.String("label", session.Label),
		slog.String("tx", txID))
	return s.statusOf(session), nil
}

// Wrap delegates the registered name into the wrapper contract so
// subnames can be issued under it, then records the organization. A
// wrap failure is recoverable: the name is already owned, so the
// caller may retry without re-registering.
func (s *Service) Wrap(ctx context.Context, label string) (*Status, error) {
	session, err := s.load(ctx, label)
	if err != nil {
		return nil, err
	}
	if session.State != entity.ClaimStateWrapping {
		return nil, apperr.Newf(apperr.KindConflict, "cannot wrap from state %q", session.State)
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   s.cfg.WrapperAddress,
		FunctionSignature: "wrapETH2LD(string,address,uint16)",
		Parameters:        []interface{}{session.Label, session.OwnerAddress, "0"},
		RefID:             "wrap:" + session.Label,
	})
	if err != nil {
		return nil, s.annotate(err, entity.ClaimStateWrapping)
	}
	if _, err := s.gateway.WaitForConfirmation(ctx, txID); err != nil {
		return nil, s.annotate(err, entity.ClaimStateWrapping)
	}

	name := session.Label + ens.Suffix
	if err := s.orgs.EnsureOrganization(ctx, name, session.OwnerAddress); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, session.Label); err != nil {
		return nil, err
	}
	session.State = entity.ClaimStateComplete

	s.logger.Info("domain claim complete",
		slog.String("name", name),
		slog.String("owner", session.OwnerAddress))
	return s.statusOf(session), nil
}

// Abandon discards a session before registration begins. The committed
// transaction is sunk cost with no further obligation. Once a register
// has been submitted the claim must run to confirmation or failure.
func (s *Service) Abandon(ctx context.Context, label string) error {
	session, err := s.load(ctx, label)
	if err != nil {
		if apperr.IsKind(err, apperr.KindClaimExpired) {
			normalized, lerr := ens.NormalizeLabel(strings.TrimSuffix(label, ens.Suffix))
			if lerr != nil {
				return lerr
			}
			return s.store.Delete(ctx, normalized)
		}
		return err
	}
	switch session.State {
	case entity.ClaimStateRegistering, entity.ClaimStateWrapping:
		return apperr.Newf(apperr.KindConflict, "claim for %q is past the point of no return", session.Label)
	}
	return s.store.Delete(ctx, session.Label)
}

// load fetches the session and applies time-derived transitions:
// Waiting advances once the window elapsed, and anything short of
// wrapping dies once the registration ceiling passes.
func (s *Service) load(ctx context.Context, label string) (*entity.ClaimSession, error) {
	normalized, err := ens.NormalizeLabel(strings.TrimSuffix(label, ens.Suffix))
	if err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, normalized)
	if err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(session.CommittedAt)
	switch session.State {
	case entity.ClaimStateWaiting, entity.ClaimStateReadyToRegister:
		if elapsed > s.cfg.WaitWindow+s.cfg.RegisterCeiling {
			session.State = entity.ClaimStateFailed
			_ = s.store.Save(ctx, session, time.Hour)
			return nil, apperr.Newf(apperr.KindClaimExpired,
				"commitment for %q expired; start a new claim with a fresh secret", session.Label)
		}
		if session.State == entity.ClaimStateWaiting && elapsed >= s.cfg.WaitWindow {
			session.State = entity.ClaimStateReadyToRegister
			if err := s.store.Save(ctx, session, s.sessionTTL()); err != nil {
				return nil, err
			}
		}
	}
	return session, nil
}

// recoverRegistering resolves a crash between register submission and
// confirmation by asking the chain who owns the name now.
func (s *Service) recoverRegistering(ctx context.Context, session *entity.ClaimSession) (bool, error) {
	owner, err := s.names.Owner(ctx, session.Label+ens.Suffix)
	if err != nil {
		return false, err
	}
	switch {
	case owner == "":
		// Register never landed; safe to submit again.
		return false, nil
	case strings.EqualFold(owner, session.OwnerAddress) || strings.EqualFold(owner, s.cfg.WrapperAddress):
		session.Secret = ""
		session.State = entity.ClaimStateWrapping
		if err := s.store.Save(ctx, session, s.sessionTTL()); err != nil {
			return false, err
		}
		return true, nil
	default:
		session.State = entity.ClaimStateFailed
		_ = s.store.Save(ctx, session, time.Hour)
		return false, apperr.Newf(apperr.KindOnChainRejection,
			"name %q is owned by %s", session.Label+ens.Suffix, owner).At(string(entity.ClaimStateRegistering))
	}
}

// quotePrice fetches the current rent quote and applies the configured
// safety margin. The registrar returns (base, premium); both count.
func (s *Service) quotePrice(ctx context.Context, session *entity.ClaimSession) (*big.Int, error) {
	out, err := s.gateway.Query(ctx, chain.QueryRequest{
		ContractAddress:   s.cfg.ControllerAddress,
		FunctionSignature: "rentPrice(string,uint256)",
		Parameters:        []interface{}{session.Label, fmt.Sprintf("%d", session.DurationSecs)},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternal, "price quote unavailable", err).At(string(session.State))
	}

	price := new(big.Int)
	for _, v := range out {
		part, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, apperr.Newf(apperr.KindExternal, "price quote unavailable: unparseable quote %q", v)
		}
		price.Add(price, part)
	}
	if price.Sign() <= 0 {
		return nil, apperr.New(apperr.KindExternal, "price quote unavailable: empty quote")
	}

	margin := big.NewInt(100 + s.cfg.PriceMarginPercent)
	price.Mul(price, margin)
	price.Div(price, big.NewInt(100))
	return price, nil
}

// failIfRejected pins the session to Failed on a definite on-chain
// rejection but leaves it recoverable on a retryable transport error.
func (s *Service) failIfRejected(ctx context.Context, session *entity.ClaimSession, err error, state entity.ClaimState) error {
	if apperr.KindOf(err) == apperr.KindOnChainRejection {
		session.State = entity.ClaimStateFailed
		_ = s.store.Save(ctx, session, time.Hour)
	}
	return s.annotate(err, state)
}

func (s *Service) annotate(err error, state entity.ClaimState) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.At(string(state))
	}
	return err
}

func (s *Service) remainingWait(session *entity.ClaimSession) int64 {
	remaining := s.cfg.WaitWindow - s.now().Sub(session.CommittedAt)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds() + 0.5)
}

func (s *Service) statusOf(session *entity.ClaimSession) *Status {
	return &Status{
		Label:         session.Label,
		Name:          session.Label + ens.Suffix,
		State:         session.State,
		RemainingWait: s.remainingWait(session),
		CommittedAt:   session.CommittedAt,
	}
}

func (s *Service) sessionTTL() time.Duration {
	return s.cfg.WaitWindow + s.cfg.RegisterCeiling
}
