// Package organization is the registry service: the durable mapping
// from a claimed root name to its owner, funding account and ordered
// member list.
package organization

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/internal/repository"
	"github.com/anbusan19/nominal/internal/service/ens"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/anbusan19/nominal/pkg/utils"
)

type Service struct {
	repo   repository.OrganizationRepository
	logger *slog.Logger
}

func NewService(repo repository.OrganizationRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateOrganization registers a claimed root name. The name is
// normalized before being used as a key; duplicates conflict.
func (s *Service) CreateOrganization(ctx context.Context, name, ownerAddress string) (*entity.Organization, error) {
	normalized, err := ens.Normalize(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(normalized, ens.Suffix) {
		return nil, apperr.Newf(apperr.KindValidation, "organization name %q must end in %s", name, ens.Suffix)
	}
	if !utils.IsHexAddress(ownerAddress) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid owner address %q", ownerAddress)
	}

	org := &entity.Organization{
		Name:         normalized,
		OwnerAddress: ownerAddress,
	}
	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		slog.String("name", org.Name),
		slog.String("owner", org.OwnerAddress))
	return org, nil
}

// EnsureOrganization records the root if it is not recorded yet. Used
// by the claim state machine on wrap completion, which may re-run
// after a partial failure.
func (s *Service) EnsureOrganization(ctx context.Context, name, ownerAddress string) error {
	_, err := s.CreateOrganization(ctx, name, ownerAddress)
	if err != nil && apperr.IsKind(err, apperr.KindConflict) {
		return nil
	}
	return err
}

// GetWithEmployees returns the organization and its member list in
// registration order.
func (s *Service) GetWithEmployees(ctx context.Context, name string) (*entity.Organization, error) {
	normalized, err := ens.Normalize(name)
	if err != nil {
		return nil, err
	}
	org, err := s.repo.GetByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.ListEmployees(ctx, normalized)
	if err != nil {
		return nil, err
	}
	org.Employees = employees
	return org, nil
}

// GetByOwner finds the organization controlled by a wallet through the
// repository's reverse index.
func (s *Service) GetByOwner(ctx context.Context, ownerAddress string) (*entity.Organization, error) {
	if !utils.IsHexAddress(ownerAddress) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid owner address %q", ownerAddress)
	}
	return s.repo.GetByOwner(ctx, ownerAddress)
}

// AddMember appends an employee under the organization. The derived
// subordinate name is label.root; the record id is deterministic in
// (organization, wallet) so re-registration with the same wallet hits
// the same record. On a duplicate the existing record is returned
// along with the conflict.
func (s *Service) AddMember(ctx context.Context, organizationName, walletAddress, label string, displayName, email *string) (*entity.Employee, error) {
	normalized, err := ens.Normalize(organizationName)
	if err != nil {
		return nil, err
	}
	if !utils.IsHexAddress(walletAddress) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid wallet address %q", walletAddress)
	}
	normalizedLabel, err := ens.NormalizeLabel(label)
	if err != nil {
		return nil, err
	}

	emp := &entity.Employee{
		ID:            entity.EmployeeID(normalized, walletAddress),
		WalletAddress: walletAddress,
		SubEnsName:    normalizedLabel + "." + normalized,
		DisplayName:   displayName,
		Email:         email,
	}

	created, err := s.repo.AddEmployee(ctx, normalized, emp)
	if err != nil {
		return created, err
	}

	s.logger.Info("employee registered",
		slog.String("organization", normalized),
		slog.String("sub_ens_name", created.SubEnsName))
	return created, nil
}

// SetTreasury records the funding-account reference. Idempotent.
func (s *Service) SetTreasury(ctx context.Context, organizationName, ref string) error {
	normalized, err := ens.Normalize(organizationName)
	if err != nil {
		return err
	}
	return s.repo.SetTreasuryRef(ctx, normalized, ref)
}
