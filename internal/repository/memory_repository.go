package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/pkg/apperr"
)

// MemoryOrganizationRepository is the in-process implementation used by
// tests. A single mutex serializes appends, which covers the
// per-organization serialization requirement for member registration.
type MemoryOrganizationRepository struct {
	mu            sync.RWMutex
	organizations map[string]*entity.Organization // key: lower(name)
	employees     map[string][]entity.Employee    // key: lower(name), insertion order
}

func NewMemoryOrganizationRepository() *MemoryOrganizationRepository {
	return &MemoryOrganizationRepository{
		organizations: make(map[string]*entity.Organization),
		employees:     make(map[string][]entity.Employee),
	}
}

func (r *MemoryOrganizationRepository) CreateOrganization(_ context.Context, org *entity.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(org.Name)
	if _, exists := r.organizations[key]; exists {
		return apperr.Newf(apperr.KindConflict, "organization %q already exists", org.Name)
	}

	if org.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		org.ID = id
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now()
	}

	stored := *org
	r.organizations[key] = &stored
	return nil
}

func (r *MemoryOrganizationRepository) GetByName(_ context.Context, name string) (*entity.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.organizations[strings.ToLower(name)]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "organization %q not found", name)
	}
	cp := *org
	return &cp, nil
}

func (r *MemoryOrganizationRepository) GetByOwner(_ context.Context, ownerAddress string) (*entity.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *entity.Organization
	for _, org := range r.organizations {
		if strings.EqualFold(org.OwnerAddress, ownerAddress) {
			if found == nil || org.CreatedAt.Before(found.CreatedAt) {
				found = org
			}
		}
	}
	if found == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "no organization for owner %s", ownerAddress)
	}
	cp := *found
	return &cp, nil
}

func (r *MemoryOrganizationRepository) SetTreasuryRef(_ context.Context, name, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, ok := r.organizations[strings.ToLower(name)]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, "organization %q not found", name)
	}
	org.TreasuryRef = &ref
	return nil
}

func (r *MemoryOrganizationRepository) AddEmployee(_ context.Context, organizationName string, emp *entity.Employee) (*entity.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(organizationName)
	org, ok := r.organizations[key]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "organization %q not found", organizationName)
	}

	for i := range r.employees[key] {
		existing := &r.employees[key][i]
		if strings.EqualFold(existing.WalletAddress, emp.WalletAddress) {
			cp := *existing
			return &cp, apperr.Newf(apperr.KindConflict,
				"employee with wallet %s already registered", emp.WalletAddress)
		}
	}

	emp.OrganizationID = org.ID
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now()
	}
	r.employees[key] = append(r.employees[key], *emp)

	cp := *emp
	return &cp, nil
}

func (r *MemoryOrganizationRepository) ListEmployees(_ context.Context, organizationName string) ([]entity.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(organizationName)
	if _, ok := r.organizations[key]; !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "organization %q not found", organizationName)
	}

	out := make([]entity.Employee, len(r.employees[key]))
	copy(out, r.employees[key])
	return out, nil
}
