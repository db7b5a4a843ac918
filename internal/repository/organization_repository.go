package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/pkg/apperr"
)

const uniqueViolation = "23505"

// PostgresOrganizationRepository stores organizations and their member
// lists in Postgres. Uniqueness (lower(name), and per-organization
// lower(wallet)) is enforced by database constraints, so concurrent
// idempotent adds can never produce duplicate rows.
type PostgresOrganizationRepository struct {
	db *sqlx.DB
}

func NewPostgresOrganizationRepository(db *sqlx.DB) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

func (r *PostgresOrganizationRepository) CreateOrganization(ctx context.Context, org *entity.Organization) error {
	if org.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		org.ID = id
	}

	query := `INSERT INTO organizations (id, name, owner_address)
              VALUES ($1, $2, $3)
              RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, org.ID, org.Name, org.OwnerAddress).Scan(&org.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Newf(apperr.KindConflict, "organization %q already exists", org.Name)
		}
		return err
	}
	return nil
}

func (r *PostgresOrganizationRepository) GetByName(ctx context.Context, name string) (*entity.Organization, error) {
	query := `SELECT id, name, owner_address, treasury_ref, created_at
              FROM organizations WHERE lower(name) = lower($1)`

	var org entity.Organization
	if err := r.db.GetContext(ctx, &org, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.KindNotFound, "organization %q not found", name)
		}
		return nil, err
	}
	return &org, nil
}

func (r *PostgresOrganizationRepository) GetByOwner(ctx context.Context, ownerAddress string) (*entity.Organization, error) {
	query := `SELECT id, name, owner_address, treasury_ref, created_at
              FROM organizations WHERE lower(owner_address) = lower($1)
              ORDER BY created_at ASC LIMIT 1`

	var org entity.Organization
	if err := r.db.GetContext(ctx, &org, query, ownerAddress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.KindNotFound, "no organization for owner %s", ownerAddress)
		}
		return nil, err
	}
	return &org, nil
}

func (r *PostgresOrganizationRepository) SetTreasuryRef(ctx context.Context, name, ref string) error {
	query := `UPDATE organizations SET treasury_ref = $2 WHERE lower(name) = lower($1)`

	result, err := r.db.ExecContext(ctx, query, name, ref)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Newf(apperr.KindNotFound, "organization %q not found", name)
	}
	return nil
}

func (r *PostgresOrganizationRepository) AddEmployee(ctx context.Context, organizationName string, emp *entity.Employee) (*entity.Employee, error) {
	org, err := r.GetByName(ctx, organizationName)
	if err != nil {
		return nil, err
	}
	emp.OrganizationID = org.ID

	query := `INSERT INTO employees (id, organization_id, wallet_address, sub_ens_name, display_name, email)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		emp.ID, emp.OrganizationID, emp.WalletAddress, emp.SubEnsName, emp.DisplayName, emp.Email,
	).Scan(&emp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := r.getEmployeeByWallet(ctx, org.ID, emp.WalletAddress)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing, apperr.Newf(apperr.KindConflict,
				"employee with wallet %s already registered", emp.WalletAddress)
		}
		return nil, err
	}
	return emp, nil
}

func (r *PostgresOrganizationRepository) ListEmployees(ctx context.Context, organizationName string) ([]entity.Employee, error) {
	org, err := r.GetByName(ctx, organizationName)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, organization_id, wallet_address, sub_ens_name, display_name, email, created_at
              FROM employees WHERE organization_id = $1
              ORDER BY created_at ASC, id ASC`

	employees := []entity.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, org.ID); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *PostgresOrganizationRepository) getEmployeeByWallet(ctx context.Context, orgID uuid.UUID, wallet string) (*entity.Employee, error) {
	query := `SELECT id, organization_id, wallet_address, sub_ens_name, display_name, email, created_at
              FROM employees WHERE organization_id = $1 AND lower(wallet_address) = lower($2)`

	var emp entity.Employee
	if err := r.db.GetContext(ctx, &emp, query, orgID, wallet); err != nil {
		return nil, err
	}
	return &emp, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return strings.Contains(err.Error(), "duplicate key")
}
