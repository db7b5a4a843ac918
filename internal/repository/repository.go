package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/anbusan19/nominal/config"
	"github.com/anbusan19/nominal/internal/entity"
)

// OrganizationRepository is the injected persistence contract for the
// organization/employee registry. Implementations enforce the
// uniqueness and idempotency invariants themselves; callers never
// pre-check.
type OrganizationRepository interface {
	// CreateOrganization stores a new organization; conflict if the
	// canonical name is already taken (case-insensitive).
	CreateOrganization(ctx context.Context, org *entity.Organization) error
	// GetByName looks an organization up by canonical name.
	GetByName(ctx context.Context, name string) (*entity.Organization, error)
	// GetByOwner looks an organization up through the owner reverse
	// index.
	GetByOwner(ctx context.Context, ownerAddress string) (*entity.Organization, error)
	// SetTreasuryRef records the funding-account reference. Idempotent
	// overwrite.
	SetTreasuryRef(ctx context.Context, name, ref string) error
	// AddEmployee appends a member in registration order. On a
	// duplicate wallet (case-insensitive) it returns the existing
	// record together with a conflict error.
	AddEmployee(ctx context.Context, organizationName string, emp *entity.Employee) (*entity.Employee, error)
	// ListEmployees returns the member list in registration order.
	ListEmployees(ctx context.Context, organizationName string) ([]entity.Employee, error)
}

func NewRepository(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Println("❌ Error connecting to database:", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		log.Println("❌ Error pinging database:", err)
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("✅ Connected to database")

	return db, nil
}
