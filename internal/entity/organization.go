package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// Organization is keyed by its canonical ENS root name (lowercase,
// suffix-terminated). Lookups are by name; owner lookups go through the
// repository's reverse index.
type Organization struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	OwnerAddress string     `json:"owner_address" db:"owner_address"`
	TreasuryRef  *string    `json:"treasury_ref" db:"treasury_ref"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	Employees    []Employee `json:"employees,omitempty" db:"-"`
}
