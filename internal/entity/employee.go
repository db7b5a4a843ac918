package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Employee maps a chosen label under an organization's root name to a
// payable wallet. The ID is derived from the organization name and the
// lowercased wallet so re-registration with the same wallet hits the
// same record.
type Employee struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	WalletAddress  string    `json:"wallet_address" db:"wallet_address"`
	SubEnsName     string    `json:"sub_ens_name" db:"sub_ens_name"`
	DisplayName    *string   `json:"name,omitempty" db:"display_name"`
	Email          *string   `json:"email,omitempty" db:"email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// EmployeeID builds the deterministic record id for a wallet under an
// organization.
func EmployeeID(organizationName, walletAddress string) string {
	return fmt.Sprintf("%s-%s", organizationName, strings.ToLower(walletAddress))
}
