package entity

import "time"

// DistributionPlan is the computed payout for one payroll run. The
// Recipients and Amounts slices are index-aligned with the member
// snapshot the plan was built from; amounts are integers in the funding
// token's smallest unit.
type DistributionPlan struct {
	OrganizationName string
	TreasuryRef      string
	Recipients       []string
	Amounts          []int64
	// Remainder is the integer-division leftover of an equal split. It
	// never leaves the treasury.
	Remainder int64
	CreatedAt time.Time
}

// Total is the sum of all planned amounts.
func (p *DistributionPlan) Total() int64 {
	var total int64
	for _, a := range p.Amounts {
		total += a
	}
	return total
}

// Disbursement pairs one member with its resolved address and paid
// amount in a completed run.
type Disbursement struct {
	EmployeeID     string `json:"employee_id"`
	SubEnsName     string `json:"sub_ens_name"`
	Address        string `json:"address"`
	Amount         int64  `json:"amount"`
	ExplicitAmount bool   `json:"explicit_amount"`
}

// DistributionReport is the per-recipient outcome of one confirmed run.
type DistributionReport struct {
	OrganizationName string         `json:"organization_name"`
	SettlementRef    string         `json:"settlement_ref"`
	IdempotencyKey   string         `json:"idempotency_key"`
	Disbursements    []Disbursement `json:"disbursements"`
	TotalAmount      int64          `json:"total_amount"`
	Remainder        int64          `json:"remainder"`
	ExecutedAt       time.Time      `json:"executed_at"`
}
