package response

type VerifyOwnership struct {
	Domain   string `json:"domain"`
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Verified bool   `json:"verified"`
}

type Subname struct {
	FullName     string `json:"fullName"`
	OwnerAddress string `json:"ownerAddress"`
}

type TreasuryBalance struct {
	OrganizationName string `json:"organizationName,omitempty"`
	AccountRef       string `json:"accountRef,omitempty"`
	Balance          int64  `json:"balance"`
}

type FundTreasury struct {
	OrganizationName string `json:"organizationName"`
	Amount           int64  `json:"amount"`
	SettlementRef    string `json:"settlementRef"`
}

type Token struct {
	Token string `json:"token"`
}
