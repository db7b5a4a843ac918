package request

type FundTreasury struct {
	OrganizationName string `json:"organizationName" binding:"required"`
	Amount           int64  `json:"amount" binding:"required"`
}

type ExecutePayroll struct {
	OrganizationName string `json:"organizationName" binding:"required"`
	// Amounts maps employee wallet addresses to explicit amounts in the
	// token's smallest unit. Members absent from the map share the rest.
	Amounts map[string]int64 `json:"amounts"`
}

type IssueToken struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
