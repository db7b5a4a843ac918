package request

type RegisterOrganization struct {
	Name         string `json:"name" binding:"required"`
	OwnerAddress string `json:"ownerAddress" binding:"required"`
}

type RegisterEmployee struct {
	OrganizationName string  `json:"organizationName" binding:"required"`
	WalletAddress    string  `json:"walletAddress" binding:"required"`
	Label            string  `json:"label" binding:"required"`
	DisplayName      *string `json:"displayName"`
	Email            *string `json:"email"`
}
