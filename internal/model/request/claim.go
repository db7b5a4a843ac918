package request

type CommitClaim struct {
	Label        string `json:"label" binding:"required"`
	OwnerAddress string `json:"ownerAddress" binding:"required"`
}

type VerifyOwnership struct {
	Domain  string `json:"domain" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type IssueSubname struct {
	ParentName   string `json:"parentName" binding:"required"`
	Label        string `json:"label" binding:"required"`
	OwnerAddress string `json:"ownerAddress" binding:"required"`
}
