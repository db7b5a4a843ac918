package chain

// Transaction states reported by the custodial wallet API.
const (
	TxStateInitiated = "INITIATED"
	TxStateQueued    = "QUEUED"
	TxStateSent      = "SENT"
	TxStateConfirmed = "CONFIRMED"
	TxStateComplete  = "COMPLETE"
	TxStateFailed    = "FAILED"
	TxStateCancelled = "CANCELLED"
)

// Transaction is the provider's view of one submitted transaction.
type Transaction struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	TxHash string `json:"txHash,omitempty"`
	Error  string `json:"errorReason,omitempty"`
}

// Confirmed reports whether the transaction reached a success state.
func (t Transaction) Confirmed() bool {
	return t.State == TxStateConfirmed || t.State == TxStateComplete
}

// Rejected reports whether the transaction terminally failed on chain.
func (t Transaction) Rejected() bool {
	return t.State == TxStateFailed || t.State == TxStateCancelled
}

// ExecutionRequest submits one contract call through the provider's
// wallet. Parameters are stringified per the provider's ABI convention
// (addresses and bytes32 as hex strings, integers as decimal strings,
// arrays as JSON arrays of the same).
type ExecutionRequest struct {
	WalletID          string        `json:"walletId"`
	ContractAddress   string        `json:"contractAddress"`
	FunctionSignature string        `json:"abiFunctionSignature"`
	Parameters        []interface{} `json:"abiParameters"`
	// Value is native currency attached to the call, in wei, decimal
	// string. Empty for non-payable calls.
	Value          string `json:"amount,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	RefID          string `json:"refId,omitempty"`
}

// QueryRequest is a read-only contract call. No wallet, no gas.
type QueryRequest struct {
	ContractAddress   string        `json:"contractAddress"`
	FunctionSignature string        `json:"abiFunctionSignature"`
	Parameters        []interface{} `json:"abiParameters"`
}

type queryResponse struct {
	OutputValues []string `json:"outputValues"`
}

type executionResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type transactionEnvelope struct {
	Transaction Transaction `json:"transaction"`
}

type balanceResponse struct {
	TokenBalances []struct {
		Amount string `json:"amount"`
		Token  struct {
			Address string `json:"tokenAddress"`
			Symbol  string `json:"symbol"`
		} `json:"token"`
	} `json:"tokenBalances"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
