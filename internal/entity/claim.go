package entity

import "time"

// ClaimState is one step of the commit-reveal registration flow.
type ClaimState string

const (
	ClaimStateCommit          ClaimState = "commit"
	ClaimStateWaiting         ClaimState = "waiting"
	ClaimStateReadyToRegister ClaimState = "ready_to_register"
	ClaimStateRegistering     ClaimState = "registering"
	ClaimStateWrapping        ClaimState = "wrapping"
	ClaimStateComplete        ClaimState = "complete"
	ClaimStateFailed          ClaimState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s ClaimState) Terminal() bool {
	return s == ClaimStateComplete || s == ClaimStateFailed
}

// ClaimSession is the persisted state of one in-flight domain claim.
// It lives only for the commit wait window plus the registration
// ceiling; the secret is single-use and is dropped as soon as the
// registration transaction is confirmed.
type ClaimSession struct {
	Label        string     `json:"label"`
	OwnerAddress string     `json:"owner_address"`
	Secret       string     `json:"secret,omitempty"`
	Commitment   string     `json:"commitment"`
	DurationSecs int64      `json:"duration_secs"`
	State        ClaimState `json:"state"`
	CommitTxRef  string     `json:"commit_tx_ref"`
	CommittedAt  time.Time  `json:"committed_at"`
}
