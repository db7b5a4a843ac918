// Package chain talks to the vendor-hosted custodial wallet API that
// carries every on-chain interaction: contract execution through the
// server-held wallet, read-only contract queries, wallet balances and
// transaction confirmation polling.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anbusan19/nominal/pkg/apperr"
)

// Gateway is the call surface services depend on. Production uses
// *Client; tests substitute fakes.
type Gateway interface {
	Execute(ctx context.Context, req ExecutionRequest) (string, error)
	Query(ctx context.Context, req QueryRequest) ([]string, error)
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	WaitForConfirmation(ctx context.Context, id string) (Transaction, error)
	GetWalletBalance(ctx context.Context, walletID, tokenAddress string) (int64, error)
}

type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("chain gateway base URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	poll := cfg.PollInterval
	if poll == 0 {
		poll = 2 * time.Second
	}
	confirm := cfg.ConfirmTimeout
	if confirm == 0 {
		confirm = 3 * time.Minute
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		httpClient:     &http.Client{Timeout: timeout},
		pollInterval:   poll,
		confirmTimeout: confirm,
	}, nil
}

// Execute submits a state-changing contract call and returns the
// provider's transaction id.
func (c *Client) Execute(ctx context.Context, req ExecutionRequest) (string, error) {
	var resp executionResponse
	if err := c.post(ctx, "/v1/w3s/developer/transactions/contractExecution", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", apperr.New(apperr.KindExternal, "provider returned no transaction id")
	}
	return resp.ID, nil
}

// Query performs a read-only contract call and returns the decoded
// output values as strings.
func (c *Client) Query(ctx context.Context, req QueryRequest) ([]string, error) {
	var resp queryResponse
	if err := c.post(ctx, "/v1/w3s/contracts/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.OutputValues, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	var resp transactionEnvelope
	if err := c.get(ctx, "/v1/w3s/transactions/"+id, &resp); err != nil {
		return Transaction{}, err
	}
	return resp.Transaction, nil
}

// WaitForConfirmation polls the transaction until it confirms, is
// rejected, or the bounded confirmation window runs out. A timeout is a
// retryable external error; a rejection is not.
func (c *Client) WaitForConfirmation(ctx context.Context, id string) (Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		tx, err := c.GetTransaction(ctx, id)
		if err == nil {
			if tx.Confirmed() {
				return tx, nil
			}
			if tx.Rejected() {
				return tx, apperr.Newf(apperr.KindOnChainRejection,
					"transaction %s rejected: %s", id, tx.Error)
			}
		}

		select {
		case <-ctx.Done():
			return Transaction{}, apperr.Wrap(apperr.KindExternal,
				fmt.Sprintf("confirmation wait for transaction %s timed out", id), ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetWalletBalance returns the wallet's balance of the given token in
// the token's smallest unit.
func (c *Client) GetWalletBalance(ctx context.Context, walletID, tokenAddress string) (int64, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/v1/w3s/wallets/"+walletID+"/balances", &resp); err != nil {
		return 0, err
	}

	for _, b := range resp.TokenBalances {
		if tokenAddress != "" && !strings.EqualFold(b.Token.Address, tokenAddress) {
			continue
		}
		amount, err := strconv.ParseInt(b.Amount, 10, 64)
		if err != nil {
			return 0, apperr.Wrap(apperr.KindExternal, "provider returned unparseable balance", err)
		}
		return amount, nil
	}
	return 0, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "marshal request", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindExternal, "chain gateway unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.KindExternal, "read provider response", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = string(raw)
		}
		if resp.StatusCode >= 500 {
			return apperr.Newf(apperr.KindExternal, "provider error (%d): %s", resp.StatusCode, msg)
		}
		return apperr.Newf(apperr.KindOnChainRejection, "provider rejected request (%d): %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperr.Wrap(apperr.KindExternal, "decode provider response", err)
		}
	}
	return nil
}
