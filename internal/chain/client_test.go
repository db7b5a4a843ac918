package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		PollInterval:   5 * time.Millisecond,
		ConfirmTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestExecuteSubmitsContractCall(t *testing.T) {
	var captured ExecutionRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/w3s/developer/transactions/contractExecution", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"id": "tx-42", "state": TxStateInitiated})
	}))

	id, err := client.Execute(context.Background(), ExecutionRequest{
		WalletID:          "w1",
		ContractAddress:   "0xcontract",
		FunctionSignature: "commit(bytes32)",
		Parameters:        []interface{}{"0xdeadbeef"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-42", id)
	assert.Equal(t, "commit(bytes32)", captured.FunctionSignature)
	assert.Equal(t, "w1", captured.WalletID)
}

func TestQueryReturnsOutputValues(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/w3s/contracts/query", r.URL.Path)
		json.NewEncoder(w).Encode(map[string][]string{"outputValues": {"500", "100"}})
	}))

	out, err := client.Query(context.Background(), QueryRequest{
		ContractAddress:   "0xcontroller",
		FunctionSignature: "rentPrice(string,uint256)",
		Parameters:        []interface{}{"acme", "31536000"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "100"}, out)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind apperr.Kind
	}{
		{name: "client error is a rejection", status: http.StatusBadRequest, wantKind: apperr.KindOnChainRejection},
		{name: "server error is retryable", status: http.StatusBadGateway, wantKind: apperr.KindExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{"code": 1, "message": "nope"})
			}))

			_, err := client.Execute(context.Background(), ExecutionRequest{})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestWaitForConfirmationPollsUntilComplete(t *testing.T) {
	var polls int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := TxStateSent
		if atomic.AddInt64(&polls, 1) >= 3 {
			state = TxStateComplete
		}
		json.NewEncoder(w).Encode(map[string]Transaction{"transaction": {ID: "tx-1", State: state, TxHash: "0xabc"}})
	}))

	tx, err := client.WaitForConfirmation(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, TxStateComplete, tx.State)
	assert.Equal(t, "0xabc", tx.TxHash)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&polls), int64(3))
}

func TestWaitForConfirmationRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]Transaction{"transaction": {ID: "tx-1", State: TxStateFailed, Error: "out of gas"}})
	}))

	_, err := client.WaitForConfirmation(context.Background(), "tx-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindOnChainRejection, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "out of gas")
}

func TestWaitForConfirmationTimesOut(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]Transaction{"transaction": {ID: "tx-1", State: TxStateSent}})
	}))

	_, err := client.WaitForConfirmation(context.Background(), "tx-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))
}

func TestGetWalletBalanceFiltersToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/w3s/wallets/w1/balances", r.URL.Path)
		w.Write([]byte(`{"tokenBalances":[
			{"amount":"100","token":{"tokenAddress":"0xAAA","symbol":"USDC"}},
			{"amount":"250","token":{"tokenAddress":"0xBBB","symbol":"DAI"}}
		]}`))
	}))

	balance, err := client.GetWalletBalance(context.Background(), "w1", "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}
