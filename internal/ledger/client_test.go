package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/config"
)

func newTestServer(t *testing.T, handler func(method string, params []json.RawMessage) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      int               `json:"id"`
			Method  string            `json:"method"`
			Params  []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		result, rpcErr := handler(req.Method, req.Params)

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = map[string]interface{}{"code": rpcErr.Code, "message": rpcErr.Message}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(url string) *Client {
	return NewClient(config.LedgerConfig{RPCURL: url + "/"}, zap.NewNop())
}

func TestGetListingsMissingProductsAbsentFromMap(t *testing.T) {
	kiosk := "kiosk-1"
	srv := newTestServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		assert.Equal(t, "market_getListings", method)

		var ids []string
		require.NoError(t, json.Unmarshal(params[0], &ids))
		assert.Equal(t, []string{"p1", "p2", "gone"}, ids)

		// "gone" is no longer listed; the node simply omits it
		return []ListingState{
			{ProductID: "p1", SellerAddress: "s1", Price: 100, Stock: 5},
			{ProductID: "p2", SellerAddress: "s2", Price: 500, Stock: 1, KioskID: &kiosk},
		}, nil
	})
	defer srv.Close()

	listings, err := newTestClient(srv.URL).GetListings(context.Background(), []string{"p1", "p2", "gone"})
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.Equal(t, int64(5), listings["p1"].Stock)
	require.NotNil(t, listings["p2"].KioskID)
	assert.Equal(t, "kiosk-1", *listings["p2"].KioskID)
	_, ok := listings["gone"]
	assert.False(t, ok)
}

func TestGetTransactionStatus(t *testing.T) {
	srv := newTestServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		assert.Equal(t, "market_getTransactionStatus", method)
		return SubmissionResult{Status: StatusConfirmed, TxDigest: "0xabc"}, nil
	})
	defer srv.Close()

	result, err := newTestClient(srv.URL).GetTransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, result.Status)
	assert.Equal(t, "0xabc", result.TxDigest)
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := newTestServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32001, Message: "listing not found"}
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetListings(context.Background(), []string{"p1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing not found")
}

func TestNodeSignerSubmitsTransaction(t *testing.T) {
	srv := newTestServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		assert.Equal(t, "market_signAndSubmit", method)

		var tx Transaction
		require.NoError(t, json.Unmarshal(params[0], &tx))
		assert.Equal(t, "0xbuyer", tx.Sender)
		require.Len(t, tx.Commands, 2)

		return SubmissionResult{Status: StatusConfirmed, TxDigest: "0xabc"}, nil
	})
	defer srv.Close()

	signer := NewNodeSigner(newTestClient(srv.URL))
	result, err := signer.SignAndSubmit(context.Background(), &Transaction{
		Sender: "0xbuyer",
		Commands: []Command{
			{Kind: CommandSplitPayment, Amount: 200, Recipient: "s1"},
			{Kind: CommandBuyListing, ProductID: "p1", Quantity: 2},
		},
		GasBudget: 50_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, result.Status)
	assert.Equal(t, "0xabc", result.TxDigest)
}

func TestNodeSignerTimeoutIsIndeterminate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	signer := NewNodeSigner(newTestClient(srv.URL))
	result, err := signer.SignAndSubmit(ctx, &Transaction{Sender: "0xbuyer"})

	// The node may have received the transaction; never report failure
	require.NoError(t, err)
	assert.Equal(t, StatusIndeterminate, result.Status)
}
