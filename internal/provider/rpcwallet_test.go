package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcFailure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcHandler func(params []json.RawMessage) (any, *rpcFailure)

// walletServer mimics a JSON-RPC wallet endpoint and records what it was asked.
type walletServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    []string
	params   map[string][]json.RawMessage
}

func newWalletServer(t *testing.T, handlers map[string]rpcHandler) *walletServer {
	t.Helper()
	ws := &walletServer{handlers: handlers, params: make(map[string][]json.RawMessage)}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		ws.mu.Lock()
		ws.calls = append(ws.calls, req.Method)
		ws.params[req.Method] = req.Params
		h, ok := ws.handlers[req.Method]
		ws.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if !ok {
			resp["error"] = rpcFailure{Code: codeMethodNotFound, Message: "the method " + req.Method + " does not exist"}
		} else if result, fail := h(req.Params); fail != nil {
			resp["error"] = fail
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(ws.Close)
	return ws
}

func (ws *walletServer) called() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]string(nil), ws.calls...)
}

func (ws *walletServer) paramsOf(method string) []json.RawMessage {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.params[method]
}

func result(v any) rpcHandler {
	return func([]json.RawMessage) (any, *rpcFailure) { return v, nil }
}

func failure(code int, msg string) rpcHandler {
	return func([]json.RawMessage) (any, *rpcFailure) { return nil, &rpcFailure{Code: code, Message: msg} }
}

const testAccount = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

func dialTestWallet(t *testing.T, ws *walletServer) *RPCWallet {
	t.Helper()
	w, err := DialRPCWallet(context.Background(), ws.URL)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestRPCWalletSelectedAddress(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_accounts": result([]string{testAccount}),
	})
	addr, err := dialTestWallet(t, ws).SelectedAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAccount), addr)
}

func TestRPCWalletLockedHasNoAddress(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_accounts": result([]string{}),
	})
	addr, err := dialTestWallet(t, ws).SelectedAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, addr)
}

func TestRPCWalletChainIDNormalised(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_chainId": result("0xAA36A7"),
	})
	id, err := dialTestWallet(t, ws).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xaa36a7", id)
}

func TestRPCWalletSwitchChainParams(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"wallet_switchEthereumChain": result(nil),
	})
	require.NoError(t, dialTestWallet(t, ws).SwitchChain(context.Background(), "0xaa36a7"))

	params := ws.paramsOf("wallet_switchEthereumChain")
	require.Len(t, params, 1)
	assert.JSONEq(t, `{"chainId":"0xaa36a7"}`, string(params[0]))
}

func TestRPCWalletSwitchChainRejected(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"wallet_switchEthereumChain": failure(codeUserRejected, "User rejected the request."),
	})
	err := dialTestWallet(t, ws).SwitchChain(context.Background(), "0xaa36a7")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestRPCWalletSwitchChainUnsupported(t *testing.T) {
	ws := newWalletServer(t, nil)
	err := dialTestWallet(t, ws).SwitchChain(context.Background(), "0xaa36a7")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRPCWalletRequestAddresses(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_requestAccounts": result([]string{testAccount}),
	})
	got, err := dialTestWallet(t, ws).RequestAddresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(testAccount)}, got)
	assert.Equal(t, []string{"eth_requestAccounts"}, ws.called())
}

func TestRPCWalletRequestAddressesFallsBack(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_accounts": result([]string{testAccount}),
	})
	got, err := dialTestWallet(t, ws).RequestAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"eth_requestAccounts", "eth_accounts"}, ws.called())
}

func TestRPCWalletCall(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_call": result("0xdeadbeef"),
	})
	to := common.HexToAddress("0x60305Bc9d50Ecd64fC19974a43249c6BDDe3FBfC")
	out, err := dialTestWallet(t, ws).Call(context.Background(), ethereum.CallMsg{To: &to, Data: []byte{0x9d, 0x0c, 0x13, 0x97}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)

	params := ws.paramsOf("eth_call")
	require.Len(t, params, 2)
	assert.Contains(t, string(params[0]), "0x9d0c1397")
}

func TestRPCWalletSendTransaction(t *testing.T) {
	hash := common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_sendTransaction": result(hash.Hex()),
	})
	to := common.HexToAddress("0x60305Bc9d50Ecd64fC19974a43249c6BDDe3FBfC")

	got, err := dialTestWallet(t, ws).SendTransaction(context.Background(), TxRequest{
		From:  common.HexToAddress(testAccount),
		To:    &to,
		Data:  []byte{0x01, 0x02},
		Value: big.NewInt(16),
	})
	require.NoError(t, err)
	assert.Equal(t, hash, got)

	params := ws.paramsOf("eth_sendTransaction")
	require.Len(t, params, 1)
	var args map[string]string
	require.NoError(t, json.Unmarshal(params[0], &args))
	assert.Equal(t, testAccount, args["from"])
	assert.Equal(t, "0x0102", args["data"])
	assert.Equal(t, "0x10", args["value"])
}

func TestRPCWalletSendTransactionRejected(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_sendTransaction": failure(codeUserRejected, "User denied transaction signature."),
	})
	_, err := dialTestWallet(t, ws).SendTransaction(context.Background(), TxRequest{From: common.HexToAddress(testAccount)})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestRPCWalletReceiptPending(t *testing.T) {
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_getTransactionReceipt": result(nil),
	})
	_, err := dialTestWallet(t, ws).TransactionReceipt(context.Background(), common.Hash{1})
	assert.True(t, errors.Is(err, ethereum.NotFound))
}

func TestRPCWalletReceiptMined(t *testing.T) {
	hash := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_getTransactionReceipt": result(map[string]any{
			"transactionHash":   hash.Hex(),
			"status":            "0x1",
			"cumulativeGasUsed": "0x5208",
			"gasUsed":           "0x5208",
			"logsBloom":         "0x" + strings.Repeat("0", 512),
			"logs":              []any{},
			"blockNumber":       "0x10",
			"blockHash":         common.Hash{3}.Hex(),
			"transactionIndex":  "0x0",
		}),
	})
	r, err := dialTestWallet(t, ws).TransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(16), r.BlockNumber.Uint64())
}
