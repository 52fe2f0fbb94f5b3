package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
)

// JSON-RPC error codes a wallet endpoint may return (EIP-1193 / EIP-1474).
const (
	codeMethodNotFound = -32601
	codeUserRejected   = 4001
	codeUnsupported    = 4200
)

// RPCWallet is a wallet reached over JSON-RPC: the endpoint holds the keys
// and answers the same requests an injected browser wallet does.
type RPCWallet struct {
	url    string
	client *gethrpc.Client
	eth    *ethclient.Client
}

// DialRPCWallet connects to a wallet endpoint.
func DialRPCWallet(ctx context.Context, url string) (*RPCWallet, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing wallet %s: %w", url, err)
	}
	return NewRPCWallet(url, c), nil
}

// NewRPCWallet wraps an existing RPC client.
func NewRPCWallet(url string, c *gethrpc.Client) *RPCWallet {
	return &RPCWallet{url: url, client: c, eth: ethclient.NewClient(c)}
}

// URL returns the wallet endpoint.
func (w *RPCWallet) URL() string {
	return w.url
}

func (w *RPCWallet) SelectedAddress(ctx context.Context) (common.Address, error) {
	var accounts []common.Address
	if err := w.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, classify("eth_accounts", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, nil
	}
	return accounts[0], nil
}

func (w *RPCWallet) ChainID(ctx context.Context) (string, error) {
	var raw string
	if err := w.client.CallContext(ctx, &raw, "eth_chainId"); err != nil {
		return "", classify("eth_chainId", err)
	}
	id, err := chain.ParseChainID(raw)
	if err != nil {
		return "", fmt.Errorf("eth_chainId: %w", err)
	}
	return chain.FormatChainID(id), nil
}

func (w *RPCWallet) SwitchChain(ctx context.Context, chainID string) error {
	params := map[string]string{"chainId": chainID}
	if err := w.client.CallContext(ctx, nil, "wallet_switchEthereumChain", params); err != nil {
		return classify("wallet_switchEthereumChain", err)
	}
	return nil
}

// RequestAddresses calls eth_requestAccounts, falling back to eth_accounts on
// endpoints (plain nodes) that do not implement it.
func (w *RPCWallet) RequestAddresses(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := w.client.CallContext(ctx, &accounts, "eth_requestAccounts")
	if rpcCode(err) == codeMethodNotFound {
		err = w.client.CallContext(ctx, &accounts, "eth_accounts")
	}
	if err != nil {
		return nil, classify("eth_requestAccounts", err)
	}
	return accounts, nil
}

func (w *RPCWallet) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := w.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, classify("eth_call", err)
	}
	return out, nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

func (w *RPCWallet) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	args := sendTxArgs{From: tx.From, To: tx.To, Data: tx.Data}
	if tx.Value != nil {
		args.Value = (*hexutil.Big)(tx.Value)
	}
	var hash common.Hash
	if err := w.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, classify("eth_sendTransaction", err)
	}
	return hash, nil
}

func (w *RPCWallet) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r, err := w.eth.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ethereum.NotFound
	}
	if err != nil {
		return nil, classify("eth_getTransactionReceipt", err)
	}
	return r, nil
}

func (w *RPCWallet) Close() {
	w.client.Close()
}

// rpcCode returns the JSON-RPC error code of err, or 0.
func rpcCode(err error) int {
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}

// classify maps wallet error codes onto package sentinels.
func classify(method string, err error) error {
	switch rpcCode(err) {
	case codeUserRejected:
		return fmt.Errorf("%s: %w: %v", method, ErrRejected, err)
	case codeMethodNotFound, codeUnsupported:
		return fmt.Errorf("%s: %w: %v", method, ErrUnsupported, err)
	}
	return fmt.Errorf("%s: %w", method, err)
}
