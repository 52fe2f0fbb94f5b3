// Package provider abstracts the wallet a mood session talks to. A Provider
// reports the selected account and the active chain, can be asked to switch
// chains, and relays contract calls and transactions.
package provider

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Errors.
var (
	// ErrUnsupported is returned for requests a backend cannot serve.
	ErrUnsupported = errors.New("not supported by wallet")
	// ErrRejected is returned when the wallet user declined a request.
	ErrRejected = errors.New("request rejected by user")
)

// TxRequest is a transaction handed to the wallet for signing and sending.
// Nonce, gas and fees are left to the wallet.
type TxRequest struct {
	From  common.Address
	To    *common.Address
	Data  []byte
	Value *big.Int
}

// Provider is a wallet connection.
type Provider interface {
	// SelectedAddress returns the active account, or the zero address while
	// the wallet is locked.
	SelectedAddress(ctx context.Context) (common.Address, error)
	// ChainID returns the active chain as lower-case 0x hex.
	ChainID(ctx context.Context) (string, error)
	// SwitchChain asks the wallet to move to chainID (0x hex).
	SwitchChain(ctx context.Context, chainID string) error
	// RequestAddresses asks the wallet for account access.
	RequestAddresses(ctx context.Context) ([]common.Address, error)
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
	// TransactionReceipt returns ethereum.NotFound while tx is pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Close()
}
