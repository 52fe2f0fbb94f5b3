package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/wallet"
)

// Node is the chain access a local keystore wallet needs. *ethclient.Client
// satisfies it.
type Node interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Close()
}

// SwitchFunc moves the local wallet to another network. The CLI persists the
// choice so the next run connects there.
type SwitchFunc func(c *chain.Chain) error

// Keystore is a local signing wallet. It counts as unlocked while its key is
// in the session cache.
type Keystore struct {
	wallet   *wallet.Wallet
	session  *wallet.SessionCache
	node     Node
	chains   *chain.Registry
	onSwitch SwitchFunc
}

// NewKeystore wires a wallet to a node. onSwitch may be nil, in which case
// SwitchChain reports ErrUnsupported.
func NewKeystore(w *wallet.Wallet, session *wallet.SessionCache, node Node, chains *chain.Registry, onSwitch SwitchFunc) *Keystore {
	return &Keystore{wallet: w, session: session, node: node, chains: chains, onSwitch: onSwitch}
}

// Wallet returns the backing wallet.
func (k *Keystore) Wallet() *wallet.Wallet {
	return k.wallet
}

func (k *Keystore) SelectedAddress(context.Context) (common.Address, error) {
	if !k.session.Unlocked(k.wallet) {
		return common.Address{}, nil
	}
	return common.HexToAddress(k.wallet.Address), nil
}

func (k *Keystore) ChainID(ctx context.Context) (string, error) {
	id, err := k.node.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("eth_chainId: %w", err)
	}
	return chain.FormatChainID(id.Int64()), nil
}

func (k *Keystore) SwitchChain(_ context.Context, chainID string) error {
	id, err := chain.ParseChainID(chainID)
	if err != nil {
		return err
	}
	target, err := k.chains.GetByChainID(id)
	if err != nil {
		return fmt.Errorf("%w: chain %s: %v", ErrUnsupported, chainID, err)
	}
	if k.onSwitch == nil {
		return fmt.Errorf("%w: switching networks", ErrUnsupported)
	}
	return k.onSwitch(target)
}

func (k *Keystore) RequestAddresses(ctx context.Context) ([]common.Address, error) {
	addr, err := k.SelectedAddress(ctx)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("%w: %s", wallet.ErrLocked, k.wallet.Name)
	}
	return []common.Address{addr}, nil
}

func (k *Keystore) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := k.node.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	return out, nil
}

// SendTransaction signs with the cached key and submits through the node.
func (k *Keystore) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	if req.To == nil {
		return common.Hash{}, fmt.Errorf("%w: contract creation", ErrUnsupported)
	}
	signer, err := wallet.NewSigner(k.wallet, k.session)
	if err != nil {
		return common.Hash{}, err
	}
	if req.From != (common.Address{}) && req.From != signer.Address() {
		return common.Hash{}, fmt.Errorf("sender %s is not wallet %s", req.From.Hex(), signer.Address().Hex())
	}

	chainID, err := k.node.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("eth_chainId: %w", err)
	}
	opts, err := signer.TransactOpts(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	opts.Context = ctx
	opts.Value = req.Value

	contract := bind.NewBoundContract(*req.To, abi.ABI{}, k.node, k.node, k.node)
	tx, err := contract.RawTransact(opts, req.Data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sending transaction: %w", err)
	}
	return tx.Hash(), nil
}

func (k *Keystore) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r, err := k.node.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ethereum.NotFound
	}
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionReceipt: %w", err)
	}
	return r, nil
}

func (k *Keystore) Close() {
	k.node.Close()
}
