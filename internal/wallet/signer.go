package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrLocked is returned when a wallet's key is not in the session cache.
var ErrLocked = errors.New("wallet is locked")

// Signer signs EVM transactions for an unlocked wallet.
type Signer struct {
	wallet *Wallet
	key    *ecdsa.PrivateKey
}

// NewSigner builds a signer from the wallet's session-cached key.
func NewSigner(w *Wallet, session *SessionCache) (*Signer, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	hexKey, ok := session.Get(w.KeyRef)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, w.Name)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if got := crypto.PubkeyToAddress(key.PublicKey); got != common.HexToAddress(w.Address) {
		return nil, fmt.Errorf("cached key for %s belongs to %s", w.Name, got.Hex())
	}
	return &Signer{wallet: w, key: key}, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignTx signs an EVM transaction and returns the signed transaction.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// TransactOpts returns bind options that sign with this wallet on chainID.
func (s *Signer) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("building transactor: %w", err)
	}
	return opts, nil
}
