// Package dapp connects a wallet provider to the mood contract. Connect runs
// the environment checks once; the resulting Session reads and writes the
// mood on behalf of the selected account.
package dapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/contract"
	"github.com/Mohsinsiddi/w3mood/internal/provider"
)

// TargetChainID is Sepolia, the only network the mood contract lives on.
const TargetChainID = "0xaa36a7"

// DefaultPollInterval spaces receipt polls in WaitMined.
const DefaultPollInterval = 2 * time.Second

var errNoAccounts = errors.New("wallet returned no accounts")

// Session is a connected wallet bound to the mood contract. Its fields are
// set by Connect and only read afterwards, so Read and Write may run
// concurrently.
type Session struct {
	provider provider.Provider
	mood     *contract.Mood
	account  common.Address
	chainID  string
}

// Connect checks, in order, that a provider exists, that it has an account
// selected and that it is on Sepolia. A wallet on another chain is asked to
// switch and Connect returns a *WrongNetworkError whatever the outcome.
func Connect(ctx context.Context, p provider.Provider) (*Session, error) {
	if p == nil {
		return nil, ErrNoProvider
	}

	selected, err := p.SelectedAddress(ctx)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	if selected == (common.Address{}) {
		return nil, ErrLocked
	}

	current, err := p.ChainID(ctx)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	if !chain.SameChainID(current, TargetChainID) {
		switchErr := p.SwitchChain(ctx, TargetChainID)
		return nil, &WrongNetworkError{
			Current:  current,
			Target:   TargetChainID,
			Switched: switchErr == nil,
			Err:      switchErr,
		}
	}

	mood, err := contract.NewMood()
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	accounts, err := p.RequestAddresses(ctx)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	if len(accounts) == 0 {
		return nil, &ConnectError{Err: errNoAccounts}
	}

	return &Session{
		provider: p,
		mood:     mood,
		account:  accounts[0],
		chainID:  current,
	}, nil
}

// Account returns the active address.
func (s *Session) Account() common.Address {
	return s.account
}

// ChainID returns the chain the session was established on.
func (s *Session) ChainID() string {
	return s.chainID
}

// Contract returns the bound mood contract.
func (s *Session) Contract() *contract.Mood {
	return s.mood
}

// Read calls getMood(). An empty stored value yields ErrEmptyMood.
func (s *Session) Read(ctx context.Context) (string, error) {
	data, err := s.mood.PackGetMood()
	if err != nil {
		return "", &ReadError{Err: err}
	}
	to := s.mood.Address()
	out, err := s.provider.Call(ctx, ethereum.CallMsg{From: s.account, To: &to, Data: data})
	if err != nil {
		return "", &ReadError{Err: err}
	}
	mood, err := s.mood.UnpackGetMood(out)
	if err != nil {
		return "", &ReadError{Err: err}
	}
	if mood == "" {
		return "", ErrEmptyMood
	}
	return mood, nil
}

// NormalizeMood trims input and rejects a blank result.
func NormalizeMood(input string) (string, error) {
	mood := strings.TrimSpace(input)
	if mood == "" {
		return "", ErrBlankMood
	}
	return mood, nil
}

// Write sends setMood(trimmed input) from the active account and returns the
// transaction hash once the wallet accepted it. Blank input sends nothing.
func (s *Session) Write(ctx context.Context, input string) (common.Hash, error) {
	mood, err := NormalizeMood(input)
	if err != nil {
		return common.Hash{}, err
	}
	data, err := s.mood.PackSetMood(mood)
	if err != nil {
		return common.Hash{}, &WriteError{Err: err}
	}
	to := s.mood.Address()
	hash, err := s.provider.SendTransaction(ctx, provider.TxRequest{
		From: s.account,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, &WriteError{Err: err}
	}
	return hash, nil
}

// WaitMined polls for the receipt of hash until it is mined or ctx ends. A
// reverted receipt is a *WriteError wrapping ErrReverted.
func (s *Session) WaitMined(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := s.provider.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, &WriteError{Hash: hash, Err: ErrReverted}
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, &WriteError{Hash: hash, Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &WriteError{Hash: hash, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// WatchHandler receives the results of Watch. OnChange gets every mood that
// differs from the previous successful read, the first one included; an empty
// contract is reported as "". OnPoll runs after every read with its error.
type WatchHandler struct {
	OnChange func(mood string)
	OnPoll   func(polls int, err error)
}

// Watch reads the mood now and then every interval until ctx ends. Read
// failures are reported and polling continues. It returns ctx.Err().
func (s *Session) Watch(ctx context.Context, interval time.Duration, h WatchHandler) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last  string
		seen  bool
		polls int
	)
	for {
		mood, err := s.Read(ctx)
		if errors.Is(err, ErrEmptyMood) {
			mood, err = "", nil
		}
		polls++
		if err == nil && (!seen || mood != last) {
			last, seen = mood, true
			if h.OnChange != nil {
				h.OnChange(mood)
			}
		}
		if h.OnPoll != nil {
			h.OnPoll(polls, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
