package dapp

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Environment and input errors.
var (
	ErrNoProvider   = errors.New("no wallet provider detected")
	ErrLocked       = errors.New("wallet is locked")
	ErrNotConnected = errors.New("no wallet session")
	ErrConnecting   = errors.New("wallet connection in progress")
	ErrEmptyMood    = errors.New("mood is empty")
	ErrBlankMood    = errors.New("mood input is blank")
	ErrReverted     = errors.New("transaction reverted")
)

// WrongNetworkError reports a wallet on another chain. Switched tells whether
// the wallet accepted the switch request; no session is built either way.
type WrongNetworkError struct {
	Current  string
	Target   string
	Switched bool
	Err      error
}

func (e *WrongNetworkError) Error() string {
	if e.Switched {
		return fmt.Sprintf("wallet switched from chain %s to %s", e.Current, e.Target)
	}
	return fmt.Sprintf("wallet on chain %s, want %s: switch failed: %v", e.Current, e.Target, e.Err)
}

func (e *WrongNetworkError) Unwrap() error { return e.Err }

// ConnectError wraps any other failure while building a session.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return "connecting wallet: " + e.Err.Error() }

func (e *ConnectError) Unwrap() error { return e.Err }

// ReadError wraps a failed getMood call.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "reading mood: " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed or reverted setMood transaction. Hash is zero
// when nothing was sent.
type WriteError struct {
	Hash common.Hash
	Err  error
}

func (e *WriteError) Error() string {
	if e.Hash != (common.Hash{}) {
		return fmt.Sprintf("writing mood (tx %s): %v", e.Hash.Hex(), e.Err)
	}
	return "writing mood: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

// User-facing texts.
const (
	MsgNoProvider     = "No wallet detected! Please install or unlock your wallet."
	MsgLocked         = "Please unlock your wallet."
	MsgSwitched       = "Switched to Sepolia! Re-run the command and try again."
	MsgSwitchManually = "Please switch your wallet to Sepolia manually."
	MsgNotConnected   = "Connect your wallet first."
	MsgConnecting     = "Still connecting to your wallet…"
	MsgUnexpected     = "An unexpected error occurred."
	MsgEmptyMood      = "Mood is empty. Try setting a mood first!"
	MsgReadFailed     = "Error reading mood. Contract might be missing or address is wrong."
	MsgBlankMood      = "Please enter a mood before setting it!"
	MsgPending        = "Sending transaction… Please confirm in your wallet."
	MsgWaiting        = "Transaction sent. Waiting for it to be mined…"
	MsgUpdated        = "Mood updated successfully!"
	MsgWriteFailed    = "Transaction failed or rejected."
)

// FormatMood renders a read result.
func FormatMood(mood string) string {
	return "Your Mood: " + mood
}

// FormatConnected renders the connected account.
func FormatConnected(addr common.Address) string {
	return "Connected wallet: " + addr.Hex()
}

// Message maps an error from this package to the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		wrongNet *WrongNetworkError
		readErr  *ReadError
		writeErr *WriteError
	)
	switch {
	case errors.Is(err, ErrNoProvider):
		return MsgNoProvider
	case errors.Is(err, ErrLocked):
		return MsgLocked
	case errors.As(err, &wrongNet):
		if wrongNet.Switched {
			return MsgSwitched
		}
		return MsgSwitchManually
	case errors.Is(err, ErrNotConnected):
		return MsgNotConnected
	case errors.Is(err, ErrConnecting):
		return MsgConnecting
	case errors.Is(err, ErrEmptyMood):
		return MsgEmptyMood
	case errors.Is(err, ErrBlankMood):
		return MsgBlankMood
	case errors.As(err, &readErr):
		return MsgReadFailed
	case errors.As(err, &writeErr):
		return MsgWriteFailed
	}
	// ConnectError and anything unclassified.
	return MsgUnexpected
}
