package dapp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3mood/internal/logger"
	"github.com/Mohsinsiddi/w3mood/internal/provider"
)

// Display is where the controller reports progress. Status and Error are
// single-line surfaces that an empty string clears; Result shows the mood.
type Display interface {
	Status(msg string)
	Error(msg string)
	Result(msg string)
}

// Controller owns the one Session of a run and turns every outcome into
// display text.
type Controller struct {
	display Display
	log     *logger.Logger

	mu         sync.Mutex
	session    *Session
	connecting bool
}

// NewController builds a controller. A nil log discards diagnostics.
func NewController(d Display, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{display: d, log: log.Component("dapp")}
}

// Session returns the connected session, or nil before a successful Init.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Init connects p. A second call after success reuses the existing session;
// a call made while another Init is still waiting on the wallet fails with
// ErrConnecting. Operations issued meanwhile see no session.
func (c *Controller) Init(ctx context.Context, p provider.Provider) (*Session, error) {
	c.mu.Lock()
	if s := c.session; s != nil {
		c.mu.Unlock()
		return s, nil
	}
	if c.connecting {
		c.mu.Unlock()
		c.reportConnect(ErrConnecting)
		return nil, ErrConnecting
	}
	c.connecting = true
	c.mu.Unlock()

	s, err := Connect(ctx, p)

	c.mu.Lock()
	c.connecting = false
	if err == nil {
		c.session = s
	}
	c.mu.Unlock()

	if err != nil {
		c.reportConnect(err)
		return nil, err
	}
	c.log.Info().Str("account", s.Account().Hex()).Str("chain", s.ChainID()).Msg("wallet connected")
	c.display.Status(FormatConnected(s.Account()))
	return s, nil
}

// Fail reports an error that stopped the wallet from being found at all,
// such as a broken config. It is shown like any unexpected connect failure.
func (c *Controller) Fail(err error) error {
	err = &ConnectError{Err: err}
	c.reportConnect(err)
	return err
}

func (c *Controller) reportConnect(err error) {
	var wrongNet *WrongNetworkError
	switch {
	case errors.As(err, &wrongNet) && wrongNet.Switched:
		c.log.Warn().Str("from", wrongNet.Current).Str("to", wrongNet.Target).Msg("wallet switched network")
		c.display.Status(Message(err))
	case errors.Is(err, ErrNoProvider), errors.Is(err, ErrLocked), errors.Is(err, ErrConnecting), wrongNet != nil:
		c.log.Warn().Err(err).Msg("wallet not ready")
		c.display.Error(Message(err))
	default:
		c.log.Error().Err(err).Msg("connect failed")
		c.display.Error(Message(err))
	}
}

// GetMood reads the mood and shows it. An empty mood is reported on the
// status line and returned as ErrEmptyMood.
func (c *Controller) GetMood(ctx context.Context) (string, error) {
	s := c.Session()
	if s == nil {
		c.display.Error(Message(ErrNotConnected))
		return "", ErrNotConnected
	}

	mood, err := s.Read(ctx)
	switch {
	case errors.Is(err, ErrEmptyMood):
		c.log.Info().Msg("mood is empty")
		c.display.Status(Message(err))
		return "", err
	case err != nil:
		c.log.Error().Err(err).Msg("read failed")
		c.display.Error(Message(err))
		return "", err
	}
	c.log.Debug().Str("mood", mood).Msg("mood read")
	c.display.Result(FormatMood(mood))
	return mood, nil
}

// SetOptions tunes SetMood.
type SetOptions struct {
	// Wait blocks until the transaction is mined.
	Wait         bool
	PollInterval time.Duration
}

// SetMood validates input, then sends setMood and reports the outcome. Blank
// input never reaches the wallet.
func (c *Controller) SetMood(ctx context.Context, input string, opts SetOptions) (common.Hash, error) {
	s := c.Session()
	if s == nil {
		c.display.Error(Message(ErrNotConnected))
		return common.Hash{}, ErrNotConnected
	}

	if _, err := NormalizeMood(input); err != nil {
		c.log.Warn().Err(err).Msg("set rejected")
		c.display.Error(Message(err))
		return common.Hash{}, err
	}

	c.display.Error("")
	c.display.Status(MsgPending)

	hash, err := s.Write(ctx, input)
	if err == nil && opts.Wait {
		c.display.Status(MsgWaiting)
		_, err = s.WaitMined(ctx, hash, opts.PollInterval)
	}
	if err != nil {
		c.log.Error().Err(err).Msg("write failed")
		c.display.Error(Message(err))
		c.display.Status("")
		return hash, err
	}

	c.log.Info().Str("tx", hash.Hex()).Bool("mined", opts.Wait).Msg("mood updated")
	c.display.Status(MsgUpdated)
	return hash, nil
}
