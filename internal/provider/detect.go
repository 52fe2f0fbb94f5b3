package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/logger"
	"github.com/Mohsinsiddi/w3mood/internal/rpc"
	"github.com/Mohsinsiddi/w3mood/internal/wallet"
)

// Environment is what Detect needs to find a wallet.
type Environment struct {
	Config   *config.Config
	Wallets  *wallet.Manager
	Session  *wallet.SessionCache
	Chains   *chain.Registry
	Selector *rpc.Selector
	OnSwitch SwitchFunc
	Log      *logger.Logger

	// DialNode connects the keystore wallet to a node. Nil means ethclient.
	DialNode func(ctx context.Context, url string) (Node, error)
}

// Detect returns the configured wallet, or nil when none is available. A nil
// provider with a nil error means "no wallet installed"; errors are reserved
// for broken configuration.
func Detect(ctx context.Context, env Environment) (Provider, error) {
	log := env.Log
	if log == nil {
		log = logger.Nop()
	}
	switch env.Config.Provider {
	case config.ProviderRPC:
		return detectRPCWallet(ctx, env, log)
	case config.ProviderKeystore, "":
		return detectKeystore(ctx, env, log)
	default:
		return nil, fmt.Errorf("unknown provider %q", env.Config.Provider)
	}
}

func detectRPCWallet(ctx context.Context, env Environment, log *logger.Logger) (Provider, error) {
	url := env.Config.WalletRPC
	if url == "" {
		log.Debug().Msg("rpc provider selected but wallet_rpc is empty")
		return nil, nil
	}
	w, err := DialRPCWallet(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("wallet endpoint unreachable")
		return nil, nil
	}
	// A wallet that cannot answer eth_chainId is treated as absent.
	if _, err := w.ChainID(ctx); err != nil {
		w.Close()
		log.Warn().Err(err).Str("url", url).Msg("wallet endpoint not responding")
		return nil, nil
	}
	log.Debug().Str("url", url).Msg("rpc wallet detected")
	return w, nil
}

func detectKeystore(ctx context.Context, env Environment, log *logger.Logger) (Provider, error) {
	w, err := env.Wallets.Resolve(env.Config.DefaultWallet)
	if errors.Is(err, wallet.ErrWalletNotFound) {
		log.Debug().Err(err).Msg("no keystore wallet")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !w.CanSign() {
		log.Debug().Str("wallet", w.Name).Msg("default wallet is watch-only")
		return nil, nil
	}

	c, err := env.Chains.GetByName(env.Config.Network)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", env.Config.Network, err)
	}
	urls := append(append([]string{}, env.Config.GetRPCs(c.Name)...), c.RPCs...)
	url, err := env.Selector.Select(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("picking %s RPC: %w", c.Name, err)
	}

	dial := env.DialNode
	if dial == nil {
		dial = dialEthclient
	}
	node, err := dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	log.Debug().Str("wallet", w.Name).Str("network", c.Name).Str("rpc", url).Msg("keystore wallet detected")
	return NewKeystore(w, env.Session, node, env.Chains, env.OnSwitch), nil
}

func dialEthclient(ctx context.Context, url string) (Node, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}
