package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/dapp"
	"github.com/Mohsinsiddi/w3mood/internal/provider"
	"github.com/Mohsinsiddi/w3mood/internal/rpc"
	"github.com/Mohsinsiddi/w3mood/internal/wallet"
)

// newWalletManager opens wallets.json. withKeys also opens the keychain,
// which may prompt; metadata-only commands skip it.
func newWalletManager(withKeys bool) (*wallet.Manager, error) {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	if withKeys {
		ks, err := wallet.OpenKeystore(wallet.KeystoreOptions{
			FileDir:  cfg.KeyringDir(),
			Password: cfg.KeyringPassword,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, wallet.WithKeyStore(ks))
	}
	return wallet.NewManager(opts...), nil
}

func newSessionCache() *wallet.SessionCache {
	return wallet.NewSessionCache(wallet.DefaultSessionPath())
}

func newSelector() (*rpc.Selector, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, err
	}
	return rpc.NewSelector(algo, rpc.ProbeEVM), nil
}

// persistNetwork is the keystore wallet's network switch: the next run
// connects to target.
func persistNetwork(target *chain.Chain) error {
	if cfg.FromEnv(config.KeyNetwork) {
		return fmt.Errorf("network is pinned by W3MOOD_NETWORK")
	}
	if err := cfg.Set(config.KeyNetwork, target.Name); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	log.Info().Str("network", target.Name).Msg("network switched")
	return nil
}

// detectProvider finds the configured wallet. A nil provider with a nil
// error means none is available.
func detectProvider(ctx context.Context) (provider.Provider, error) {
	mgr, err := newWalletManager(false)
	if err != nil {
		return nil, err
	}
	sel, err := newSelector()
	if err != nil {
		return nil, err
	}
	return provider.Detect(ctx, provider.Environment{
		Config:   cfg,
		Wallets:  mgr,
		Session:  newSessionCache(),
		Chains:   chain.NewRegistry(),
		Selector: sel,
		OnSwitch: persistNetwork,
		Log:      log.Component("provider"),
	})
}

// connect detects the wallet and runs the session bootstrap through ctrl.
// Detection and environment failures are shown by ctrl and returned as
// errReported.
func connect(ctx context.Context, ctrl *dapp.Controller) (*dapp.Session, func(), error) {
	p, err := detectProvider(ctx)
	if err != nil {
		ctrl.Fail(err) //nolint:errcheck
		return nil, nil, errReported
	}
	s, err := ctrl.Init(ctx, p)
	if err != nil {
		if p != nil {
			p.Close()
		}
		return nil, nil, errReported
	}
	return s, p.Close, nil
}
