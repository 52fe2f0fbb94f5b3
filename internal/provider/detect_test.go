package provider

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/config"
	"github.com/Mohsinsiddi/w3mood/internal/rpc"
	"github.com/Mohsinsiddi/w3mood/internal/wallet"
)

func testEnvironment(t *testing.T) (Environment, *[]string) {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	var dialed []string
	healthy := func(context.Context, string) (time.Duration, uint64, error) {
		return time.Millisecond, 100, nil
	}
	return Environment{
		Config:   cfg,
		Wallets:  wallet.NewManager(wallet.WithInMemoryStore()),
		Session:  wallet.NewSessionCache(filepath.Join(t.TempDir(), "session.json")),
		Chains:   chain.NewRegistry(),
		Selector: rpc.NewSelector(rpc.AlgorithmFailover, healthy),
		DialNode: func(_ context.Context, url string) (Node, error) {
			dialed = append(dialed, url)
			return newFakeNode(chain.SepoliaChainID), nil
		},
	}, &dialed
}

func TestDetectKeystoreNoWallet(t *testing.T) {
	env, _ := testEnvironment(t)
	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDetectKeystoreCorruptWallets(t *testing.T) {
	env, dialed := testEnvironment(t)
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o600))
	env.Wallets = wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)))

	p, err := Detect(context.Background(), env)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Empty(t, *dialed)
}

func TestDetectKeystoreUnknownNetwork(t *testing.T) {
	env, dialed := testEnvironment(t)
	require.NoError(t, env.Wallets.AddWithKey("dev", anvilKey))
	env.Config.Network = "no-such-net"

	p, err := Detect(context.Background(), env)
	require.ErrorIs(t, err, chain.ErrChainNotFound)
	assert.Nil(t, p)
	assert.Empty(t, *dialed)
}

func TestDetectKeystoreWatchOnly(t *testing.T) {
	env, _ := testEnvironment(t)
	require.NoError(t, env.Wallets.AddWatchOnly("viewer", anvilAddr))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDetectKeystoreSigningWallet(t *testing.T) {
	env, dialed := testEnvironment(t)
	require.NoError(t, env.Wallets.AddWithKey("dev", anvilKey))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	require.IsType(t, &Keystore{}, p)
	assert.Equal(t, "dev", p.(*Keystore).Wallet().Name)

	sepolia, _ := chain.NewRegistry().GetByName("sepolia")
	require.Len(t, *dialed, 1)
	assert.Equal(t, sepolia.RPCs[0], (*dialed)[0], "failover picks the first healthy RPC")
}

func TestDetectKeystorePrefersCustomRPC(t *testing.T) {
	env, dialed := testEnvironment(t)
	require.NoError(t, env.Wallets.AddWithKey("dev", anvilKey))
	require.NoError(t, env.Config.AddRPC("sepolia", "https://my.sepolia.node"))

	_, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://my.sepolia.node"}, *dialed)
}

func TestDetectKeystoreNamedWalletMissing(t *testing.T) {
	env, _ := testEnvironment(t)
	require.NoError(t, env.Wallets.AddWithKey("dev", anvilKey))
	require.NoError(t, env.Config.Set(config.KeyDefaultWallet, "other"))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDetectRPCWallet(t *testing.T) {
	env, _ := testEnvironment(t)
	ws := newWalletServer(t, map[string]rpcHandler{
		"eth_chainId": result("0xaa36a7"),
	})
	require.NoError(t, env.Config.Set(config.KeyProvider, config.ProviderRPC))
	require.NoError(t, env.Config.Set(config.KeyWalletRPC, ws.URL))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	require.IsType(t, &RPCWallet{}, p)
	p.Close()
}

func TestDetectRPCWalletNotConfigured(t *testing.T) {
	env, _ := testEnvironment(t)
	require.NoError(t, env.Config.Set(config.KeyProvider, config.ProviderRPC))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDetectRPCWalletUnreachable(t *testing.T) {
	env, _ := testEnvironment(t)
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	require.NoError(t, env.Config.Set(config.KeyProvider, config.ProviderRPC))
	require.NoError(t, env.Config.Set(config.KeyWalletRPC, url))

	p, err := Detect(context.Background(), env)
	require.NoError(t, err)
	assert.Nil(t, p)
}
