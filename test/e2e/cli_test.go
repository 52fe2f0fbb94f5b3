package e2e_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mood/internal/contract"
)

var binaryPath string

const account = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "w3mood-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3mood")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"W3MOOD_CONFIG_DIR="+configDir,
		"XDG_CACHE_HOME="+filepath.Join(configDir, "cache"),
		"W3MOOD_KEYRING_PASSWORD=e2e",
	)
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// mockWallet is a JSON-RPC wallet on Sepolia holding one account and a mood.
type mockWallet struct {
	*httptest.Server

	mu      sync.Mutex
	chainID string
	mood    string
	methods []string
}

func newMockWallet(t *testing.T) *mockWallet {
	t.Helper()
	moodABI, err := contract.NewMood()
	require.NoError(t, err)

	mw := &mockWallet{chainID: "0xaa36a7"}
	mw.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		mw.mu.Lock()
		mw.methods = append(mw.methods, req.Method)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_accounts", "eth_requestAccounts":
			resp["result"] = []string{account}
		case "eth_chainId":
			resp["result"] = mw.chainID
		case "wallet_switchEthereumChain":
			mw.chainID = "0xaa36a7"
			resp["result"] = nil
		case "eth_call":
			out, err := moodABI.PackGetMoodResult(mw.mood)
			if err != nil {
				resp["error"] = map[string]any{"code": -32000, "message": err.Error()}
			} else {
				resp["result"] = hexutil.Encode(out)
			}
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		mw.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(mw.Close)
	return mw
}

func (mw *mockWallet) called(method string) bool {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	for _, m := range mw.methods {
		if m == method {
			return true
		}
	}
	return false
}

func rpcEnv(mw *mockWallet) []string {
	return []string{"W3MOOD_PROVIDER=rpc", "W3MOOD_WALLET_RPC=" + mw.URL}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3mood")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), nil, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"mood", "connect", "app", "wallet", "network", "rpc", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestNetworkListShowsSepolia(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), nil, "network", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sepolia")
	assert.Contains(t, out, "0xaa36a7")
}

func TestNetworkUseUnknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), nil, "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestNetworkUsePersists(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, nil, "network", "use", "holesky")
	require.NoError(t, err)

	out, err := runCLI(t, dir, nil, "config", "get", "network")
	require.NoError(t, err)
	assert.Equal(t, "holesky", strings.TrimSpace(out))
}

func TestEnvOverrideIsNotPersisted(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, []string{"W3MOOD_NETWORK=holesky"}, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "holesky")
	assert.Contains(t, out, "env")

	_, err = runCLI(t, dir, []string{"W3MOOD_NETWORK=holesky"}, "config", "set", "log_level", "debug")
	require.NoError(t, err)

	out, err = runCLI(t, dir, nil, "config", "get", "network")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", strings.TrimSpace(out))
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), nil, "config", "set", "provider", "metamask")
	assert.Error(t, err)
}

func TestWatchOnlyWalletAddListRemove(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, nil, "wallet", "add", "viewer", "--watch", account)
	require.NoError(t, err)

	out, err := runCLI(t, dir, nil, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "viewer")
	assert.Contains(t, out, "watch-only")

	_, err = runCLI(t, dir, nil, "wallet", "remove", "viewer", "--yes")
	require.NoError(t, err)

	out, err = runCLI(t, dir, nil, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallets yet")
}

func TestMoodGetWithoutWallet(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), nil, "mood", "get")
	assert.Error(t, err)
	assert.Contains(t, out, "No wallet detected! Please install or unlock your wallet.")
}

func TestMoodGetThroughRPCWallet(t *testing.T) {
	mw := newMockWallet(t)
	mw.mood = "happy"

	out, err := runCLI(t, t.TempDir(), rpcEnv(mw), "mood", "get")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Your Mood: happy")
}

func TestMoodGetEmpty(t *testing.T) {
	mw := newMockWallet(t)

	out, err := runCLI(t, t.TempDir(), rpcEnv(mw), "mood", "get")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Mood is empty. Try setting a mood first!")
}

func TestMoodSetBlankNeverSends(t *testing.T) {
	mw := newMockWallet(t)

	out, err := runCLI(t, t.TempDir(), rpcEnv(mw), "mood", "set", "   ")
	assert.Error(t, err)
	assert.Contains(t, out, "Please enter a mood before setting it!")
	assert.False(t, mw.called("eth_sendTransaction"))
}

func TestWrongNetworkAsksToSwitch(t *testing.T) {
	mw := newMockWallet(t)
	mw.chainID = "0x1"

	out, err := runCLI(t, t.TempDir(), rpcEnv(mw), "mood", "get")
	assert.Error(t, err)
	assert.Contains(t, out, "Switched to Sepolia!")
	assert.True(t, mw.called("wallet_switchEthereumChain"))
	assert.False(t, mw.called("eth_call"), "no read before re-run")
}

func TestInfoShowsContract(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), nil, "info")
	require.NoError(t, err)
	assert.Contains(t, out, contract.MoodAddress)
	assert.Contains(t, out, "getMood()")
	assert.Contains(t, out, "setMood(string)")
}
