package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/Mohsinsiddi/w3mood/internal/rpc"
)

const (
	defaultNetwork   = "sepolia"
	defaultProvider  = ProviderKeystore
	defaultAlgorithm = "fastest"
	defaultLogLevel  = "info"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	logFile     = "w3mood.log"
	keyringDir  = "keyring"
)

// Settable config keys, in display order.
const (
	KeyNetwork       = "network"
	KeyProvider      = "provider"
	KeyWalletRPC     = "wallet_rpc"
	KeyDefaultWallet = "default_wallet"
	KeyRPCAlgorithm  = "rpc_algorithm"
	KeyLogLevel      = "log_level"
)

// Keys lists the keys accepted by Get and Set.
func Keys() []string {
	return []string{KeyNetwork, KeyProvider, KeyWalletRPC, KeyDefaultWallet, KeyRPCAlgorithm, KeyLogLevel}
}

// ResolveDir picks the config directory: flag, then W3MOOD_CONFIG_DIR, then ~/.w3mood.
func ResolveDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	var e envDir
	if err := parseEnv(&e); err != nil {
		return "", err
	}
	if e.Dir != "" {
		return e.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3mood"), nil
}

// Load reads config from dir (or creates defaults), then applies environment
// overrides. dir defaults to ResolveDir("").
func Load(dir string) (*Config, error) {
	dir, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk. Values that came from the environment are
// not persisted; the file keeps what it had.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	out := *c
	for key, v := range c.fileValues {
		out.assign(key, v)
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Get returns the effective value of a settable key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyNetwork:
		return c.Network, nil
	case KeyProvider:
		return c.Provider, nil
	case KeyWalletRPC:
		return c.WalletRPC, nil
	case KeyDefaultWallet:
		return c.DefaultWallet, nil
	case KeyRPCAlgorithm:
		return c.RPCAlgorithm, nil
	case KeyLogLevel:
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set validates and assigns a settable key. An explicit set replaces any
// environment override so the value is persisted by Save.
func (c *Config) Set(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	c.assign(key, value)
	delete(c.fileValues, key)
	return nil
}

// FromEnv reports whether key currently holds an environment override.
func (c *Config) FromEnv(key string) bool {
	_, ok := c.fileValues[key]
	return ok
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chainName, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chainName], rawURL) {
		return fmt.Errorf("RPC %s already exists for chain %s", rawURL, chainName)
	}
	c.CustomRPCs[chainName] = append(c.CustomRPCs[chainName], rawURL)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chainName, rawURL string) error {
	rpcs := c.CustomRPCs[chainName]
	idx := slices.Index(rpcs, rawURL)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", rawURL, chainName)
	}
	c.CustomRPCs[chainName] = slices.Delete(rpcs, idx, idx+1)
	if len(c.CustomRPCs[chainName]) == 0 {
		delete(c.CustomRPCs, chainName)
	}
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chainName string) []string {
	return c.CustomRPCs[chainName]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallet metadata file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LogPath is the diagnostics log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.configDir, logFile)
}

// KeyringDir holds the encrypted-file keyring when no OS keychain is available.
func (c *Config) KeyringDir() string {
	return filepath.Join(c.configDir, keyringDir)
}

func defaults(dir string) *Config {
	return &Config{
		Network:      defaultNetwork,
		Provider:     defaultProvider,
		RPCAlgorithm: defaultAlgorithm,
		LogLevel:     defaultLogLevel,
		CustomRPCs:   make(map[string][]string),
		configDir:    dir,
	}
}

func (c *Config) applyEnv() error {
	var e envOverrides
	if err := parseEnv(&e); err != nil {
		return err
	}
	c.KeyringPassword = e.KeyringPassword

	overrides := map[string]string{
		KeyNetwork:       e.Network,
		KeyProvider:      e.Provider,
		KeyWalletRPC:     e.WalletRPC,
		KeyDefaultWallet: e.DefaultWallet,
		KeyRPCAlgorithm:  e.RPCAlgorithm,
		KeyLogLevel:      e.LogLevel,
	}
	for _, key := range Keys() {
		v := overrides[key]
		if v == "" {
			continue
		}
		if err := validate(key, v); err != nil {
			return fmt.Errorf("environment override: %w", err)
		}
		if c.fileValues == nil {
			c.fileValues = make(map[string]string)
		}
		c.fileValues[key], _ = c.Get(key)
		c.assign(key, v)
	}
	return nil
}

func (c *Config) assign(key, value string) {
	switch key {
	case KeyNetwork:
		c.Network = value
	case KeyProvider:
		c.Provider = value
	case KeyWalletRPC:
		c.WalletRPC = value
	case KeyDefaultWallet:
		c.DefaultWallet = value
	case KeyRPCAlgorithm:
		c.RPCAlgorithm = value
	case KeyLogLevel:
		c.LogLevel = value
	}
}

func validate(key, value string) error {
	switch key {
	case KeyNetwork:
		if _, err := chain.NewRegistry().GetByName(value); err != nil {
			return fmt.Errorf("network %q: %w", value, err)
		}
	case KeyProvider:
		if value != ProviderKeystore && value != ProviderRPC {
			return fmt.Errorf("provider must be %q or %q, got %q", ProviderKeystore, ProviderRPC, value)
		}
	case KeyWalletRPC:
		if value == "" {
			return nil
		}
		return validateURL(value)
	case KeyDefaultWallet:
	case KeyRPCAlgorithm:
		if _, err := rpc.ParseAlgorithm(value); err != nil {
			return err
		}
	case KeyLogLevel:
		if _, err := zerolog.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid log level %q", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("invalid URL %q: scheme must be http(s) or ws(s)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return nil
}

// parseEnv wraps env.Parse errors.
func parseEnv(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
