package config

// Provider backends.
const (
	ProviderKeystore = "keystore"
	ProviderRPC      = "rpc"
)

// Config holds all w3mood configuration.
type Config struct {
	Network       string              `json:"network"`
	Provider      string              `json:"provider"`                 // "keystore" | "rpc"
	WalletRPC     string              `json:"wallet_rpc,omitempty"`     // JSON-RPC endpoint of an external wallet
	DefaultWallet string              `json:"default_wallet,omitempty"` // keystore wallet name
	RPCAlgorithm  string              `json:"rpc_algorithm"`            // "fastest" | "round-robin" | "failover"
	LogLevel      string              `json:"log_level"`
	CustomRPCs    map[string][]string `json:"custom_rpcs"`

	// KeyringPassword unlocks the encrypted-file keyring. Never written to disk.
	KeyringPassword string `json:"-"`

	configDir string
	// fileValues keeps the on-disk value of keys overridden by the environment.
	fileValues map[string]string
}

// envOverrides maps environment variables onto config keys.
type envOverrides struct {
	Network         string `env:"W3MOOD_NETWORK"`
	Provider        string `env:"W3MOOD_PROVIDER"`
	WalletRPC       string `env:"W3MOOD_WALLET_RPC"`
	DefaultWallet   string `env:"W3MOOD_WALLET"`
	RPCAlgorithm    string `env:"W3MOOD_RPC_ALGORITHM"`
	LogLevel        string `env:"W3MOOD_LOG_LEVEL"`
	KeyringPassword string `env:"W3MOOD_KEYRING_PASSWORD"`
}

type envDir struct {
	Dir string `env:"W3MOOD_CONFIG_DIR"`
}
