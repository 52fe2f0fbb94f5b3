package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// SepoliaChainID is the network the mood contract is deployed on.
const SepoliaChainID int64 = 11155111

// Chain holds all metadata for a single EVM network.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	Testnet        bool     `json:"testnet"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	// FaucetURL is the official testnet faucet (empty for mainnets).
	FaucetURL string `json:"faucet_url,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates and returns the registry of known networks.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "sepolia", "base").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByHexID finds a chain by its "0x…" chain ID as reported by wallets.
func (r *Registry) GetByHexID(hexID string) (*Chain, error) {
	id, err := ParseChainID(hexID)
	if err != nil {
		return nil, err
	}
	return r.GetByChainID(id)
}

// HexID returns the chain ID in the wallet wire format.
func (c *Chain) HexID() string {
	return FormatChainID(c.ChainID)
}

// TxURL returns the explorer link for a transaction hash.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer link for an account or contract.
func (c *Chain) AddressURL(addr string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/address/" + addr
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer:       "https://etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: SepoliaChainID, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			Explorer:       "https://sepolia.etherscan.io",
			FaucetURL:      "https://sepoliafaucet.com",
		},
		{
			Name: "holesky", DisplayName: "Holesky", ChainID: 17000, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://ethereum-holesky-rpc.publicnode.com"},
			Explorer:       "https://holesky.etherscan.io",
			FaucetURL:      "https://holesky-faucet.pk910.de",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			Explorer:       "https://basescan.org",
		},
		{
			Name: "base-sepolia", DisplayName: "Base Sepolia", ChainID: 84532, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://sepolia.base.org"},
			Explorer:       "https://sepolia.basescan.org",
			FaucetURL:      "https://www.alchemy.com/faucets/base-sepolia",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			Explorer:       "https://optimistic.etherscan.io",
		},
		{
			Name: "op-sepolia", DisplayName: "OP Sepolia", ChainID: 11155420, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://sepolia.optimism.io"},
			Explorer:       "https://sepolia-optimism.etherscan.io",
			FaucetURL:      "https://www.alchemy.com/faucets/optimism-sepolia",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			Explorer:       "https://arbiscan.io",
		},
		{
			Name: "arb-sepolia", DisplayName: "Arb Sepolia", ChainID: 421614, Testnet: true,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			Explorer:       "https://sepolia.arbiscan.io",
			FaucetURL:      "https://www.alchemy.com/faucets/arbitrum-sepolia",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137,
			NativeCurrency: "POL",
			RPCs:           []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			Explorer:       "https://polygonscan.com",
		},
		{
			Name: "amoy", DisplayName: "Polygon Amoy", ChainID: 80002, Testnet: true,
			NativeCurrency: "POL",
			RPCs:           []string{"https://rpc-amoy.polygon.technology"},
			Explorer:       "https://amoy.polygonscan.com",
			FaucetURL:      "https://faucet.polygon.technology",
		},
	}
}
