package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3mood/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"ethereum", 1},
		{"sepolia", 11155111},
		{"base", 8453},
		{"base-sepolia", 84532},
		{"optimism", 10},
		{"arbitrum", 42161},
		{"polygon", 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.chainID, c.ChainID)
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	registry := chain.NewRegistry()
	c, err := registry.GetByName("SEPOLIA")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", c.Name)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestRegistryGetByHexID(t *testing.T) {
	registry := chain.NewRegistry()

	c, err := registry.GetByHexID("0xaa36a7")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", c.Name)
	assert.True(t, c.Testnet)

	_, err = registry.GetByHexID("0x539")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)

	_, err = registry.GetByHexID("nope")
	assert.Error(t, err)
}

func TestSepoliaHexID(t *testing.T) {
	registry := chain.NewRegistry()
	c, err := registry.GetByChainID(chain.SepoliaChainID)
	require.NoError(t, err)
	assert.Equal(t, "0xaa36a7", c.HexID())
}

func TestAllChainsHaveRPC(t *testing.T) {
	registry := chain.NewRegistry()
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.RPCs, "chain %s has no RPCs", c.Name)
			assert.NotZero(t, c.ChainID)
		})
	}
}

func TestChainIDsAreUnique(t *testing.T) {
	seen := map[int64]string{}
	for _, c := range chain.NewRegistry().All() {
		prev, dup := seen[c.ChainID]
		assert.False(t, dup, "chain id %d used by %s and %s", c.ChainID, prev, c.Name)
		seen[c.ChainID] = c.Name
	}
}

func TestExplorerLinks(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("sepolia")
	require.NoError(t, err)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", c.TxURL("0xabc"))
	assert.Equal(t, "https://sepolia.etherscan.io/address/0x1", c.AddressURL("0x1"))

	empty := chain.Chain{}
	assert.Empty(t, empty.TxURL("0xabc"))
}
