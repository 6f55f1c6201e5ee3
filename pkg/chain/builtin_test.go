package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/chainerr/pkg/chain"
)

func TestDefaultBuiltin(t *testing.T) {
	builtin := chain.DefaultBuiltin()

	assert.True(t, builtin.IsSupported("ethereum"))
	assert.True(t, builtin.IsSupported(" Ethereum "))
	assert.False(t, builtin.IsSupported("unknown-chain"))

	ids := builtin.IDs()
	assert.Contains(t, ids, chain.DefaultChain)
	assert.Contains(t, ids, "solana")
	assert.Contains(t, ids, "bitcoin")
	assert.Len(t, builtin.All(), len(ids))
}

func TestBuiltin_ChainConfig(t *testing.T) {
	builtin := chain.DefaultBuiltin()

	cfg, ok := builtin.ChainConfig("polygon")
	require.True(t, ok)
	assert.Equal(t, "evm", cfg.Ecosystem)
	assert.Equal(t, int64(137), cfg.Metadata.ChainID)
	assert.False(t, cfg.Metadata.IsTestnet)

	// callers get a copy
	cfg.Metadata.RPCURLs[0] = "mutated"
	cfg.ErrorCategories[0].Enabled = false
	again, _ := builtin.ChainConfig("polygon")
	assert.NotEqual(t, "mutated", again.Metadata.RPCURLs[0])
	assert.True(t, again.ErrorCategories[0].Enabled)

	_, ok = builtin.ChainConfig("nope")
	assert.False(t, ok)
}

func TestBuiltin_ByChainID(t *testing.T) {
	builtin := chain.DefaultBuiltin()

	cfg, ok := builtin.ByChainID(1)
	require.True(t, ok)
	assert.Equal(t, "ethereum", cfg.ID)

	_, ok = builtin.ByChainID(999999)
	assert.False(t, ok)
}

func TestBuiltin_EnabledErrorCategories(t *testing.T) {
	builtin := chain.DefaultBuiltin()

	categories := builtin.EnabledErrorCategories("sepolia")
	require.NotEmpty(t, categories)
	for i := 1; i < len(categories); i++ {
		assert.GreaterOrEqual(t, categories[i-1].Priority, categories[i].Priority)
	}
	for _, c := range categories {
		assert.True(t, c.Enabled)
		assert.NotEqual(t, "defi", c.Category)
	}

	names, ok := builtin.EnabledCategoryNames("ethereum")
	require.True(t, ok)
	assert.Equal(t, "erc20", names[0])

	assert.Nil(t, builtin.EnabledErrorCategories("nope"))
	_, ok = builtin.EnabledCategoryNames("nope")
	assert.False(t, ok)
}

func TestLoadBuiltin_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no chains", `chains: []`},
		{"missing id", "chains:\n  - ecosystem: evm\n    metadata: {name: A}\n"},
		{"upper case id", "chains:\n  - id: Eth\n    ecosystem: evm\n    metadata: {name: A}\n"},
		{"missing ecosystem", "chains:\n  - id: a\n    metadata: {name: A}\n"},
		{"missing name", "chains:\n  - id: a\n    ecosystem: evm\n"},
		{"duplicate id", "chains:\n  - id: a\n    ecosystem: evm\n    metadata: {name: A}\n  - id: a\n    ecosystem: evm\n    metadata: {name: B}\n"},
		{"duplicate chain_id", "chains:\n  - id: a\n    ecosystem: evm\n    metadata: {name: A, chain_id: 1}\n  - id: b\n    ecosystem: evm\n    metadata: {name: B, chain_id: 1}\n"},
		{"bad yaml", "chains: [:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.LoadBuiltin([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
