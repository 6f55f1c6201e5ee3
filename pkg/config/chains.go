package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kislikjeka/chainerr/pkg/chain"
)

// CustomChainsConfig holds the custom chains registered at startup
type CustomChainsConfig struct {
	Chains []chain.CustomChainConfig `yaml:"chains"`
}

// LoadCustomChainsFile loads custom chains from a YAML file
func LoadCustomChainsFile(path string) (*CustomChainsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom chains file: %w", err)
	}
	return ParseCustomChains(data)
}

// ParseCustomChains parses and validates a custom chains document
func ParseCustomChains(data []byte) (*CustomChainsConfig, error) {
	var config CustomChainsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse custom chains: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates every chain and rejects duplicate ids
func (c *CustomChainsConfig) Validate() error {
	seen := make(map[string]bool, len(c.Chains))
	for i := range c.Chains {
		cfg := &c.Chains[i]
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("chains[%d]: %w", i, err)
		}
		if seen[cfg.ChainID] {
			return fmt.Errorf("duplicate chain_id %s", cfg.ChainID)
		}
		seen[cfg.ChainID] = true
	}
	return nil
}

// GetChainIDs returns the configured chain ids in file order
func (c *CustomChainsConfig) GetChainIDs() []string {
	ids := make([]string, 0, len(c.Chains))
	for _, cfg := range c.Chains {
		ids = append(ids, cfg.ChainID)
	}
	return ids
}

// RegisterAll passes every chain to register, stopping at the first error
func (c *CustomChainsConfig) RegisterAll(register func(chain.CustomChainConfig) error) error {
	for _, cfg := range c.Chains {
		if err := register(cfg); err != nil {
			return fmt.Errorf("failed to register chain %s: %w", cfg.ChainID, err)
		}
	}
	return nil
}
