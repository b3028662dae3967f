// Package config loads the YAML configuration a chand invocation needs to
// build two chains/cosmos.Chain handles and a core.ConnectionConfig/RelayPath
// pair, the way yui-relayer's own config.yaml drives `rly tx channel`.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/hyperledger-labs/yui-channel-handshake/chains/cosmos"
	"github.com/hyperledger-labs/yui-channel-handshake/core"
)

// ChainConfig is one chain entry in config.yaml.
type ChainConfig struct {
	ChainID        string `yaml:"chain-id"`
	RPCAddr        string `yaml:"rpc-addr"`
	KeyringBackend string `yaml:"keyring-backend"`
	KeyringDir     string `yaml:"keyring-dir"`
	KeyName        string `yaml:"key-name"`
	Mnemonic       string `yaml:"mnemonic"`
	GasPrices      string `yaml:"gas-prices"`
	ClientID       string `yaml:"client-id"`
	ConnectionID   string `yaml:"connection-id"`
	Port           string `yaml:"port"`
}

// PathConfig names the two chains and ports a channel should be negotiated
// between.
type PathConfig struct {
	Src ChainConfig `yaml:"src"`
	Dst ChainConfig `yaml:"dst"`
}

// RelayConfig is the top-level config.yaml document: the chains known to
// this relayer instance and the paths (channel requests) to act on.
type RelayConfig struct {
	Chains map[string]ChainConfig `yaml:"chains"`
	Paths  map[string]PathConfig  `yaml:"paths"`
}

// Load reads and parses a config.yaml from path. CLI-flag/env overrides of
// individual keys are viper's job, bound in cmd/chand against the same
// RelayConfig fields once the file itself is loaded - this only has to
// decode the document as written.
func Load(path string) (*RelayConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg RelayConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ChainHandle builds a chains/cosmos.Chain from this entry.
func (c ChainConfig) ChainHandle() (*cosmos.Chain, error) {
	return cosmos.NewChain(cosmos.ChainConfig{
		ChainID:        c.ChainID,
		RPCAddr:        c.RPCAddr,
		KeyringBackend: c.KeyringBackend,
		KeyringDir:     c.KeyringDir,
		KeyName:        c.KeyName,
		Mnemonic:       c.Mnemonic,
		GasPrices:      c.GasPrices,
	})
}

// ConnectionConfig builds the core.ConnectionConfig a path's two chain
// entries describe.
func (p PathConfig) ConnectionConfig() core.ConnectionConfig {
	return core.ConnectionConfig{
		AConfig: core.ConnectionSide{
			ChainIDValue:      p.Src.ChainID,
			ClientIDValue:     p.Src.ClientID,
			ConnectionIDValue: p.Src.ConnectionID,
		},
		BConfig: core.ConnectionSide{
			ChainIDValue:      p.Dst.ChainID,
			ClientIDValue:     p.Dst.ClientID,
			ConnectionIDValue: p.Dst.ConnectionID,
		},
	}
}

// RelayPath builds the core.RelayPath naming the two ports to bind.
func (p PathConfig) RelayPath() core.RelayPath {
	return core.RelayPath{APort: p.Src.Port, BPort: p.Dst.Port}
}
