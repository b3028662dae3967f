package core

import (
	"testing"

	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"
)

func TestChannelConfigFlippedIsIdempotent(t *testing.T) {
	c := ChannelConfig{
		Ordering: chantypes.ORDERED,
		AConfig:  NewChannelSide("chain-A", "transfer"),
		BConfig:  NewChannelSide("chain-B", "transfer"),
	}
	c.AConfig.setChannelID("channel-0")
	c.BConfig.setChannelID("channel-7")

	twice := c.Flipped().Flipped()
	require.Equal(t, c, twice)
}

func TestChannelConfigFlippedSwapsSides(t *testing.T) {
	c := ChannelConfig{
		AConfig: NewChannelSide("chain-A", "transfer"),
		BConfig: NewChannelSide("chain-B", "transfer"),
	}
	flipped := c.Flipped()
	require.Equal(t, "chain-B", flipped.AEnd().ChainID())
	require.Equal(t, "chain-A", flipped.BEnd().ChainID())

	// Mutating the flip must not alias the original.
	flipped.AConfig.setChannelID("channel-9")
	require.Equal(t, "", c.BConfig.ChannelID())
}

func TestNewChannelConfigDefaultsToUnordered(t *testing.T) {
	connCfg := ConnectionConfig{
		AConfig: ConnectionSide{ChainIDValue: "chain-A", ClientIDValue: "07-tendermint-0", ConnectionIDValue: "connection-0"},
		BConfig: ConnectionSide{ChainIDValue: "chain-B", ClientIDValue: "07-tendermint-1", ConnectionIDValue: "connection-1"},
	}
	config := NewChannelConfig(connCfg, RelayPath{APort: "transfer", BPort: "transfer"})

	require.Equal(t, chantypes.UNORDERED, config.Ordering)
	require.Equal(t, "chain-A", config.AEnd().ChainID())
	require.Equal(t, "chain-B", config.BEnd().ChainID())
	require.Equal(t, "", config.AEnd().ClientID())
}
