package core

import (
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
)

// ChannelSide is one endpoint of a channel under negotiation. chainID and
// portID are fixed at construction; clientID and connectionID are inherited
// once from the already-established connection when the driver starts;
// channelID is populated exactly once, by the identifier the chain returns
// in its OpenInit/OpenTry event.
type ChannelSide struct {
	chainID      string
	connectionID string
	clientID     string
	portID       string
	channelID    string
}

// NewChannelSide builds a side with its channel id left unset.
func NewChannelSide(chainID, portID string) ChannelSide {
	return ChannelSide{chainID: chainID, portID: portID}
}

func (s ChannelSide) ChainID() string      { return s.chainID }
func (s ChannelSide) ConnectionID() string { return s.connectionID }
func (s ChannelSide) ClientID() string     { return s.clientID }
func (s ChannelSide) PortID() string       { return s.portID }
func (s ChannelSide) ChannelID() string    { return s.channelID }

func (s *ChannelSide) SetClientID(id string)     { s.clientID = id }
func (s *ChannelSide) SetConnectionID(id string) { s.connectionID = id }
func (s *ChannelSide) setChannelID(id string)    { s.channelID = id }

// ChannelConfig is the symmetric two-sided descriptor for a channel under
// negotiation.
type ChannelConfig struct {
	Ordering chantypes.Order
	AConfig  ChannelSide
	BConfig  ChannelSide
}

// RelayPath names the two ports a new channel should bind.
type RelayPath struct {
	APort string
	BPort string
}

// ConnectionConfig is the minimal view of an already-established connection
// this driver needs: the two sides' chain/client/connection identifiers.
// Connection establishment itself is out of this driver's scope.
type ConnectionConfig struct {
	AConfig ConnectionSide
	BConfig ConnectionSide
}

// ConnectionSide is one endpoint of an established connection.
type ConnectionSide struct {
	ChainIDValue      string
	ClientIDValue     string
	ConnectionIDValue string
}

func (c ConnectionSide) ChainID() string      { return c.ChainIDValue }
func (c ConnectionSide) ClientID() string     { return c.ClientIDValue }
func (c ConnectionSide) ConnectionID() string { return c.ConnectionIDValue }

func (c ConnectionConfig) AEnd() ConnectionSide { return c.AConfig }
func (c ConnectionConfig) BEnd() ConnectionSide { return c.BConfig }

// NewChannelConfig constructs a ChannelConfig from an established connection
// and the two ports a new channel should bind. Client and connection ids are
// left unset on both sides - NewChannel inherits them from the connection
// once, at driver start.
func NewChannelConfig(conn ConnectionConfig, path RelayPath) ChannelConfig {
	return ChannelConfig{
		Ordering: chantypes.UNORDERED,
		AConfig:  NewChannelSide(conn.AEnd().ChainID(), path.APort),
		BConfig:  NewChannelSide(conn.BEnd().ChainID(), path.BPort),
	}
}

// Src is an alias for AEnd, matching the accessor pair the builders are
// written against.
func (c *ChannelConfig) Src() *ChannelSide { return &c.AConfig }

// Dst is an alias for BEnd.
func (c *ChannelConfig) Dst() *ChannelSide { return &c.BConfig }

func (c *ChannelConfig) AEnd() *ChannelSide { return &c.AConfig }
func (c *ChannelConfig) BEnd() *ChannelSide { return &c.BConfig }

// Flipped returns a new, independent ChannelConfig with the two sides
// swapped. It never aliases the receiver: Flipped(Flipped(c)) == c holds
// because every field copied is a value type (string/Order), so the
// returned ChannelConfig shares no mutable state with c.
func (c ChannelConfig) Flipped() ChannelConfig {
	return ChannelConfig{
		Ordering: c.Ordering,
		AConfig:  c.BConfig,
		BConfig:  c.AConfig,
	}
}

// ChannelEnd is the channel state as queried from a chain, at the height it
// was queried at.
type ChannelEnd struct {
	*chantypes.Channel
	ProofHeight clienttypes.Height
}

// ZeroHeight means "query at the latest height". The driver's phase-III
// observation step and the builders' precondition/proof-target reads both
// pass this - a ChainHandle implementation must treat the zero value
// identically regardless of which call site produced it.
func ZeroHeight() clienttypes.Height {
	return clienttypes.ZeroHeight()
}
