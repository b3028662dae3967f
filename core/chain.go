package core

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v4/modules/core/03-connection/types"
)

// ChainHandle is the capability a chain must expose for the channel
// handshake driver to negotiate a channel against it. It deliberately knows
// nothing about how queries, proofs or signing are actually performed -
// chains/cosmos provides one concrete implementation, core's own tests
// provide a canned-response one.
type ChainHandle interface {
	// ID returns this chain's identifier.
	ID() string

	// GetSigner returns the address that should sign transactions submitted
	// to this chain.
	GetSigner() (sdk.AccAddress, error)

	// ModuleVersion returns the version string the IBC application module
	// bound to portID would negotiate for a new channel.
	ModuleVersion(portID string) (string, error)

	// QueryLatestHeight returns the chain's current height.
	QueryLatestHeight() (clienttypes.Height, error)

	// QueryChannel returns the channel end for (portID, channelID) as
	// observed at height. A zero height means "latest".
	QueryChannel(portID, channelID string, height clienttypes.Height) (*ChannelEnd, error)

	// QueryConnection returns the connection end for connectionID as
	// observed at height. A zero height means "latest".
	QueryConnection(connectionID string, height clienttypes.Height) (*conntypes.ConnectionEnd, error)

	// BuildChannelProofs builds a commitment proof for the channel end at
	// (portID, channelID), rooted at height, that a counterparty chain can
	// verify against its client state for this chain at that height.
	BuildChannelProofs(portID, channelID string, height clienttypes.Height) (*ChannelProofs, error)

	// SendMsgs submits msgs to this chain as a single transaction and
	// returns the ordered sequence of IBC events it produced.
	SendMsgs(msgs []sdk.Msg) ([]IBCEvent, error)
}

// ClientUpdater produces the ordered list of messages that advance dst's
// view of src's light client (identified by clientID) to at least
// targetHeight. The update-client subsystem that implements this is out of
// this driver's scope; BuildTry, BuildAck and BuildConfirm take a
// ClientUpdater as a parameter and call through it.
type ClientUpdater func(dst, src ChainHandle, clientID string, targetHeight clienttypes.Height) ([]sdk.Msg, error)

// ChannelProofs bundles the commitment proof and the height it was taken at.
// This mirrors the (ProofHeight, Proof) shape the ibc-go ICS-004 messages
// carry natively, rather than inventing a new proof envelope.
type ChannelProofs struct {
	Height clienttypes.Height
	Proof  []byte
}
