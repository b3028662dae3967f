package core

import (
	"fmt"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	conntypes "github.com/cosmos/ibc-go/v4/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"
)

func newTestConnection() (Connection, ChannelConfig, *mockChain, *mockChain) {
	aChain := newMockChain("chain-A", "transfer")
	bChain := newMockChain("chain-B", "transfer")

	aChain.connectionID = "connection-0"
	bChain.connectionID = "connection-1"
	aChain.cpPortID = "transfer"
	bChain.cpPortID = "transfer"

	aChain.connectionEnd = &conntypes.ConnectionEnd{ClientId: "07-tendermint-0"}
	bChain.connectionEnd = &conntypes.ConnectionEnd{ClientId: "07-tendermint-1"}

	connCfg := ConnectionConfig{
		AConfig: ConnectionSide{ChainIDValue: "chain-A", ClientIDValue: "07-tendermint-0", ConnectionIDValue: "connection-0"},
		BConfig: ConnectionSide{ChainIDValue: "chain-B", ClientIDValue: "07-tendermint-1", ConnectionIDValue: "connection-1"},
	}
	config := NewChannelConfig(connCfg, RelayPath{APort: "transfer", BPort: "transfer"})

	connection := Connection{Config: connCfg, AChain: aChain, BChain: bChain}

	return connection, config, aChain, bChain
}

// Happy path, no crossing hello: A emits OpenInit("channel-0"), B emits
// OpenTry("channel-7"), then the ack/confirm loop brings both to Open.
func TestHandshakeHappyPath(t *testing.T) {
	connection, config, aChain, bChain := newTestConnection()
	aChain.nextChannelID = "channel-0"
	bChain.nextChannelID = "channel-7"

	ch, err := NewChannel(connection, config, noopUpdater)
	require.NoError(t, err)

	require.Equal(t, "channel-0", ch.Config.AEnd().ChannelID())
	require.Equal(t, "channel-7", ch.Config.BEnd().ChannelID())
	require.Equal(t, chantypes.OPEN, aChain.state)
	require.Equal(t, chantypes.OPEN, bChain.state)
}

// Crossing hello: A reports it has already reached TryOpen by the time our
// OpenInit is processed (both sides independently self-initiated). The
// driver must still converge by acking A first.
func TestHandshakeCrossingHello(t *testing.T) {
	connection, config, aChain, bChain := newTestConnection()
	aChain.nextChannelID = "channel-3"
	bChain.nextChannelID = "channel-9"

	aChain.sendMsgsOverride = func(msgs []sdk.Msg) ([]IBCEvent, error) {
		msg, ok := msgs[len(msgs)-1].(*chantypes.MsgChannelOpenInit)
		require.True(t, ok)
		aChain.state = chantypes.TRYOPEN
		aChain.channelID = aChain.nextChannelID
		// Only the OpenInit is overridden; the later OpenAck to A goes
		// through the mock's default handling.
		aChain.sendMsgsOverride = nil
		return []IBCEvent{OpenInitChannelEvent{PortID: msg.PortId, ChannelID: aChain.channelID}}, nil
	}

	ch, err := NewChannel(connection, config, noopUpdater)
	require.NoError(t, err)

	require.Equal(t, "channel-3", ch.Config.AEnd().ChannelID())
	require.Equal(t, "channel-9", ch.Config.BEnd().ChannelID())
	require.Equal(t, chantypes.OPEN, aChain.state)
	require.Equal(t, chantypes.OPEN, bChain.state)
}

// A transient query failure on one side fails only that pass of queryStates;
// the next call succeeds, so the driver just retries on the next pass.
func TestQueryStatesTransientFailure(t *testing.T) {
	connection, config, aChain, _ := newTestConnection()
	aChain.queryChannelFailCount = 1

	ch := &Channel{Config: config, connection: connection, updater: noopUpdater}
	_, _, err := ch.queryStates(connection.ChainA(), connection.ChainB())
	require.Error(t, err)

	_, _, err = ch.queryStates(connection.ChainA(), connection.ChainB())
	require.NoError(t, err)
}

// BuildAck must reject a destination channel that's already past TryOpen.
func TestBuildAckPreconditionFailure(t *testing.T) {
	_, config, aChain, bChain := newTestConnection()
	config.AConfig.SetConnectionID("connection-0")
	config.BConfig.SetConnectionID("connection-1")
	config.AConfig.setChannelID("channel-0")
	config.BConfig.setChannelID("channel-7")
	aChain.state = chantypes.OPEN
	aChain.channelID = "channel-0"
	bChain.state = chantypes.TRYOPEN
	bChain.channelID = "channel-7"

	flipped := config.Flipped()
	_, err := BuildAck(aChain, bChain, noopUpdater, &flipped)
	require.Error(t, err)
	var ackErr *ChanOpenAckError
	require.ErrorAs(t, err, &ackErr)
}

// When a chain's response carries no matching open-step event, the driver
// reports it with the exact per-step text, not a generic message.
func TestBuildChanInitAndSendNoEvent(t *testing.T) {
	connection, config, aChain, _ := newTestConnection()
	aChain.sendMsgsOverride = func(msgs []sdk.Msg) ([]IBCEvent, error) {
		return []IBCEvent{OpenTryChannelEvent{PortID: "transfer", ChannelID: "channel-0"}}, nil
	}
	flipped := config.Flipped()
	_, err := BuildChanInitAndSend(connection.ChainA(), connection.ChainB(), &flipped)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no chan init event was in the response")
}

// If A's OpenAck never succeeds (chain keeps rejecting it), phase III never
// observes (Open, Open) and the driver must give up after MaxIter iterations
// with its own ChannelError rather than looping forever or returning A's
// underlying per-attempt error.
func TestHandshakeMaxIterExhausted(t *testing.T) {
	connection, config, aChain, bChain := newTestConnection()
	aChain.nextChannelID = "channel-0"
	bChain.nextChannelID = "channel-7"

	aChain.sendMsgsOverride = func(msgs []sdk.Msg) ([]IBCEvent, error) {
		switch msg := msgs[len(msgs)-1].(type) {
		case *chantypes.MsgChannelOpenInit:
			aChain.state = chantypes.INIT
			aChain.channelID = aChain.nextChannelID
			return []IBCEvent{OpenInitChannelEvent{PortID: msg.PortId, ChannelID: aChain.channelID}}, nil
		default:
			return nil, fmt.Errorf("mockChain %s: chain rejects OpenAck", aChain.id)
		}
	}

	_, err := NewChannel(connection, config, noopUpdater)
	require.Error(t, err)

	var chErr *ChannelError
	require.ErrorAs(t, err, &chErr)
	require.Contains(t, chErr.Error(), fmt.Sprintf("%d iterations", MaxIter))

	// A never got past Init (every OpenAck attempt was rejected); B reached
	// TryOpen via OpenTry and then stalled waiting on A.
	require.Equal(t, chantypes.INIT, aChain.state)
	require.Equal(t, chantypes.TRYOPEN, bChain.state)
}

// A chain-reported transaction failure becomes the error's reason verbatim.
func TestBuildChanInitAndSendChainError(t *testing.T) {
	connection, config, aChain, _ := newTestConnection()
	aChain.sendMsgsOverride = func(msgs []sdk.Msg) ([]IBCEvent, error) {
		return []IBCEvent{ChainErrorEvent{Message: "insufficient fee"}}, nil
	}
	flipped := config.Flipped()
	_, err := BuildChanInitAndSend(connection.ChainA(), connection.ChainB(), &flipped)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient fee")
}
