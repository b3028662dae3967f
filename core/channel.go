package core

import (
	"context"
	"fmt"

	retry "github.com/avast/retry-go"
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
	"golang.org/x/sync/errgroup"

	"github.com/hyperledger-labs/yui-channel-handshake/log"
)

// Connection is the minimal view of an already-established ICS-003
// connection a Channel negotiates a new channel on top of. Connection
// establishment itself is out of this driver's scope; Connection is just
// the handles and identifiers a caller hands in.
type Connection struct {
	Config ConnectionConfig
	AChain ChainHandle
	BChain ChainHandle
}

func (c Connection) ChainA() ChainHandle { return c.AChain }
func (c Connection) ChainB() ChainHandle { return c.BChain }

// Channel is a negotiated (or negotiating) ICS-004 channel on top of an
// established connection.
type Channel struct {
	Config     ChannelConfig
	connection Connection
	updater    ClientUpdater
}

// NewChannel creates a channel on top of the given connection and drives the
// ICS-004 handshake to completion before returning. The handshake always
// starts by sending ChanOpenInit to A and ChanOpenTry to B; NewChannel does
// not look for a channel that is already open on both sides.
func NewChannel(connection Connection, config ChannelConfig, updater ClientUpdater) (*Channel, error) {
	// Client/connection ids are inherited from the established connection
	// exactly once, here, and never mutated again.
	config.AConfig.SetClientID(connection.Config.AEnd().ClientID())
	config.BConfig.SetClientID(connection.Config.BEnd().ClientID())
	config.AConfig.SetConnectionID(connection.Config.AEnd().ConnectionID())
	config.BConfig.SetConnectionID(connection.Config.BEnd().ConnectionID())

	ch := &Channel{Config: config, connection: connection, updater: updater}
	if err := ch.handshake(); err != nil {
		return nil, err
	}
	return ch, nil
}

// Connection returns the connection this channel was built on top of.
func (ch *Channel) Connection() Connection { return ch.connection }

// handshake executes the ICS-004 handshake protocol: ChanOpenInit on A,
// ChanOpenTry on B, then an Ack/Confirm loop until both sides reach Open.
func (ch *Channel) handshake() error {
	const doneMarker = "\U0001F973" // celebratory marker on each completed step, tripled when the handshake finishes

	aChain := ch.connection.ChainA()
	bChain := ch.connection.ChainB()
	logger := GetChannelPairLogger(aChain, bChain, &ch.Config)

	// Phase I: ChanOpenInit on A. The builder's dst() must be A, so we pass
	// the flipped config.
	flipped := ch.Config.Flipped()
	var initEvent IBCEvent
	err := retry.Do(func() error {
		event, err := BuildChanInitAndSend(aChain, bChain, &flipped)
		if err != nil {
			logger.Error("failed ChanOpenInit", err, "side", ch.Config.AEnd().PortID())
			return err
		}
		initEvent = event
		return nil
	}, rtyAtt, rtyDel, rtyErr)
	if err != nil {
		return err
	}
	channelID, err := extractChannelID(initEvent)
	if err != nil {
		return err
	}
	ch.Config.AConfig.setChannelID(channelID)
	logger.Info(doneMarker+" chan open init", "chain_id", aChain.ID(), "channel_id", channelID)

	// Phase II: ChanOpenTry on B (unflipped: the builder's dst() is B).
	var tryEvent IBCEvent
	err = retry.Do(func() error {
		event, err := BuildChanTryAndSend(bChain, aChain, ch.updater, &ch.Config)
		if err != nil {
			logger.Error("failed ChanOpenTry", err, "side", ch.Config.BEnd().PortID())
			return err
		}
		tryEvent = event
		return nil
	}, rtyAtt, rtyDel, rtyErr)
	if err != nil {
		return err
	}
	channelID, err = extractChannelID(tryEvent)
	if err != nil {
		return err
	}
	ch.Config.BConfig.setChannelID(channelID)
	logger.Info(doneMarker+" chan open try", "chain_id", bChain.ID(), "channel_id", channelID)

	// Phase III: observe both sides and dispatch ack/confirm until both
	// reach Open, or the iteration budget is exhausted.
	flipped = ch.Config.Flipped()
	for iter := uint(0); iter < MaxIter; iter++ {
		aState, bState, err := ch.queryStates(aChain, bChain)
		if err != nil {
			logger.Debug("transient query failure, retrying", "err", err)
			continue
		}

		switch {
		case aState == chantypes.INIT && bState == chantypes.TRYOPEN,
			aState == chantypes.TRYOPEN && bState == chantypes.TRYOPEN:
			// Ack to A (crossing-hello resolved by acking A first).
			if event, err := BuildChanAckAndSend(aChain, bChain, ch.updater, &flipped); err != nil {
				logger.Error("failed ChanOpenAck", err, "chain_id", aChain.ID())
			} else {
				logger.Info(doneMarker+" chan open ack", "chain_id", aChain.ID(), "event", event)
			}

		case aState == chantypes.OPEN && bState == chantypes.TRYOPEN:
			if event, err := BuildChanConfirmAndSend(bChain, aChain, ch.updater, &ch.Config); err != nil {
				logger.Error("failed ChanOpenConfirm", err, "chain_id", bChain.ID())
			} else {
				logger.Info(doneMarker+" chan open confirm", "chain_id", bChain.ID(), "event", event)
			}

		case aState == chantypes.TRYOPEN && bState == chantypes.OPEN:
			if event, err := BuildChanConfirmAndSend(aChain, bChain, ch.updater, &flipped); err != nil {
				logger.Error("failed ChanOpenConfirm", err, "chain_id", aChain.ID())
			} else {
				logger.Info(doneMarker+" chan open confirm", "chain_id", aChain.ID(), "event", event)
			}

		case aState == chantypes.OPEN && bState == chantypes.OPEN:
			logger.Info(doneMarker + doneMarker + doneMarker + " channel handshake finished")
			return nil

		default:
			// e.g. (Closed, *): closing isn't implemented, don't mistake it
			// for progress. Re-query next iteration.
		}
	}

	return &ChannelError{Reason: fmt.Sprintf("failed to finish channel handshake in %d iterations", MaxIter)}
}

// queryStates fetches both sides' current channel state concurrently - the
// two reads are independent and ChainHandle implementations must tolerate
// concurrent calls. Either query failing is transient and the caller should
// simply retry on the next iteration.
func (ch *Channel) queryStates(aChain, bChain ChainHandle) (chantypes.State, chantypes.State, error) {
	var aChannel, bChannel *ChannelEnd
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		aChannel, err = aChain.QueryChannel(ch.Config.AEnd().PortID(), ch.Config.AEnd().ChannelID(), ZeroHeight())
		return err
	})
	g.Go(func() error {
		var err error
		bChannel, err = bChain.QueryChannel(ch.Config.BEnd().PortID(), ch.Config.BEnd().ChannelID(), ZeroHeight())
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return aChannel.State, bChannel.State, nil
}

// GetChannelLogger returns a logger tagged with a single side's identity.
func GetChannelLogger(c ChainHandle, side *ChannelSide) *log.RelayLogger {
	return log.GetLogger().
		WithChannel(c.ID(), side.PortID(), side.ChannelID()).
		WithModule("core.channel")
}

// GetChannelPairLogger returns a logger tagged with both sides' identities.
func GetChannelPairLogger(src, dst ChainHandle, config *ChannelConfig) *log.RelayLogger {
	return log.GetLogger().
		WithChannelPair(
			src.ID(), config.AEnd().PortID(), config.AEnd().ChannelID(),
			dst.ID(), config.BEnd().PortID(), config.BEnd().ChannelID(),
		).
		WithModule("core.channel")
}
