package core

import clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"

// IBCEvent is a tagged variant over the handshake-relevant events a chain
// may emit in response to a submitted transaction. Exactly one concrete
// type below satisfies it per event; event extraction matches on the
// variant's Go type, never on position within the response.
type IBCEvent interface {
	isIBCEvent()
}

// OpenInitChannelEvent is emitted when a chain processes MsgChannelOpenInit.
type OpenInitChannelEvent struct {
	PortID           string
	ChannelID        string
	CounterpartyPort string
	ConnectionID     string
	Height           clienttypes.Height
}

// OpenTryChannelEvent is emitted when a chain processes MsgChannelOpenTry.
type OpenTryChannelEvent struct {
	PortID              string
	ChannelID           string
	CounterpartyPort    string
	CounterpartyChannel string
	ConnectionID        string
	Height              clienttypes.Height
}

// OpenAckChannelEvent is emitted when a chain processes MsgChannelOpenAck.
type OpenAckChannelEvent struct {
	PortID              string
	ChannelID           string
	CounterpartyPort    string
	CounterpartyChannel string
	ConnectionID        string
	Height              clienttypes.Height
}

// OpenConfirmChannelEvent is emitted when a chain processes
// MsgChannelOpenConfirm.
type OpenConfirmChannelEvent struct {
	PortID              string
	ChannelID           string
	CounterpartyPort    string
	CounterpartyChannel string
	ConnectionID        string
	Height              clienttypes.Height
}

// ChainErrorEvent wraps a chain-reported transaction failure. Chains emit
// this instead of an open-step event when a submitted transaction fails
// on-chain (as opposed to failing to be submitted at all).
type ChainErrorEvent struct {
	Message string
}

func (OpenInitChannelEvent) isIBCEvent()    {}
func (OpenTryChannelEvent) isIBCEvent()     {}
func (OpenAckChannelEvent) isIBCEvent()     {}
func (OpenConfirmChannelEvent) isIBCEvent() {}
func (ChainErrorEvent) isIBCEvent()         {}

// extractChannelID returns the channel id carried by any of the four
// open-step events. Any other variant (including ChainErrorEvent) is not a
// success signal and yields a Failed error.
func extractChannelID(event IBCEvent) (string, error) {
	switch ev := event.(type) {
	case OpenInitChannelEvent:
		return ev.ChannelID, nil
	case OpenTryChannelEvent:
		return ev.ChannelID, nil
	case OpenAckChannelEvent:
		return ev.ChannelID, nil
	case OpenConfirmChannelEvent:
		return ev.ChannelID, nil
	default:
		return "", &ChannelError{Reason: "cannot extract channel_id from result"}
	}
}
