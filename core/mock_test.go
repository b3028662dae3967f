package core

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v4/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
)

// mockChain is a small self-contained stand-in ChainHandle: it tracks the
// state of its own single channel end and advances it in response to
// SendMsgs the way a real chain's IBC module would, rather than requiring
// every test to pre-script one canned response per call. Queries and
// sends can still be overridden per test for the scenarios that need
// exact canned responses (missing event, chain-reported error, forced
// query failure).
type mockChain struct {
	id     string
	portID string
	signer sdk.AccAddress

	version    string
	versionErr error

	height    clienttypes.Height
	heightErr error

	// own channel end state, advanced by SendMsgs as messages are processed
	state        chantypes.State
	ordering     chantypes.Order
	connectionID string
	channelID    string
	cpPortID     string
	cpChannelID  string

	// nextChannelID is assigned as channelID the next time an OpenInit or
	// OpenTry message is processed, the way a chain allocates a fresh id.
	nextChannelID string

	connectionEnd *conntypes.ConnectionEnd
	connectionErr error

	proofsErr error

	queryChannelFailCount int
	queryChannelErr       error

	sendMsgsOverride func(msgs []sdk.Msg) ([]IBCEvent, error)
	sendMsgsErr      error
	sentMsgs         [][]sdk.Msg
}

func newMockChain(id, portID string) *mockChain {
	return &mockChain{
		id:       id,
		portID:   portID,
		signer:   sdk.AccAddress([]byte(id + "-signer")),
		version:  "ics20-1",
		height:   clienttypes.NewHeight(1, 100),
		ordering: chantypes.UNORDERED,
		state:    chantypes.UNINITIALIZED,
	}
}

func (m *mockChain) ID() string { return m.id }

func (m *mockChain) GetSigner() (sdk.AccAddress, error) {
	return m.signer, nil
}

func (m *mockChain) ModuleVersion(portID string) (string, error) {
	if m.versionErr != nil {
		return "", m.versionErr
	}
	return m.version, nil
}

func (m *mockChain) QueryLatestHeight() (clienttypes.Height, error) {
	if m.heightErr != nil {
		return clienttypes.Height{}, m.heightErr
	}
	return m.height, nil
}

func (m *mockChain) QueryChannel(portID, channelID string, height clienttypes.Height) (*ChannelEnd, error) {
	if m.queryChannelErr != nil {
		return nil, m.queryChannelErr
	}
	if m.queryChannelFailCount > 0 {
		m.queryChannelFailCount--
		return nil, fmt.Errorf("mockChain %s: transient query failure", m.id)
	}
	return &ChannelEnd{
		Channel: &chantypes.Channel{
			State:          m.state,
			Ordering:       m.ordering,
			Counterparty:   chantypes.NewCounterparty(m.cpPortID, m.cpChannelID),
			ConnectionHops: []string{m.connectionID},
			Version:        m.version,
		},
		ProofHeight: m.height,
	}, nil
}

func (m *mockChain) QueryConnection(connectionID string, height clienttypes.Height) (*conntypes.ConnectionEnd, error) {
	if m.connectionErr != nil {
		return nil, m.connectionErr
	}
	return m.connectionEnd, nil
}

func (m *mockChain) BuildChannelProofs(portID, channelID string, height clienttypes.Height) (*ChannelProofs, error) {
	if m.proofsErr != nil {
		return nil, m.proofsErr
	}
	return &ChannelProofs{Height: height, Proof: []byte("proof@" + height.String())}, nil
}

// SendMsgs advances this chain's channel state the way its IBC module
// would on processing the submitted message, unless sendMsgsOverride is
// set, in which case that decides the outcome entirely.
func (m *mockChain) SendMsgs(msgs []sdk.Msg) ([]IBCEvent, error) {
	m.sentMsgs = append(m.sentMsgs, msgs)

	if m.sendMsgsOverride != nil {
		return m.sendMsgsOverride(msgs)
	}
	if m.sendMsgsErr != nil {
		return nil, m.sendMsgsErr
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("mockChain %s: no messages submitted", m.id)
	}

	switch msg := msgs[len(msgs)-1].(type) {
	case *chantypes.MsgChannelOpenInit:
		m.state = chantypes.INIT
		m.channelID = m.nextChannelID
		return []IBCEvent{OpenInitChannelEvent{PortID: msg.PortId, ChannelID: m.channelID}}, nil
	case *chantypes.MsgChannelOpenTry:
		m.state = chantypes.TRYOPEN
		m.channelID = m.nextChannelID
		m.cpChannelID = msg.Channel.Counterparty.ChannelId
		return []IBCEvent{OpenTryChannelEvent{PortID: msg.PortId, ChannelID: m.channelID}}, nil
	case *chantypes.MsgChannelOpenAck:
		m.state = chantypes.OPEN
		m.cpChannelID = msg.CounterpartyChannelId
		return []IBCEvent{OpenAckChannelEvent{PortID: msg.PortId, ChannelID: msg.ChannelId}}, nil
	case *chantypes.MsgChannelOpenConfirm:
		m.state = chantypes.OPEN
		return []IBCEvent{OpenConfirmChannelEvent{PortID: msg.PortId, ChannelID: msg.ChannelId}}, nil
	default:
		return nil, fmt.Errorf("mockChain %s: unexpected message type %T", m.id, msg)
	}
}

// fakeUpdateMsg is a minimal sdk.Msg standing in for a real client-update
// message; the client-update subsystem itself is out of this driver's
// scope.
type fakeUpdateMsg struct {
	Label string
}

func (m *fakeUpdateMsg) Reset()                       {}
func (m *fakeUpdateMsg) String() string                { return "update:" + m.Label }
func (m *fakeUpdateMsg) ProtoMessage()                 {}
func (m *fakeUpdateMsg) ValidateBasic() error          { return nil }
func (m *fakeUpdateMsg) GetSigners() []sdk.AccAddress  { return nil }

// noopUpdater returns a single fakeUpdateMsg, satisfying the "client-update
// messages precede the ICS-004 message" ordering invariant without a real
// light-client update subsystem.
func noopUpdater(dst, src ChainHandle, clientID string, targetHeight clienttypes.Height) ([]sdk.Msg, error) {
	return []sdk.Msg{&fakeUpdateMsg{Label: clientID}}, nil
}
