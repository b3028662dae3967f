package core

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
)

// ChannelMsgType parameterizes validatedExpectedChannel's highest-allowed
// destination state.
type ChannelMsgType int

const (
	ChannelMsgOpenTry ChannelMsgType = iota
	ChannelMsgOpenAck
	ChannelMsgOpenConfirm
)

// BuildInit constructs the message list for ChanOpenInit, targeted at dst.
// The Init step has no cross-chain dependency: no proof, no client update.
func BuildInit(dst, src ChainHandle, opts *ChannelConfig) ([]sdk.Msg, error) {
	signer, err := dst.GetSigner()
	if err != nil {
		return nil, &KeyBaseError{Cause: err}
	}

	version, err := dst.ModuleVersion(opts.Dst().PortID())
	if err != nil {
		return nil, NewChanOpenInitError(opts.Dst().ChannelID(), "module version lookup failed on destination", err)
	}

	channel := chantypes.Channel{
		State:    chantypes.INIT,
		Ordering: opts.Ordering,
		Counterparty: chantypes.NewCounterparty(
			opts.Src().PortID(), "",
		),
		ConnectionHops: []string{opts.Dst().ConnectionID()},
		Version:        version,
	}

	msg := &chantypes.MsgChannelOpenInit{
		PortId:  opts.Dst().PortID(),
		Channel: channel,
		Signer:  signer.String(),
	}

	return []sdk.Msg{msg}, nil
}

// BuildTry constructs the message list for ChanOpenTry, targeted at dst.
// Precondition (enforced by the caller): src already holds the channel in
// Init, or in TryOpen during a crossing-hello.
func BuildTry(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) ([]sdk.Msg, error) {
	srcChannel, err := src.QueryChannel(opts.Src().PortID(), opts.Src().ChannelID(), ZeroHeight())
	if err != nil {
		return nil, NewChanOpenTryError(opts.Src().ChannelID(), "channel does not exist on source", err)
	}

	dstConnection, err := dst.QueryConnection(opts.Dst().ConnectionID(), ZeroHeight())
	if err != nil {
		return nil, NewChanOpenTryError(opts.Dst().ChannelID(), "connection does not exist on destination", err)
	}

	// Every subsequent src-side read and the proof itself must be pinned to
	// this single height - mixing heights breaks proof verification.
	height, err := src.QueryLatestHeight()
	if err != nil {
		return nil, NewChanOpenTryError(opts.Src().ChannelID(), "failed to query latest height on source", err)
	}

	msgs, err := updater(dst, src, dstConnection.ClientId, height)
	if err != nil {
		return nil, NewChanOpenTryError(opts.Dst().ChannelID(), "failed to build client update", err)
	}

	version, err := dst.ModuleVersion(opts.Dst().PortID())
	if err != nil {
		return nil, NewChanOpenTryError(opts.Dst().ChannelID(), "module version lookup failed on destination", err)
	}

	channel := chantypes.Channel{
		State:    chantypes.TRYOPEN,
		Ordering: opts.Ordering,
		Counterparty: chantypes.NewCounterparty(
			opts.Src().PortID(), opts.Src().ChannelID(),
		),
		ConnectionHops: []string{opts.Dst().ConnectionID()},
		Version:        version,
	}

	counterpartyVersion, err := src.ModuleVersion(opts.Src().PortID())
	if err != nil {
		return nil, NewChanOpenTryError(opts.Src().ChannelID(), "module version lookup failed on source", err)
	}

	proofs, err := src.BuildChannelProofs(opts.Src().PortID(), opts.Src().ChannelID(), height)
	if err != nil {
		return nil, NewChanOpenTryError(opts.Src().ChannelID(), "failed to build channel proofs", err)
	}

	signer, err := dst.GetSigner()
	if err != nil {
		return nil, &KeyBaseError{Cause: err}
	}

	msg := &chantypes.MsgChannelOpenTry{
		PortId:              opts.Dst().PortID(),
		PreviousChannelId:   srcChannel.Counterparty.ChannelId,
		Channel:             channel,
		CounterpartyVersion: counterpartyVersion,
		ProofInit:           proofs.Proof,
		ProofHeight:         proofs.Height,
		Signer:              signer.String(),
	}

	return append(msgs, msg), nil
}

// checkDestinationChannelState reports whether existing (the channel
// currently observed on the destination) is compatible with expected (the
// channel the driver is about to claim exists there): same connection hops,
// a state no further along than expected, and a counterparty channel id
// that's either unset or already equal to the expected one.
func checkDestinationChannelState(channelID string, existing, expected *chantypes.Channel) error {
	sameHops := len(existing.ConnectionHops) == len(expected.ConnectionHops) &&
		existing.ConnectionHops[0] == expected.ConnectionHops[0]

	stateOK := existing.State <= expected.State

	channelIDsOK := existing.Counterparty.ChannelId == "" ||
		existing.Counterparty.ChannelId == expected.Counterparty.ChannelId

	if stateOK && sameHops && channelIDsOK {
		return nil
	}
	return &ChanOpenError{ChannelID: channelID, Reason: "channel already exist in an incompatible state"}
}

// validatedExpectedChannel retrieves the channel currently observed on dst
// and compares it against the channel the driver expects to find there
// given msgType. It returns the expected channel end on success.
func validatedExpectedChannel(dst, src ChainHandle, msgType ChannelMsgType, opts *ChannelConfig) (*chantypes.Channel, error) {
	counterparty := chantypes.NewCounterparty(opts.Src().PortID(), opts.Src().ChannelID())

	highestState := chantypes.UNINITIALIZED
	switch msgType {
	case ChannelMsgOpenAck, ChannelMsgOpenConfirm:
		highestState = chantypes.TRYOPEN
	}

	version, err := dst.ModuleVersion(opts.Dst().PortID())
	if err != nil {
		return nil, err
	}

	expected := &chantypes.Channel{
		State:          highestState,
		Ordering:       opts.Ordering,
		Counterparty:   counterparty,
		ConnectionHops: []string{opts.Dst().ConnectionID()},
		Version:        version,
	}

	dstChannel, err := dst.QueryChannel(opts.Dst().PortID(), opts.Dst().ChannelID(), ZeroHeight())
	if err != nil {
		return nil, err
	}

	if dstChannel.State == chantypes.UNINITIALIZED {
		// NOTE: the channel id referenced here is opts.Dst().ChannelID(),
		// even though the message ("missing channel on source chain") talks
		// about the source side - kept as-is rather than silently resolved.
		return nil, &ChanOpenError{ChannelID: opts.Dst().ChannelID(), Reason: "missing channel on source chain"}
	}

	if err := checkDestinationChannelState(opts.Dst().ChannelID(), dstChannel.Channel, expected); err != nil {
		return nil, err
	}

	return expected, nil
}

// BuildAck constructs the message list for ChanOpenAck, targeted at dst.
func BuildAck(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) ([]sdk.Msg, error) {
	if _, err := validatedExpectedChannel(dst, src, ChannelMsgOpenAck, opts); err != nil {
		return nil, NewChanOpenAckError(opts.Src().ChannelID(), "ack options inconsistent with existing channel on destination chain", err)
	}

	if _, err := src.QueryChannel(opts.Src().PortID(), opts.Src().ChannelID(), ZeroHeight()); err != nil {
		return nil, NewChanOpenAckError(opts.Dst().ChannelID(), "channel does not exist on source", err)
	}

	dstConnection, err := dst.QueryConnection(opts.Dst().ConnectionID(), ZeroHeight())
	if err != nil {
		return nil, NewChanOpenAckError(opts.Dst().ChannelID(), "connection does not exist on destination", err)
	}

	height, err := src.QueryLatestHeight()
	if err != nil {
		return nil, NewChanOpenAckError(opts.Src().ChannelID(), "failed to query latest height on source", err)
	}

	msgs, err := updater(dst, src, dstConnection.ClientId, height)
	if err != nil {
		return nil, NewChanOpenAckError(opts.Dst().ChannelID(), "failed to build client update", err)
	}

	// NOTE: the counterparty version is read from src's module_version but
	// keyed by dst's port id. Unclear whether this asserts src accepts
	// dst's negotiated version, or is a transposition bug; kept as-is
	// rather than silently resolved.
	counterpartyVersion, err := src.ModuleVersion(opts.Dst().PortID())
	if err != nil {
		return nil, NewChanOpenAckError(opts.Src().ChannelID(), "module version lookup failed on source", err)
	}

	proofs, err := src.BuildChannelProofs(opts.Src().PortID(), opts.Src().ChannelID(), height)
	if err != nil {
		return nil, NewChanOpenAckError(opts.Src().ChannelID(), "failed to build channel proofs", err)
	}

	signer, err := dst.GetSigner()
	if err != nil {
		return nil, &KeyBaseError{Cause: err}
	}

	msg := &chantypes.MsgChannelOpenAck{
		PortId:                opts.Dst().PortID(),
		ChannelId:             opts.Dst().ChannelID(),
		CounterpartyChannelId: opts.Src().ChannelID(),
		CounterpartyVersion:   counterpartyVersion,
		ProofTry:              proofs.Proof,
		ProofHeight:           proofs.Height,
		Signer:                signer.String(),
	}

	return append(msgs, msg), nil
}

// BuildConfirm constructs the message list for ChanOpenConfirm, targeted at
// dst. Same shape as BuildAck, but the destination already holds the
// counterparty channel id and version, so the message carries neither.
func BuildConfirm(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) ([]sdk.Msg, error) {
	if _, err := validatedExpectedChannel(dst, src, ChannelMsgOpenConfirm, opts); err != nil {
		return nil, NewChanOpenConfirmError(opts.Src().ChannelID(), "confirm options inconsistent with existing channel on destination chain", err)
	}

	if _, err := src.QueryChannel(opts.Src().PortID(), opts.Src().ChannelID(), ZeroHeight()); err != nil {
		return nil, NewChanOpenConfirmError(opts.Src().ChannelID(), "channel does not exist on source", err)
	}

	dstConnection, err := dst.QueryConnection(opts.Dst().ConnectionID(), ZeroHeight())
	if err != nil {
		return nil, NewChanOpenConfirmError(opts.Dst().ChannelID(), "connection does not exist on destination", err)
	}

	height, err := src.QueryLatestHeight()
	if err != nil {
		return nil, NewChanOpenConfirmError(opts.Src().ChannelID(), "failed to query latest height on source", err)
	}

	msgs, err := updater(dst, src, dstConnection.ClientId, height)
	if err != nil {
		return nil, NewChanOpenConfirmError(opts.Dst().ChannelID(), "failed to build client update", err)
	}

	proofs, err := src.BuildChannelProofs(opts.Src().PortID(), opts.Src().ChannelID(), height)
	if err != nil {
		return nil, NewChanOpenConfirmError(opts.Src().ChannelID(), "failed to build channel proofs", err)
	}

	signer, err := dst.GetSigner()
	if err != nil {
		return nil, &KeyBaseError{Cause: err}
	}

	msg := &chantypes.MsgChannelOpenConfirm{
		PortId:      opts.Dst().PortID(),
		ChannelId:   opts.Dst().ChannelID(),
		ProofAck:    proofs.Proof,
		ProofHeight: proofs.Height,
		Signer:      signer.String(),
	}

	return append(msgs, msg), nil
}
