package core

import sdk "github.com/cosmos/cosmos-sdk/types"

// findEvent scans events for the first one matching want (by concrete Go
// type) or a ChainErrorEvent, whichever comes first. Matching is by variant
// type only - callers must not assume position within the response, since a
// chain may emit one event per app-module hook alongside the ICS-004 one.
func findEvent(events []IBCEvent, want func(IBCEvent) bool) (IBCEvent, bool) {
	for _, ev := range events {
		if _, isErr := ev.(ChainErrorEvent); isErr {
			return ev, true
		}
		if want(ev) {
			return ev, true
		}
	}
	return nil, false
}

func isOpenInit(ev IBCEvent) bool    { _, ok := ev.(OpenInitChannelEvent); return ok }
func isOpenTry(ev IBCEvent) bool     { _, ok := ev.(OpenTryChannelEvent); return ok }
func isOpenAck(ev IBCEvent) bool     { _, ok := ev.(OpenAckChannelEvent); return ok }
func isOpenConfirm(ev IBCEvent) bool { _, ok := ev.(OpenConfirmChannelEvent); return ok }

// BuildChanInitAndSend builds and submits ChanOpenInit to dst, extracting
// the matching event from the response.
func BuildChanInitAndSend(dst, src ChainHandle, opts *ChannelConfig) (IBCEvent, error) {
	msgs, err := BuildInit(dst, src, opts)
	if err != nil {
		return nil, err
	}
	return sendAndExtract(dst, msgs, isOpenInit, "no chan init event was in the response", func(reason string) error {
		return NewChanOpenInitError(opts.Dst().ChannelID(), reason, nil)
	})
}

// BuildChanTryAndSend builds and submits ChanOpenTry to dst.
func BuildChanTryAndSend(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) (IBCEvent, error) {
	msgs, err := BuildTry(dst, src, updater, opts)
	if err != nil {
		return nil, err
	}
	return sendAndExtract(dst, msgs, isOpenTry, "no chan try event was in the response", func(reason string) error {
		return NewChanOpenTryError(opts.Dst().ChannelID(), reason, nil)
	})
}

// BuildChanAckAndSend builds and submits ChanOpenAck to dst.
func BuildChanAckAndSend(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) (IBCEvent, error) {
	msgs, err := BuildAck(dst, src, updater, opts)
	if err != nil {
		return nil, err
	}
	return sendAndExtract(dst, msgs, isOpenAck, "no chan ack event was in the response", func(reason string) error {
		return NewChanOpenAckError(opts.Dst().ChannelID(), reason, nil)
	})
}

// BuildChanConfirmAndSend builds and submits ChanOpenConfirm to dst.
func BuildChanConfirmAndSend(dst, src ChainHandle, updater ClientUpdater, opts *ChannelConfig) (IBCEvent, error) {
	msgs, err := BuildConfirm(dst, src, updater, opts)
	if err != nil {
		return nil, err
	}
	return sendAndExtract(dst, msgs, isOpenConfirm, "no chan confirm event was in the response", func(reason string) error {
		return NewChanOpenConfirmError(opts.Dst().ChannelID(), reason, nil)
	})
}

// sendAndExtract submits msgs to dst and returns the first event matching
// want. If none is found, it returns makeErr(noEventReason). If the first
// match is a ChainErrorEvent instead, it returns makeErr(chain-reported
// message) - the chain-reported error IS the reason, not a wrapped cause.
func sendAndExtract(dst ChainHandle, msgs []sdk.Msg, want func(IBCEvent) bool, noEventReason string, makeErr func(reason string) error) (IBCEvent, error) {
	events, err := dst.SendMsgs(msgs)
	if err != nil {
		return nil, err
	}

	ev, found := findEvent(events, want)
	if !found {
		return nil, makeErr(noEventReason)
	}

	if chainErr, isErr := ev.(ChainErrorEvent); isErr {
		return nil, makeErr(chainErr.Message)
	}

	return ev, nil
}
