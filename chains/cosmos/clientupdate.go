package cosmos

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
	mock "github.com/datachainlab/ibc-mock-client/modules/xx-mock"

	"github.com/hyperledger-labs/yui-channel-handshake/core"
)

// NewMockClientUpdater returns a core.ClientUpdater that builds a single
// MsgUpdateClient carrying an xx-mock header pinned at targetHeight. Real
// light-client update (fetching and verifying a tendermint header, IBC
// Tendermint client state transitions) is out of this driver's scope; this
// stands in for it against a dst chain running the mock light client module,
// the same way the handshake builders assume an updater has already been
// supplied rather than building one themselves.
func NewMockClientUpdater() core.ClientUpdater {
	return func(dst, src core.ChainHandle, clientID string, targetHeight clienttypes.Height) ([]sdk.Msg, error) {
		signer, err := dst.GetSigner()
		if err != nil {
			return nil, fmt.Errorf("mock client updater: %w", err)
		}

		header := &mock.Header{Height: targetHeight}
		anyHeader, err := clienttypes.PackClientMessage(header)
		if err != nil {
			return nil, fmt.Errorf("mock client updater: pack header: %w", err)
		}

		return []sdk.Msg{&clienttypes.MsgUpdateClient{
			ClientId:      clientID,
			ClientMessage: anyHeader,
			Signer:        signer.String(),
		}}, nil
	}
}
