package cosmos

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cosmos/cosmos-sdk/codec"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	abci "github.com/tendermint/tendermint/abci/types"
	tmcrypto "github.com/tendermint/tendermint/crypto"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v4/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v4/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v4/modules/core/24-host"
	ics23 "github.com/cosmos/ibc-go/v4/modules/core/23-commitment/types"

	"github.com/hyperledger-labs/yui-channel-handshake/core"
)

func rpcCtx() context.Context { return context.Background() }

var latestHeightKey = []byte("latest_height")

// heightCache holds the most recently observed latest height for a TTL -
// just long enough to cover one handshake step's repeated reads of "the
// latest height", without risking staleness across steps. Backed by a
// tm-db memdb.MemDB so the cache shares the same get/set/delete interface
// the rest of a Cosmos SDK node uses for its own state stores, rather than
// a bespoke struct field; the revision number, revision height and the
// timestamp used for the TTL check are packed as three 8-byte big-endian
// fields into one 24-byte value under a single key.
type heightCache struct {
	mu  sync.Mutex
	ttl time.Duration
	db  *dbm.MemDB
}

func newHeightCache(ttl time.Duration) *heightCache {
	return &heightCache{ttl: ttl, db: dbm.NewMemDB()}
}

func (c *heightCache) latest() (clienttypes.Height, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bz, err := c.db.Get(latestHeightKey)
	if err != nil || bz == nil || len(bz) != 24 {
		return clienttypes.Height{}, false
	}
	stamp := time.Unix(0, int64(binary.BigEndian.Uint64(bz[16:24])))
	if time.Since(stamp) > c.ttl {
		return clienttypes.Height{}, false
	}
	height := clienttypes.NewHeight(binary.BigEndian.Uint64(bz[0:8]), binary.BigEndian.Uint64(bz[8:16]))
	return height, true
}

func (c *heightCache) setLatest(h clienttypes.Height) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bz := make([]byte, 24)
	binary.BigEndian.PutUint64(bz[0:8], h.RevisionNumber)
	binary.BigEndian.PutUint64(bz[8:16], h.RevisionHeight)
	binary.BigEndian.PutUint64(bz[16:24], uint64(time.Now().UnixNano()))
	_ = c.db.Set(latestHeightKey, bz)
}

func (c *heightCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.db.Delete(latestHeightKey)
}

func channelKey(portID, channelID string) []byte {
	return []byte(host.ChannelPath(portID, channelID))
}

func connectionKey(connectionID string) []byte {
	return []byte(host.ConnectionPath(connectionID))
}

func abciOpts(height clienttypes.Height) rpcclient.ABCIQueryOptions {
	h := int64(height.RevisionHeight)
	if height.IsZero() {
		h = 0
	}
	return rpcclient.ABCIQueryOptions{Height: h, Prove: false}
}

var cdc = codec.NewLegacyAmino()

func decodeChannel(bz []byte) (*chantypes.Channel, error) {
	if len(bz) == 0 {
		return &chantypes.Channel{State: chantypes.UNINITIALIZED}, nil
	}
	var channel chantypes.Channel
	if err := cdc.UnmarshalBinaryBare(bz, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func decodeConnection(bz []byte) (*conntypes.ConnectionEnd, error) {
	if len(bz) == 0 {
		return nil, fmt.Errorf("connection not found")
	}
	var conn conntypes.ConnectionEnd
	if err := cdc.UnmarshalBinaryBare(bz, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func marshalProof(ops *tmcrypto.ProofOps) ([]byte, error) {
	if ops == nil || ops.Ops == nil {
		return []byte{}, nil
	}
	merkleProof, err := ics23.ConvertProofs(ops)
	if err != nil {
		return nil, err
	}
	return merkleProof.Marshal()
}

func eventsFromTendermint(events []abci.Event) []core.IBCEvent {
	var out []core.IBCEvent
	for _, ev := range events {
		attrs := map[string]string{}
		for _, a := range ev.Attributes {
			attrs[string(a.Key)] = string(a.Value)
		}
		switch ev.Type {
		case chantypes.EventTypeChannelOpenInit:
			out = append(out, core.OpenInitChannelEvent{
				PortID: attrs[chantypes.AttributeKeyPortID], ChannelID: attrs[chantypes.AttributeKeyChannelID],
			})
		case chantypes.EventTypeChannelOpenTry:
			out = append(out, core.OpenTryChannelEvent{
				PortID: attrs[chantypes.AttributeKeyPortID], ChannelID: attrs[chantypes.AttributeKeyChannelID],
			})
		case chantypes.EventTypeChannelOpenAck:
			out = append(out, core.OpenAckChannelEvent{
				PortID: attrs[chantypes.AttributeKeyPortID], ChannelID: attrs[chantypes.AttributeKeyChannelID],
			})
		case chantypes.EventTypeChannelOpenConfirm:
			out = append(out, core.OpenConfirmChannelEvent{
				PortID: attrs[chantypes.AttributeKeyPortID], ChannelID: attrs[chantypes.AttributeKeyChannelID],
			})
		}
	}
	return out
}
