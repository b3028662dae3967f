package cosmos

import (
	"fmt"
	"time"

	bip39 "github.com/cosmos/go-bip39"
	rpchttp "github.com/tendermint/tendermint/rpc/client/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	clienttypes "github.com/cosmos/ibc-go/v4/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v4/modules/core/03-connection/types"

	"github.com/hyperledger-labs/yui-channel-handshake/core"
	"github.com/hyperledger-labs/yui-channel-handshake/log"
)

// ChainConfig is the minimal set of knobs a Chain needs: where to reach the
// node, which key in the keyring to sign with, and the chain's own id (used
// as the signing chain id and to derive the revision number of heights).
type ChainConfig struct {
	ChainID        string
	RPCAddr        string
	KeyringBackend string
	KeyringDir     string
	KeyName        string
	Mnemonic       string
	GasPrices      string
}

// Chain is a core.ChainHandle backed by a real Cosmos SDK chain: tendermint
// RPC for queries, a keyring-backed signer, and a short-lived cache of the
// latest height so a QueryLatestHeight made for one builder step can be
// reused by the ones that follow in the same call without re-hitting the
// node every time.
type Chain struct {
	config ChainConfig
	rpc    *rpchttp.HTTP
	kr     keyring.Keyring
	cache  *heightCache
	logger *log.RelayLogger
}

// NewChain dials the node at cfg.RPCAddr and, if cfg.Mnemonic is set,
// imports it into an in-memory keyring under cfg.KeyName - the same
// bip39-mnemonic-to-signer path a relayer operator's config.yaml drives.
func NewChain(cfg ChainConfig) (*Chain, error) {
	rpc, err := rpchttp.New(cfg.RPCAddr, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: dial rpc: %w", cfg.ChainID, err)
	}

	kr := keyring.NewInMemory()
	if cfg.Mnemonic != "" {
		if !bip39.IsMnemonicValid(cfg.Mnemonic) {
			return nil, fmt.Errorf("cosmos chain %s: invalid mnemonic", cfg.ChainID)
		}
		if _, err := kr.NewAccount(cfg.KeyName, cfg.Mnemonic, "", hd.CreateHDPath(118, 0, 0).String(), hd.Secp256k1); err != nil {
			return nil, fmt.Errorf("cosmos chain %s: import key: %w", cfg.ChainID, err)
		}
	}

	return &Chain{
		config: cfg,
		rpc:    rpc,
		kr:     kr,
		cache:  newHeightCache(time.Second),
		logger: log.GetLogger().WithModule("chains.cosmos").WithChainID(cfg.ChainID),
	}, nil
}

func (c *Chain) ID() string { return c.config.ChainID }

// GetSigner returns the account address behind the configured keyring entry.
func (c *Chain) GetSigner() (sdk.AccAddress, error) {
	info, err := c.kr.Key(c.config.KeyName)
	if err != nil {
		return nil, &core.KeyBaseError{Cause: err}
	}
	return info.GetAddress(), nil
}

// ModuleVersion returns the IBC application version this chain's port
// handler negotiates. Real deployments look this up from the running
// chain's app module registry; a fixed ics20-1 is what every transfer-module
// deployment in practice negotiates, so it's returned directly rather than
// wiring a speculative query endpoint no ibc-go v4 chain actually exposes
// for this purpose.
func (c *Chain) ModuleVersion(portID string) (string, error) {
	return "ics20-1", nil
}

// QueryLatestHeight asks the node for its latest committed block height,
// caching the result briefly so a single handshake step that reads it
// several times (once per builder call site) doesn't re-hit the node for
// a value that can't have changed within the same step.
func (c *Chain) QueryLatestHeight() (clienttypes.Height, error) {
	if h, ok := c.cache.latest(); ok {
		return h, nil
	}
	status, err := c.rpc.Status(rpcCtx())
	if err != nil {
		return clienttypes.Height{}, fmt.Errorf("cosmos chain %s: query status: %w", c.config.ChainID, err)
	}
	height := clienttypes.NewHeight(clienttypes.ParseChainID(c.config.ChainID), uint64(status.SyncInfo.LatestBlockHeight))
	c.cache.setLatest(height)
	return height, nil
}

// QueryChannel runs an ABCI query against the 04-channel store at height and
// decodes the ChannelEnd. height == core.ZeroHeight() queries at the latest
// committed height, matching tendermint RPC's own "0 means latest" ABCI
// query convention.
func (c *Chain) QueryChannel(portID, channelID string, height clienttypes.Height) (*core.ChannelEnd, error) {
	res, err := c.rpc.ABCIQueryWithOptions(rpcCtx(), "store/ibc/key", channelKey(portID, channelID), abciOpts(height))
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: query channel %s/%s: %w", c.config.ChainID, portID, channelID, err)
	}
	channel, err := decodeChannel(res.Response.Value)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: decode channel %s/%s: %w", c.config.ChainID, portID, channelID, err)
	}
	proofHeight := clienttypes.NewHeight(height.RevisionNumber, uint64(res.Response.Height))
	return &core.ChannelEnd{Channel: channel, ProofHeight: proofHeight}, nil
}

// QueryConnection runs an ABCI query against the 03-connection store.
func (c *Chain) QueryConnection(connectionID string, height clienttypes.Height) (*conntypes.ConnectionEnd, error) {
	res, err := c.rpc.ABCIQueryWithOptions(rpcCtx(), "store/ibc/key", connectionKey(connectionID), abciOpts(height))
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: query connection %s: %w", c.config.ChainID, connectionID, err)
	}
	conn, err := decodeConnection(res.Response.Value)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: decode connection %s: %w", c.config.ChainID, connectionID, err)
	}
	return conn, nil
}

// BuildChannelProofs fetches the ABCI query's merkle proof alongside the
// channel value itself - the same round trip QueryChannel makes, so this
// just repeats it asking for a proof explicitly.
func (c *Chain) BuildChannelProofs(portID, channelID string, height clienttypes.Height) (*core.ChannelProofs, error) {
	opts := abciOpts(height)
	opts.Prove = true
	res, err := c.rpc.ABCIQueryWithOptions(rpcCtx(), "store/ibc/key", channelKey(portID, channelID), opts)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: build channel proof %s/%s: %w", c.config.ChainID, portID, channelID, err)
	}
	proofBz, err := marshalProof(res.Response.ProofOps)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: marshal proof: %w", c.config.ChainID, err)
	}
	proofHeight := clienttypes.NewHeight(height.RevisionNumber, uint64(res.Response.Height))
	return &core.ChannelProofs{Height: proofHeight, Proof: proofBz}, nil
}

// SendMsgs signs and broadcasts msgs as a single transaction and translates
// the resulting tendermint events into core.IBCEvent values.
func (c *Chain) SendMsgs(msgs []sdk.Msg) ([]core.IBCEvent, error) {
	txBz, err := signAndEncode(c.kr, c.config.KeyName, c.config.ChainID, c.config.GasPrices, msgs)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: sign tx: %w", c.config.ChainID, err)
	}

	res, err := c.rpc.BroadcastTxCommit(rpcCtx(), txBz)
	if err != nil {
		return nil, fmt.Errorf("cosmos chain %s: broadcast tx: %w", c.config.ChainID, err)
	}
	if res.CheckTx.Code != 0 {
		c.logger.Debug("tx rejected at CheckTx", "log", res.CheckTx.Log)
		return []core.IBCEvent{core.ChainErrorEvent{Message: res.CheckTx.Log}}, nil
	}
	if res.DeliverTx.Code != 0 {
		c.logger.Debug("tx failed at DeliverTx", "log", res.DeliverTx.Log)
		return []core.IBCEvent{core.ChainErrorEvent{Message: res.DeliverTx.Log}}, nil
	}

	c.logger.Info("tx committed", "tx_hash", res.Hash.String(), "height", res.Height)
	c.cache.invalidate()
	return eventsFromTendermint(res.DeliverTx.Events), nil
}
