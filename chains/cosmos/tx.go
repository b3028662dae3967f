package cosmos

import (
	"fmt"

	clienttx "github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
)

const defaultGasLimit = uint64(400000)

// signAndEncode builds a single tx from msgs and signs it with the named
// keyring entry, using the SDK's own keyring-backed Sign helper rather than
// hand-rolling signature construction - the same path `tx sign`/`tx
// broadcast` CLI commands use.
func signAndEncode(kr keyring.Keyring, keyName, chainID, gasPrices string, msgs []sdk.Msg) ([]byte, error) {
	txConfig := authtx.NewTxConfig(nil, authtx.DefaultSignModes)

	builder := txConfig.NewTxBuilder()
	if err := builder.SetMsgs(msgs...); err != nil {
		return nil, fmt.Errorf("set msgs: %w", err)
	}
	builder.SetGasLimit(defaultGasLimit)
	if gasPrices != "" {
		fee, err := sdk.ParseDecCoins(gasPrices)
		if err != nil {
			return nil, fmt.Errorf("parse gas prices: %w", err)
		}
		builder.SetFeeAmount(fee)
	}

	factory := clienttx.Factory{}.
		WithChainID(chainID).
		WithTxConfig(txConfig).
		WithKeybase(kr).
		WithGas(defaultGasLimit)

	if err := clienttx.Sign(factory, keyName, builder, true); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	return txConfig.TxEncoder()(builder.GetTx())
}
