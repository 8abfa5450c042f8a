package btcutils

import (
	"github.com/Cleverse/go-utilities/utils"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
)

// NewPkScript creates a pubkey script from the given address string
//
// see: https://en.bitcoin.it/wiki/Script
func NewPkScript(address string, defaultNet ...*chaincfg.Params) ([]byte, error) {
	net := utils.DefaultOptional(defaultNet, &chaincfg.MainNetParams)
	decoded, err := btcutil.DecodeAddress(address, net)
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	pkScript, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, errors.Wrap(err, "can't get script pubkey")
	}
	return pkScript, nil
}

// NewDataCarrierPkScript creates an OP_RETURN script pushing the given data.
func NewDataCarrierPkScript(data []byte) ([]byte, error) {
	pkScript, err := txscript.NullDataScript(data)
	if err != nil {
		return nil, errors.Wrap(err, "can't build OP_RETURN script")
	}
	return pkScript, nil
}

// IsDataCarrier returns true if the script starts with OP_RETURN, the marker of
// non-spendable annotation outputs.
func IsDataCarrier(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == txscript.OP_RETURN
}

// DataCarrierPayload returns the concatenated data pushes following OP_RETURN.
func DataCarrierPayload(pkScript []byte) ([]byte, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, pkScript)

	// payload must start with OP_RETURN
	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, errors.Wrap(errs.InvalidArgument, "script is not an OP_RETURN script")
	}

	payload := make([]byte, 0, len(pkScript))
	for tokenizer.Next() {
		if !IsDataPushOpCode(tokenizer.Opcode()) {
			return nil, errors.Wrapf(errs.InvalidArgument, "non-pushdata opcode %d in OP_RETURN", tokenizer.Opcode())
		}
		payload = append(payload, tokenizer.Data()...)
	}
	if err := tokenizer.Err(); err != nil {
		return nil, errors.Wrap(err, "invalid OP_RETURN script")
	}
	return payload, nil
}

// IsDataPushOpCode includes OP_0, OP_DATA_1 to OP_DATA_75, OP_PUSHDATA1, OP_PUSHDATA2, OP_PUSHDATA4
func IsDataPushOpCode(opCode byte) bool {
	return opCode <= txscript.OP_PUSHDATA4
}

// PkScriptToAddress returns the address paid by the given pkScript.
// Data-carrying, multi-signature and non-standard scripts have no single address.
func PkScriptToAddress(pkScript []byte, net *chaincfg.Params) (string, error) {
	if len(pkScript) == 0 {
		return "", errors.Wrap(errs.InvalidArgument, "empty pkScript")
	}
	if IsDataCarrier(pkScript) {
		return "", errors.Wrap(errs.Unsupported, "OP_RETURN script")
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, net)
	if err != nil {
		return "", errors.Wrap(err, "can't parse pkScript")
	}
	if len(addrs) != 1 {
		return "", errors.Wrapf(errs.Unsupported, "pkScript pays to %d addresses", len(addrs))
	}
	return addrs[0].EncodeAddress(), nil
}
