package types

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/samber/lo"
)

// Transaction is a confirmed transaction with the addresses needed to follow custody.
type Transaction struct {
	TxHash      chainhash.Hash
	BlockHeight int64
	BlockHash   chainhash.Hash
	Timestamp   time.Time
	TxIn        []*TxIn
	TxOut       []*TxOut
}

type TxIn struct {
	PreviousOutTxHash chainhash.Hash
	PreviousOutIndex  uint32

	// Address of the spent output. Empty if the script is non-standard.
	Address string
}

type TxOut struct {
	// Index is the position of the output in the transaction (vout).
	Index    uint32
	PkScript []byte
	Value    int64

	// Address paid by the output. Empty for data-carrying and non-standard outputs.
	Address string
}

// ParseMsgTx parses btcd/wire.MsgTx to Transaction.
// Input addresses are left empty; they live in the previous transactions and are filled by the datasource.
func ParseMsgTx(src *wire.MsgTx, blockHeight int64, blockHash chainhash.Hash, blockTime time.Time, net *chaincfg.Params) *Transaction {
	return &Transaction{
		TxHash:      src.TxHash(),
		BlockHeight: blockHeight,
		BlockHash:   blockHash,
		Timestamp:   blockTime.UTC(),
		TxIn: lo.Map(src.TxIn, func(item *wire.TxIn, _ int) *TxIn {
			return ParseTxIn(item)
		}),
		TxOut: lo.Map(src.TxOut, func(item *wire.TxOut, i int) *TxOut {
			return ParseTxOut(item, uint32(i), net)
		}),
	}
}

// ParseTxIn parses btcd/wire.TxIn to TxIn.
func ParseTxIn(src *wire.TxIn) *TxIn {
	return &TxIn{
		PreviousOutIndex:  src.PreviousOutPoint.Index,
		PreviousOutTxHash: src.PreviousOutPoint.Hash,
	}
}

// ParseTxOut parses btcd/wire.TxOut to TxOut.
func ParseTxOut(src *wire.TxOut, index uint32, net *chaincfg.Params) *TxOut {
	address, _ := btcutils.PkScriptToAddress(src.PkScript, net)
	return &TxOut{
		Index:    index,
		PkScript: src.PkScript,
		Value:    src.Value,
		Address:  address,
	}
}
