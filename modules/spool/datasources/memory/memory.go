// Package memory provides an in-memory transaction source, used to replay known histories.
package memory

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/samber/lo"
)

var _ datagateway.TransactionSource = (*Source)(nil)

type Source struct {
	mu    sync.RWMutex
	net   *chaincfg.Params
	txs   map[chainhash.Hash]*types.Transaction
	order []chainhash.Hash
}

func New(net *chaincfg.Params) *Source {
	return &Source{
		net: net,
		txs: make(map[chainhash.Hash]*types.Transaction),
	}
}

// Add stores transactions. GetByReference lists them in the order they were added.
func (s *Source) Add(txs ...*types.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if _, ok := s.txs[tx.TxHash]; !ok {
			s.order = append(s.order, tx.TxHash)
		}
		s.txs[tx.TxHash] = tx
	}
}

// GetByReference returns the transactions with an output paying reference.
func (s *Source) GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error) {
	if maxResults <= 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "max results must be positive")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	txHashes := make([]chainhash.Hash, 0)
	for _, txHash := range s.order {
		if len(txHashes) >= maxResults {
			break
		}
		pays := lo.ContainsBy(s.txs[txHash].TxOut, func(txOut *types.TxOut) bool {
			return txOut.Address == reference
		})
		if pays {
			txHashes = append(txHashes, txHash)
		}
	}
	return txHashes, nil
}

func (s *Source) GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[txHash]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "transaction %s", txHash)
	}
	return tx, nil
}

// SpoolTx describes a confirmed transaction carrying a verb.
type SpoolTx struct {
	// Senders are the addresses of the spent outputs, one input each.
	Senders []string

	// Outputs are the addresses paid before the verb output, in output order.
	Outputs []string

	// Verb is pushed in an OP_RETURN output placed last.
	Verb string

	Timestamp   time.Time
	BlockHeight int64
}

// AddSpoolTx builds the transaction described by spec and stores it.
func (s *Source) AddSpoolTx(spec SpoolTx) (*types.Transaction, error) {
	msgTx := wire.NewMsgTx(wire.TxVersion)
	for i, sender := range spec.Senders {
		// outpoint derived from the block height and the sender
		var seed [8]byte
		binary.BigEndian.PutUint64(seed[:], uint64(spec.BlockHeight))
		prevHash := chainhash.HashH(append(append(seed[:], sender...), byte(i)))
		msgTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, uint32(i)), nil, nil))
	}
	for _, address := range spec.Outputs {
		pkScript, err := btcutils.NewPkScript(address, s.net)
		if err != nil {
			return nil, errors.Wrapf(err, "can't pay %s", address)
		}
		msgTx.AddTxOut(wire.NewTxOut(600, pkScript))
	}
	if spec.Verb != "" {
		pkScript, err := btcutils.NewDataCarrierPkScript([]byte(spec.Verb))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		msgTx.AddTxOut(wire.NewTxOut(0, pkScript))
	}

	blockHash := chainhash.DoubleHashH(binary.BigEndian.AppendUint64(nil, uint64(spec.BlockHeight)))
	tx := types.ParseMsgTx(msgTx, spec.BlockHeight, blockHash, spec.Timestamp, s.net)
	for i, sender := range spec.Senders {
		tx.TxIn[i].Address = sender
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.TxHash]; ok {
		return nil, errors.Wrapf(errs.InvalidArgument, "transaction %s already exists", tx.TxHash)
	}
	s.txs[tx.TxHash] = tx
	s.order = append(s.order, tx.TxHash)
	return tx, nil
}
