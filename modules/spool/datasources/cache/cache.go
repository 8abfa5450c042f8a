package cache

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	lru "github.com/hashicorp/golang-lru/v2"
)

var _ datagateway.TransactionSource = (*Source)(nil)

// Source keeps the most recently fetched transactions of another source in memory.
// Address histories are not cached since new transactions keep confirming.
type Source struct {
	source datagateway.TransactionSource
	txs    *lru.Cache[chainhash.Hash, *types.Transaction]
}

func New(source datagateway.TransactionSource, size int) (*Source, error) {
	if size <= 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "cache size must be positive")
	}
	txs, err := lru.New[chainhash.Hash, *types.Transaction](size)
	if err != nil {
		return nil, errors.Wrap(err, "can't create transaction cache")
	}
	return &Source{
		source: source,
		txs:    txs,
	}, nil
}

func (s *Source) GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error) {
	return s.source.GetByReference(ctx, reference, maxResults)
}

func (s *Source) GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	if tx, ok := s.txs.Get(txHash); ok {
		return tx, nil
	}
	tx, err := s.source.GetByID(ctx, txHash)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.txs.Add(txHash, tx)
	return tx, nil
}

// Len returns the number of cached transactions.
func (s *Source) Len() int {
	return s.txs.Len()
}
