package datagateway

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/spool-explorer/core/types"
)

// TransactionSource looks up confirmed transactions on the ledger.
type TransactionSource interface {
	// GetByReference returns the ids of the confirmed transactions that reference the given address,
	// at most maxResults of them. Implementations return them in a stable order.
	GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error)

	// GetByID returns the transaction with its input addresses filled.
	// Returns errs.NotFound if the transaction doesn't exist or isn't confirmed.
	GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error)
}
