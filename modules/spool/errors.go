package spool

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
)

// TransactionError is returned when a referencing transaction breaks the protocol.
// It unwraps to errs.UnsupportedTransaction or errs.InvalidTransaction.
type TransactionError struct {
	TxHash chainhash.Hash
	err    error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %s", e.TxHash, e.err)
}

func (e *TransactionError) Unwrap() error {
	return e.err
}

func newTransactionError(txHash chainhash.Hash, err error) error {
	return errors.WithStack(&TransactionError{TxHash: txHash, err: err})
}
