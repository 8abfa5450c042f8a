package spool

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/samber/lo"
)

// ResolveAddresses returns the parties of a SPOOL transaction.
//
// All inputs must be signed by one address, the sender. The last output carries the verb;
// of the remaining outputs the first pays the piece address and the last pays the receiver,
// so a transaction with a single such output has piece == to.
func ResolveAddresses(tx *types.Transaction) (from, to, piece string, err error) {
	senders := lo.Uniq(lo.FilterMap(tx.TxIn, func(txIn *types.TxIn, _ int) (string, bool) {
		if txIn == nil {
			return "", false
		}
		return txIn.Address, true
	}))
	if len(senders) != 1 {
		return "", "", "", errors.Wrapf(errs.InvalidTransaction, "inputs must come from exactly one address, got %d: %v", len(senders), senders)
	}
	if senders[0] == "" {
		return "", "", "", errors.Wrap(errs.InvalidTransaction, "sender address can't be resolved")
	}

	outputs := sortOutputs(tx.TxOut, false)
	if len(outputs) < 2 {
		return "", "", "", errors.Wrapf(errs.InvalidTransaction, "expected the verb output and at least one custody output, got %d outputs", len(outputs))
	}
	outputs = outputs[:len(outputs)-1]

	return senders[0], outputs[len(outputs)-1].Address, outputs[0].Address, nil
}
