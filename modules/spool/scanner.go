package spool

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
)

// VerbInterpreter decodes verb payloads. The byte-level encoding belongs to the implementation.
type VerbInterpreter interface {
	Decode(payload []byte) (spoolverb.Verb, error)
	SupportedActions() []spoolverb.Action
}

// ScanOutputs finds the verb of a transaction. Outputs are scanned from the highest index down
// and the first OP_RETURN output that decodes to a supported action wins.
//
// Returns errs.UnsupportedTransaction if no output carries a supported verb.
func ScanOutputs(outputs []*types.TxOut, verbs VerbInterpreter) ([]byte, spoolverb.Verb, error) {
	supported := verbs.SupportedActions()
	for _, txOut := range sortOutputs(outputs, true) {
		if !btcutils.IsDataCarrier(txOut.PkScript) {
			continue
		}
		payload, err := btcutils.DataCarrierPayload(txOut.PkScript)
		if err != nil {
			continue
		}
		verb, err := verbs.Decode(payload)
		if err != nil {
			continue
		}
		if !slices.Contains(supported, verb.Action) {
			continue
		}
		return payload, verb, nil
	}
	return nil, spoolverb.Verb{}, errors.Wrap(errs.UnsupportedTransaction, "no output carries a supported verb")
}

// FindVerbPayload returns the raw payload of the verb found by ScanOutputs.
func FindVerbPayload(outputs []*types.TxOut, verbs VerbInterpreter) ([]byte, error) {
	payload, _, err := ScanOutputs(outputs, verbs)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return payload, nil
}

// sortOutputs returns a copy of outputs ordered by index, nil entries removed.
func sortOutputs(outputs []*types.TxOut, reverse bool) []*types.TxOut {
	sorted := make([]*types.TxOut, 0, len(outputs))
	for _, txOut := range outputs {
		if txOut != nil {
			sorted = append(sorted, txOut)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *types.TxOut) int {
		if reverse {
			a, b = b, a
		}
		switch {
		case a.Index < b.Index:
			return -1
		case a.Index > b.Index:
			return 1
		}
		return 0
	})
	return sorted
}
