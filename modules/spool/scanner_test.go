package spool

import (
	"testing"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataOutput(index uint32, data ...string) *types.TxOut {
	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN)
	for _, d := range data {
		builder.AddData([]byte(d))
	}
	return &types.TxOut{Index: index, PkScript: utils.Must(builder.Script())}
}

func payOutput(index uint32, address string) *types.TxOut {
	return &types.TxOut{
		Index:    index,
		PkScript: utils.Must(btcutils.NewPkScript(address, &chaincfg.MainNetParams)),
		Value:    600,
		Address:  address,
	}
}

func TestScanOutputs(t *testing.T) {
	codec := spoolverb.NewCodec(spoolverb.DefaultVersion)

	type testSpec struct {
		name           string
		outputs        []*types.TxOut
		expectedVerb   string
		expectedAction spoolverb.Action
		expectedError  error
	}

	testSpecs := []testSpec{
		{
			name:           "verb in the last output",
			outputs:        []*types.TxOut{payOutput(0, alice), dataOutput(1, "ASCRIBESPOOL01TRANSFER1")},
			expectedVerb:   "ASCRIBESPOOL01TRANSFER1",
			expectedAction: spoolverb.ActionTransfer,
		},
		{
			name:           "outputs out of order",
			outputs:        []*types.TxOut{dataOutput(1, "ASCRIBESPOOL01TRANSFER1"), payOutput(0, alice)},
			expectedVerb:   "ASCRIBESPOOL01TRANSFER1",
			expectedAction: spoolverb.ActionTransfer,
		},
		{
			name:           "highest index wins",
			outputs:        []*types.TxOut{dataOutput(0, "ASCRIBESPOOL01REGISTER1"), payOutput(1, alice), dataOutput(2, "ASCRIBESPOOL01CONSIGN1")},
			expectedVerb:   "ASCRIBESPOOL01CONSIGN1",
			expectedAction: spoolverb.ActionConsign,
		},
		{
			name:           "undecodable data is skipped",
			outputs:        []*types.TxOut{dataOutput(0, "ASCRIBESPOOL01LOAN1/150101150131"), dataOutput(1, "hello world")},
			expectedVerb:   "ASCRIBESPOOL01LOAN1/150101150131",
			expectedAction: spoolverb.ActionLoan,
		},
		{
			name:           "pushes are concatenated",
			outputs:        []*types.TxOut{dataOutput(0, "ASCRIBESPOOL01", "EDITIONS10")},
			expectedVerb:   "ASCRIBESPOOL01EDITIONS10",
			expectedAction: spoolverb.ActionEditions,
		},
		{
			name:          "no data output",
			outputs:       []*types.TxOut{payOutput(0, alice), payOutput(1, bob)},
			expectedError: errs.UnsupportedTransaction,
		},
		{
			name:          "unknown action",
			outputs:       []*types.TxOut{payOutput(0, alice), dataOutput(1, "ASCRIBESPOOL01BURN1")},
			expectedError: errs.UnsupportedTransaction,
		},
		{
			name:          "no outputs",
			outputs:       nil,
			expectedError: errs.UnsupportedTransaction,
		},
	}

	for _, spec := range testSpecs {
		t.Run(spec.name, func(t *testing.T) {
			payload, verb, err := ScanOutputs(spec.outputs, codec)
			if spec.expectedError != nil {
				assert.ErrorIs(t, err, spec.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, spec.expectedVerb, string(payload))
			assert.Equal(t, spec.expectedAction, verb.Action)
		})
	}

	t.Run("restricted codec", func(t *testing.T) {
		codec := spoolverb.NewCodec("", spoolverb.WithActions(spoolverb.ActionRegister))
		outputs := []*types.TxOut{dataOutput(0, "ASCRIBESPOOL01REGISTER1"), dataOutput(1, "ASCRIBESPOOL01TRANSFER1")}

		payload, err := FindVerbPayload(outputs, codec)
		require.NoError(t, err)
		assert.Equal(t, "ASCRIBESPOOL01REGISTER1", string(payload))
	})
}
