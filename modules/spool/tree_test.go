package spool

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeBuilder(t *testing.T) {
	builder := newTreeBuilder(false)
	builder.add(eventAt(spoolverb.ActionRegister, 0), spoolverb.Verb{Action: spoolverb.ActionRegister, EditionNumber: 2})
	builder.add(eventAt(spoolverb.ActionEditions, 1), spoolverb.Verb{Action: spoolverb.ActionEditions, NumEditions: 3})
	builder.add(eventAt(spoolverb.ActionFuel, 2), spoolverb.Verb{Action: spoolverb.ActionFuel})
	tree := builder.finalize()

	assert.Equal(t, []int{0, 2}, tree.Editions())
	assert.Equal(t, 3, tree.NumEditions())
	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, 2, tree.Events(2)[0].EditionNumber)
	assert.Equal(t, []spoolverb.Action{spoolverb.ActionEditions, spoolverb.ActionFuel}, actions(tree.Events(0)))
	assert.Equal(t, 0, tree.Events(0)[0].EditionNumber, "announcements belong to the piece")
	assert.Equal(t, 3, tree.Events(2)[0].NumEditions)
}

func TestTreeMarshalJSON(t *testing.T) {
	h := newHistory(t, "the night cafe")
	h.add(federation, h.piece, "ASCRIBESPOOL01EDITIONS1")
	register := h.add(federation, alice, "ASCRIBESPOOL01REGISTER1")
	h.add(alice, bob, "ASCRIBESPOOL01LOAN1/151101151201")

	tree, err := h.explorer().History(context.Background(), h.hash)
	require.NoError(t, err)

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var actual struct {
		NumEditions int                         `json:"numberEditions"`
		Truncated   bool                        `json:"truncated"`
		Editions    map[string][]map[string]any `json:"editions"`
	}
	require.NoError(t, json.Unmarshal(data, &actual))
	assert.Equal(t, 1, actual.NumEditions)
	assert.False(t, actual.Truncated)
	require.Len(t, actual.Editions["1"], 2)
	require.Len(t, actual.Editions["0"], 1)

	event := actual.Editions["1"][0]
	assert.Equal(t, register.TxHash.String(), event["txid"])
	assert.Equal(t, "REGISTER", event["action"])
	assert.Equal(t, alice, event["toAddress"])
	assert.Equal(t, float64(register.Timestamp.Unix()), event["timestamp"])
	assert.NotContains(t, event, "loanStart")

	loan := actual.Editions["1"][1]
	assert.Equal(t, "151101", loan["loanStart"])
	assert.Equal(t, "151201", loan["loanEnd"])
}

func TestTreeDump(t *testing.T) {
	t.Run("events", func(t *testing.T) {
		h := newHistory(t, "potato eaters")
		register := h.add(federation, alice, "ASCRIBESPOOL01REGISTER1")

		tree, err := h.explorer(WithMaxTransactions(1)).History(context.Background(), h.hash)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tree.Dump(&buf))
		out := buf.String()
		assert.Contains(t, out, "WARNING")
		assert.Contains(t, strings.ToLower(out), "edition 1 of 0")
		assert.Contains(t, out, register.TxHash.String())
		assert.Contains(t, out, alice)
		assert.Contains(t, out, "2015-10-21T16:29:03 UTC")
	})
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newTreeBuilder(false).finalize().Dump(&buf))
		assert.Equal(t, "no events\n", buf.String())
	})
}
