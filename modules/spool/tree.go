package spool

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// Tree is the history of a piece: its events grouped by edition number.
// Edition 0 holds the piece-level events and EDITIONS announcements.
type Tree struct {
	editions    map[int][]Event
	numEditions int
	truncated   bool
}

// Events returns the events of an edition in arrival order.
// An unknown edition yields an empty slice.
func (t *Tree) Events(edition int) []Event {
	events := t.editions[edition]
	return append(make([]Event, 0, len(events)), events...)
}

// Editions returns the edition numbers that have events, ascending.
func (t *Tree) Editions() []int {
	editions := lo.Keys(t.editions)
	slices.Sort(editions)
	return editions
}

// NumEditions returns the announced number of editions, 0 if none was announced.
func (t *Tree) NumEditions() int {
	return t.numEditions
}

// Truncated reports whether the candidate list hit the retrieval bound, in which case the history may be incomplete.
func (t *Tree) Truncated() bool {
	return t.truncated
}

// Len returns the number of events across all editions.
func (t *Tree) Len() int {
	return lo.SumBy(lo.Values(t.editions), func(events []Event) int { return len(events) })
}

// Dump renders the tree as one table per edition.
func (t *Tree) Dump(w io.Writer) error {
	if t.truncated {
		if _, err := fmt.Fprintln(w, "WARNING: transaction list was truncated, history may be incomplete"); err != nil {
			return err
		}
	}
	if len(t.editions) == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}
	for _, edition := range t.Editions() {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.SetTitle("edition %d of %d", edition, t.numEditions)
		tw.AppendHeader(table.Row{"time", "height", "action", "from", "to", "piece", "txid", "verb"})
		for _, event := range t.editions[edition] {
			tw.AppendRow(table.Row{
				spoolverb.FormatLedgerTime(event.Timestamp),
				event.BlockHeight,
				event.Action,
				event.FromAddress,
				event.ToAddress,
				event.PieceAddress,
				event.TxHash.String(),
				event.Verb,
			})
		}
		tw.Render()
	}
	return nil
}

type treeJSON struct {
	NumEditions int                `json:"numberEditions"`
	Truncated   bool               `json:"truncated"`
	Editions    map[string][]Event `json:"editions"`
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	editions := make(map[string][]Event, len(t.editions))
	for edition, events := range t.editions {
		editions[strconv.Itoa(edition)] = events
	}
	return json.Marshal(treeJSON{
		NumEditions: t.numEditions,
		Truncated:   t.truncated,
		Editions:    editions,
	})
}

// treeBuilder accumulates events. NumEditions is only known once every event is in,
// finalize back-fills it.
type treeBuilder struct {
	editions        map[int][]Event
	numEditions     int
	lastAnnounce    Event
	hasAnnouncement bool
	truncated       bool
}

func newTreeBuilder(truncated bool) *treeBuilder {
	return &treeBuilder{
		editions:  make(map[int][]Event),
		truncated: truncated,
	}
}

func (b *treeBuilder) add(event Event, verb spoolverb.Verb) {
	edition := verb.EditionNumber
	if verb.Action == spoolverb.ActionEditions {
		edition = 0
		// the latest announcement wins
		if !b.hasAnnouncement || b.lastAnnounce.Before(event) {
			b.numEditions = verb.NumEditions
			b.lastAnnounce = event
			b.hasAnnouncement = true
		}
	}
	event.EditionNumber = edition
	b.editions[edition] = append(b.editions[edition], event)
}

func (b *treeBuilder) finalize() *Tree {
	editions := make(map[int][]Event, len(b.editions))
	for edition, events := range b.editions {
		editions[edition] = lo.Map(events, func(event Event, _ int) Event {
			event.NumEditions = b.numEditions
			return event
		})
	}
	return &Tree{
		editions:    editions,
		numEditions: b.numEditions,
		truncated:   b.truncated,
	}
}
