package spool

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
)

// Chain returns the events of an edition in chronological order.
// An edition without events yields an empty chain.
func Chain(tree *Tree, edition int) []Event {
	chain := tree.Events(edition)
	slices.SortStableFunc(chain, compareEvents)
	return chain
}

// StripLoan returns the chain without its trailing LOAN events, exposing the last durable custody event.
// A chain made only of loans yields an empty chain. The given chain is left untouched.
func StripLoan(chain []Event) []Event {
	end := len(chain)
	for end > 0 && chain[end-1].Action == spoolverb.ActionLoan {
		end--
	}
	return append(make([]Event, 0, end), chain[:end]...)
}

// Until returns the leading events of a sorted chain that happened at or before t.
func Until(chain []Event, t time.Time) []Event {
	end := len(chain)
	for end > 0 && chain[end-1].Timestamp.After(t) {
		end--
	}
	return append(make([]Event, 0, end), chain[:end]...)
}

// CurrentOwner returns the last durable custody event of an edition. Its ToAddress is the owner.
// Returns errs.NotFound if the edition has no such event.
func CurrentOwner(tree *Tree, edition int) (Event, error) {
	return lastCustody(Chain(tree, edition), edition)
}

// OwnerAt is CurrentOwner as of t, ignoring later events.
func OwnerAt(tree *Tree, edition int, t time.Time) (Event, error) {
	return lastCustody(Until(Chain(tree, edition), t), edition)
}

func lastCustody(chain []Event, edition int) (Event, error) {
	chain = StripLoan(chain)
	if len(chain) == 0 {
		return Event{}, errors.Wrapf(errs.NotFound, "edition %d has no custody event", edition)
	}
	return chain[len(chain)-1], nil
}
