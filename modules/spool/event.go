package spool

import (
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
)

// Event is one custody event of a piece, decoded from a single transaction.
type Event struct {
	TxHash chainhash.Hash

	// Verb is the raw payload as found on chain.
	Verb   string
	Action spoolverb.Action

	FromAddress  string
	ToAddress    string
	PieceAddress string

	Timestamp   time.Time
	BlockHeight int64

	// EditionNumber is 0 for the master edition and for EDITIONS announcements.
	EditionNumber int

	// NumEditions is the piece-wide total, 0 if no EDITIONS announcement was found.
	NumEditions int

	LoanStart string
	LoanEnd   string

	// sequence is the position of the transaction in the candidate list.
	sequence int
}

// Before reports whether e happened before other: block time first, then confirmation height,
// then the order the transaction source listed them in.
func (e Event) Before(other Event) bool {
	if !e.Timestamp.Equal(other.Timestamp) {
		return e.Timestamp.Before(other.Timestamp)
	}
	if e.BlockHeight != other.BlockHeight {
		return e.BlockHeight < other.BlockHeight
	}
	return e.sequence < other.sequence
}

func compareEvents(a, b Event) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}

type eventJSON struct {
	TxHash        string `json:"txid"`
	Verb          string `json:"verb"`
	Action        string `json:"action"`
	FromAddress   string `json:"fromAddress"`
	ToAddress     string `json:"toAddress"`
	PieceAddress  string `json:"pieceAddress"`
	Timestamp     int64  `json:"timestamp"`
	BlockHeight   int64  `json:"blockHeight"`
	EditionNumber int    `json:"editionNumber"`
	NumEditions   int    `json:"numberEditions"`
	LoanStart     string `json:"loanStart,omitempty"`
	LoanEnd       string `json:"loanEnd,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		TxHash:        e.TxHash.String(),
		Verb:          e.Verb,
		Action:        e.Action.String(),
		FromAddress:   e.FromAddress,
		ToAddress:     e.ToAddress,
		PieceAddress:  e.PieceAddress,
		Timestamp:     e.Timestamp.Unix(),
		BlockHeight:   e.BlockHeight,
		EditionNumber: e.EditionNumber,
		NumEditions:   e.NumEditions,
		LoanStart:     e.LoanStart,
		LoanEnd:       e.LoanEnd,
	})
}
