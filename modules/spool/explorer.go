package spool

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/gaze-network/spool-explorer/pkg/spoolverb"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxTransactions = 10000
	DefaultConcurrency     = 8
)

// Explorer rebuilds the custody history of pieces from the transactions referencing them.
// It keeps no state between calls.
type Explorer struct {
	source  datagateway.TransactionSource
	verbs   VerbInterpreter
	network common.Network

	maxTransactions  int
	concurrency      int
	failOnTruncation bool
}

type Option func(*Explorer)

// WithMaxTransactions bounds the number of candidate transactions per piece.
func WithMaxTransactions(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.maxTransactions = n
		}
	}
}

// WithConcurrency sets the number of transactions fetched in parallel.
func WithConcurrency(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithFailOnTruncation makes History fail with errs.Truncated instead of flagging the tree.
func WithFailOnTruncation(fail bool) Option {
	return func(e *Explorer) {
		e.failOnTruncation = fail
	}
}

func NewExplorer(source datagateway.TransactionSource, verbs VerbInterpreter, network common.Network, opts ...Option) *Explorer {
	e := &Explorer{
		source:          source,
		verbs:           verbs,
		network:         network,
		maxTransactions: DefaultMaxTransactions,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Explorer) Network() common.Network {
	return e.network
}

// record is the outcome of interpreting one candidate transaction.
type record struct {
	event Event
	verb  spoolverb.Verb
}

// History returns the history tree of the piece identified by contentHash, either an address
// or the hex encoded hash160 of the content.
//
// A transaction that breaks the protocol aborts the whole call with a *TransactionError,
// no partial tree is returned.
func (e *Explorer) History(ctx context.Context, contentHash string) (*Tree, error) {
	start := time.Now()
	ctx = logger.WithContext(ctx, slogx.String("content_hash", contentHash))

	address, err := btcutils.ResolveContentAddress(contentHash, e.network.ChainParams())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	txHashes, err := e.source.GetByReference(ctx, address.EncodeAddress(), e.maxTransactions)
	if err != nil {
		return nil, errors.Wrap(err, "can't get referencing transactions")
	}

	truncated := len(txHashes) >= e.maxTransactions
	if truncated {
		if e.failOnTruncation {
			return nil, errors.Wrapf(errs.Truncated, "piece %s has at least %d transactions", address, e.maxTransactions)
		}
		txHashes = txHashes[:e.maxTransactions]
		logger.WarnContext(ctx, "Transaction list reached the retrieval bound, history may be incomplete",
			slogx.Int("max_transactions", e.maxTransactions),
		)
	}

	records := make([]record, len(txHashes))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, txHash := range txHashes {
		eg.Go(func() error {
			// stop issuing fetches once a transaction failed or the caller gave up
			if err := ectx.Err(); err != nil {
				return errors.WithStack(err)
			}
			rec, err := e.interpret(ectx, txHash)
			if err != nil {
				return errors.WithStack(err)
			}
			rec.event.sequence = i
			records[i] = rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var txErr *TransactionError
		if errors.As(err, &txErr) {
			logger.WarnContext(ctx, "Aborted history on invalid transaction", slogx.Stringer("tx_hash", txErr.TxHash), slogx.Error(err))
		}
		return nil, errors.WithStack(err)
	}

	builder := newTreeBuilder(truncated)
	for _, rec := range records {
		builder.add(rec.event, rec.verb)
	}
	tree := builder.finalize()

	logger.DebugContext(ctx, "Built history tree",
		slogx.Int("transactions", len(txHashes)),
		slogx.Int("editions", len(tree.Editions())),
		slogx.Int("num_editions", tree.NumEditions()),
		slogx.Duration("duration", time.Since(start)),
	)
	return tree, nil
}

// interpret turns one transaction into an event.
func (e *Explorer) interpret(ctx context.Context, txHash chainhash.Hash) (record, error) {
	tx, err := e.source.GetByID(ctx, txHash)
	if err != nil {
		return record{}, errors.Wrapf(err, "can't get transaction %s", txHash)
	}

	payload, verb, err := ScanOutputs(tx.TxOut, e.verbs)
	if err != nil {
		return record{}, newTransactionError(tx.TxHash, err)
	}

	from, to, piece, err := ResolveAddresses(tx)
	if err != nil {
		return record{}, newTransactionError(tx.TxHash, err)
	}

	return record{
		event: Event{
			TxHash:        tx.TxHash,
			Verb:          string(payload),
			Action:        verb.Action,
			FromAddress:   from,
			ToAddress:     to,
			PieceAddress:  piece,
			Timestamp:     tx.Timestamp.UTC().Truncate(time.Second),
			BlockHeight:   tx.BlockHeight,
			EditionNumber: verb.EditionNumber,
			LoanStart:     verb.LoanStart,
			LoanEnd:       verb.LoanEnd,
		},
		verb: verb,
	}, nil
}
