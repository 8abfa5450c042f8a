// Package btcnode reads transactions from a Bitcoin node over JSON-RPC.
// Address lookups require a node with an address index (btcd --addrindex).
package btcnode

import (
	"bytes"
	"context"
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
)

const (
	searchPageSize = 100

	// number of previous transactions fetched at the same time
	prevOutConcurrency = 8
)

var _ datagateway.TransactionSource = (*Source)(nil)

type Source struct {
	client *rpcclient.Client
	net    *chaincfg.Params
}

func New(client *rpcclient.Client, net *chaincfg.Params) *Source {
	return &Source{
		client: client,
		net:    net,
	}
}

func (s *Source) GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error) {
	if maxResults <= 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "max results must be positive")
	}
	address, err := btcutil.DecodeAddress(reference, s.net)
	if err != nil {
		return nil, errors.Join(errs.InvalidArgument, errors.Wrapf(err, "invalid address %q", reference))
	}

	txHashes := make([]chainhash.Hash, 0)
	for skip := 0; len(txHashes) < maxResults; skip += searchPageSize {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		results, err := s.client.SearchRawTransactionsVerbose(address, skip, searchPageSize, false, false, nil)
		if err != nil {
			err = mapRPCError(err)
			// the node answers "No information available about address" for an empty history
			if errors.Is(err, errs.NotFound) {
				break
			}
			return nil, errors.Wrapf(err, "failed to search transactions of %s", reference)
		}
		for _, result := range results {
			if result.Confirmations == 0 {
				continue
			}
			txHash, err := chainhash.NewHashFromStr(result.Txid)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid txid %q", result.Txid)
			}
			txHashes = append(txHashes, *txHash)
			if len(txHashes) >= maxResults {
				break
			}
		}
		if len(results) < searchPageSize {
			break
		}
	}
	return txHashes, nil
}

func (s *Source) GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	result, err := s.client.GetRawTransactionVerbose(&txHash)
	if err != nil {
		return nil, errors.Wrapf(mapRPCError(err), "failed to get transaction %s", txHash)
	}
	if result.Confirmations == 0 || result.BlockHash == "" {
		return nil, errors.Wrapf(errs.NotFound, "transaction %s is not confirmed", txHash)
	}

	raw, err := hex.DecodeString(result.Hex)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transaction hex")
	}
	msgTx := wire.NewMsgTx(wire.TxVersion)
	if err := msgTx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize transaction")
	}

	blockHash, err := chainhash.NewHashFromStr(result.BlockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid block hash %q", result.BlockHash)
	}
	header, err := s.client.GetBlockHeaderVerbose(blockHash)
	if err != nil {
		return nil, errors.Wrapf(mapRPCError(err), "failed to get block header %s", blockHash)
	}

	tx := types.ParseMsgTx(msgTx, int64(header.Height), *blockHash, time.Unix(result.Blocktime, 0), s.net)
	if err := s.fillInputAddresses(ctx, tx); err != nil {
		return nil, errors.WithStack(err)
	}
	return tx, nil
}

type prevOutResult struct {
	txHash chainhash.Hash
	msgTx  *wire.MsgTx
	err    error
}

// fillInputAddresses resolves the address of every spent output.
func (s *Source) fillInputAddresses(ctx context.Context, tx *types.Transaction) error {
	prevTxHashes := lo.Uniq(lo.FilterMap(tx.TxIn, func(txIn *types.TxIn, _ int) (chainhash.Hash, bool) {
		// coinbase
		return txIn.PreviousOutTxHash, txIn.PreviousOutTxHash != chainhash.Hash{}
	}))
	if len(prevTxHashes) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan prevOutResult)
	stream := cstream.NewStream(ctx, prevOutConcurrency, out)
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()
	go func() {
		defer stream.Close()
		for _, prevTxHash := range prevTxHashes {
			select {
			case <-ctx.Done():
				return
			default:
				stream.Go(func() prevOutResult {
					prevTx, err := s.client.GetRawTransaction(&prevTxHash)
					if err != nil {
						return prevOutResult{txHash: prevTxHash, err: mapRPCError(err)}
					}
					return prevOutResult{txHash: prevTxHash, msgTx: prevTx.MsgTx()}
				})
			}
		}
	}()

	prevTxs := make(map[chainhash.Hash]*wire.MsgTx, len(prevTxHashes))
	var firstErr error
	for result := range out {
		if result.err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(result.err, "failed to get previous transaction %s", result.txHash)
				cancel()
			}
			continue
		}
		prevTxs[result.txHash] = result.msgTx
	}
	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	for _, txIn := range tx.TxIn {
		prevTx, ok := prevTxs[txIn.PreviousOutTxHash]
		if !ok {
			continue
		}
		if int(txIn.PreviousOutIndex) >= len(prevTx.TxOut) {
			return errors.Wrapf(errs.InvalidTransaction, "input spends missing output %s:%d", txIn.PreviousOutTxHash, txIn.PreviousOutIndex)
		}
		address, err := btcutils.PkScriptToAddress(prevTx.TxOut[txIn.PreviousOutIndex].PkScript, s.net)
		if err != nil {
			logger.DebugContext(ctx, "Input spends a non-standard output",
				slogx.Stringer("tx_hash", tx.TxHash),
				slogx.Stringer("prev_tx_hash", txIn.PreviousOutTxHash),
				slogx.Error(err),
			)
			continue
		}
		txIn.Address = address
	}
	return nil
}

// mapRPCError classifies node errors. Errors outside the JSON-RPC protocol are transport failures.
func mapRPCError(err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == btcjson.ErrRPCNoTxInfo {
			return errors.Join(errs.NotFound, err)
		}
		return errors.WithStack(err)
	}
	return errors.Join(errs.Transport, err)
}
