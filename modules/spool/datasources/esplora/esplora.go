package esplora

import (
	"context"
	"encoding/hex"
	"slices"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/core/types"
	"github.com/gaze-network/spool-explorer/modules/spool/datagateway"
	"github.com/gaze-network/spool-explorer/pkg/httpclient"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
)

// pageSize is the number of transactions the Esplora API returns per page of address history.
const pageSize = 25

var _ datagateway.TransactionSource = (*Source)(nil)

// Source reads transactions from an Esplora REST API (e.g. blockstream.info, mempool.space).
type Source struct {
	client *httpclient.Client
}

func New(baseURL string, config ...httpclient.Config) (*Source, error) {
	client, err := httpclient.New(baseURL, config...)
	if err != nil {
		return nil, errors.Wrap(err, "can't create esplora client")
	}
	return &Source{client: client}, nil
}

// GetByReference returns the confirmed transactions of the address, oldest first.
func (s *Source) GetByReference(ctx context.Context, reference string, maxResults int) ([]chainhash.Hash, error) {
	if maxResults <= 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "max results must be positive")
	}

	txHashes := make([]chainhash.Hash, 0, min(maxResults, pageSize))
	lastSeen := ""
	for len(txHashes) < maxResults {
		path := "/address/" + reference + "/txs/chain"
		if lastSeen != "" {
			path += "/" + lastSeen
		}

		var page []txInfo
		if err := s.get(ctx, path, &page); err != nil {
			return nil, errors.Wrapf(err, "can't get transactions of %s", reference)
		}
		for _, tx := range page {
			txHash, err := chainhash.NewHashFromStr(tx.TxID)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid txid %q", tx.TxID)
			}
			txHashes = append(txHashes, *txHash)
		}
		if len(page) < pageSize {
			break
		}
		lastSeen = page[len(page)-1].TxID
	}
	if len(txHashes) > maxResults {
		txHashes = txHashes[:maxResults]
	}

	// pages are newest first
	slices.Reverse(txHashes)

	logger.DebugContext(ctx, "Fetched address history", slogx.String("address", reference), slogx.Int("transactions", len(txHashes)))
	return txHashes, nil
}

func (s *Source) GetByID(ctx context.Context, txHash chainhash.Hash) (*types.Transaction, error) {
	var tx txInfo
	if err := s.get(ctx, "/tx/"+txHash.String(), &tx); err != nil {
		return nil, errors.Wrapf(err, "can't get transaction %s", txHash)
	}
	if !tx.Status.Confirmed {
		return nil, errors.Wrapf(errs.NotFound, "transaction %s is not confirmed", txHash)
	}
	return parseTxInfo(txHash, &tx)
}

func (s *Source) get(ctx context.Context, path string, out any) error {
	resp, err := s.client.Get(ctx, path, httpclient.RequestOptions{})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := resp.Err(); err != nil {
		return errors.WithStack(err)
	}
	if err := resp.UnmarshalBody(out); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func parseTxInfo(txHash chainhash.Hash, tx *txInfo) (*types.Transaction, error) {
	blockHash, err := chainhash.NewHashFromStr(tx.Status.BlockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid block hash %q", tx.Status.BlockHash)
	}

	txIns := make([]*types.TxIn, 0, len(tx.Vin))
	for _, vin := range tx.Vin {
		txIn := &types.TxIn{
			PreviousOutIndex: vin.Vout,
		}
		if !vin.IsCoinbase {
			prevTxHash, err := chainhash.NewHashFromStr(vin.TxID)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid input txid %q", vin.TxID)
			}
			txIn.PreviousOutTxHash = *prevTxHash
		}
		if vin.PrevOut != nil {
			txIn.Address = vin.PrevOut.ScriptPubKeyAddr
		}
		txIns = append(txIns, txIn)
	}

	txOuts := make([]*types.TxOut, 0, len(tx.Vout))
	for i, vout := range tx.Vout {
		pkScript, err := hex.DecodeString(vout.ScriptPubKey)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid script of output %d", i)
		}
		txOuts = append(txOuts, &types.TxOut{
			Index:    uint32(i),
			PkScript: pkScript,
			Value:    vout.Value,
			Address:  vout.ScriptPubKeyAddr,
		})
	}

	return &types.Transaction{
		TxHash:      txHash,
		BlockHeight: tx.Status.BlockHeight,
		BlockHash:   *blockHash,
		Timestamp:   time.Unix(tx.Status.BlockTime, 0).UTC(),
		TxIn:        txIns,
		TxOut:       txOuts,
	}, nil
}
