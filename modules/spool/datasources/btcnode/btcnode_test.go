package btcnode

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNet = &chaincfg.MainNetParams

func testAddress(name string) btcutil.Address {
	return utils.Must(btcutils.ContentAddress([]byte(name), testNet))
}

type nodeTx struct {
	msgTx         *wire.MsgTx
	blockHash     chainhash.Hash
	height        int32
	blockTime     time.Time
	confirmations int64
}

// testNode answers the JSON-RPC methods the source calls, the way btcd does with --addrindex.
type testNode struct {
	mu        sync.Mutex
	txs       map[string]nodeTx
	histories map[string][]btcjson.SearchRawTransactionsResult
	searches  atomic.Int32
}

func newTestNode() *testNode {
	return &testNode{
		txs:       make(map[string]nodeTx),
		histories: make(map[string][]btcjson.SearchRawTransactionsResult),
	}
}

func (n *testNode) addTx(msgTx *wire.MsgTx, height int32, confirmations int64) chainhash.Hash {
	n.mu.Lock()
	defer n.mu.Unlock()
	txHash := msgTx.TxHash()
	n.txs[txHash.String()] = nodeTx{
		msgTx:         msgTx,
		blockHash:     chainhash.DoubleHashH([]byte(fmt.Sprintf("block %d", height))),
		height:        height,
		blockTime:     time.Unix(1445444943+int64(height)*600, 0),
		confirmations: confirmations,
	}
	return txHash
}

func (n *testNode) addHistory(address btcutil.Address, txid string, confirmations uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := address.EncodeAddress()
	n.histories[key] = append(n.histories[key], btcjson.SearchRawTransactionsResult{
		Txid:          txid,
		Confirmations: confirmations,
	})
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

func (n *testNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, rpcErr := n.handle(req)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result": result,
		"error":  rpcErr,
		"id":     req.ID,
	})
}

func (n *testNode) handle(req rpcRequest) (any, *btcjson.RPCError) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var param string
	if len(req.Params) > 0 {
		_ = json.Unmarshal(req.Params[0], &param)
	}

	switch req.Method {
	case "searchrawtransactions":
		n.searches.Add(1)
		var skip, count int
		_ = json.Unmarshal(req.Params[2], &skip)
		_ = json.Unmarshal(req.Params[3], &count)
		history, ok := n.histories[param]
		if !ok || skip >= len(history) {
			return nil, btcjson.NewRPCError(btcjson.ErrRPCNoTxInfo, "No information available about address")
		}
		return history[skip:min(skip+count, len(history))], nil
	case "getrawtransaction":
		tx, ok := n.txs[param]
		if !ok {
			return nil, btcjson.NewRPCError(btcjson.ErrRPCNoTxInfo, "No information available about transaction")
		}
		var buf bytes.Buffer
		_ = tx.msgTx.Serialize(&buf)
		rawHex := hex.EncodeToString(buf.Bytes())
		if !isVerbose(req.Params) {
			return rawHex, nil
		}
		result := btcjson.TxRawResult{
			Hex:           rawHex,
			Txid:          param,
			Confirmations: uint64(tx.confirmations),
		}
		if tx.confirmations > 0 {
			result.BlockHash = tx.blockHash.String()
			result.Blocktime = tx.blockTime.Unix()
			result.Time = tx.blockTime.Unix()
		}
		return result, nil
	case "getblockheader":
		for _, tx := range n.txs {
			if tx.blockHash.String() == param {
				return btcjson.GetBlockHeaderVerboseResult{
					Hash:   param,
					Height: tx.height,
					Time:   tx.blockTime.Unix(),
				}, nil
			}
		}
		return nil, btcjson.NewRPCError(btcjson.ErrRPCBlockNotFound, "Block not found")
	}
	return nil, btcjson.NewRPCError(-32601, "Method not found")
}

// isVerbose reads the verbose flag of getrawtransaction, sent either as 0/1 or as a boolean.
func isVerbose(params []json.RawMessage) bool {
	if len(params) < 2 {
		return false
	}
	var verbose any
	_ = json.Unmarshal(params[1], &verbose)
	switch v := verbose.(type) {
	case float64:
		return v != 0
	case bool:
		return v
	}
	return false
}

func newTestSource(t *testing.T, handler http.Handler) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         server.Listener.Addr().String(),
		User:         "user",
		Pass:         "pass",
		DisableTLS:   true,
		HTTPPostMode: true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Shutdown)

	return New(client, testNet)
}

// payTx creates a transaction paying each address, spending the given outpoints.
func payTx(prevOuts []wire.OutPoint, payload string, addresses ...btcutil.Address) *wire.MsgTx {
	msgTx := wire.NewMsgTx(wire.TxVersion)
	for _, prevOut := range prevOuts {
		msgTx.AddTxIn(wire.NewTxIn(&prevOut, nil, nil))
	}
	if payload != "" {
		script := utils.Must(txscript.NullDataScript([]byte(payload)))
		msgTx.AddTxOut(wire.NewTxOut(0, script))
	}
	for _, address := range addresses {
		msgTx.AddTxOut(wire.NewTxOut(600, utils.Must(txscript.PayToAddrScript(address))))
	}
	return msgTx
}

func TestMapRPCError(t *testing.T) {
	type testSpec struct {
		name          string
		err           error
		expectedKind  error
		unexpectedErr []error
	}

	testSpecs := []testSpec{
		{
			name:          "no information",
			err:           btcjson.NewRPCError(btcjson.ErrRPCNoTxInfo, "No information available about transaction"),
			expectedKind:  errs.NotFound,
			unexpectedErr: []error{errs.Transport},
		},
		{
			name:          "rpc error",
			err:           btcjson.NewRPCError(btcjson.ErrRPCInvalidParameter, "Invalid parameter"),
			unexpectedErr: []error{errs.Transport, errs.NotFound},
		},
		{
			name:          "connection failure",
			err:           errors.New("dial tcp 127.0.0.1:8332: connect: connection refused"),
			expectedKind:  errs.Transport,
			unexpectedErr: []error{errs.NotFound},
		},
	}

	for _, spec := range testSpecs {
		t.Run(spec.name, func(t *testing.T) {
			err := mapRPCError(spec.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, spec.err)
			if spec.expectedKind != nil {
				assert.ErrorIs(t, err, spec.expectedKind)
			}
			for _, kind := range spec.unexpectedErr {
				assert.NotErrorIs(t, err, kind)
			}
		})
	}
}

func TestGetByReference(t *testing.T) {
	piece := testAddress("piece")
	ctx := context.Background()

	t.Run("skip unconfirmed and stop at max results", func(t *testing.T) {
		node := newTestNode()
		for i := 0; i < 6; i++ {
			var confirmations uint64 = 1
			if i == 1 {
				confirmations = 0
			}
			node.addHistory(piece, chainhash.DoubleHashH([]byte{byte(i)}).String(), confirmations)
		}
		source := newTestSource(t, node)

		txHashes, err := source.GetByReference(ctx, piece.EncodeAddress(), 3)
		require.NoError(t, err)
		assert.Equal(t, []chainhash.Hash{
			chainhash.DoubleHashH([]byte{0}),
			chainhash.DoubleHashH([]byte{2}),
			chainhash.DoubleHashH([]byte{3}),
		}, txHashes)
		assert.EqualValues(t, 1, node.searches.Load())
	})
	t.Run("page through the history", func(t *testing.T) {
		node := newTestNode()
		for i := 0; i < searchPageSize+searchPageSize/2; i++ {
			node.addHistory(piece, chainhash.DoubleHashH([]byte(fmt.Sprint(i))).String(), 1)
		}
		source := newTestSource(t, node)

		txHashes, err := source.GetByReference(ctx, piece.EncodeAddress(), 1000)
		require.NoError(t, err)
		assert.Len(t, txHashes, searchPageSize+searchPageSize/2)
		assert.Equal(t, chainhash.DoubleHashH([]byte(fmt.Sprint(searchPageSize))), txHashes[searchPageSize])
		assert.EqualValues(t, 2, node.searches.Load())
	})
	t.Run("address without history", func(t *testing.T) {
		source := newTestSource(t, newTestNode())

		txHashes, err := source.GetByReference(ctx, piece.EncodeAddress(), 10)
		require.NoError(t, err)
		assert.Empty(t, txHashes)
	})
	t.Run("invalid address", func(t *testing.T) {
		source := newTestSource(t, newTestNode())

		_, err := source.GetByReference(ctx, "not-an-address", 10)
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
	t.Run("invalid max results", func(t *testing.T) {
		source := newTestSource(t, newTestNode())

		_, err := source.GetByReference(ctx, piece.EncodeAddress(), 0)
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
	t.Run("gateway failure", func(t *testing.T) {
		source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))

		_, err := source.GetByReference(ctx, piece.EncodeAddress(), 10)
		assert.ErrorIs(t, err, errs.Transport)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	alice, bob, piece := testAddress("alice"), testAddress("bob"), testAddress("piece")

	node := newTestNode()
	fundAlice := node.addTx(payTx(nil, "", alice, bob), 379990, 20)
	fundAliceAgain := node.addTx(payTx(nil, "", bob, alice), 379991, 19)

	transfer := payTx([]wire.OutPoint{
		{Hash: fundAlice, Index: 0},
		{Hash: fundAliceAgain, Index: 1},
	}, "ASCRIBESPOOL01TRANSFER1", piece, bob)
	transferHash := node.addTx(transfer, 380000, 10)

	pending := node.addTx(payTx([]wire.OutPoint{{Hash: fundAlice, Index: 1}}, "ASCRIBESPOOL01TRANSFER1", piece, alice), 0, 0)
	broken := node.addTx(payTx([]wire.OutPoint{{Hash: fundAlice, Index: 5}}, "ASCRIBESPOOL01TRANSFER1", piece, bob), 380001, 9)

	source := newTestSource(t, node)

	t.Run("fill input addresses", func(t *testing.T) {
		tx, err := source.GetByID(ctx, transferHash)
		require.NoError(t, err)

		assert.Equal(t, transferHash, tx.TxHash)
		assert.EqualValues(t, 380000, tx.BlockHeight)
		assert.Equal(t, node.txs[transferHash.String()].blockHash, tx.BlockHash)
		assert.Equal(t, time.Unix(1445444943+380000*600, 0).UTC(), tx.Timestamp)

		require.Len(t, tx.TxIn, 2)
		assert.Equal(t, alice.EncodeAddress(), tx.TxIn[0].Address)
		assert.Equal(t, alice.EncodeAddress(), tx.TxIn[1].Address)

		require.Len(t, tx.TxOut, 3)
		assert.Empty(t, tx.TxOut[0].Address, "data output")
		assert.Equal(t, piece.EncodeAddress(), tx.TxOut[1].Address)
		assert.Equal(t, bob.EncodeAddress(), tx.TxOut[2].Address)
	})
	t.Run("unconfirmed transaction", func(t *testing.T) {
		_, err := source.GetByID(ctx, pending)
		assert.ErrorIs(t, err, errs.NotFound)
	})
	t.Run("unknown transaction", func(t *testing.T) {
		_, err := source.GetByID(ctx, chainhash.DoubleHashH([]byte("unknown")))
		assert.ErrorIs(t, err, errs.NotFound)
		assert.NotErrorIs(t, err, errs.Transport)
	})
	t.Run("spend of a missing output", func(t *testing.T) {
		_, err := source.GetByID(ctx, broken)
		assert.ErrorIs(t, err, errs.InvalidTransaction)
	})
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := source.GetByID(ctx, transferHash)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
