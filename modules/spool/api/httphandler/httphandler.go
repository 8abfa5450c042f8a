package httphandler

import (
	"context"

	"github.com/gaze-network/spool-explorer/common"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gaze-network/spool-explorer/pkg/btcutils"
)

// Explorer builds the history tree of a piece.
type Explorer interface {
	History(ctx context.Context, contentHash string) (*spool.Tree, error)
}

type HttpHandler struct {
	explorer Explorer
	network  common.Network
}

func New(network common.Network, explorer Explorer) *HttpHandler {
	return &HttpHandler{
		explorer: explorer,
		network:  network,
	}
}

type HttpResponse[T any] common.HttpResponse[T]

func (h *HttpHandler) isContentHash(hash string) bool {
	_, err := btcutils.ResolveContentAddress(hash, h.network.ChainParams())
	return err == nil
}
