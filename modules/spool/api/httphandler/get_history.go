package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gofiber/fiber/v2"
)

type getHistoryRequest struct {
	Hash string `params:"hash"`
}

func (r getHistoryRequest) Validate(h *HttpHandler) error {
	var errList []error
	if r.Hash == "" {
		errList = append(errList, errors.New("'hash' is required"))
	} else if !h.isContentHash(r.Hash) {
		errList = append(errList, errors.Errorf("'hash' %q is not an address or a hash160 on %s", r.Hash, h.network))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getHistoryResponse = HttpResponse[spool.Tree]

func (h *HttpHandler) GetHistory(ctx *fiber.Ctx) (err error) {
	var req getHistoryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	if err := req.Validate(h); err != nil {
		return errors.WithStack(err)
	}

	tree, err := h.explorer.History(ctx.UserContext(), req.Hash)
	if err != nil {
		return errors.Wrap(err, "error during History")
	}

	resp := getHistoryResponse{
		Result: tree,
	}
	return errors.WithStack(ctx.JSON(resp))
}
