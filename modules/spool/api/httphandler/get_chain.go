package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gofiber/fiber/v2"
)

type getChainRequest struct {
	Hash      string `params:"hash"`
	Edition   int    `params:"edition"`
	StripLoan bool   `query:"strip_loan"`
}

func (r getChainRequest) Validate(h *HttpHandler) error {
	var errList []error
	if !h.isContentHash(r.Hash) {
		errList = append(errList, errors.Errorf("'hash' %q is not an address or a hash160 on %s", r.Hash, h.network))
	}
	if r.Edition < 0 {
		errList = append(errList, errors.New("'edition' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getChainResult struct {
	Edition     int           `json:"edition"`
	NumEditions int           `json:"numberEditions"`
	Truncated   bool          `json:"truncated"`
	Events      []spool.Event `json:"events"`
}

type getChainResponse = HttpResponse[getChainResult]

func (h *HttpHandler) GetChain(ctx *fiber.Ctx) (err error) {
	var req getChainRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	if err := req.Validate(h); err != nil {
		return errors.WithStack(err)
	}

	tree, err := h.explorer.History(ctx.UserContext(), req.Hash)
	if err != nil {
		return errors.Wrap(err, "error during History")
	}

	chain := spool.Chain(tree, req.Edition)
	if req.StripLoan {
		chain = spool.StripLoan(chain)
	}

	resp := getChainResponse{
		Result: &getChainResult{
			Edition:     req.Edition,
			NumEditions: tree.NumEditions(),
			Truncated:   tree.Truncated(),
			Events:      chain,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
