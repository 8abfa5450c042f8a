package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/modules/spool"
	"github.com/gofiber/fiber/v2"
)

type getOwnerRequest struct {
	Hash    string `params:"hash"`
	Edition int    `params:"edition"`
}

func (r getOwnerRequest) Validate(h *HttpHandler) error {
	var errList []error
	if !h.isContentHash(r.Hash) {
		errList = append(errList, errors.Errorf("'hash' %q is not an address or a hash160 on %s", r.Hash, h.network))
	}
	if r.Edition < 0 {
		errList = append(errList, errors.New("'edition' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getOwnerResult struct {
	Edition   int         `json:"edition"`
	Owner     string      `json:"owner"`
	Truncated bool        `json:"truncated"`
	Event     spool.Event `json:"event"`
}

type getOwnerResponse = HttpResponse[getOwnerResult]

func (h *HttpHandler) GetOwner(ctx *fiber.Ctx) (err error) {
	var req getOwnerRequest
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

	event, err := spool.CurrentOwner(tree, req.Edition)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "edition has no owner")
		}
		return errors.Wrap(err, "error during CurrentOwner")
	}

	resp := getOwnerResponse{
		Result: &getOwnerResult{
			Edition:   req.Edition,
			Owner:     event.ToAddress,
			Truncated: tree.Truncated(),
			Event:     event,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
