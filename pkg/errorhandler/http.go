package errorhandler

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common"
	"github.com/gaze-network/spool-explorer/common/errs"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gaze-network/spool-explorer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// NewHTTPErrorHandler maps errors returned by the API handlers to responses.
// Messages of internal and upstream failures are not exposed.
func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return respond(ctx, http.StatusBadRequest, e.Message())
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return respond(ctx, e.Code, e.Message)
		}

		switch {
		case errors.Is(err, errs.NotFound):
			return respond(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, errs.InvalidArgument):
			return respond(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.UnsupportedTransaction),
			errors.Is(err, errs.InvalidTransaction),
			errors.Is(err, errs.Truncated):
			return respond(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, errs.Transport):
			logger.WarnContext(ctx.UserContext(), "Transaction source is unavailable",
				slogx.String("event", "api_upstream_error"),
				slogx.Error(err),
			)
			return respond(ctx, http.StatusBadGateway, "Transaction source is unavailable")
		case errors.Is(err, context.DeadlineExceeded):
			return respond(ctx, http.StatusGatewayTimeout, "Request timeout")
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			err,
			slogx.String("event", "api_unhandled_error"),
		)
		return respond(ctx, http.StatusInternalServerError, "Internal Server Error")
	}
}

func respond(ctx *fiber.Ctx, status int, message string) error {
	return errors.WithStack(ctx.Status(status).JSON(common.HttpResponse[any]{
		Error: lo.ToPtr(message),
	}))
}
