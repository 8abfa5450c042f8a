package requestcontext

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gaze-network/spool-explorer/common"
	"github.com/gaze-network/spool-explorer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

// New builds the request's user context from opts.
func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err != nil {
				logger.ErrorContext(ctx, "failed to extract request context",
					err,
					slog.String("event", "requestcontext/error"),
					slog.String("module", "requestcontext"),
					slog.Int("optionIndex", i),
				)
				return c.Status(http.StatusInternalServerError).JSON(common.HttpResponse[any]{
					Error: lo.ToPtr("Internal Server Error"),
				})
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
