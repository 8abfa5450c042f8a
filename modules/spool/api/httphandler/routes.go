package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/spool")

	r.Get("/history/:hash", h.GetHistory)
	r.Get("/chain/:hash/:edition", h.GetChain)
	r.Get("/owner/:hash/:edition", h.GetOwner)
	return nil
}
