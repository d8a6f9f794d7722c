package engine

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func registerReferenceRoutes(api fiber.Router, h *Handler) {
	api.Get("/reference/:category", func(c *fiber.Ctx) error {
		return h.referenceList(strings.TrimSpace(c.Params("category")))(c)
	})
}

// referenceList returns every code of one reference category. An unknown
// category is an empty list.
func (h *Handler) referenceList(category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := h.resolver.List(c.Context(), category)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}
