package engine

import (
	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
)

func registerCuriaRoutes(api fiber.Router, h *Handler) {
	entity := h.registry.MustEntity(metadata.EntityCuriaAdvisor)
	g := api.Group("/curia-advisors")

	g.Get("/", h.list(entity))
	g.Post("/", h.create(entity))
	g.Get("/:curia_code", h.get(entity))
	g.Put("/:curia_code", h.update(entity))
	g.Delete("/:curia_code", h.remove(entity))
}
