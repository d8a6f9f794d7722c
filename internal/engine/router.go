package engine

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the entity and reference endpoints under /api.
// Fixed paths are registered before parameterized ones.
func RegisterRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	api := app.Group("/api", middleware...)

	registerReferenceRoutes(api, h)
	registerApostolateRoutes(api, h)
	registerCuriaRoutes(api, h)
	registerScholasticRoutes(api, h)
}
