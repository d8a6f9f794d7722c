package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
)

func registerScholasticRoutes(api fiber.Router, h *Handler) {
	entity := h.registry.MustEntity(metadata.EntityScholastic)
	g := api.Group("/scholastics")

	g.Get("/lookup", h.lookupScholastic(entity))
	g.Get("/", h.list(entity))
	g.Post("/", h.create(entity))
	g.Get("/:scholastic_code/image", h.scholasticImage(entity))
	g.Get("/:scholastic_code", h.get(entity))
	g.Put("/:scholastic_code", h.update(entity))
	g.Delete("/:scholastic_code", h.remove(entity))
}

// lookupScholastic handles GET /lookup?scholastic_code=.
func (h *Handler) lookupScholastic(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := CheckPermission(getUser(c), entity, "read"); err != nil {
			return err
		}
		code := strings.TrimSpace(c.Query("scholastic_code"))
		if code == "" {
			return MissingFieldsError([]string{"scholastic_code"})
		}
		row, err := h.fetch(c.Context(), entity, map[string]any{"scholastic_code": code})
		if err != nil {
			return err
		}
		return c.JSON(SerializeRow(entity, row))
	}
}

// scholasticImage streams the stored portrait.
func (h *Handler) scholasticImage(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := CheckPermission(getUser(c), entity, "read"); err != nil {
			return err
		}
		locator, err := routeLocator(c, entity)
		if err != nil {
			return err
		}
		row, err := h.fetch(c.Context(), entity, locator)
		if err != nil {
			return err
		}

		path := ""
		if !isEmpty(row[entity.Attachment.PathField]) {
			path = stringValue(row[entity.Attachment.PathField])
		}
		if path == "" || h.attachments == nil {
			return NotFoundError("Image for scholastic", describeKey(locator, entity.Locator()))
		}
		name := stringValue(row[entity.Attachment.NameField])

		reader, err := h.attachments.Open(c.Context(), path)
		if err != nil {
			return fmt.Errorf("open stored file: %w", err)
		}

		c.Type(strings.TrimPrefix(filepath.Ext(name), "."))
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, name))
		return c.SendStream(reader)
	}
}
