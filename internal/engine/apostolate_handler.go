package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
	"curia-backend/internal/schema"
	"curia-backend/internal/store"
)

func registerApostolateRoutes(api fiber.Router, h *Handler) {
	entity := h.registry.MustEntity(metadata.EntityApostolate)
	g := api.Group("/apostolates")

	g.Get("/names", h.referenceList(schema.CategoryApostolate))
	g.Get("/centre-types", h.referenceList(schema.CategoryCentreType))
	g.Get("/", h.listApostolates(entity))
	g.Post("/", h.create(entity))
	g.Delete("/", h.deleteApostolates(entity))
	g.Patch("/:apostolate_code/centre-type", h.moveCentreType(entity))
	g.Get("/:apostolate_code/:centre_type_code", h.get(entity))
	g.Put("/:apostolate_code/:centre_type_code", h.update(entity))
}

// listApostolates lists rows with their labels refreshed from the reference
// table. A code that no longer resolves keeps its stored label.
func (h *Handler) listApostolates(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := h.listRows(c, entity)
		if err != nil {
			return err
		}

		for _, f := range entity.LookupFields() {
			if f.Lookup.Category == "" || f.Lookup.Label == "" {
				continue
			}
			codes := distinctStrings(rows, f.Name)
			current, err := h.resolver.Labels(c.Context(), f.Lookup.Category, codes)
			if err != nil {
				return err
			}
			labelField := entity.GetField(f.Lookup.Label)
			for _, row := range rows {
				label, ok := current[stringValue(row[f.Name])]
				if !ok {
					continue
				}
				if labelField != nil && labelField.MaxLength > 0 && utf8.RuneCountInString(label) > labelField.MaxLength {
					label = truncateRunes(label, labelField.MaxLength)
				}
				row[f.Lookup.Label] = label
			}
		}
		return c.JSON(SerializeRows(entity, rows))
	}
}

// deleteApostolates removes every row matching the key parts given in the
// query string or JSON body. Matching nothing is still a success.
func (h *Handler) deleteApostolates(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := CheckPermission(getUser(c), entity, "delete"); err != nil {
			return err
		}

		var body map[string]any
		if raw := bytes.TrimSpace(c.Body()); len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				return MalformedInputError("", "Invalid JSON body")
			}
			body = NormalizePayload(body)
		}

		match := make(map[string]any)
		for _, name := range entity.Key {
			v := strings.TrimSpace(c.Query(name))
			if v == "" && !isEmpty(body[name]) {
				v = stringValue(body[name])
			}
			if v != "" {
				match[name] = v
			}
		}
		if len(match) == 0 {
			return &AppError{
				Code:    "MISSING_FIELDS",
				Status:  http.StatusBadRequest,
				Message: "Please provide either apostolate_code or centre_type_code or both.",
			}
		}

		n, err := h.records.Delete(c.Context(), entity, match)
		if err != nil {
			return err
		}
		h.metrics.recordWrite(entity.Name, "delete", n)

		return c.JSON(fiber.Map{
			"message": "Apostolate deleted successfully.",
			"data":    fiber.Map{"deleted": n},
		})
	}
}

// moveCentreType moves every row of one apostolate to a new centre type.
func (h *Handler) moveCentreType(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		user := getUser(c)
		if err := CheckPermission(user, entity, "update"); err != nil {
			return err
		}
		code := strings.TrimSpace(c.Params("apostolate_code"))

		payload, _, err := readPayload(c, entity)
		if err != nil {
			return err
		}
		target := stringValue(payload["new_centre_type_code"])
		if isEmpty(payload["new_centre_type_code"]) {
			return MissingFieldsError([]string{"new_centre_type_code"})
		}

		label, err := h.resolver.Resolve(ctx, schema.CategoryCentreType, target)
		if errors.Is(err, ErrReferenceNotFound) {
			h.metrics.referenceMiss(schema.CategoryCentreType)
			return ReferenceError(http.StatusNotFound, []ErrorDetail{{
				Field:    "new_centre_type_code",
				Value:    target,
				Category: schema.CategoryCentreType,
				Message:  fmt.Sprintf("Centre type code %s not found", target),
			}})
		}
		if err != nil {
			return err
		}

		_, err = h.records.Fetch(ctx, entity, map[string]any{"apostolate_code": code, "centre_type_code": target})
		if err == nil {
			return ConflictError(fmt.Sprintf(
				"Apostolate code %s and centre type code %s combination already exists", code, target))
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check %s: %w", entity.Name, err)
		}

		fields := map[string]any{
			"centre_type_code":        target,
			"centre_type_name":        truncateRunes(label, entity.GetField("centre_type_name").MaxLength),
			metadata.FieldUpdatedDate: h.mapper.now().UTC(),
		}
		if by := operator(user); by != "" {
			fields[metadata.FieldUpdatedBy] = by
		}

		n, err := h.records.UpdateWhere(ctx, entity, map[string]any{"apostolate_code": code}, fields)
		if err != nil {
			return writeError(entity, fmt.Sprintf("(%s, %s)", code, target), err)
		}
		if n == 0 {
			return NotFoundError("Apostolate code", code)
		}
		h.metrics.recordWrite(entity.Name, "update", n)

		return c.JSON(fiber.Map{
			"message": "Centre type updated successfully",
			"data":    fiber.Map{"updated": n},
		})
	}
}

func distinctStrings(rows []map[string]any, field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		s := stringValue(row[field])
		if row[field] == nil || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
