package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/metadata"
	"curia-backend/internal/store"
)

// HeaderTruncatedFields lists the fields whose values were cut to fit.
const HeaderTruncatedFields = "X-Truncated-Fields"

// Handler serves the entity CRUD endpoints. Each entity gets its own routes
// (see router.go) but shares the write pipeline below.
type Handler struct {
	store       *store.Store
	records     *RecordStore
	registry    *metadata.Registry
	resolver    *Resolver
	validator   *Validator
	codes       *CodeGenerator
	mapper      *Mapper
	attachments *AttachmentManager
	metrics     *Metrics
}

// NewHandler wires the pipeline components. Entity rules are compiled here so
// request handling only reads them.
func NewHandler(s *store.Store, reg *metadata.Registry, att *AttachmentManager, m *Metrics) (*Handler, error) {
	if err := CompileRules(reg.AllEntities()); err != nil {
		return nil, err
	}
	resolver := NewResolver(s.ORM)
	return &Handler{
		store:       s,
		records:     NewRecordStore(s),
		registry:    reg,
		resolver:    resolver,
		validator:   NewValidator(resolver, m),
		codes:       NewCodeGenerator(s, m),
		mapper:      NewMapper(),
		attachments: att,
		metrics:     m,
	}, nil
}

// Codes exposes the generator for startup and seed-time syncing.
func (h *Handler) Codes() *CodeGenerator {
	return h.codes
}

// list handles GET on an entity collection.
func (h *Handler) list(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := h.listRows(c, entity)
		if err != nil {
			return err
		}
		return c.JSON(SerializeRows(entity, rows))
	}
}

func (h *Handler) listRows(c *fiber.Ctx, entity *metadata.Entity) ([]map[string]any, error) {
	if err := CheckPermission(getUser(c), entity, "read"); err != nil {
		return nil, err
	}
	plan, err := ParseQueryParams(c, entity)
	if err != nil {
		return nil, err
	}
	return h.records.List(c.Context(), plan)
}

// get handles GET on a single row addressed by the entity's route key.
func (h *Handler) get(entity *metadata.Entity) fiber.Handler {
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
		return c.JSON(SerializeRow(entity, row))
	}
}

// create handles POST: validate, generate the code, map, check rules, then
// store the upload and insert. A failed insert removes the stored file.
func (h *Handler) create(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		user := getUser(c)
		if err := CheckPermission(user, entity, "create"); err != nil {
			return err
		}

		payload, fh, err := readPayload(c, entity)
		if err != nil {
			return err
		}
		upload, err := h.inspect(fh)
		if err != nil {
			return err
		}

		if appErr := CheckRequired(entity, payload); appErr != nil {
			return appErr
		}
		labels, err := h.validator.ResolveReferences(ctx, entity, payload)
		if err != nil {
			return err
		}

		if entity.Code != nil {
			delete(payload, entity.Code.Field)
		}
		mapped, err := h.mapper.ToRow(entity, payload, nil, labels, user)
		if err != nil {
			return writeError(entity, "", err)
		}
		if details := EvaluateRules(entity, mapped.Values, h.mapper.now()); len(details) > 0 {
			return ValidationError(details)
		}

		row := mapped.Values
		if entity.Code != nil {
			code, err := h.codes.Next(ctx, entity)
			if err != nil {
				return fmt.Errorf("generate %s: %w", entity.Code.Field, err)
			}
			row[entity.Code.Field] = code
		}
		key := keyOf(row, entity.Key)

		stored, err := h.storeUpload(ctx, entity, upload, row)
		if err != nil {
			return err
		}
		if err := h.records.Insert(ctx, entity, row); err != nil {
			if stored != nil {
				h.attachments.Remove(ctx, stored.Path)
			}
			return writeError(entity, describeKey(key, entity.Key), err)
		}
		h.metrics.recordWrite(entity.Name, "create", 1)

		created, err := h.records.Fetch(ctx, entity, key)
		if err != nil {
			return fmt.Errorf("reload %s: %w", entity.Name, err)
		}
		setTruncated(c, mapped.Truncated)
		return c.Status(fiber.StatusCreated).JSON(SerializeRow(entity, created))
	}
}

// update handles PUT on a single row. Absent or empty payload fields keep
// their stored values; the write is guarded by the stored concurrency token.
func (h *Handler) update(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		user := getUser(c)
		if err := CheckPermission(user, entity, "update"); err != nil {
			return err
		}
		locator, err := routeLocator(c, entity)
		if err != nil {
			return err
		}
		existing, err := h.fetch(ctx, entity, locator)
		if err != nil {
			return err
		}
		label := describeKey(locator, entity.Locator())

		payload, fh, err := readPayload(c, entity)
		if err != nil {
			return err
		}
		upload, err := h.inspect(fh)
		if err != nil {
			return err
		}

		if err := checkToken(entity, label, payload, existing); err != nil {
			return err
		}

		// Route values win over the body and refresh any labels they carry.
		for k, v := range locator {
			payload[k] = v
		}
		labels, err := h.validator.ResolveReferences(ctx, entity, payload)
		if err != nil {
			return err
		}
		mapped, err := h.mapper.ToRow(entity, payload, existing, labels, user)
		if err != nil {
			return writeError(entity, label, err)
		}
		if details := EvaluateRules(entity, mapped.Values, h.mapper.now()); len(details) > 0 {
			return ValidationError(details)
		}

		row := mapped.Values
		stored, err := h.storeUpload(ctx, entity, upload, row)
		if err != nil {
			return err
		}
		err = h.records.Update(ctx, entity, keyOf(existing, entity.Key), row, existing[metadata.FieldConcurrency])
		if err != nil {
			if stored != nil {
				h.attachments.Remove(ctx, stored.Path)
			}
			return writeError(entity, label, err)
		}
		h.metrics.recordWrite(entity.Name, "update", 1)

		if stored != nil {
			if old := stringValue(existing[entity.Attachment.PathField]); old != "" && old != stored.Path {
				h.attachments.Remove(ctx, old)
			}
		}

		updated, err := h.records.Fetch(ctx, entity, keyOf(row, entity.Key))
		if err != nil {
			return fmt.Errorf("reload %s: %w", entity.Name, err)
		}
		setTruncated(c, mapped.Truncated)
		return c.JSON(SerializeRow(entity, updated))
	}
}

// remove handles DELETE on a single row and its stored attachment.
func (h *Handler) remove(entity *metadata.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		if err := CheckPermission(getUser(c), entity, "delete"); err != nil {
			return err
		}
		locator, err := routeLocator(c, entity)
		if err != nil {
			return err
		}
		existing, err := h.fetch(ctx, entity, locator)
		if err != nil {
			return err
		}

		n, err := h.records.Delete(ctx, entity, keyOf(existing, entity.Key))
		if err != nil {
			return err
		}
		h.metrics.recordWrite(entity.Name, "delete", n)
		if entity.Attachment != nil {
			h.attachments.Remove(ctx, stringValue(existing[entity.Attachment.PathField]))
		}

		return c.JSON(fiber.Map{
			"message": entity.Label + " deleted successfully.",
			"data":    SerializeRow(entity, existing),
		})
	}
}

// fetch loads one row or returns a NOT_FOUND error naming it.
func (h *Handler) fetch(ctx context.Context, entity *metadata.Entity, match map[string]any) (map[string]any, error) {
	row, err := h.records.Fetch(ctx, entity, match)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError(entity.Label, describeKey(match, entity.Locator()))
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", entity.Name, err)
	}
	return row, nil
}

func (h *Handler) inspect(fh *multipart.FileHeader) (*Upload, error) {
	if fh == nil || h.attachments == nil {
		return nil, nil
	}
	return h.attachments.Inspect(fh)
}

// storeUpload saves an inspected upload and records it on row.
func (h *Handler) storeUpload(ctx context.Context, entity *metadata.Entity, u *Upload, row map[string]any) (*StoredFile, error) {
	if u == nil || entity.Attachment == nil {
		return nil, nil
	}
	stored, err := h.attachments.Store(ctx, entity, u)
	if err != nil {
		return nil, err
	}
	row[entity.Attachment.NameField] = stored.Name
	row[entity.Attachment.PathField] = stored.Path
	return stored, nil
}

// routeLocator reads the entity's route key from path parameters.
func routeLocator(c *fiber.Ctx, entity *metadata.Entity) (map[string]any, error) {
	locator := make(map[string]any, len(entity.Locator()))
	var missing []string
	for _, name := range entity.Locator() {
		v := strings.TrimSpace(c.Params(name))
		if v == "" {
			missing = append(missing, name)
			continue
		}
		locator[name] = v
	}
	if len(missing) > 0 {
		return nil, MissingFieldsError(missing)
	}
	return locator, nil
}

// checkToken rejects an update whose client token no longer matches the row.
// A payload without a token is accepted; the write itself stays guarded.
func checkToken(entity *metadata.Entity, label string, payload, existing map[string]any) error {
	raw := payload[metadata.FieldConcurrency]
	if isEmpty(raw) {
		return nil
	}
	sent, err := coerceInt(raw)
	if err != nil {
		return MalformedInputError(metadata.FieldConcurrency, "concurrency_val must be an integer")
	}
	stored, err := coerceInt(existing[metadata.FieldConcurrency])
	if err != nil || sent != stored {
		return StaleRecordError(entity.Label, label)
	}
	return nil
}

// readPayload decodes a JSON body (numbers kept exact) or a multipart form.
// For multipart requests the entity's attachment part is returned separately.
func readPayload(c *fiber.Ctx, entity *metadata.Entity) (map[string]any, *multipart.FileHeader, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, MalformedInputError("", "Invalid multipart form")
		}
		payload := make(map[string]any, len(form.Value))
		for k, vs := range form.Value {
			if len(vs) > 0 {
				payload[k] = vs[0]
			}
		}
		var fh *multipart.FileHeader
		if entity.Attachment != nil {
			if files := form.File[entity.Attachment.FormField]; len(files) > 0 {
				fh = files[0]
			}
		}
		return NormalizePayload(payload), fh, nil
	}

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return map[string]any{}, nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, nil, MalformedInputError("", "Invalid JSON body")
	}
	return NormalizePayload(payload), nil, nil
}

// writeError translates mapper and store errors into client errors.
func writeError(entity *metadata.Entity, key string, err error) error {
	var coerce *CoercionError
	switch {
	case errors.As(err, &coerce):
		return MalformedInputError(coerce.Field, coerce.Error())
	case errors.Is(err, store.ErrUniqueViolation):
		return ConflictError(fmt.Sprintf("%s %s already exists", entity.Label, key))
	case errors.Is(err, ErrStaleRecord):
		return StaleRecordError(entity.Label, key)
	}
	return err
}

func setTruncated(c *fiber.Ctx, fields []string) {
	if len(fields) > 0 {
		c.Set(HeaderTruncatedFields, strings.Join(fields, ","))
	}
}
