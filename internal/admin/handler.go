package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"curia-backend/internal/engine"
	"curia-backend/internal/schema"
)

// Handler maintains the reference tables the entity handlers validate
// against: quick codes, provinces, divisions and confreres.
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler, middleware ...fiber.Handler) {
	admin := app.Group("/api/_admin", middleware...)

	mount(admin.Group("/reference-codes"), h.db, referenceCodes)
	mount(admin.Group("/provinces"), h.db, provinces)
	mount(admin.Group("/divisions"), h.db, divisions)
	mount(admin.Group("/confreres"), h.db, confreres)
}

// resource describes one reference table served by the admin API.
type resource[T any] struct {
	label  string
	keys   []string // key columns, in route order
	filter string   // optional ?column= list filter
	keyOf  func(*T) []string
	bind   func(*T, []string)
}

var referenceCodes = resource[schema.ReferenceCode]{
	label:  "Reference code",
	keys:   []string{"quick_code_type", "quick_code"},
	filter: "quick_code_type",
	keyOf:  func(r *schema.ReferenceCode) []string { return []string{r.Type, r.Code} },
	bind:   func(r *schema.ReferenceCode, k []string) { r.Type, r.Code = k[0], k[1] },
}

var provinces = resource[schema.Province]{
	label: "Province",
	keys:  []string{"province_code"},
	keyOf: func(p *schema.Province) []string { return []string{p.Code} },
	bind:  func(p *schema.Province, k []string) { p.Code = k[0] },
}

var divisions = resource[schema.Division]{
	label:  "Division",
	keys:   []string{"division_code"},
	filter: "province_code",
	keyOf:  func(d *schema.Division) []string { return []string{d.Code} },
	bind:   func(d *schema.Division, k []string) { d.Code = k[0] },
}

var confreres = resource[schema.Confrere]{
	label:  "Confrere",
	keys:   []string{"confrer_code"},
	filter: "province_code",
	keyOf:  func(c *schema.Confrere) []string { return []string{c.Code} },
	bind:   func(c *schema.Confrere, k []string) { c.Code = k[0] },
}

func mount[T any](r fiber.Router, db *gorm.DB, res resource[T]) {
	path := ""
	for _, k := range res.keys {
		path += "/:" + k
	}
	r.Get("/", res.list(db))
	r.Post("/", res.create(db))
	r.Get(path, res.get(db))
	r.Put(path, res.update(db))
	r.Delete(path, res.remove(db))
}

func (res resource[T]) list(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items := []T{}
		q := db.WithContext(c.Context())
		if res.filter != "" {
			if v := strings.TrimSpace(c.Query(res.filter)); v != "" {
				q = q.Where(res.filter+" = ?", v)
			}
		}
		if err := q.Order(strings.Join(res.keys, ", ")).Find(&items).Error; err != nil {
			return fmt.Errorf("list %s: %w", res.label, err)
		}
		return c.JSON(items)
	}
}

func (res resource[T]) get(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := res.routeKey(c)
		item, err := res.find(c, db, key)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

func (res resource[T]) create(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item T
		if err := c.BodyParser(&item); err != nil {
			return engine.MalformedInputError("", "Invalid JSON body")
		}
		key := res.keyOf(&item)
		var missing []string
		for i, k := range key {
			if strings.TrimSpace(k) == "" {
				missing = append(missing, res.keys[i])
			}
		}
		if len(missing) > 0 {
			return engine.MissingFieldsError(missing)
		}

		if _, err := res.find(c, db, key); err == nil {
			return engine.ConflictError(fmt.Sprintf("%s %s already exists", res.label, strings.Join(key, "/")))
		} else if !isNotFound(err) {
			return err
		}

		if err := db.WithContext(c.Context()).Create(&item).Error; err != nil {
			return fmt.Errorf("create %s: %w", res.label, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

func (res resource[T]) update(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := res.routeKey(c)
		if _, err := res.find(c, db, key); err != nil {
			return err
		}

		var item T
		if err := c.BodyParser(&item); err != nil {
			return engine.MalformedInputError("", "Invalid JSON body")
		}
		res.bind(&item, key)
		if err := db.WithContext(c.Context()).Save(&item).Error; err != nil {
			return fmt.Errorf("update %s: %w", res.label, err)
		}
		return c.JSON(item)
	}
}

func (res resource[T]) remove(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := res.routeKey(c)
		result := db.WithContext(c.Context()).Where(res.match(key)).Delete(new(T))
		if result.Error != nil {
			return fmt.Errorf("delete %s: %w", res.label, result.Error)
		}
		if result.RowsAffected == 0 {
			return engine.NotFoundError(res.label, strings.Join(key, "/"))
		}
		return c.JSON(fiber.Map{
			"message": res.label + " deleted successfully.",
			"data":    fiber.Map{"deleted": result.RowsAffected},
		})
	}
}

func (res resource[T]) find(c *fiber.Ctx, db *gorm.DB, key []string) (*T, error) {
	var item T
	err := db.WithContext(c.Context()).Where(res.match(key)).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.NotFoundError(res.label, strings.Join(key, "/"))
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", res.label, err)
	}
	return &item, nil
}

func (res resource[T]) routeKey(c *fiber.Ctx) []string {
	key := make([]string, len(res.keys))
	for i, k := range res.keys {
		key[i] = strings.TrimSpace(c.Params(k))
	}
	return key
}

func (res resource[T]) match(key []string) map[string]any {
	m := make(map[string]any, len(key))
	for i, k := range res.keys {
		m[k] = key[i]
	}
	return m
}

func isNotFound(err error) bool {
	var appErr *engine.AppError
	return errors.As(err, &appErr) && appErr.Code == "NOT_FOUND"
}
