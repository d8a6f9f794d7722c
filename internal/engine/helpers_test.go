package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"curia-backend/internal/config"
	"curia-backend/internal/metadata"
	"curia-backend/internal/schema"
	"curia-backend/internal/storage"
	"curia-backend/internal/store"
)

const testMaxUpload = 1024

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type testEnv struct {
	app      *fiber.App
	store    *store.Store
	handler  *Handler
	registry *prometheus.Registry
	files    string
}

// newTestEnv builds the full API over an in-memory SQLite database seeded
// with reference data. Authentication is off unless user is non-nil.
func newTestEnv(t *testing.T, user *metadata.UserContext) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := schema.Migrate(s.ORM); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	seedReferenceData(t, s)

	reg := metadata.NewRegistry()
	reg.Load(metadata.Catalog(metadata.CodePrefixes{}))

	files := t.TempDir()
	att := NewAttachmentManager(storage.NewLocalStorage(files), testMaxUpload, []string{"image/png", "image/jpeg"})
	promReg := prometheus.NewRegistry()
	h, err := NewHandler(s, reg, att, NewMetrics(promReg))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	var mw []fiber.Handler
	if user != nil {
		mw = append(mw, func(c *fiber.Ctx) error {
			c.Locals("user", user)
			return c.Next()
		})
	}
	RegisterRoutes(app, h, mw...)

	return &testEnv{app: app, store: s, handler: h, registry: promReg, files: files}
}

func seedReferenceData(t *testing.T, s *store.Store) {
	t.Helper()
	codes := []schema.ReferenceCode{
		{Type: "apostl", Code: "EDU", Label: "Education"},
		{Type: "apostl", Code: "SOC", Label: "Social Work"},
		{Type: "ctrtyp", Code: "PAR", Label: "Par"},
		{Type: "ctrtyp", Code: "SCHL", Label: "School Centre"},
		{Type: "divtyp", Code: "REG", Label: "Region"},
		{Type: "pcicof", Code: "SEC", Label: "Secretary"},
		{Type: "mandat", Code: "M1", Label: "First mandate"},
		{Type: "destyp", Code: "ADV", Label: "Advisor"},
		{Type: "bldgrp", Code: "OP", Label: "O+"},
		{Type: "nation", Code: "IN", Label: "Indian"},
	}
	must(t, s.ORM.Create(&codes).Error)
	must(t, s.ORM.Create(&[]schema.Province{
		{Code: "INM", Name: "Mumbai", CountryCode: "IN"},
		{Code: "INB", Name: "Bangalore", CountryCode: "IN"},
	}).Error)
	must(t, s.ORM.Create(&schema.Division{Code: "DIV1", Name: "North", ProvinceCode: "INM"}).Error)
	must(t, s.ORM.Create(&schema.Confrere{Code: "CF001", FirstName: "John", LastName: "Bosco", ProvinceCode: "INM"}).Error)
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// response is a decoded API reply.
type response struct {
	status int
	header http.Header
	raw    []byte
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(r.raw, &out); err != nil {
		t.Fatalf("decode object %s: %v", r.raw, err)
	}
	return out
}

func (r response) array(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(r.raw, &out); err != nil {
		t.Fatalf("decode array %s: %v", r.raw, err)
	}
	return out
}

func (r response) errorBody(t *testing.T) AppError {
	t.Helper()
	var out AppError
	if err := json.Unmarshal(r.raw, &out); err != nil {
		t.Fatalf("decode error %s: %v", r.raw, err)
	}
	return out
}

func (e *testEnv) send(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, header: resp.Header, raw: raw}
}

func (e *testEnv) do(t *testing.T, method, path, body string) response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

// multipartRequest builds a form with the given fields and an optional file
// under image_file.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		must(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image_file", filename)
		must(t, err)
		_, err = fw.Write(content)
		must(t, err)
	}
	must(t, w.Close())

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	must(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
