package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"curia-backend/internal/admin"
	"curia-backend/internal/auth"
	"curia-backend/internal/engine"
	"curia-backend/internal/metadata"
	"curia-backend/internal/storage"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context())
		},
	}
}

func serveRun(ctx context.Context) error {
	log.Printf("Config loaded (port: %d, db: %s/%s, storage: %s)",
		cfg.Server.Port, cfg.Database.Driver, cfg.Database.Name, cfg.Storage.Driver)

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := metadata.NewRegistry()
	reg.Load(metadata.Catalog(metadata.CodePrefixes{
		Curia:      cfg.Codes.CuriaPrefix,
		Scholastic: cfg.Codes.ScholasticPrefix,
	}))

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init file storage: %w", err)
	}
	attachments := engine.NewAttachmentManager(files, cfg.Storage.MaxFileSize, cfg.Storage.AllowedTypes)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engineHandler, err := engine.NewHandler(db, reg, attachments, engine.NewMetrics(promReg))
	if err != nil {
		return fmt.Errorf("init handlers: %w", err)
	}
	for _, e := range reg.AllEntities() {
		if e.Code == nil {
			continue
		}
		if err := engineHandler.Codes().Sync(ctx, e); err != nil {
			return fmt.Errorf("sync %s codes: %w", e.Name, err)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: engine.ErrorHandler,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}

	// Auth routes stay outside the protected /api group.
	authHandler := auth.NewAuthHandler(db, cfg.Auth.JWTSecret)
	auth.RegisterAuthRoutes(app, authHandler)

	var apiMW, adminMW []fiber.Handler
	if cfg.Auth.Enabled {
		authMW := auth.AuthMiddleware(cfg.Auth.JWTSecret)
		apiMW = []fiber.Handler{authMW}
		adminMW = []fiber.Handler{authMW, auth.RequireAdmin()}
	} else {
		log.Println("WARN: authentication disabled; every request is treated as an administrator")
	}

	admin.RegisterAdminRoutes(app, admin.NewHandler(db.ORM), adminMW...)
	engine.RegisterRoutes(app, engineHandler, apiMW...)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	return app.Listen(addr)
}
