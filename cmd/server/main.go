package main

import (
	"context"
	"fmt"
	stdlog "log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	uuid "github.com/gofrs/uuid"

	"github.com/7maceX1D/assetd/assets"
	"github.com/7maceX1D/assetd/assets/access"
	assetHandlers "github.com/7maceX1D/assetd/assets/handlers"
	assetRepository "github.com/7maceX1D/assetd/assets/repository"
	assetServices "github.com/7maceX1D/assetd/assets/services"
	"github.com/7maceX1D/assetd/assets/transform"
	"github.com/7maceX1D/assetd/internal/database/postgres"
	"github.com/7maceX1D/assetd/internal/middleware/requestid"
	"github.com/7maceX1D/assetd/internal/middleware/servicekey"
	platformconfig "github.com/7maceX1D/assetd/internal/platform/config"
	"github.com/7maceX1D/assetd/internal/pkg/log"
	"github.com/7maceX1D/assetd/storage/provider"
)

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		stdlog.Fatalf("Failed to load platform config: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			// If response already set by handler, don't override it
			if len(c.Response().Body()) > 0 {
				return nil
			}

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.WebDomain,
		AllowHeaders: "Origin, Content-Type, Accept, Range",
		AllowMethods: "GET, HEAD, OPTIONS",
	}))
	app.Use(requestid.New())
	app.Use(requestid.Logger())
	app.Use(servicekey.New(cfg.Server.ServiceKey))

	ctx := context.Background()

	dbClient, err := postgres.NewClient(ctx, &cfg.Database.Postgres)
	if err != nil {
		stdlog.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()

	registry, err := buildStorageRegistry(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to initialize storage: %v", err)
	}

	// One gate for the whole process: every service instance shares this
	// ceiling, no matter how many are constructed.
	gate := transform.NewGate(cfg.Storage.TransformConcurrency)
	executor := transform.NewExecutor(gate, cfg.Storage.MaxDimension)

	repo := assetRepository.WithStaticPublicAssets(
		assetRepository.NewPostgresRepository(dbClient),
		parsePublicAssetIDs(&cfg.Assets),
	)
	checker := access.NewPostgresChecker(dbClient)
	assetService := assetServices.NewAssetService(repo, checker, registry, executor)

	assets.RegisterRoutes(app, &assets.AssetHandlers{
		AssetHandler: assetHandlers.NewAssetHandler(assetService, cfg),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("asset service listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		stdlog.Fatalf("Server stopped: %v", err)
	}
}

// parsePublicAssetIDs collects the env-configured public system asset ids,
// skipping unset or malformed entries.
func parsePublicAssetIDs(cfg *platformconfig.AssetsConfig) []uuid.UUID {
	var ids []uuid.UUID
	for _, raw := range []string{cfg.PublicLogoID, cfg.PublicBackgroundID, cfg.PublicForegroundID} {
		if raw == "" {
			continue
		}
		id, err := uuid.FromString(raw)
		if err != nil {
			log.Warn("ignoring malformed public asset id %q", raw)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// buildStorageRegistry constructs a driver per configured storage root.
func buildStorageRegistry(cfg *platformconfig.Config) (provider.Registry, error) {
	registry := provider.Registry{}
	for i := range cfg.Storage.Roots {
		root := &cfg.Storage.Roots[i]

		var (
			driver provider.Driver
			err    error
		)
		switch root.Driver {
		case "local":
			driver, err = provider.NewLocalDriver(root.LocalRoot, root.PublicURL)
		default:
			driver, err = provider.NewS3Driver(root)
		}
		if err != nil {
			return nil, fmt.Errorf("storage root %q: %w", root.Name, err)
		}

		registry[root.Name] = driver
	}
	return registry, nil
}
