package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"campus-rms/internal/adapters/http/middleware"
	"campus-rms/internal/adapters/http/routes"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/config"
	"campus-rms/internal/core/graph"
	"campus-rms/internal/core/services"
	"campus-rms/internal/pkg/password"
	"campus-rms/internal/seed"

	"github.com/gofiber/fiber/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	_ "campus-rms/docs" // Swagger docs
)

// @title Campus RMS API
// @version 1.0
// @description Campus resource management: equipment loans, events and departments

// @contact.name API Support

// @host localhost:3000
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	root := &cli.Command{
		Name:  "campus-rms",
		Usage: "Campus resource management server",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
			driftCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (default)",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the schema of both stores and exit",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, store, graphStore, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeStores(store, graphStore)

			log.Println("✅ Database migration completed")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load departments, users and equipment from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Value: "seed.yaml", Usage: "seed file path"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := seed.Load(c.String("file"))
			if err != nil {
				return err
			}

			cfg, store, graphStore, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeStores(store, graphStore)

			svc := services.New(store, graphStore, password.NewHasher(0), cfg.JWT)
			_, err = seed.NewSeeder(svc, store).Run(ctx, file)
			return err
		},
	}
}

func driftCommand() *cli.Command {
	return &cli.Command{
		Name:  "drift",
		Usage: "Compare loan requests across both stores and print the report",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fail", Usage: "exit non-zero when the stores disagree"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, store, graphStore, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeStores(store, graphStore)

			svc := services.New(store, graphStore, password.NewHasher(0), cfg.JWT)
			report, err := svc.Drift.Check(ctx)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return err
			}
			fmt.Print(string(out))

			if c.Bool("fail") && !report.Consistent() {
				return fmt.Errorf("stores have drifted")
			}
			return nil
		},
	}
}

func connect(ctx context.Context) (*config.Config, repositories.Store, graph.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := config.ConnectEntityStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	graphStore, err := config.ConnectGraphStore(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	return cfg, store, graphStore, nil
}

func closeStores(store repositories.Store, graphStore graph.Store) {
	if err := graphStore.Close(); err != nil {
		log.Printf("⚠️ Failed to close graph store: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("⚠️ Failed to close entity store: %v", err)
	}
}

func runServer(ctx context.Context) error {
	cfg, store, graphStore, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeStores(store, graphStore)

	svc := services.New(store, graphStore, password.NewHasher(0), cfg.JWT)

	// Periodic drift check
	cronService := services.NewCronService(svc.Drift, cfg.DriftCheckSchedule)
	if err := cronService.Start(); err != nil {
		return fmt.Errorf("failed to start cron: %w", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Campus RMS API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, svc, store, graphStore, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
