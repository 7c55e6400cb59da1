package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"patrimony-manager/core/config"
	"patrimony-manager/core/database"
	"patrimony-manager/core/loader"
	"patrimony-manager/core/logger"
	"patrimony-manager/core/middleware/actor"
	"patrimony-manager/core/middleware/auth"
	"patrimony-manager/core/middleware/rayid"
	"patrimony-manager/core/session"
	"patrimony-manager/core/storage"

	"patrimony-manager/feature/assets"
	assetmodels "patrimony-manager/feature/assets/models"
	"patrimony-manager/feature/backup"
	"patrimony-manager/feature/inventory"
	invmodels "patrimony-manager/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the patrimony manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		err = database.Migrate(db,
			&assetmodels.Area{},
			&assetmodels.Asset{},
			&assetmodels.Sequence{},
			&invmodels.Inventory{},
			&invmodels.SnapshotItem{},
			&invmodels.ReadItem{},
			&invmodels.Diff{},
			&invmodels.AdjustmentLog{},
		)
		if err != nil {
			logg.Fatal("Failed to migrate database schema", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize Storage (optional; backup stays disabled without it)
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Storage client unavailable, backup disabled", zap.Error(err))
			store = nil
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Register Features
		assetsFeature := assets.NewFeature(db, logg, cfg.Server.EffectivePageSize())
		sess := session.ContextProvider{Fallback: cfg.Session}

		mgr := loader.NewManager()
		mgr.Register(assetsFeature)
		mgr.Register(inventory.NewFeature(db, logg, cfg.Policy, sess, assetsFeature.Service().Numbers(), cfg.Server.EffectivePageSize()))
		mgr.Register(backup.NewFeature(db, store, cfg.Storage.Bucket, logg))

		// Middleware Registration
		// RayID first so everything downstream is traceable.
		app.Use(rayid.New())

		// Request logging with Zap + RayID.
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Operator attribution for audit rows.
		app.Use(actor.New())

		// Auth (protects the whole API when a key is configured).
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
