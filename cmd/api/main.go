package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pharma-erp-api/internal/application/billing"
	"github.com/jhoicas/pharma-erp-api/internal/application/drafts"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
	"github.com/jhoicas/pharma-erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharma-erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pharma-erp-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/pharma-erp-api/internal/interfaces/http"
	"github.com/jhoicas/pharma-erp-api/pkg/config"
	"github.com/jhoicas/pharma-erp-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("drafts_store", cfg.Drafts.Store).
		Msg("iniciando aplicación")
	if cfg.App.CompanyID == "" {
		log.Fatal().Msg("APP_COMPANY_ID es requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	store, closeStore, err := openDraftStore(ctx, cfg.Drafts, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de borradores")
	}
	defer closeStore()

	draftsLog := log.Component("drafts")
	registry := drafts.NewRegistry(store, drafts.Options{
		MaxDrafts: cfg.Drafts.Max,
		Debounce:  cfg.Drafts.Debounce(),
		NewForm: func() totals.InvoiceForm {
			return totals.NewForm(cfg.Billing.DefaultTaxRate, cfg.Billing.DefaultVATRate)
		},
		Logger: &draftsLog,
	})
	stopEviction := evictIdleSessions(registry, cfg.Drafts.IdleTTL(), draftsLog)
	defer stopEviction()

	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	sourceRepo := postgres.NewSourceDocumentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	catalogUC := billing.NewCatalogUseCase(cfg.App.CompanyID, productRepo, customerRepo)
	draftUC := billing.NewDraftUseCase(registry, cfg.Drafts.Max)
	composerUC := billing.NewComposerUseCase(
		registry, txRunner,
		productRepo, customerRepo, sourceRepo, invoiceRepo,
		billing.ComposerConfig{CompanyID: cfg.App.CompanyID, InvoicePrefix: cfg.Billing.InvoicePrefix},
		log.Component("composer"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Pharma ERP API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:  catalogUC,
		DraftUC:    draftUC,
		ComposerUC: composerUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Los cambios aún en la ventana de debounce se descartan; el último guardado queda.
	registry.Close()

	log.Info().Msg("aplicación detenida")
}

// evictIdleSessions libera periódicamente las sesiones sin uso. Con ttl 0 no hace nada.
func evictIdleSessions(registry *drafts.Registry, ttl time.Duration, log zerolog.Logger) func() {
	if ttl <= 0 {
		return func() {}
	}
	ticker := time.NewTicker(ttl / 2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := registry.EvictIdle(ttl); n > 0 {
					log.Debug().Int("sessions", n).Msg("sesiones sin uso liberadas")
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// openDraftStore elige el almacén clave-valor de los borradores según DRAFTS_STORE.
func openDraftStore(ctx context.Context, cfg config.DraftsConfig, pool *pgxpool.Pool) (repository.KeyValueStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreMemory:
		return memory.NewKVStore(), func() {}, nil
	default:
		s := postgres.NewKVStore(pool, 5*time.Second)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
