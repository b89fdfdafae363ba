package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/registry"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// storage adaptadores de persistencia elegidos por APP_STORAGE.
type storage struct {
	tx          ledger.TxRunner
	movements   repository.MovementRepository
	projections repository.ProjectionRepository
	batches     repository.BatchRepository
	alerts      repository.AlertRepository
	policies    repository.PolicyRepository
	items       repository.ItemRepository
	locations   repository.LocationRepository
	categories  repository.CategoryRepository
	suppliers   repository.SupplierRepository
	close       func()
}

func main() {
	// .env local opcional; las variables ya exportadas tienen prioridad.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Str("transfer_mode", cfg.Ledger.TransferMode).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Eventos: ProjectionChanged → motor de alertas; AlertOpened → auto-reorden; alertas y
	// sugerencias → notificador.
	bus := events.NewBus(log, cfg.Alerts.Workers, cfg.Alerts.QueueSize)

	var locker alerts.KeyLocker = alerts.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client, err := redislock.NewClient(ctx, redislock.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = redislock.New(client, cfg.Redis.LockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo por clave en Redis")
	}

	svc := ledger.NewService(store.tx, store.items, store.locations, store.movements, store.projections,
		bus, log, ledger.Config{
			MaxRetries:   cfg.Ledger.MaxRetries,
			RetryBackoff: cfg.Ledger.RetryBackoff,
			TransferMode: cfg.Ledger.TransferMode,
		})
	engine := alerts.NewEngine(store.projections, store.policies, store.batches, store.alerts,
		locker, bus, log, alerts.Config{
			ExpirationLookaheadDays: cfg.Alerts.ExpirationLookaheadDays,
			PriceChangeThresholdPct: cfg.Alerts.PriceChangeThresholdPct,
		})
	reorderUC := inventory.NewReorderUseCase(store.items, store.locations, store.projections, store.movements,
		store.policies, store.suppliers, inventory.ReorderConfig{
			UsageWindowDays:     cfg.Ledger.UsageWindowDays,
			DefaultLeadTimeDays: cfg.Ledger.DefaultLeadTimeDays,
		})
	registryUC := registry.NewUseCase(store.items, store.locations, store.categories, store.suppliers, store.policies)
	autoReorder := inventory.NewAutoReorder(reorderUC, bus, log)

	bus.Subscribe(events.ProjectionChanged, engine.HandleProjectionChanged)
	bus.Subscribe(events.AlertOpened, autoReorder.Handle)

	var notifier alerts.Notifier = alerts.NewLogNotifier(log)
	if cfg.Kafka.Enabled() {
		writer := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.AlertsTopic)
		publisher := kafka.NewPublisher(writer, log)
		defer publisher.Close()
		notifier = publisher

		reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.GroupID)
		listener := kafka.NewOrderListener(reader, svc, store.movements, log)
		go listener.Start(ctx)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("orders_topic", cfg.Kafka.OrdersTopic).Msg("listener de órdenes activo")
	}
	alerts.SubscribeNotifier(bus, notifier)

	busDone := make(chan struct{})
	go func() {
		defer close(busDone)
		if err := bus.Run(ctx); err != nil {
			log.Error().Err(err).Msg("bus de eventos finalizado")
		}
	}()
	go engine.RunSweeper(ctx, cfg.Alerts.SweepInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    svc,
		Reorder:   reorderUC,
		Alerts:    engine,
		Registry:  registryUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Espera a que los workers del bus terminen.
	select {
	case <-busDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("el bus de eventos no terminó a tiempo")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		r := memory.NewRepositories()
		return &storage{
			tx:          r.Tx,
			movements:   r.Movements,
			projections: r.Projections,
			batches:     r.Batches,
			alerts:      r.Alerts,
			policies:    r.Policies,
			items:       r.Items,
			locations:   r.Locations,
			categories:  r.Categories,
			suppliers:   r.Suppliers,
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema verificado")
	}
	r := postgres.NewRepositories(pool)
	return &storage{
		tx:          r.Tx,
		movements:   r.Movements,
		projections: r.Projections,
		batches:     r.Batches,
		alerts:      r.Alerts,
		policies:    r.Policies,
		items:       r.Items,
		locations:   r.Locations,
		categories:  r.Categories,
		suppliers:   r.Suppliers,
		close:       pool.Close,
	}, nil
}
