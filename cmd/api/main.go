package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/documents"
	"github.com/jhoicas/Emlak-api/internal/application/inventory"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/eventbus"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/lock"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Emlak-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Emlak-api/internal/interfaces/http"
	"github.com/jhoicas/Emlak-api/pkg/config"
	"github.com/jhoicas/Emlak-api/pkg/logger"
)

// backend almacenamiento elegido con STORE_DRIVER.
type backend struct {
	salesTx   sales.TxRunner
	brokerTx  broker.TxRunner
	projects  repository.ProjectRepository
	units     repository.UnitRepository
	teams     repository.TeamRepository
	customers repository.CustomerRepository
	contracts repository.ContractRepository
	plans     repository.PaymentPlanRepository
	outbox    repository.OutboxRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Pipeline.StoreDriver == "memory" {
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &backend{
			salesTx:   store,
			brokerTx:  store,
			projects:  store.Projects(),
			units:     store.Units(),
			teams:     store.Teams(),
			customers: store.Customers(),
			contracts: store.Contracts(),
			plans:     store.Plans(),
			outbox:    store.Outbox(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.NewMigrator(pool, log.Named("migrator")).Run(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepositories(pool)
	return &backend{
		salesTx:   txRunner,
		brokerTx:  txRunner,
		projects:  repos.Projects,
		units:     repos.Units,
		teams:     repos.Teams,
		customers: repos.Customers,
		contracts: repos.Contracts,
		plans:     repos.Plans,
		outbox:    repos.Outbox,
		close:     pool.Close,
	}, nil
}

// keyLocker lock por claves compartido por ventas y brokers.
type keyLocker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

// newLocker Redis si REDIS_ADDR está definido; si no, locks en proceso.
func newLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (keyLocker, func(), error) {
	if !cfg.Redis.Enabled() {
		return lock.NewLocalLocker(), func() {}, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("locks distribuidos en Redis")
	return lock.NewRedisLocker(client, cfg.Pipeline.LockTTL, log.Named("lock")), func() { _ = client.Close() }, nil
}

func main() {
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
		Str("store", cfg.Pipeline.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeLocker()

	m := metrics.New()

	// Bus de eventos: el espejo de brokers consume los cambios de estado de las ventas.
	// inline: un fallo del espejo deja el evento pendiente y el relay lo reintenta.
	// async: la entrega termina al encolar; los fallos del espejo solo se registran.
	var bus *eventbus.Bus
	if cfg.Pipeline.EventDelivery == "async" {
		bus = eventbus.New(cfg.Pipeline.EventBuffer, log.Named("eventbus"))
	} else {
		bus = eventbus.NewInline(log.Named("eventbus"))
	}
	brokerUC := broker.NewUseCase(store.brokerTx, locker, m, log.Named("broker"), cfg.Broker.OwnershipWindow())
	bus.Subscribe("broker-mirror", broker.NewMirror(brokerUC))
	bus.Start(ctx)
	defer bus.Stop()

	relay := sales.NewRelay(store.outbox, bus, log.Named("outbox"))
	go relay.Run(ctx, cfg.Pipeline.OutboxInterval)

	deps := sales.Deps{
		Tx:       store.salesTx,
		Locker:   locker,
		Notifier: relay,
		Metrics:  m,
		Log:      log.Named("sales"),
		Policy: sales.Policy{
			SideEffects:     sales.SideEffectPolicy(cfg.Pipeline.SideEffectPolicy),
			DefaultCurrency: cfg.Pipeline.DefaultCurrency,
			OfferValidity:   cfg.Pipeline.OfferValidity,
		},
	}

	pdfGenerator := infrapdf.NewMarotoScheduleGenerator(language.Turkish)
	schedulePDFUC := documents.NewSchedulePDFUseCase(store.contracts, store.plans, store.customers, store.units, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Emlak API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Pipeline:    sales.NewPipelineUseCase(deps),
		Offers:      sales.NewOfferUseCase(deps),
		Deposits:    sales.NewDepositUseCase(deps),
		Plans:       sales.NewPaymentPlanUseCase(deps),
		Assignment:  sales.NewAssignmentUseCase(deps),
		Brokers:     brokerUC,
		Catalog:     inventory.NewCatalogUseCase(store.projects, store.units, store.teams, cfg.Pipeline.DefaultCurrency),
		Customers:   inventory.NewCustomerUseCase(store.customers),
		SchedulePDF: schedulePDFUC,
		JWTSecret:   cfg.JWT.Secret,
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

	// lo que quedó en el outbox se publica antes de cerrar el bus
	if n, err := relay.Flush(shutdownCtx); err != nil {
		log.Warn().Err(err).Int("published", n).Msg("outbox pendiente al apagar")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}
