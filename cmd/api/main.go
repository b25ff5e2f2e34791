package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/cancellation"
	"github.com/jhoicas/Gestion-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-api/internal/application/ledger"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/application/purchasing"
	"github.com/jhoicas/Gestion-api/internal/application/sales"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		tx    ports.TxRunner
		repos repository.Repos
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		tx, repos = store, store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
		runner := postgres.NewTxRunner(pool)
		tx, repos = runner, runner.Repos()
	}

	var (
		tagCache ports.Cache          = cache.NewMemoryCache(cfg.Redis.CacheTTL)
		locker   ports.DocumentLocker = cache.NopLocker{}
	)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("conexión a Redis")
		}
		tagCache = cache.NewRedisCache(rdb, cfg.Redis.CacheTTL)
		locker = cache.NewRedisLocker(redislock.New(rdb), cfg.Redis.LockTTL, log)
		log.Info().Str("address", cfg.Redis.Address).Msg("caché y bloqueos en Redis")
	}

	rec := ledger.NewReconciler(log)
	deps := httpRouter.RouterDeps{
		ProductUC:       usecase.NewProductUseCase(repos.Products, tagCache, log),
		StockUC:         inventory.NewStockUseCase(repos, tagCache, log),
		PurchaseOrderUC: purchasing.NewUseCase(tx, repos, rec, tagCache, locker, log),
		DeliveryNoteUC:  sales.NewUseCase(tx, repos, rec, tagCache, locker, log),
		CancellationUC:  cancellation.NewUseCase(tx, repos, rec, tagCache, locker, log),
		InvoiceUC:       billing.NewInvoiceUseCase(tx, repos, tagCache, locker, log, cfg.Billing.PaymentTolerance),
		JWTSecret:       cfg.JWT.Secret,
		JWTIssuer:       cfg.JWT.Issuer,
	}

	appCfg := httpRouter.AppConfig{Name: cfg.App.Name}
	if _, err := os.Stat(swaggerFile); err == nil {
		appCfg.SwaggerFile = swaggerFile
	}
	app := httpRouter.NewApp(appCfg, log, deps)

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

	log.Info().Msg("aplicación detenida")
}
