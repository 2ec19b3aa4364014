package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
	"github.com/kirillkom/doc-lifecycle/internal/core/usecase"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/identity"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/paragraph"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/queue/nats"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/repository/memory"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/resilience"
)

// store is satisfied by both the memory and the postgres backends.
type store interface {
	ports.UnitOfWork
	Repositories() ports.Repositories
	Favorites() ports.FavoriteStore
	AuditLog() ports.AuditLog
}

type App struct {
	Config config.Config

	Events *nats.EventBus

	LifecycleUC *usecase.LifecycleUseCase
	LockUC      *usecase.LockManager
	ReaderUC    *usecase.DocumentReaderUseCase
	FavoritesUC *usecase.FavoritesUseCase
	AuditUC     *usecase.AuditUseCase

	closeFns []func()
}

// New wires the configured store backend, identity directory and event bus.
// observer receives retries and breaker changes for publishing and the store; it may be nil.
func New(ctx context.Context, cfg config.Config, observer resilience.Observer) (*App, error) {
	app := &App{Config: cfg}

	st, err := app.openStore(ctx, observer)
	if err != nil {
		return nil, err
	}

	directory, err := identity.Load(cfg.IdentityDirectoryPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load identity directory: %w", err)
	}
	slog.Info("identity_directory_loaded", "path", cfg.IdentityDirectoryPath, "workers", directory.Len())

	var publisher ports.EventPublisher
	if cfg.EventsEnabled {
		executor := newExecutor(cfg.EventRetryMaxAttempts, cfg.EventBreakerEnabled, observer)
		bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event bus: %w", err)
		}
		app.Events = bus
		app.closeFns = append(app.closeFns, bus.Close)
		publisher = bus
	}

	repos := st.Repositories()
	app.LifecycleUC = usecase.NewLifecycleUseCase(st, directory, publisher)
	app.LockUC = usecase.NewLockManager(repos.Locks, directory)
	app.ReaderUC = usecase.NewDocumentReaderUseCase(
		repos.Documents,
		repos.Versions,
		repos.Locks,
		repos.Handovers,
		directory,
		paragraph.NewCounter(),
	)
	app.FavoritesUC = usecase.NewFavoritesUseCase(repos.Documents, st.Favorites())
	app.AuditUC = usecase.NewAuditUseCase(st.AuditLog())
	return app, nil
}

func newExecutor(maxAttempts int, breakerEnabled bool, observer resilience.Observer) *resilience.Executor {
	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = maxAttempts
	resilienceCfg.BreakerEnabled = breakerEnabled
	executor := resilience.NewExecutor(resilienceCfg)
	if observer != nil {
		executor.WithObserver(observer)
	}
	return executor
}

func (a *App) openStore(ctx context.Context, observer resilience.Observer) (store, error) {
	switch a.Config.StoreBackend {
	case config.StoreBackendMemory:
		slog.Warn("store_backend_memory", "detail", "state is lost on restart")
		return memory.NewStore(), nil
	case config.StoreBackendPostgres, "":
		db, err := postgres.OpenDB(a.Config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })
		st := postgres.NewStore(db).WithExecutor(
			newExecutor(a.Config.StoreRetryMaxAttempts, a.Config.StoreBreakerEnabled, observer),
		)
		if err := st.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
