package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/config"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	repocache "github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/jsonfile"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/interfaces/chat"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/interfaces/discordbot"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/mlbb-squad-tracker/internal/platform/cache"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

// Store is the persistence provider behind the registry.
type Store interface {
	squad.Repository
	player.Repository
	EnsureExists(ctx context.Context) error
}

// App owns every long-running surface of the process.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	db         *sqlx.DB
	store      Store
	registry   *usecase.RegistryService
	wizard     *usecase.WizardService
	dispatcher *chat.Dispatcher
	bot        *discordbot.Bot
	httpServer *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{cfg: cfg, logger: logger}

	store, db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.store, a.db = store, db

	if err := store.EnsureExists(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("prepare %s storage: %w", cfg.StorageDriver, err)
	}

	a.registry = usecase.NewRegistryService(store, store, logger.Named("registry"))
	a.wizard = usecase.NewWizardService(a.registry, usecase.WizardConfig{
		StepTimeout:  cfg.WizardStepTimeout,
		RolesTimeout: cfg.WizardRolesTimeout,
	}, logger.Named("wizard"))
	heroCatalog := repocache.NewHeroCatalog(
		jsonfile.NewHeroCatalog(cfg.HeroesFile),
		basecache.NewStore[[]hero.Hero](cfg.HeroesCacheTTL),
	)
	heroes := usecase.NewHeroService(heroCatalog, logger.Named("heroes"))

	if cfg.DiscordEnabled {
		session, err := discordbot.NewSession(cfg.DiscordBotToken)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		guard := discordbot.NewGuard(session, cfg.ModeratorRoleID, logger)
		a.dispatcher = chat.NewDispatcher(
			chat.DispatcherConfig{Prefix: cfg.CommandPrefix},
			a.registry,
			a.wizard,
			heroes,
			guard,
			guard,
			logger,
		)
		a.bot, err = discordbot.New(discordbot.Config{
			Token:          cfg.DiscordBotToken,
			Presence:       cfg.Presence,
			WorkerPoolSize: cfg.WorkerPoolSize,
			SweepInterval:  cfg.WizardSweepInterval,
		}, session, a.dispatcher, a.wizard, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if cfg.HTTPEnabled {
		a.httpServer, err = newHTTPServer(cfg, a.registry, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Run serves every enabled surface until ctx is done or one of them fails.
func (a *App) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()

	if a.bot != nil {
		p.Go(func(ctx context.Context) error {
			return a.bot.Run(ctx)
		})
	}

	if a.httpServer != nil {
		srv := a.httpServer
		p.Go(func(ctx context.Context) error {
			a.logger.InfoContext(ctx, "http server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		p.Go(func(ctx context.Context) error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.WriteTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			a.logger.Info("http server stopped")
			return nil
		})
	}

	return p.Wait()
}

// Close releases the database handle when one is open.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (Store, *sqlx.DB, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil, nil
	case config.StoragePostgres:
		conn := postgres.ConnOptions{URL: cfg.DBURL, DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary}
		db, err := postgres.Open(ctx, conn)
		if err != nil {
			return nil, nil, err
		}
		logger.InfoContext(ctx, "using postgres storage", "db_name", conn.DatabaseName())
		return postgres.NewStore(db, logger), db, nil
	default:
		logger.InfoContext(ctx, "using json file storage", "data_dir", cfg.DataDir)
		return jsonfile.NewStore(cfg.DataDir, logger), nil, nil
	}
}

func newHTTPServer(cfg config.Config, registry *usecase.RegistryService, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(registry, logger)
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
