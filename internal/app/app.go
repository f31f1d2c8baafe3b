package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/assets"
	"github.com/ykvlv/report-bot/internal/config"
	"github.com/ykvlv/report-bot/internal/metrics"
	"github.com/ykvlv/report-bot/internal/report"
	"github.com/ykvlv/report-bot/internal/settings"
	"github.com/ykvlv/report-bot/internal/store"
	"github.com/ykvlv/report-bot/internal/telegram"
	"github.com/ykvlv/report-bot/internal/timezone"
	"github.com/ykvlv/report-bot/internal/tzdb"
	"github.com/ykvlv/report-bot/internal/wizard"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	catalog *tzdb.Static
	repo    store.Repo
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	catalog, err := tzdb.Parse(assets.ZonesYAML)
	if err != nil {
		return nil, fmt.Errorf("load timezone catalog: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newHTTPHandler(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv, catalog: catalog}, nil
}

// newHTTPHandler serves liveness and Prometheus metrics.
func newHTTPHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// openStore picks the preference store named by DB_DRIVER.
func openStore(ctx context.Context, cfg config.Config) (store.Repo, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		repo, err := store.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		repo, err := store.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting report-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("db", a.cfg.DBDriver),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Int("zones", len(a.catalog.Names())),
	)

	repo, err := openStore(ctx, a.cfg)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("store ready")

	roster := telegram.NewRoster(a.bot)
	a.router = telegram.NewRouter(a.bot, a.log, telegram.Services{
		Settings: settings.New(repo, timezone.NewResolver(a.catalog.Names()), a.catalog, a.log),
		Wizard:   wizard.New(repo, a.log),
		Reports:  report.NewRouter(a.bot.Self.ID, roster, repo, a.catalog, a.log),
		Roster:   roster,
	}, a.bot.Self.UserName, a.cfg.SendAttempts)

	if err := a.router.RegisterCommands(); err != nil {
		a.log.Warn("set commands failed", zap.Error(err))
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
