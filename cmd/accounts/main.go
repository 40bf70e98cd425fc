package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"runtime"

	phuslog "github.com/phuslu/log"

	"github.com/orlanda/accounts/cache/ristretto"
	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/core"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/db/zombiezen"
	"github.com/orlanda/accounts/mail"
	"github.com/orlanda/accounts/queue"
	"github.com/orlanda/accounts/queue/executor"
	"github.com/orlanda/accounts/queue/handlers"
	"github.com/orlanda/accounts/queue/scheduler"
	"github.com/orlanda/accounts/router/httprouter"
	"github.com/orlanda/accounts/server"
)

// defaultLoggerOptions drops the time attribute; phuslu's handler stamps
// entries itself.
var defaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

func main() {
	configPath := flag.String("config", "", "path to TOML configuration file")
	flag.Parse()

	logger := slog.New(phuslog.SlogNewJSONHandler(os.Stderr, defaultLoggerOptions))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	provider := config.NewProvider(cfg)

	pool, err := zombiezen.NewPool(cfg.DBFile, runtime.NumCPU())
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBFile, "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbApp, err := zombiezen.New(pool)
	if err != nil {
		logger.Error("failed to initialize database", "err", err)
		os.Exit(1)
	}
	if err := dbApp.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply database schema", "err", err)
		os.Exit(1)
	}

	userCache, err := ristretto.New[string, *db.User]()
	if err != nil {
		logger.Error("failed to initialize user cache", "err", err)
		os.Exit(1)
	}

	app, err := core.NewApp(
		core.WithDbApp(dbApp),
		core.WithLogger(logger),
		core.WithConfigProvider(provider),
		core.WithRouter(httprouter.New()),
		core.WithUserCache(userCache),
	)
	if err != nil {
		logger.Error("failed to assemble application", "err", err)
		os.Exit(1)
	}

	routes(app)

	mailer := mail.New(cfg.Smtp, logger)
	if !cfg.Smtp.Enabled {
		logger.Warn("smtp is disabled, verification and reset emails will be dropped")
	}

	exec := executor.NewExecutor(map[string]executor.JobHandler{
		queue.JobTypeOtpEmail:      handlers.NewOtpEmailHandler(dbApp, mailer, logger),
		queue.JobTypePasswordReset: handlers.NewPasswordResetHandler(dbApp, provider, mailer, logger),
		queue.JobTypeOtpSweep:      handlers.NewOtpSweepHandler(dbApp, logger),
		queue.JobTypeKeepalive:     handlers.NewKeepaliveHandler(provider, logger),
	})

	if err := seedRecurrentJobs(dbApp, cfg); err != nil {
		logger.Error("failed to seed recurrent jobs", "err", err)
		os.Exit(1)
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, dbApp, exec, logger)

	srv := server.NewServer(cfg.Server, app.Router(), sched, logger)
	srv.Run()
}
