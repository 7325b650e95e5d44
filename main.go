package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase/tools/routine"
	"go.uber.org/zap"

	"epol-dashboard/bot"
	"epol-dashboard/config"
	"epol-dashboard/internal/apiclient"
	"epol-dashboard/internal/handlers"
	"epol-dashboard/internal/logger"
	"epol-dashboard/internal/providers"
	"epol-dashboard/internal/repository"
	"epol-dashboard/internal/services"
	"epol-dashboard/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := initApplication(ctx, cfg, sugar)
	defer app.stats.Stop()

	if err := app.login(ctx, cfg); err != nil {
		sugar.Warnw("not logged in, dashboard stays empty until a session exists", "error", err)
	}

	mux := http.NewServeMux()
	handlers.NewDashboardHandler(ctx, app.stats, app.registry, sugar).Routes(mux)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("server shutdown error", "error", err)
	}
	if cfg.APIToken == "" {
		app.client.Logout(shutdownCtx)
	}

	sugar.Info("server stopped gracefully")
}

type application struct {
	session  *session.Session
	client   *apiclient.Client
	registry *providers.Registry
	stats    *services.StatsAggregator
}

// initApplication wires the session, backend client, providers and aggregator
func initApplication(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) *application {
	sess := session.New()
	client := apiclient.New(cfg.APIBaseURL, sess,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(log),
	)

	registry := providers.NewRegistry(client, log)
	registry.AttachSession(ctx, sess)

	policy := services.NewWorkHoursPolicy(repository.NewWorkHours(client), services.AttendancePolicy{
		WorkStartTime:  cfg.WorkStartTime,
		GracePeriod:    cfg.GracePeriod,
		EveningCutoff:  cfg.EveningCutoff,
		MinimumMinutes: cfg.MinimumMinutes,
	}, log)

	stats := services.NewStatsAggregator(services.StatsConfig{
		Context:    ctx,
		Inventory:  registry.Inventory,
		Incidents:  registry.Incidents,
		Users:      registry.Users,
		Attendance: registry.Attendance,
		Pending:    repository.NewPendingRequests(client, cfg.PendingRequestsEndpoint),
		Policy:     policy,
		Roles:      cfg.EmployeeRoles,
		Debounce:   cfg.StatsDebounce,
		Logger:     log,
	})
	stats.Watch(registry.Inventory, registry.Incidents, registry.Users, registry.Attendance)

	sess.OnChange(func(ev session.Event) {
		if !ev.Authenticated {
			return
		}
		routine.FireAndForget(func() {
			policy.Refresh(ctx)
			stats.Trigger()
		})
	})

	// Telegram is optional; without it alerts are dropped
	if cfg.TelegramBotToken != "" {
		tg, err := initBot(ctx, cfg, registry, stats, log)
		if err != nil {
			log.Warnw("failed to init Telegram bot", "error", err)
		}
		notifier := bot.NewNotifier(tg)
		stats.OnSnapshot(services.NewSnapshotAlerter(notifier, log).OnSnapshot)
		services.NewSessionAlerter(notifier).Attach(sess)
	}

	return &application{session: sess, client: client, registry: registry, stats: stats}
}

// initBot initializes the Telegram bot and starts polling
func initBot(ctx context.Context, cfg *config.Config, registry *providers.Registry, stats *services.StatsAggregator, log *zap.SugaredLogger) (*bot.Bot, error) {
	tg, err := bot.New(cfg.TelegramBotToken, cfg.AuthorizedChatID, bot.Deps{
		Stats:     stats,
		Inventory: registry.Inventory,
		Incidents: registry.Incidents,
		Refresh:   registry.RefreshAll,
	}, log)
	if err != nil {
		return nil, err
	}
	tg.Start(ctx)

	log.Info("Telegram bot initialized")
	return tg, nil
}

// login starts the session from a pre-issued token or admin credentials
func (a *application) login(ctx context.Context, cfg *config.Config) error {
	switch {
	case cfg.APIToken != "":
		a.session.Login(cfg.APIToken, nil)
		return nil
	case cfg.AdminEmail != "" && cfg.AdminPass != "":
		return a.client.Login(ctx, cfg.AdminEmail, cfg.AdminPass)
	default:
		return apiclient.ErrAuthenticationRequired
	}
}
