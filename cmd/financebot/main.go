// Command financebot wires the storage engine, ledger, scheduler,
// conversation state store, dialog machine, and notification outbox
// into one process. The chat transport itself is an external
// collaborator (see internal/transport); this binary runs a minimal
// stub that logs outbox deliveries so the process is runnable end to
// end without a live chat integration.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Juramirezlop/FinanceBot/internal/auth"
	"github.com/Juramirezlop/FinanceBot/internal/config"
	"github.com/Juramirezlop/FinanceBot/internal/convstate"
	"github.com/Juramirezlop/FinanceBot/internal/dialog"
	"github.com/Juramirezlop/FinanceBot/internal/healthhttp"
	"github.com/Juramirezlop/FinanceBot/internal/ledger"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/money"
	"github.com/Juramirezlop/FinanceBot/internal/outbox"
	"github.com/Juramirezlop/FinanceBot/internal/scheduler"
	"github.com/Juramirezlop/FinanceBot/internal/storage"
	"github.com/Juramirezlop/FinanceBot/internal/transport"
	"github.com/Juramirezlop/FinanceBot/observability/logging"
	obsotel "github.com/Juramirezlop/FinanceBot/observability/otel"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	logger := logging.SetupRotating("financebot", os.Getenv("ENVIRONMENT"), cfg.LogFile, cfg.MaxLogSizeBytes, cfg.LogBackupCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := obsotel.Init(ctx, obsotel.Config{
		ServiceName: "financebot",
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    cfg.OTELInsecure,
		Headers:     obsotel.ParseHeaders(cfg.OTELHeaders),
		Traces:      cfg.OTELTracesEnabled,
		Metrics:     cfg.OTELMetricsEnable,
	})
	if err != nil {
		logger.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	engine, err := storage.Open(storage.Config{
		Path:           cfg.DatabasePath,
		MaxConnections: cfg.MaxDBConnections,
		BusyTimeout:    time.Duration(cfg.DatabaseTimeout) * time.Second,
	})
	if err != nil {
		logger.Error("storage open failed", "error", err)
		os.Exit(1)
	}
	if err := ledgerdb.AutoMigrate(engine.DB()); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.New(engine)
	outboxSvc := outbox.New(engine, 10)
	states := convstate.New[dialog.State](cfg.MaxUserStates)
	allowlist := auth.New(cfg.AuthorizedUserID)
	machine := dialog.New(ledgerSvc, states)

	if err := ensurePrincipal(ctx, ledgerSvc, cfg.AuthorizedUserID); err != nil {
		logger.Error("ensure principal failed", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(scheduler.Config{
		Ledger:           ledgerSvc,
		Outbox:           outboxSvc,
		States:           states,
		AuthorizedUserID: cfg.AuthorizedUserID,
		BackupEnabled:    cfg.BackupEnabled,
		RetentionDays:    cfg.BackupRetention,
		StateTTL:         2 * time.Hour,
		Logger:           logger,
	})
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	healthSrv := healthhttp.New("financebot")
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: otelhttp.NewHandler(healthSrv.Handler(), "financebot"),
	}

	poller := transport.NewStubPoller(logger, allowlist, machine, outboxSvc, cfg.AuthorizedUserID)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	cancel()
	sched.Stop(10 * time.Second)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", "error", err)
	}

	wg.Wait()

	if err := engine.CloseAll(); err != nil {
		logger.Error("storage close failed", "error", err)
	}
	logger.Info("shutdown complete")
}

func ensurePrincipal(ctx context.Context, ledgerSvc *ledger.Ledger, userID int64) error {
	exists, err := ledgerSvc.PrincipalExists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return ledgerSvc.CreatePrincipal(ctx, userID, money.Zero)
}
