// Package scheduler runs the wall-clock-driven task table: subscription
// charges, reminder dispatch, monthly summaries, retention, backups,
// and the two housekeeping sweeps. It generalizes the teacher's
// single-task daily Scheduler (recon/scheduler.go, a time.NewTimer loop
// computing the next due instant) into a multi-cadence table driven by
// robfig/cron/v3, wrapping every task in the same recover-log-continue
// shim the teacher applies per reconciliation run.
package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Juramirezlop/FinanceBot/internal/convstate"
	"github.com/Juramirezlop/FinanceBot/internal/dialog"
	"github.com/Juramirezlop/FinanceBot/internal/export"
	"github.com/Juramirezlop/FinanceBot/internal/ledger"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/outbox"
	"github.com/Juramirezlop/FinanceBot/internal/telemetry"
)

// Config wires the Scheduler to the services each task touches.
type Config struct {
	Ledger           *ledger.Ledger
	Outbox           *outbox.Outbox
	States           *convstate.Store[dialog.State]
	AuthorizedUserID int64
	BackupEnabled    bool
	RetentionDays    int
	StateTTL         time.Duration
	Logger           *slog.Logger
	Location         *time.Location
}

type Scheduler struct {
	cfg    Config
	cron   *cron.Cron
	logger *slog.Logger
	tracer trace.Tracer
}

func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 2 * time.Hour
	}
	return &Scheduler{
		cfg:    cfg,
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		logger: cfg.Logger,
		tracer: otel.Tracer("scheduler"),
	}
}

// Start registers every task and begins the cron runner. Idempotent:
// calling Start twice on an already-running Scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.cron.Entries()) > 0 {
		return nil
	}
	tasks := []struct {
		name  string
		spec  string
		fn    func(context.Context) error
	}{
		{"process-due-subscriptions", "@hourly", s.processDueSubscriptions},
		{"dispatch-due-reminders", "@hourly", s.dispatchDueReminders},
		{"monthly-summary-broadcast", "0 8 * * *", s.monthlySummaryBroadcast},
		{"retention-vacuum", "0 3 * * 0", s.retentionVacuum},
		{"backup-snapshot", "0 2 * * *", s.backupSnapshot},
		{"state-gc", "@every 2h", s.stateGC},
		{"memory-hint", "@every 4h", s.memoryHint},
	}
	for _, task := range tasks {
		task := task
		if _, err := s.cron.AddFunc(task.spec, func() { s.safeRun(ctx, task.name, task.fn) }); err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop joins the cron runner within timeout, then returns regardless
// (the teacher's bounded-join-then-detach shutdown pattern).
func (s *Scheduler) Stop(timeout time.Duration) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(timeout):
		s.logger.Warn("scheduler stop timed out; detaching")
	}
}

// safeRun wraps one task execution so a panic or error is logged and
// the cron runner keeps ticking, per the "never kill the worker"
// propagation policy.
func (s *Scheduler) safeRun(ctx context.Context, name string, fn func(context.Context) error) {
	ctx, span := s.tracer.Start(ctx, "scheduler."+name, trace.WithAttributes(attribute.String("task", name)))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			telemetry.SchedulerTaskFailures.WithLabelValues(name).Inc()
			span.SetStatus(codes.Error, "panic")
			s.logger.Error("scheduler task panicked", "task", name, "panic", r)
		}
	}()
	telemetry.SchedulerTaskRuns.WithLabelValues(name).Inc()
	if err := fn(ctx); err != nil {
		telemetry.SchedulerTaskFailures.WithLabelValues(name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("scheduler task failed", "task", name, "error", err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (s *Scheduler) processDueSubscriptions(ctx context.Context) error {
	due, err := s.cfg.Ledger.ListDueSubscriptions(ctx)
	if err != nil {
		return err
	}
	for _, sub := range due {
		processed, err := s.cfg.Ledger.ProcessSubscription(ctx, sub.ID)
		if err != nil {
			s.logger.Error("process subscription failed", "subscription_id", sub.ID, "error", err)
			continue
		}
		if processed == nil {
			continue
		}
		message := "Subscription charged: " + processed.Name
		if err := s.cfg.Outbox.Enqueue(ctx, processed.UserID, ledgerdb.OutboxSubscriptionCharge, message, ""); err != nil {
			s.logger.Error("enqueue subscription notification failed", "subscription_id", sub.ID, "error", err)
			continue
		}
		telemetry.OutboxEnqueued.WithLabelValues(string(ledgerdb.OutboxSubscriptionCharge)).Inc()
	}
	return nil
}

func (s *Scheduler) dispatchDueReminders(ctx context.Context) error {
	due, err := s.cfg.Ledger.ListDueReminders(ctx)
	if err != nil {
		return err
	}
	for _, reminder := range due {
		message := "Reminder: " + reminder.Description
		if err := s.cfg.Outbox.Enqueue(ctx, reminder.UserID, ledgerdb.OutboxReminderDue, message, ""); err != nil {
			s.logger.Error("enqueue reminder notification failed", "reminder_id", reminder.ID, "error", err)
			continue
		}
		telemetry.OutboxEnqueued.WithLabelValues(string(ledgerdb.OutboxReminderDue)).Inc()
		if err := s.cfg.Ledger.MarkReminderDispatched(ctx, reminder.ID); err != nil {
			s.logger.Error("mark reminder dispatched failed", "reminder_id", reminder.ID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) monthlySummaryBroadcast(ctx context.Context) error {
	now := time.Now().In(s.cfg.Location)
	if now.Day() != 1 {
		return nil
	}
	previousMonthEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	month := int(previousMonthEnd.Month())
	year := previousMonthEnd.Year()

	principals, err := s.cfg.Ledger.ListConfiguredPrincipals(ctx)
	if err != nil {
		return err
	}
	for _, userID := range principals {
		totals, balance, err := s.cfg.Ledger.MonthSummary(ctx, userID, &month, &year)
		if err != nil {
			s.logger.Error("monthly summary failed", "user_id", userID, "error", err)
			continue
		}
		message := "Monthly summary ready."
		payload := summaryPayload(month, year, totals.Income.String(), totals.Expense.String(), totals.Saving.String(), balance.String())
		if err := s.cfg.Outbox.Enqueue(ctx, userID, ledgerdb.OutboxMonthlySummary, message, payload); err != nil {
			s.logger.Error("enqueue monthly summary failed", "user_id", userID, "error", err)
			continue
		}
		telemetry.OutboxEnqueued.WithLabelValues(string(ledgerdb.OutboxMonthlySummary)).Inc()
	}
	return nil
}

func summaryPayload(month, year int, income, expense, saving, balance string) string {
	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	buf.WriteString(strconv.Itoa(month))
	buf.WriteString(`,"year":`)
	buf.WriteString(strconv.Itoa(year))
	buf.WriteString(`,"income":"` + income + `"`)
	buf.WriteString(`,"expense":"` + expense + `"`)
	buf.WriteString(`,"saving":"` + saving + `"`)
	buf.WriteString(`,"balance":"` + balance + `"}`)
	return buf.String()
}

func (s *Scheduler) retentionVacuum(ctx context.Context) error {
	retentionDays := s.cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return s.cfg.Ledger.RetentionCleanup(ctx, retentionDays)
}

func (s *Scheduler) backupSnapshot(ctx context.Context) error {
	if !s.cfg.BackupEnabled {
		return nil
	}
	movements, err := s.cfg.Ledger.MovementsForExport(ctx, s.cfg.AuthorizedUserID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteMovementsCSV(&buf, movements); err != nil {
		return err
	}
	snapshotID := uuid.NewString()
	message := "Backup ready: " + snapshotID
	if err := s.cfg.Outbox.EnqueueIdempotent(ctx, s.cfg.AuthorizedUserID, ledgerdb.OutboxBackupReady, message, buf.String(), snapshotID); err != nil {
		return err
	}
	telemetry.OutboxEnqueued.WithLabelValues(string(ledgerdb.OutboxBackupReady)).Inc()
	return nil
}

func (s *Scheduler) stateGC(ctx context.Context) error {
	removed := s.cfg.States.SweepExpired(s.cfg.StateTTL)
	if removed > 0 {
		s.logger.Info("swept expired conversation states", "count", removed)
	}
	return nil
}

// memoryHint is a best-effort compaction hint; Go's garbage collector
// needs no equivalent of the source's psutil-driven memory manager, so
// this task is a no-op: it does not touch the runtime, and only
// safeRun's run counter and span record that it ran.
func (s *Scheduler) memoryHint(ctx context.Context) error {
	return nil
}
