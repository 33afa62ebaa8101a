package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerr"
)

// AddMovement inserts a movement dated today, invalidates the monthly
// summary for its period, refreshes the daily summary for today, and —
// for expenses — evaluates alert predicates, all in one transaction.
func (l *Ledger) AddMovement(ctx context.Context, userID int64, kind ledgerdb.MovementKind, category string, amount decimal.Decimal, description string) (bool, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.add_movement",
		trace.WithAttributes(attribute.String("movement.kind", string(kind))))
	defer span.End()

	today := l.today()
	inserted := false
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		movement := ledgerdb.Movement{
			UserID:      userID,
			Date:        today,
			Kind:        kind,
			Category:    category,
			Amount:      amount,
			Description: description,
			Month:       int(today.Month()),
			Year:        today.Year(),
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		if err := invalidateMonthlySummary(tx, userID, movement.Month, movement.Year); err != nil {
			return err
		}
		if err := refreshDailySummary(tx, userID, today); err != nil {
			return err
		}
		if kind == ledgerdb.KindExpense {
			if err := evaluateAlerts(tx, userID, today); err != nil {
				return err
			}
		}
		inserted = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return inserted, err
	}
	span.SetStatus(codes.Ok, "movement recorded")
	return inserted, nil
}

// ListMovements defaults to the current month; returns up to 100
// most-recent rows ordered by date desc, id desc.
func (l *Ledger) ListMovements(ctx context.Context, userID int64, month, year *int, kind *ledgerdb.MovementKind) ([]ledgerdb.Movement, error) {
	today := l.today()
	m := today.Month()
	y := today.Year()
	if month != nil {
		m = time.Month(*month)
	}
	if year != nil {
		y = *year
	}
	var movements []ledgerdb.Movement
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND month = ? AND year = ?", userID, int(m), y)
		if kind != nil {
			query = query.Where("kind = ?", *kind)
		}
		return query.Order("date DESC, id DESC").Limit(100).Find(&movements).Error
	})
	return movements, err
}

// DeleteMovement removes a movement belonging to userID and invalidates
// its monthly summary.
func (l *Ledger) DeleteMovement(ctx context.Context, movementID uint64, userID int64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var movement ledgerdb.Movement
		if err := tx.Where("id = ? AND user_id = ?", movementID, userID).First(&movement).Error; err != nil {
			if isNotFound(err) {
				return ledgerr.New(ledgerr.NotFound, "movement not found")
			}
			return err
		}
		if err := tx.Delete(&movement).Error; err != nil {
			return err
		}
		return invalidateMonthlySummary(tx, userID, movement.Month, movement.Year)
	})
}

// --- Balance & summaries ---

// CurrentBalance computes initial_balance + signed sum of all movements.
func (l *Ledger) CurrentBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		balance, err = currentBalanceTx(tx, userID)
		return err
	})
	return balance, err
}

func currentBalanceTx(tx *gorm.DB, userID int64) (decimal.Decimal, error) {
	var principal ledgerdb.Principal
	if err := tx.Where("user_id = ?", userID).First(&principal).Error; err != nil {
		return decimal.Zero, err
	}
	signed, err := signedMovementSum(tx, "user_id = ?", userID)
	if err != nil {
		return decimal.Zero, err
	}
	return principal.InitialBalance.Add(signed), nil
}

// signedMovementSum sums amounts with +1 for income and -1 for expense
// or saving, over movements matching the given WHERE clause.
func signedMovementSum(tx *gorm.DB, where string, args ...interface{}) (decimal.Decimal, error) {
	var movements []ledgerdb.Movement
	if err := tx.Where(where, args...).Find(&movements).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, m := range movements {
		switch m.Kind {
		case ledgerdb.KindIncome:
			total = total.Add(m.Amount)
		case ledgerdb.KindExpense, ledgerdb.KindSaving:
			total = total.Sub(m.Amount)
		}
	}
	return total, nil
}

type KindTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Saving  decimal.Decimal
}

func sumByKind(tx *gorm.DB, where string, args ...interface{}) (KindTotals, error) {
	var movements []ledgerdb.Movement
	if err := tx.Where(where, args...).Find(&movements).Error; err != nil {
		return KindTotals{}, err
	}
	totals := KindTotals{Income: decimal.Zero, Expense: decimal.Zero, Saving: decimal.Zero}
	for _, m := range movements {
		switch m.Kind {
		case ledgerdb.KindIncome:
			totals.Income = totals.Income.Add(m.Amount)
		case ledgerdb.KindExpense:
			totals.Expense = totals.Expense.Add(m.Amount)
		case ledgerdb.KindSaving:
			totals.Saving = totals.Saving.Add(m.Amount)
		}
	}
	return totals, nil
}

// DailyBalance returns today's (or the given date's) per-kind totals
// plus the full current balance.
func (l *Ledger) DailyBalance(ctx context.Context, userID int64, date time.Time) (KindTotals, decimal.Decimal, error) {
	var totals KindTotals
	var balance decimal.Decimal
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		totals, err = sumByKind(tx, "user_id = ? AND date = ?", userID, dateOnly(date))
		if err != nil {
			return err
		}
		balance, err = currentBalanceTx(tx, userID)
		return err
	})
	return totals, balance, err
}

// MonthSummary returns per-kind totals for (month, year) — default
// current month — and the acting current balance. The underlying cache
// rows are advisory only; the totals below are always freshly
// aggregated so coherence (invariant 4) holds regardless of cache state.
func (l *Ledger) MonthSummary(ctx context.Context, userID int64, month, year *int) (KindTotals, decimal.Decimal, error) {
	today := l.today()
	m := int(today.Month())
	y := today.Year()
	if month != nil {
		m = *month
	}
	if year != nil {
		y = *year
	}
	var totals KindTotals
	var balance decimal.Decimal
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		totals, err = sumByKind(tx, "user_id = ? AND month = ? AND year = ?", userID, m, y)
		if err != nil {
			return err
		}
		balance, err = currentBalanceTx(tx, userID)
		if err != nil {
			return err
		}
		return refreshMonthlySummaryCache(tx, userID, m, y, totals, balance)
	})
	return totals, balance, err
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func invalidateMonthlySummary(tx *gorm.DB, userID int64, month, year int) error {
	return tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Delete(&ledgerdb.MonthlySummary{}).Error
}

func refreshMonthlySummaryCache(tx *gorm.DB, userID int64, month, year int, totals KindTotals, balance decimal.Decimal) error {
	cache := ledgerdb.MonthlySummary{
		UserID:       userID,
		Month:        month,
		Year:         year,
		IncomeTotal:  totals.Income,
		ExpenseTotal: totals.Expense,
		SavingTotal:  totals.Saving,
		Balance:      balance,
		RefreshedAt:  time.Now(),
	}
	return tx.Save(&cache).Error
}

func refreshDailySummary(tx *gorm.DB, userID int64, date time.Time) error {
	totals, err := sumByKind(tx, "user_id = ? AND date = ?", userID, dateOnly(date))
	if err != nil {
		return err
	}
	cache := ledgerdb.DailySummary{
		UserID:       userID,
		Date:         dateOnly(date),
		IncomeTotal:  totals.Income,
		ExpenseTotal: totals.Expense,
		SavingTotal:  totals.Saving,
		RefreshedAt:  time.Now(),
	}
	return tx.Save(&cache).Error
}

// evaluateAlerts fires daily/monthly outbox notifications when an
// expense write pushes the relevant sum strictly past its threshold.
func evaluateAlerts(tx *gorm.DB, userID int64, today time.Time) error {
	var alerts []ledgerdb.Alert
	if err := tx.Where("user_id = ? AND active = ?", userID, true).Find(&alerts).Error; err != nil {
		return err
	}
	for _, alert := range alerts {
		var spent decimal.Decimal
		var err error
		switch alert.Scope {
		case ledgerdb.ScopeDaily:
			spent, err = expenseSum(tx, "user_id = ? AND kind = ? AND date = ?", userID, ledgerdb.KindExpense, dateOnly(today))
		case ledgerdb.ScopeMonthly:
			spent, err = expenseSum(tx, "user_id = ? AND kind = ? AND month = ? AND year = ?", userID, ledgerdb.KindExpense, int(today.Month()), today.Year())
		}
		if err != nil {
			return err
		}
		if !spent.GreaterThan(alert.Threshold) {
			continue
		}
		excess := spent.Sub(alert.Threshold)
		payload := fmt.Sprintf(`{"scope":%q,"threshold":%q,"spent":%q,"excess":%q}`,
			alert.Scope, alert.Threshold.String(), spent.String(), excess.String())
		message := fmt.Sprintf("LIMITE %s SUPERADO! Limite: $%s, Gastado: $%s", alert.Scope, alert.Threshold.StringFixed(2), spent.StringFixed(2))
		notification := ledgerdb.OutboxNotification{
			UserID:    userID,
			Kind:      ledgerdb.OutboxAlert,
			Message:   message,
			Payload:   payload,
			DedupeKey: uuid.NewString(),
			Processed: false,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
	}
	return nil
}

func expenseSum(tx *gorm.DB, where string, args ...interface{}) (decimal.Decimal, error) {
	var movements []ledgerdb.Movement
	if err := tx.Where(where, args...).Find(&movements).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Amount)
	}
	return total, nil
}
