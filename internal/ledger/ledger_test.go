package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/storage"
)

func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()
	engine, err := storage.Open(storage.Config{Path: ":memory:", MaxConnections: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.CloseAll() })
	require.NoError(t, ledgerdb.AutoMigrate(engine.DB()))
	return New(engine)
}

const testUserID int64 = 42

func TestCreatePrincipalIsIdempotent(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.RequireFromString("999")))

	exists, err := ledg.PrincipalExists(ctx, testUserID)
	require.NoError(t, err)
	require.True(t, exists)

	balance, err := ledg.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.True(t, balance.IsZero(), "second CreatePrincipal call must not overwrite the initial balance")
}

func TestAddCategoryDeduplicates(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	inserted, err := ledg.AddCategory(ctx, testUserID, "Comida", ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = ledg.AddCategory(ctx, testUserID, "Comida", ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.False(t, inserted, "re-adding an existing category must be a no-op")

	names, err := ledg.ListCategories(ctx, testUserID, ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.Equal(t, []string{"Comida"}, names)
}

func TestEnsureOtrosCategoryOnlySeedsWhenEmpty(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	require.NoError(t, ledg.EnsureOtrosCategory(ctx, testUserID, ledgerdb.CategoryExpense))
	names, err := ledg.ListCategories(ctx, testUserID, ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.Equal(t, []string{"Otros"}, names)

	_, err = ledg.AddCategory(ctx, testUserID, "Custom", ledgerdb.CategoryExpense)
	require.NoError(t, err)

	require.NoError(t, ledg.EnsureOtrosCategory(ctx, testUserID, ledgerdb.CategoryExpense))
	namesAfter, err := ledg.ListCategories(ctx, testUserID, ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.Equal(t, len(names)+1, len(namesAfter), "seeding must not run again once a category already exists")
}

func TestEnsureSubscriptionCategoriesSeedsThreeDefaults(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	require.NoError(t, ledg.EnsureSubscriptionCategories(ctx, testUserID))
	names, err := ledg.ListCategories(ctx, testUserID, ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Servicios", "Entretenimiento", "Otros"}, names)
}

func TestAddMovementUpdatesBalance(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.RequireFromString("100.00")))

	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindIncome, "Salary", decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)
	_, err = ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("30.00"), "lunch")
	require.NoError(t, err)

	balance, err := ledg.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, "120.00", balance.StringFixed(2))
}

func TestDeleteMovementInvalidatesSummary(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("10.00"), "")
	require.NoError(t, err)

	movements, err := ledg.ListMovements(ctx, testUserID, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)

	// MonthSummary writes the cache row that the delete must drop.
	_, _, err = ledg.MonthSummary(ctx, testUserID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ledg.DeleteMovement(ctx, movements[0].ID, testUserID))

	var cached int64
	require.NoError(t, ledg.engine.DB().Model(&ledgerdb.MonthlySummary{}).
		Where("user_id = ?", testUserID).Count(&cached).Error)
	require.Zero(t, cached, "deleting a movement must drop its month's cached summary")

	balance, err := ledg.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestDeleteMovementRejectsWrongOwner(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("10.00"), "")
	require.NoError(t, err)
	movements, err := ledg.ListMovements(ctx, testUserID, nil, nil, nil)
	require.NoError(t, err)

	err = ledg.DeleteMovement(ctx, movements[0].ID, 999)
	require.Error(t, err)
}

func TestMonthSummaryAggregatesFreshEvenWithStaleCache(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	fixed := ledg.WithClock(func() time.Time { return now })

	_, err := fixed.AddMovement(ctx, testUserID, ledgerdb.KindIncome, "Salary", decimal.RequireFromString("200.00"), "")
	require.NoError(t, err)
	_, err = fixed.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("40.00"), "")
	require.NoError(t, err)

	month, year := 5, 2026
	totals, balance, err := fixed.MonthSummary(ctx, testUserID, &month, &year)
	require.NoError(t, err)
	require.Equal(t, "200.00", totals.Income.StringFixed(2))
	require.Equal(t, "40.00", totals.Expense.StringFixed(2))
	require.Equal(t, "160.00", balance.StringFixed(2))

	// A second movement lands, then a stale cache row holding the earlier
	// totals is planted; the next call must reflect the new movement
	// rather than return the stale cached totals.
	_, err = fixed.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("10.00"), "")
	require.NoError(t, err)
	require.NoError(t, fixed.engine.DB().Create(&ledgerdb.MonthlySummary{
		UserID:       testUserID,
		Month:        month,
		Year:         year,
		IncomeTotal:  totals.Income,
		ExpenseTotal: totals.Expense,
		SavingTotal:  totals.Saving,
		Balance:      balance,
		RefreshedAt:  now,
	}).Error)
	totals, _, err = fixed.MonthSummary(ctx, testUserID, &month, &year)
	require.NoError(t, err)
	require.Equal(t, "50.00", totals.Expense.StringFixed(2))
}

func TestEvaluateAlertsFiresOnThresholdExceeded(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	require.NoError(t, ledg.UpsertAlert(ctx, testUserID, ledgerdb.ScopeDaily, decimal.RequireFromString("25.00")))

	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("30.00"), "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, ledg.engine.DB().Model(&ledgerdb.OutboxNotification{}).
		Where("user_id = ? AND kind = ?", testUserID, ledgerdb.OutboxAlert).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestEvaluateAlertsDoesNotFireBelowThreshold(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	require.NoError(t, ledg.UpsertAlert(ctx, testUserID, ledgerdb.ScopeDaily, decimal.RequireFromString("100.00")))

	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("30.00"), "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, ledg.engine.DB().Model(&ledgerdb.OutboxNotification{}).
		Where("user_id = ? AND kind = ?", testUserID, ledgerdb.OutboxAlert).Count(&count).Error)
	require.Zero(t, count)
}

func TestNextChargeDateClampsToLastDayOfMonth(t *testing.T) {
	today := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	next := nextChargeDate(today, 31)
	require.Equal(t, time.February, next.Month())
	require.Equal(t, 28, next.Day())
}

func TestNextChargeDateRollsToNextYear(t *testing.T) {
	today := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	next := nextChargeDate(today, 5)
	require.Equal(t, 2027, next.Year())
	require.Equal(t, time.January, next.Month())
	require.Equal(t, 5, next.Day())
}

func TestProcessSubscriptionChargesAndAdvances(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.RequireFromString("500.00")))

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	fixed := ledg.WithClock(func() time.Time { return now })
	sub, err := fixed.AddSubscription(ctx, testUserID, "Netflix", decimal.RequireFromString("15.00"), "Suscripciones", 10)
	require.NoError(t, err)
	require.Equal(t, time.April, sub.NextChargeDate.Month())

	// force it due by backdating next_charge_date directly
	require.NoError(t, fixed.engine.DB().Model(sub).Update("next_charge_date", now).Error)

	processed, err := fixed.ProcessSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, processed)
	require.True(t, processed.NextChargeDate.After(now))

	balance, err := fixed.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, "485.00", balance.StringFixed(2))
}

func TestProcessSubscriptionAdvancesPastClampedMonth(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.RequireFromString("500.00")))

	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	fixed := ledg.WithClock(func() time.Time { return now })
	sub, err := fixed.AddSubscription(ctx, testUserID, "Rent", decimal.RequireFromString("900.00"), "Hogar", 31)
	require.NoError(t, err)
	// Charge day 31 is not after today's day (31), so AddSubscription already
	// schedules it for Feb 28; force it due today so processing a Jan 31
	// charge exercises the clamp case (Feb has 28 days in 2026).
	require.NoError(t, fixed.engine.DB().Model(sub).Update("next_charge_date", now).Error)

	processed, err := fixed.ProcessSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, processed)
	require.Equal(t, time.February, processed.NextChargeDate.Month())
	require.Equal(t, 28, processed.NextChargeDate.Day())

	secondRun := processed.NextChargeDate
	require.NoError(t, fixed.engine.DB().Model(processed).Update("next_charge_date", secondRun).Error)
	processedAgain, err := fixed.ProcessSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, time.March, processedAgain.NextChargeDate.Month())
	require.True(t, processedAgain.NextChargeDate.After(secondRun), "next_charge_date must advance past a clamped charge day instead of sticking in the same month")
}

func TestProcessSubscriptionInactiveReturnsNil(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	sub, err := ledg.AddSubscription(ctx, testUserID, "Gym", decimal.RequireFromString("20.00"), "Salud", 1)
	require.NoError(t, err)
	require.NoError(t, ledg.DeactivateSubscription(ctx, sub.ID, testUserID))

	processed, err := ledg.ProcessSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Nil(t, processed)
}

func TestListDueRemindersAndDispatch(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fixed := ledg.WithClock(func() time.Time { return now })
	past := now.Add(-48 * time.Hour)
	reminder, err := fixed.AddReminder(ctx, testUserID, "Pay rent", decimal.NullDecimal{}, past)
	require.NoError(t, err)

	due, err := fixed.ListDueReminders(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, fixed.MarkReminderDispatched(ctx, reminder.ID))
	due, err = fixed.ListDueReminders(ctx)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestDebtViewSignsAmountByDirection(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	_, err := ledg.AddDebt(ctx, testUserID, "Alice", decimal.RequireFromString("40.00"), ledgerdb.OwedToPrincipal, "")
	require.NoError(t, err)
	_, err = ledg.AddDebt(ctx, testUserID, "Bob", decimal.RequireFromString("25.00"), ledgerdb.OwedByPrincipal, "")
	require.NoError(t, err)

	views, err := ledg.ListActiveDebts(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		if v.CounterpartyName == "Alice" {
			require.True(t, v.SignedAmount.IsPositive())
		} else {
			require.True(t, v.SignedAmount.IsNegative())
		}
	}
}

func TestMarkDebtSettledRejectsUnknown(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	err := ledg.MarkDebtSettled(ctx, 9999, testUserID)
	require.Error(t, err)
}

func TestUpsertAlertReplacesExisting(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))

	require.NoError(t, ledg.UpsertAlert(ctx, testUserID, ledgerdb.ScopeMonthly, decimal.RequireFromString("100.00")))
	require.NoError(t, ledg.UpsertAlert(ctx, testUserID, ledgerdb.ScopeMonthly, decimal.RequireFromString("250.00")))

	alerts, err := ledg.ListActiveAlerts(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "250.00", alerts[0].Threshold.StringFixed(2))
}

func TestMovementsForExportOrdersByDate(t *testing.T) {
	ledg := setupTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledg.CreatePrincipal(ctx, testUserID, decimal.Zero))
	_, err := ledg.AddMovement(ctx, testUserID, ledgerdb.KindExpense, "Comida", decimal.RequireFromString("5.00"), "")
	require.NoError(t, err)
	// Inserted second but dated earlier, so it must come last.
	earlier := ledg.WithClock(func() time.Time { return time.Date(2020, 1, 15, 0, 0, 0, 0, time.Local) })
	_, err = earlier.AddMovement(ctx, testUserID, ledgerdb.KindIncome, "Salary", decimal.RequireFromString("9.00"), "")
	require.NoError(t, err)

	movements, err := ledg.MovementsForExport(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, "Comida", movements[0].Category)
	require.Equal(t, "Salary", movements[1].Category)
}
