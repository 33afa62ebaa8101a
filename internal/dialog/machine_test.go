package dialog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Juramirezlop/FinanceBot/internal/convstate"
	"github.com/Juramirezlop/FinanceBot/internal/ledger"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/storage"
)

const testUserID int64 = 7

func setupTestMachine(t *testing.T) *Machine {
	t.Helper()
	engine, err := storage.Open(storage.Config{Path: ":memory:", MaxConnections: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.CloseAll() })
	require.NoError(t, ledgerdb.AutoMigrate(engine.DB()))

	ledg := ledger.New(engine)
	require.NoError(t, ledg.CreatePrincipal(context.Background(), testUserID, decimal.Zero))

	store := convstate.New[State](10)
	return New(ledg, store)
}

func TestAdvanceWithNoActiveFlowReportsNotOK(t *testing.T) {
	m := setupTestMachine(t)
	_, ok, err := m.Advance(context.Background(), testUserID, "hello")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetupFlowCompletesAndMarksConfigured(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()

	_, prompt := m.Begin(testUserID, FlowSetup)
	require.NotEmpty(t, prompt)

	result, ok, err := m.Advance(ctx, testUserID, "150.00")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, result.Done)

	configured, err := m.ledger.IsConfigured(ctx, testUserID)
	require.NoError(t, err)
	require.True(t, configured)

	_, ok, _ = m.Advance(ctx, testUserID, "anything")
	require.False(t, ok, "state must be cleared after the flow completes")
}

func TestSetupFlowRejectsInvalidAmountAndHoldsStep(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()
	m.Begin(testUserID, FlowSetup)

	result, ok, err := m.Advance(ctx, testUserID, "not-a-number")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, result.Rejected)

	// state must still be in flight for a second attempt
	result, ok, err = m.Advance(ctx, testUserID, "99.00")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, result.Done)
}

func TestAddMovementFlowChoosesExistingCategory(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()
	_, err := m.ledger.AddCategory(ctx, testUserID, "Comida", ledgerdb.CategoryExpense)
	require.NoError(t, err)

	m.BeginAddMovement(testUserID, ledgerdb.KindExpense)

	result, ok, err := m.Advance(ctx, testUserID, "Comida")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, result.Done)

	result, ok, err = m.Advance(ctx, testUserID, "20.00")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, result.Done)

	result, ok, err = m.Advance(ctx, testUserID, "no")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, result.Done)

	balance, err := m.ledger.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, "-20.00", balance.StringFixed(2))
}

func TestAddMovementFlowCreatesNewCategory(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()
	m.BeginAddMovement(testUserID, ledgerdb.KindExpense)

	_, _, err := m.Advance(ctx, testUserID, NewCategorySentinel)
	require.NoError(t, err)

	_, _, err = m.Advance(ctx, testUserID, "Mascotas")
	require.NoError(t, err)

	_, _, err = m.Advance(ctx, testUserID, "15.00")
	require.NoError(t, err)

	result, _, err := m.Advance(ctx, testUserID, "vet visit")
	require.NoError(t, err)
	require.True(t, result.Done)

	names, err := m.ledger.ListCategories(ctx, testUserID, ledgerdb.CategoryExpense)
	require.NoError(t, err)
	require.Contains(t, names, "Mascotas")
}

func TestAddDebtFlowParsesDirection(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()
	m.Begin(testUserID, FlowAddDebt)

	_, _, err := m.Advance(ctx, testUserID, "Alice")
	require.NoError(t, err)

	result, ok, err := m.Advance(ctx, testUserID, "not_a_direction")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, result.Rejected)

	_, _, err = m.Advance(ctx, testUserID, "owed_to")
	require.NoError(t, err)

	result, _, err = m.Advance(ctx, testUserID, "30.00")
	require.NoError(t, err)
	require.True(t, result.Done)

	debts, err := m.ledger.ListActiveDebts(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	require.True(t, debts[0].SignedAmount.IsPositive())
}

func TestCancelClearsInFlightState(t *testing.T) {
	m := setupTestMachine(t)
	m.Begin(testUserID, FlowAddReminder)
	m.Cancel(testUserID)

	_, ok, err := m.Advance(context.Background(), testUserID, "anything")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFastPathExpenseCommitsImmediately(t *testing.T) {
	m := setupTestMachine(t)
	ctx := context.Background()

	result, err := m.FastPath(ctx, testUserID, ledgerdb.KindExpense, "12.50", "coffee")
	require.NoError(t, err)
	require.True(t, result.Done)

	balance, err := m.ledger.CurrentBalance(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, "-12.50", balance.StringFixed(2))
}

func TestFastPathRejectsInvalidAmount(t *testing.T) {
	m := setupTestMachine(t)
	result, err := m.FastPath(context.Background(), testUserID, ledgerdb.KindIncome, "not-valid", "")
	require.NoError(t, err)
	require.True(t, result.Rejected)
}
