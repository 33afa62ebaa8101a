package dialog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/validate"
)

func (m *Machine) advanceSetup(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepAskInitialBalance:
		amount, err := validate.Amount(input, true)
		if err != nil {
			return reject(fmtErr(err))
		}
		if err := m.ledger.UpdateInitialBalance(ctx, userID, amount); err != nil {
			return Result{}, State{}, err
		}
		if err := m.ledger.MarkConfigured(ctx, userID); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Setup complete. Welcome to your ledger.")
	default:
		return reject("unexpected input")
	}
}

func (m *Machine) advanceAddMovement(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepMovementChooseCategory:
		if input == NewCategorySentinel {
			next := state
			next.Step = StepMovementNewCategory
			return hold(next, promptFor(StepMovementNewCategory))
		}
		category, err := validate.Name(input, validate.MaxCategoryNameLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.Category = category
		next.Step = StepMovementEnterAmount
		return hold(next, promptFor(StepMovementEnterAmount))

	case StepMovementNewCategory:
		category, err := validate.Name(input, validate.MaxCategoryNameLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		categoryKind := movementKindToCategoryKind(state.Payload.MovementKind)
		if _, err := m.ledger.AddCategory(ctx, userID, category, categoryKind); err != nil {
			return Result{}, State{}, err
		}
		next := state
		next.Payload.Category = category
		next.Step = StepMovementEnterAmount
		return hold(next, promptFor(StepMovementEnterAmount))

	case StepMovementEnterAmount:
		amount, err := validate.Amount(input, false)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.Amount = amount
		next.Step = StepMovementEnterDescription
		return hold(next, promptFor(StepMovementEnterDescription))

	case StepMovementEnterDescription:
		description := ""
		if !validate.IsEmptyDescriptionLiteral(input) {
			description = validate.Description(input)
		}
		if _, err := m.ledger.AddMovement(ctx, userID, state.Payload.MovementKind, state.Payload.Category, state.Payload.Amount, description); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Movement recorded.")

	default:
		return reject("unexpected input")
	}
}

func movementKindToCategoryKind(kind ledgerdb.MovementKind) ledgerdb.CategoryKind {
	switch kind {
	case ledgerdb.KindIncome:
		return ledgerdb.CategoryIncome
	case ledgerdb.KindSaving:
		return ledgerdb.CategorySaving
	default:
		return ledgerdb.CategoryExpense
	}
}

func (m *Machine) advanceAddSubscription(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepSubscriptionEnterName:
		name, err := validate.Name(input, validate.MaxSubscriptionNameLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.SubscriptionName = name
		next.Step = StepSubscriptionEnterAmount
		return hold(next, promptFor(StepSubscriptionEnterAmount))

	case StepSubscriptionEnterAmount:
		amount, err := validate.Amount(input, false)
		if err != nil {
			return reject(fmtErr(err))
		}
		if err := m.ledger.EnsureSubscriptionCategories(ctx, userID); err != nil {
			return Result{}, State{}, err
		}
		next := state
		next.Payload.Amount = amount
		next.Step = StepSubscriptionChooseCategory
		return hold(next, promptFor(StepSubscriptionChooseCategory))

	case StepSubscriptionChooseCategory:
		category, err := validate.Name(input, validate.MaxCategoryNameLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.Category = category
		next.Step = StepSubscriptionEnterDay
		return hold(next, promptFor(StepSubscriptionEnterDay))

	case StepSubscriptionEnterDay:
		day, err := validate.Day(input)
		if err != nil {
			return reject(fmtErr(err))
		}
		if _, err := m.ledger.AddSubscription(ctx, userID, state.Payload.SubscriptionName, state.Payload.Amount, state.Payload.Category, day); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Subscription created.")

	default:
		return reject("unexpected input")
	}
}

func (m *Machine) advanceAddReminder(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepReminderEnterDescription:
		description, err := validate.Name(input, validate.MaxDescriptionLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.ReminderDescription = description
		next.Step = StepReminderEnterDate
		return hold(next, promptFor(StepReminderEnterDate))

	case StepReminderEnterDate:
		dueDate, err := validate.Date(input, m.now())
		if err != nil {
			return reject(fmtErr(err))
		}
		if _, err := m.ledger.AddReminder(ctx, userID, state.Payload.ReminderDescription, noAmount(), dueDate); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Reminder set.")

	default:
		return reject("unexpected input")
	}
}

func (m *Machine) advanceAddDebt(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepDebtEnterName:
		name, err := validate.Name(input, validate.MaxDebtCounterpartyLength)
		if err != nil {
			return reject(fmtErr(err))
		}
		next := state
		next.Payload.DebtName = name
		next.Step = StepDebtChooseDirection
		return hold(next, promptFor(StepDebtChooseDirection))

	case StepDebtChooseDirection:
		direction, ok := parseDebtDirection(input)
		if !ok {
			return reject("choose whether this is owed to you or by you")
		}
		next := state
		next.Payload.DebtDirection = direction
		next.Step = StepDebtEnterAmount
		return hold(next, promptFor(StepDebtEnterAmount))

	case StepDebtEnterAmount:
		amount, err := validate.Amount(input, false)
		if err != nil {
			return reject(fmtErr(err))
		}
		if _, err := m.ledger.AddDebt(ctx, userID, state.Payload.DebtName, amount, state.Payload.DebtDirection, ""); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Debt recorded.")

	default:
		return reject("unexpected input")
	}
}

func parseDebtDirection(input string) (ledgerdb.DebtDirection, bool) {
	switch input {
	case "owed_to", "debt_type_owed_to":
		return ledgerdb.OwedToPrincipal, true
	case "owed_by", "debt_type_owed_by":
		return ledgerdb.OwedByPrincipal, true
	default:
		return "", false
	}
}

func (m *Machine) advanceConfigureAlert(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepAlertChooseScope:
		scope, ok := parseAlertScope(input)
		if !ok {
			return reject("choose daily or monthly")
		}
		next := state
		next.Payload.AlertScope = scope
		next.Step = StepAlertEnterThreshold
		return hold(next, promptFor(StepAlertEnterThreshold))

	case StepAlertEnterThreshold:
		threshold, err := validate.Amount(input, false)
		if err != nil {
			return reject(fmtErr(err))
		}
		if err := m.ledger.UpsertAlert(ctx, userID, state.Payload.AlertScope, threshold); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Alert configured.")

	default:
		return reject("unexpected input")
	}
}

func parseAlertScope(input string) (ledgerdb.AlertScope, bool) {
	switch input {
	case "daily", "alert_type_daily":
		return ledgerdb.ScopeDaily, true
	case "monthly", "alert_type_monthly":
		return ledgerdb.ScopeMonthly, true
	default:
		return "", false
	}
}

func (m *Machine) advanceChangeBalance(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Step {
	case StepBalanceEnterAmount:
		amount, err := validate.Amount(input, true)
		if err != nil {
			return reject(fmtErr(err))
		}
		if err := m.ledger.UpdateInitialBalance(ctx, userID, amount); err != nil {
			return Result{}, State{}, err
		}
		return done("✅ Initial balance updated.")
	default:
		return reject("unexpected input")
	}
}

func noAmount() decimal.NullDecimal {
	return decimal.NullDecimal{}
}
