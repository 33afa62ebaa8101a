package dialog

import (
	"context"
	"fmt"
	"time"

	"github.com/Juramirezlop/FinanceBot/internal/convstate"
	"github.com/Juramirezlop/FinanceBot/internal/ledger"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

// Machine drives the multi-step flows, reading and writing conversation
// state through Store and committing completed flows through Ledger.
type Machine struct {
	ledger *ledger.Ledger
	store  *convstate.Store[State]
	now    func() time.Time
}

func New(l *ledger.Ledger, store *convstate.Store[State]) *Machine {
	return &Machine{ledger: l, store: store, now: time.Now}
}

// Begin starts flow for userID, storing its initial step and returning
// the prompt for that step.
func (m *Machine) Begin(userID int64, flow Flow) (State, string) {
	state := State{Flow: flow, Step: initialStep(flow)}
	m.store.Set(userID, state)
	return state, promptFor(state.Step)
}

// BeginAddMovement starts the add-movement flow for one of
// income/expense/saving, threading the chosen kind into the payload
// before the first step even runs.
func (m *Machine) BeginAddMovement(userID int64, kind ledgerdb.MovementKind) (State, string) {
	state := State{Flow: FlowAddMovement, Step: StepMovementChooseCategory}
	state.Payload.MovementKind = kind
	m.store.Set(userID, state)
	return state, promptFor(state.Step)
}

// Cancel clears any in-flight state for userID and returns to no flow.
func (m *Machine) Cancel(userID int64) {
	m.store.Clear(userID)
}

func initialStep(flow Flow) Step {
	switch flow {
	case FlowSetup:
		return StepAskInitialBalance
	case FlowAddMovement:
		return StepMovementChooseCategory
	case FlowAddSubscription:
		return StepSubscriptionEnterName
	case FlowAddReminder:
		return StepReminderEnterDescription
	case FlowAddDebt:
		return StepDebtEnterName
	case FlowConfigureAlert:
		return StepAlertChooseScope
	case FlowChangeBalance:
		return StepBalanceEnterAmount
	default:
		return StepNone
	}
}

// Advance processes one input against userID's current state. If no
// state is in flight, ok is false and the caller should treat the
// input as an ordinary command instead.
func (m *Machine) Advance(ctx context.Context, userID int64, input string) (Result, bool, error) {
	state, ok := m.store.Get(userID)
	if !ok {
		return Result{}, false, nil
	}

	result, next, err := m.dispatch(ctx, userID, state, input)
	if err != nil {
		return Result{}, true, err
	}
	if result.Rejected {
		// Step held; refresh the timestamp so STATE_TTL measures idle
		// time, not time since the flow began.
		m.store.Set(userID, state)
		return result, true, nil
	}
	if result.Done {
		m.store.Clear(userID)
		return result, true, nil
	}
	m.store.Set(userID, next)
	return result, true, nil
}

func reject(message string) (Result, State, error) {
	return Result{Message: message, Rejected: true}, State{}, nil
}

func hold(state State, message string) (Result, State, error) {
	return Result{Message: message}, state, nil
}

func done(message string) (Result, State, error) {
	return Result{Message: message, Done: true}, State{}, nil
}

func (m *Machine) dispatch(ctx context.Context, userID int64, state State, input string) (Result, State, error) {
	switch state.Flow {
	case FlowSetup:
		return m.advanceSetup(ctx, userID, state, input)
	case FlowAddMovement:
		return m.advanceAddMovement(ctx, userID, state, input)
	case FlowAddSubscription:
		return m.advanceAddSubscription(ctx, userID, state, input)
	case FlowAddReminder:
		return m.advanceAddReminder(ctx, userID, state, input)
	case FlowAddDebt:
		return m.advanceAddDebt(ctx, userID, state, input)
	case FlowConfigureAlert:
		return m.advanceConfigureAlert(ctx, userID, state, input)
	case FlowChangeBalance:
		return m.advanceChangeBalance(ctx, userID, state, input)
	default:
		return reject("no active flow")
	}
}

func promptFor(step Step) string {
	switch step {
	case StepAskInitialBalance:
		return "What is your initial balance?"
	case StepMovementChooseCategory:
		return "Choose a category."
	case StepMovementNewCategory:
		return "Enter the new category name."
	case StepMovementEnterAmount:
		return "Enter the amount."
	case StepMovementEnterDescription:
		return "Enter a description (or \"no\" to skip)."
	case StepSubscriptionEnterName:
		return "What is the subscription name?"
	case StepSubscriptionEnterAmount:
		return "Enter the subscription amount."
	case StepSubscriptionChooseCategory:
		return "Choose an expense category."
	case StepSubscriptionEnterDay:
		return "Enter the charge day (1-31)."
	case StepReminderEnterDescription:
		return "What should the reminder say?"
	case StepReminderEnterDate:
		return "Enter the due date (DD/MM/YYYY or DD/MM)."
	case StepDebtEnterName:
		return "Who is the counterparty?"
	case StepDebtChooseDirection:
		return "Is this owed to you or by you?"
	case StepDebtEnterAmount:
		return "Enter the debt amount."
	case StepAlertChooseScope:
		return "Choose daily or monthly."
	case StepAlertEnterThreshold:
		return "Enter the alert threshold."
	case StepBalanceEnterAmount:
		return "Enter the new initial balance."
	default:
		return ""
	}
}

func fmtErr(err error) string {
	return fmt.Sprintf("❌ %s", err.Error())
}
