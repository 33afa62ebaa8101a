// Package dialog implements the deterministic dialog state machine:
// given (current_step, input), exactly one transition is defined or the
// input is rejected with a user-visible error. Steps are a tagged enum
// per the redesign note in section 9, not stringly-typed dispatch.
package dialog

import (
	"github.com/shopspring/decimal"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

type Flow int

const (
	FlowNone Flow = iota
	FlowSetup
	FlowAddMovement
	FlowAddSubscription
	FlowAddReminder
	FlowAddDebt
	FlowConfigureAlert
	FlowChangeBalance
)

type Step int

const (
	StepNone Step = iota
	StepAskInitialBalance

	StepMovementChooseCategory
	StepMovementNewCategory
	StepMovementEnterAmount
	StepMovementEnterDescription

	StepSubscriptionEnterName
	StepSubscriptionEnterAmount
	StepSubscriptionChooseCategory
	StepSubscriptionEnterDay

	StepReminderEnterDescription
	StepReminderEnterDate

	StepDebtEnterName
	StepDebtChooseDirection
	StepDebtEnterAmount

	StepAlertChooseScope
	StepAlertEnterThreshold

	StepBalanceEnterAmount
)

// NewCategorySentinel is the input value the chooseCategory step
// recognizes as "open the free-text new-category step", sent by the
// transport when the user taps the extra inline button.
const NewCategorySentinel = "__new_category__"

// Payload accumulates the fields a flow collects across its steps. It
// is a plain struct, not an untyped map, so each flow only ever reads
// the fields it itself wrote.
type Payload struct {
	MovementKind ledgerdb.MovementKind
	Category     string
	Amount       decimal.Decimal

	SubscriptionName string
	ChargeDay        int

	ReminderDescription string

	DebtName      string
	DebtDirection ledgerdb.DebtDirection

	AlertScope ledgerdb.AlertScope
}

// State is the {step, payload, timestamp} record the conversation
// state store persists; the store attaches the timestamp itself.
type State struct {
	Flow    Flow
	Step    Step
	Payload Payload
}

// Result is what Advance returns to the transport: a user-facing
// message, whether the flow completed (state should be cleared,
// already handled internally), and whether the input was rejected
// (state held, message is the validation error).
type Result struct {
	Message  string
	Done     bool
	Rejected bool
}
