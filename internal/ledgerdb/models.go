// Package ledgerdb defines the GORM schema for the ledger's tables and
// the indexes the query workloads in section 4 depend on. Money columns
// are stored as TEXT (decimal.Decimal's canonical string form) to avoid
// any binary-float round trip.
package ledgerdb

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementKind string

const (
	KindIncome  MovementKind = "income"
	KindExpense MovementKind = "expense"
	KindSaving  MovementKind = "saving"
)

type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
	CategorySaving  CategoryKind = "saving"
)

type AlertScope string

const (
	ScopeDaily   AlertScope = "daily"
	ScopeMonthly AlertScope = "monthly"
)

type DebtDirection string

const (
	OwedToPrincipal DebtDirection = "owed_to_principal"
	OwedByPrincipal DebtDirection = "owed_by_principal"
)

type OutboxKind string

const (
	OutboxAlert              OutboxKind = "alert"
	OutboxSubscriptionCharge OutboxKind = "subscription-charged"
	OutboxReminderDue        OutboxKind = "reminder-due"
	OutboxMonthlySummary     OutboxKind = "monthly-summary"
	OutboxBackupReady        OutboxKind = "backup-ready"
)

// Principal is the sole allowlisted end user of an instance.
type Principal struct {
	UserID         int64  `gorm:"primaryKey"`
	InitialBalance decimal.Decimal `gorm:"type:text;not null"`
	Configured     bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
}

// Category is a (user_id, name, kind) unique, soft-deactivated label.
type Category struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_category_identity;index:idx_category_user_kind_active"`
	Name     string `gorm:"not null;uniqueIndex:idx_category_identity;size:50"`
	Kind     CategoryKind `gorm:"not null;uniqueIndex:idx_category_identity;index:idx_category_user_kind_active"`
	Active   bool   `gorm:"not null;default:true;index:idx_category_user_kind_active"`
}

// Movement is an immutable ledger entry.
type Movement struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64  `gorm:"not null;index:idx_movement_user_date;index:idx_movement_user_month_year"`
	Date        time.Time `gorm:"not null;index:idx_movement_user_date"`
	Kind        MovementKind `gorm:"not null"`
	Category    string `gorm:"not null;size:50"`
	Amount      decimal.Decimal `gorm:"type:text;not null"`
	Description string `gorm:"size:500"`
	Month       int    `gorm:"not null;index:idx_movement_user_month_year"`
	Year        int    `gorm:"not null;index:idx_movement_user_month_year"`
	CreatedAt   time.Time
}

// Subscription materializes a recurring expense Movement on its charge day.
type Subscription struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	UserID          int64  `gorm:"not null;index:idx_subscription_user_active"`
	Name            string `gorm:"not null;size:100"`
	Amount          decimal.Decimal `gorm:"type:text;not null"`
	ExpenseCategory string `gorm:"not null;size:50"`
	ChargeDay       int    `gorm:"not null"`
	NextChargeDate  time.Time `gorm:"not null;index:idx_subscription_next_charge"`
	Active          bool   `gorm:"not null;default:true;index:idx_subscription_user_active;index:idx_subscription_next_charge"`
}

// Reminder is a one-shot dated notification.
type Reminder struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64  `gorm:"not null;index:idx_reminder_user_active"`
	Description string `gorm:"not null;size:500"`
	Amount      decimal.NullDecimal `gorm:"type:text"`
	DueDate     time.Time `gorm:"not null;index:idx_reminder_due"`
	Active      bool   `gorm:"not null;default:true;index:idx_reminder_user_active;index:idx_reminder_due"`
}

// Debt is a non-ledger record of money owed in either direction.
type Debt struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	UserID           int64  `gorm:"not null;index:idx_debt_user_active"`
	CounterpartyName string `gorm:"not null;size:100"`
	Amount           decimal.Decimal `gorm:"type:text;not null"`
	Direction        DebtDirection `gorm:"not null"`
	Description      string `gorm:"size:500"`
	Active           bool   `gorm:"not null;default:true;index:idx_debt_user_active"`
	CreatedAt        time.Time
}

// Alert is a spending-limit rule evaluated on every expense write.
type Alert struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_alert_identity"`
	Scope     AlertScope `gorm:"not null;uniqueIndex:idx_alert_identity"`
	Threshold decimal.Decimal `gorm:"type:text;not null"`
	Active    bool   `gorm:"not null;default:true"`
}

// MonthlySummary is an advisory cache; coherence is validated by
// re-aggregation, never trusted blindly (design note 9).
type MonthlySummary struct {
	UserID       int64 `gorm:"primaryKey;uniqueIndex:idx_monthly_identity"`
	Month        int   `gorm:"primaryKey;uniqueIndex:idx_monthly_identity"`
	Year         int   `gorm:"primaryKey;uniqueIndex:idx_monthly_identity"`
	IncomeTotal  decimal.Decimal `gorm:"type:text;not null"`
	ExpenseTotal decimal.Decimal `gorm:"type:text;not null"`
	SavingTotal  decimal.Decimal `gorm:"type:text;not null"`
	Balance      decimal.Decimal `gorm:"type:text;not null"`
	RefreshedAt  time.Time
}

// DailySummary is an advisory per-day cache over the same movement set.
type DailySummary struct {
	UserID       int64     `gorm:"primaryKey;uniqueIndex:idx_daily_identity"`
	Date         time.Time `gorm:"primaryKey;uniqueIndex:idx_daily_identity"`
	IncomeTotal  decimal.Decimal `gorm:"type:text;not null"`
	ExpenseTotal decimal.Decimal `gorm:"type:text;not null"`
	SavingTotal  decimal.Decimal `gorm:"type:text;not null"`
	RefreshedAt  time.Time
}

// OutboxNotification is a durable row consumed by the chat transport.
// DedupeKey is a unique key assigned at enqueue time: a fresh UUID per
// call, unless the caller supplies its own through
// outbox.EnqueueIdempotent. A retry that reuses the same key (e.g. after
// a timed-out write whose commit actually landed) is recognized and
// skipped instead of delivered twice.
type OutboxNotification struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"not null;index:idx_outbox_pending"`
	Kind      OutboxKind `gorm:"not null"`
	Message   string     `gorm:"not null"`
	Payload   string     `gorm:"type:text"` // JSON-encoded structured payload
	DedupeKey string     `gorm:"uniqueIndex;size:36"`
	Processed bool       `gorm:"not null;default:false;index:idx_outbox_pending"`
	CreatedAt time.Time  `gorm:"index:idx_outbox_pending"`
}

// AutoMigrate creates every table and index idempotently.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Principal{},
		&Category{},
		&Movement{},
		&Subscription{},
		&Reminder{},
		&Debt{},
		&Alert{},
		&MonthlySummary{},
		&DailySummary{},
		&OutboxNotification{},
	)
}
