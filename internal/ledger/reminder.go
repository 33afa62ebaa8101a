package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

func (l *Ledger) AddReminder(ctx context.Context, userID int64, description string, amount decimal.NullDecimal, dueDate time.Time) (*ledgerdb.Reminder, error) {
	reminder := &ledgerdb.Reminder{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		DueDate:     dateOnly(dueDate),
		Active:      true,
	}
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(reminder).Error
	})
	return reminder, err
}

func (l *Ledger) ListActiveReminders(ctx context.Context, userID int64) ([]ledgerdb.Reminder, error) {
	var reminders []ledgerdb.Reminder
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND active = ?", userID, true).Order("due_date ASC").Find(&reminders).Error
	})
	return reminders, err
}

// ListDueReminders returns active reminders, across all principals,
// whose due_date <= today.
func (l *Ledger) ListDueReminders(ctx context.Context) ([]ledgerdb.Reminder, error) {
	var reminders []ledgerdb.Reminder
	today := l.today()
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("active = ? AND due_date <= ?", true, today).Find(&reminders).Error
	})
	return reminders, err
}

func (l *Ledger) MarkReminderDispatched(ctx context.Context, id uint64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&ledgerdb.Reminder{}).Where("id = ?", id).Update("active", false).Error
	})
}
