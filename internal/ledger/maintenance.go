package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

// ListConfiguredPrincipals returns every principal that has completed
// first-time setup, for tasks that fan out across all principals.
func (l *Ledger) ListConfiguredPrincipals(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&ledgerdb.Principal{}).Where("configured = ?", true).Pluck("user_id", &ids).Error
	})
	return ids, err
}

// RetentionCleanup deletes dispatched reminders, processed
// notifications, and expired cached summaries older than
// retentionDays, then reclaims space with VACUUM (run outside any
// transaction, since SQLite forbids VACUUM inside one).
func (l *Ledger) RetentionCleanup(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("active = ? AND due_date < ?", false, cutoff).Delete(&ledgerdb.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("processed = ? AND created_at < ?", true, cutoff).Delete(&ledgerdb.OutboxNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("refreshed_at < ?", cutoff).Delete(&ledgerdb.MonthlySummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("refreshed_at < ?", cutoff).Delete(&ledgerdb.DailySummary{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return l.engine.DB().Exec("VACUUM").Error
}
