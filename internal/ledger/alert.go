package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerr"
)

// UpsertAlert replaces any existing row for (user_id, scope).
func (l *Ledger) UpsertAlert(ctx context.Context, userID int64, scope ledgerdb.AlertScope, threshold decimal.Decimal) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var existing ledgerdb.Alert
		err := tx.Where("user_id = ? AND scope = ?", userID, scope).First(&existing).Error
		switch {
		case err == nil:
			existing.Threshold = threshold
			existing.Active = true
			return tx.Save(&existing).Error
		case isNotFound(err):
			return tx.Create(&ledgerdb.Alert{UserID: userID, Scope: scope, Threshold: threshold, Active: true}).Error
		default:
			return err
		}
	})
}

func (l *Ledger) ListActiveAlerts(ctx context.Context, userID int64) ([]ledgerdb.Alert, error) {
	var alerts []ledgerdb.Alert
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND active = ?", userID, true).Find(&alerts).Error
	})
	return alerts, err
}

func (l *Ledger) DeactivateAlert(ctx context.Context, id uint64, userID int64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdb.Alert{}).Where("id = ? AND user_id = ?", id, userID).Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerr.New(ledgerr.NotFound, "alert not found")
		}
		return nil
	})
}
