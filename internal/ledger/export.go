package ledger

import (
	"context"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
)

// MovementsForExport returns every movement for userID ordered by date
// descending, for the export serializer to render as CSV.
func (l *Ledger) MovementsForExport(ctx context.Context, userID int64) ([]ledgerdb.Movement, error) {
	var movements []ledgerdb.Movement
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Order("date DESC, id DESC").Find(&movements).Error
	})
	return movements, err
}
