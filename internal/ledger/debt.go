package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerr"
)

func (l *Ledger) AddDebt(ctx context.Context, userID int64, name string, amount decimal.Decimal, direction ledgerdb.DebtDirection, description string) (*ledgerdb.Debt, error) {
	debt := &ledgerdb.Debt{
		UserID:           userID,
		CounterpartyName: name,
		Amount:           amount,
		Direction:        direction,
		Description:      description,
		Active:           true,
		CreatedAt:        l.now(),
	}
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(debt).Error
	})
	return debt, err
}

// DebtView carries the debt magnitude with its presentation sign
// reapplied: positive when owed to the principal, negative otherwise.
type DebtView struct {
	ledgerdb.Debt
	SignedAmount decimal.Decimal
}

func (l *Ledger) ListActiveDebts(ctx context.Context, userID int64) ([]DebtView, error) {
	var debts []ledgerdb.Debt
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND active = ?", userID, true).Order("created_at DESC").Find(&debts).Error
	})
	if err != nil {
		return nil, err
	}
	views := make([]DebtView, len(debts))
	for i, d := range debts {
		signed := d.Amount
		if d.Direction == ledgerdb.OwedByPrincipal {
			signed = signed.Neg()
		}
		views[i] = DebtView{Debt: d, SignedAmount: signed}
	}
	return views, nil
}

func (l *Ledger) MarkDebtSettled(ctx context.Context, id uint64, userID int64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdb.Debt{}).Where("id = ? AND user_id = ?", id, userID).Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerr.New(ledgerr.NotFound, "debt not found")
		}
		return nil
	})
}
