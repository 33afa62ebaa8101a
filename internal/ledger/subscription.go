package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerr"
	"github.com/Juramirezlop/FinanceBot/internal/validate"
)

// AddSubscription computes next_charge_date: if charge_day <= today's
// day, the target month is next month, otherwise the current month; the
// day is clamped to the last valid day of the target month.
func (l *Ledger) AddSubscription(ctx context.Context, userID int64, name string, amount decimal.Decimal, category string, chargeDay int) (*ledgerdb.Subscription, error) {
	today := l.today()
	nextCharge := nextChargeDate(today, chargeDay)
	subscription := &ledgerdb.Subscription{
		UserID:          userID,
		Name:            name,
		Amount:          amount,
		ExpenseCategory: category,
		ChargeDay:       chargeDay,
		NextChargeDate:  nextCharge,
		Active:          true,
	}
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(subscription).Error
	})
	return subscription, err
}

func nextChargeDate(today time.Time, chargeDay int) time.Time {
	targetYear, targetMonth := today.Year(), today.Month()
	if chargeDay <= today.Day() {
		targetMonth++
		if targetMonth > time.December {
			targetMonth = time.January
			targetYear++
		}
	}
	day := validate.ClampDay(targetYear, targetMonth, chargeDay)
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, today.Location())
}

// advanceChargeDate moves a subscription one calendar month past the
// charge it just processed, clamping to the target month's last valid
// day. Unlike nextChargeDate, it never compares chargeDay against the
// charge date's day-of-month: that comparison is what AddSubscription
// uses to decide between "this month" and "next month" relative to
// today, and reusing it here would leave a clamped date (e.g.
// charge_day=31 landing on Feb 28) stuck in the same month forever,
// since 31 > 28 keeps re-selecting February.
func advanceChargeDate(chargeDate time.Time, chargeDay int) time.Time {
	targetMonth := chargeDate.Month() + 1
	targetYear := chargeDate.Year()
	if targetMonth > time.December {
		targetMonth = time.January
		targetYear++
	}
	day := validate.ClampDay(targetYear, targetMonth, chargeDay)
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, chargeDate.Location())
}

func (l *Ledger) ListActiveSubscriptions(ctx context.Context, userID int64) ([]ledgerdb.Subscription, error) {
	var subs []ledgerdb.Subscription
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND active = ?", userID, true).Order("next_charge_date ASC").Find(&subs).Error
	})
	return subs, err
}

// ListDueSubscriptions returns active subscriptions, across all
// principals, whose next_charge_date <= today.
func (l *Ledger) ListDueSubscriptions(ctx context.Context) ([]ledgerdb.Subscription, error) {
	var subs []ledgerdb.Subscription
	today := l.today()
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("active = ? AND next_charge_date <= ?", true, today).Find(&subs).Error
	})
	return subs, err
}

// ProcessSubscription inserts the charge movement, advances
// next_charge_date, invalidates the monthly summary, and returns the
// updated record, or nil if the subscription does not exist or is
// inactive.
func (l *Ledger) ProcessSubscription(ctx context.Context, id uint64) (*ledgerdb.Subscription, error) {
	var result *ledgerdb.Subscription
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var sub ledgerdb.Subscription
		if err := tx.Where("id = ? AND active = ?", id, true).First(&sub).Error; err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		chargeDate := dateOnly(sub.NextChargeDate)
		movement := ledgerdb.Movement{
			UserID:      sub.UserID,
			Date:        chargeDate,
			Kind:        ledgerdb.KindExpense,
			Category:    sub.ExpenseCategory,
			Amount:      sub.Amount,
			Description: "Subscription: " + sub.Name,
			Month:       int(chargeDate.Month()),
			Year:        chargeDate.Year(),
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		if err := invalidateMonthlySummary(tx, sub.UserID, movement.Month, movement.Year); err != nil {
			return err
		}
		sub.NextChargeDate = advanceChargeDate(chargeDate, sub.ChargeDay)
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		result = &sub
		return nil
	})
	return result, err
}

func (l *Ledger) DeactivateSubscription(ctx context.Context, id uint64, userID int64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdb.Subscription{}).Where("id = ? AND user_id = ?", id, userID).Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerr.New(ledgerr.NotFound, "subscription not found")
		}
		return nil
	})
}
