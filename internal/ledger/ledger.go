// Package ledger implements the CRUD and invariant-preserving
// operations over principals, categories, movements, subscriptions,
// reminders, debts, and alerts. Every exported operation runs inside one
// storage.Engine transaction and is atomic; RetentionCleanup's trailing
// VACUUM is the one statement run outside it.
package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/ledgerr"
	"github.com/Juramirezlop/FinanceBot/internal/storage"
)

// Clock is injected so tests can pin "today" instead of depending on
// the wall clock.
type Clock func() time.Time

type Ledger struct {
	engine *storage.Engine
	now    Clock
	tracer trace.Tracer
}

func New(engine *storage.Engine) *Ledger {
	return &Ledger{engine: engine, now: time.Now, tracer: otel.Tracer("ledger")}
}

// Engine exposes the underlying storage engine for callers (schedulers,
// tests) that need direct access beyond the Ledger's own operations.
func (l *Ledger) Engine() *storage.Engine { return l.engine }

// WithClock overrides the time source; used by tests that need a fixed
// "today" to pin subscription/reminder due-date arithmetic.
func (l *Ledger) WithClock(clock Clock) *Ledger {
	return &Ledger{engine: l.engine, now: clock, tracer: l.tracer}
}

func (l *Ledger) today() time.Time {
	t := l.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// --- Principal ops ---

func (l *Ledger) CreatePrincipal(ctx context.Context, userID int64, initialBalance decimal.Decimal) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		principal := ledgerdb.Principal{
			UserID:         userID,
			InitialBalance: initialBalance,
			Configured:     false,
			CreatedAt:      l.now(),
		}
		return tx.Where(ledgerdb.Principal{UserID: userID}).FirstOrCreate(&principal).Error
	})
}

func (l *Ledger) PrincipalExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&ledgerdb.Principal{}).Where("user_id = ?", userID).Count(&count).Error
	})
	return count > 0, err
}

func (l *Ledger) IsConfigured(ctx context.Context, userID int64) (bool, error) {
	var principal ledgerdb.Principal
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).First(&principal).Error
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return principal.Configured, nil
}

func (l *Ledger) MarkConfigured(ctx context.Context, userID int64) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&ledgerdb.Principal{}).Where("user_id = ?", userID).Update("configured", true).Error
	})
}

func (l *Ledger) UpdateInitialBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdb.Principal{}).Where("user_id = ?", userID).Update("initial_balance", amount)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerr.New(ledgerr.NotFound, "principal not found")
		}
		return nil
	})
}

// --- Category ops ---

// AddCategory upserts-ignore on (name, kind, user_id); returns true only
// when a new row was actually inserted.
func (l *Ledger) AddCategory(ctx context.Context, userID int64, name string, kind ledgerdb.CategoryKind) (bool, error) {
	inserted := false
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var existing ledgerdb.Category
		err := tx.Where("user_id = ? AND name = ? AND kind = ?", userID, name, kind).First(&existing).Error
		if err == nil {
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		category := ledgerdb.Category{UserID: userID, Name: name, Kind: kind, Active: true}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

// subscriptionDefaultCategories is the three-entry seed the original
// subscription flow offers on first use, distinct from the fast path's
// single "Otros" fallback.
var subscriptionDefaultCategories = []string{"Servicios", "Entretenimiento", "Otros"}

// EnsureOtrosCategory seeds a lone "Otros" category of kind if the
// principal has none of that kind yet. This is the fast path's
// (/expense, /income) first-use behavior: it never offers a choice, so
// there is nothing to seed beyond the one fallback it actually uses.
func (l *Ledger) EnsureOtrosCategory(ctx context.Context, userID int64, kind ledgerdb.CategoryKind) error {
	return l.seedCategoriesIfEmpty(ctx, userID, kind, []string{"Otros"})
}

// EnsureSubscriptionCategories seeds the subscription flow's three
// starter categories (all of kind CategoryExpense) if the principal has
// no expense categories yet.
func (l *Ledger) EnsureSubscriptionCategories(ctx context.Context, userID int64) error {
	return l.seedCategoriesIfEmpty(ctx, userID, ledgerdb.CategoryExpense, subscriptionDefaultCategories)
}

func (l *Ledger) seedCategoriesIfEmpty(ctx context.Context, userID int64, kind ledgerdb.CategoryKind, seed []string) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ledgerdb.Category{}).
			Where("user_id = ? AND kind = ? AND active = ?", userID, kind, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, name := range seed {
			category := ledgerdb.Category{UserID: userID, Name: name, Kind: kind, Active: true}
			if err := tx.Where(ledgerdb.Category{UserID: userID, Name: name, Kind: kind}).FirstOrCreate(&category).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCategories returns active category names, lexicographically
// ordered, capped at 50.
func (l *Ledger) ListCategories(ctx context.Context, userID int64, kind ledgerdb.CategoryKind) ([]string, error) {
	var categories []ledgerdb.Category
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND kind = ? AND active = ?", userID, kind, true).
			Order("name asc").Limit(50).Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names, nil
}

type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// ListCategoriesWithTotals joins categories with summed movements of a
// matching kind and period, ordered by total descending then name.
func (l *Ledger) ListCategoriesWithTotals(ctx context.Context, userID int64, kind ledgerdb.CategoryKind, month, year int) ([]CategoryTotal, error) {
	var rows []struct {
		Name  string
		Total decimal.Decimal
	}
	err := l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Table("categories AS c").
			Select("c.name AS name, COALESCE(SUM(m.amount), 0) AS total").
			Joins(`LEFT JOIN movements AS m ON m.category = c.name AND m.user_id = c.user_id
				AND m.kind = ? AND m.month = ? AND m.year = ?`, string(kind), month, year).
			Where("c.user_id = ? AND c.kind = ? AND c.active = ?", userID, kind, true).
			Group("c.name").
			Order("total DESC, c.name ASC").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	totals := make([]CategoryTotal, len(rows))
	for i, r := range rows {
		totals[i] = CategoryTotal{Name: r.Name, Total: r.Total}
	}
	return totals, nil
}

func (l *Ledger) DeactivateCategory(ctx context.Context, userID int64, name string, kind ledgerdb.CategoryKind) error {
	return l.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdb.Category{}).
			Where("user_id = ? AND name = ? AND kind = ?", userID, name, kind).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgerr.New(ledgerr.NotFound, "category not found")
		}
		return nil
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
