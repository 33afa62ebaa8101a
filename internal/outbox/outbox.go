// Package outbox implements the durable pending-notification queue the
// chat transport drains: oldest-unprocessed-first, capped at 100 rows
// per drain, at-least-once delivery. Drain throughput is rate-limited
// with golang.org/x/time/rate so a burst of alerts cannot starve
// whatever per-second send limit the chat transport itself enforces —
// the same dependency the teacher repo already carries for outbound
// throttling.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/storage"
)

const DrainCap = 100

type Outbox struct {
	engine  *storage.Engine
	limiter *rate.Limiter
}

// New returns an Outbox whose Drain calls are throttled to ratePerSec
// calls per second (each returning a batch of up to DrainCap rows) with
// a burst of the same size.
func New(engine *storage.Engine, ratePerSec float64) *Outbox {
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	return &Outbox{engine: engine, limiter: rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec))}
}

// Enqueue inserts a notification row, tagged with a fresh dedupe key,
// in its own transaction. The scheduler's subscription, reminder and
// monthly-summary tasks call it; the ledger writes its alert rows
// directly inside its own transaction instead, and the backup-snapshot
// task uses EnqueueIdempotent. If the caller retries an enqueue after
// an ambiguous failure it should pass the same dedupeKey via
// EnqueueIdempotent rather than call this twice.
func (o *Outbox) Enqueue(ctx context.Context, userID int64, kind ledgerdb.OutboxKind, message, payload string) error {
	return o.EnqueueIdempotent(ctx, userID, kind, message, payload, uuid.NewString())
}

// EnqueueIdempotent is Enqueue with a caller-supplied dedupe key: a
// second call with the same key is a silent no-op, letting a caller
// retry a send without double-delivering.
func (o *Outbox) EnqueueIdempotent(ctx context.Context, userID int64, kind ledgerdb.OutboxKind, message, payload, dedupeKey string) error {
	return o.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
			Create(&ledgerdb.OutboxNotification{
				UserID:    userID,
				Kind:      kind,
				Message:   message,
				Payload:   payload,
				DedupeKey: dedupeKey,
				Processed: false,
				CreatedAt: time.Now(),
			}).Error
	})
}

// Drain returns up to DrainCap oldest-unprocessed rows for userID,
// waiting on the rate limiter before each returned batch.
func (o *Outbox) Drain(ctx context.Context, userID int64) ([]ledgerdb.OutboxNotification, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var rows []ledgerdb.OutboxNotification
	err := o.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND processed = ?", userID, false).
			Order("created_at ASC, id ASC").
			Limit(DrainCap).
			Find(&rows).Error
	})
	return rows, err
}

// MarkProcessed flips processed = true for id. Left unprocessed on
// delivery failure so the next drain retries it (at-least-once).
func (o *Outbox) MarkProcessed(ctx context.Context, id uint64) error {
	return o.engine.WithinTx(ctx, func(tx *gorm.DB) error {
		return tx.Model(&ledgerdb.OutboxNotification{}).Where("id = ?", id).Update("processed", true).Error
	})
}
