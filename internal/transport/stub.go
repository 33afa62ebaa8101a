// Package transport defines the chat-transport collaborator interface
// the dialog machine and outbox are driven through, and ships a minimal
// logging stub implementation. The real transport (message delivery,
// inline-button rendering, file upload, the "already polling elsewhere"
// retry/back-off policy) is an external collaborator per the
// specification and is not implemented here.
package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/Juramirezlop/FinanceBot/internal/auth"
	"github.com/Juramirezlop/FinanceBot/internal/dialog"
	"github.com/Juramirezlop/FinanceBot/internal/outbox"
	"github.com/Juramirezlop/FinanceBot/observability/logging"
)

// Sender is the minimal interface a real chat transport would satisfy;
// the dialog machine and outbox drain only ever need "deliver a
// message to this principal".
type Sender interface {
	Send(ctx context.Context, userID int64, message string) error
}

// StubPoller periodically drains the outbox for the authorized
// principal and logs each notification instead of delivering it over a
// real chat network, so the process has a runnable consumer of C7
// without depending on an external transport.
type StubPoller struct {
	logger           *slog.Logger
	allowlist        auth.Allowlist
	machine          *dialog.Machine
	outbox           *outbox.Outbox
	authorizedUserID int64
	interval         time.Duration
}

func NewStubPoller(logger *slog.Logger, allowlist auth.Allowlist, machine *dialog.Machine, ob *outbox.Outbox, authorizedUserID int64) *StubPoller {
	return &StubPoller{
		logger:           logger,
		allowlist:        allowlist,
		machine:          machine,
		outbox:           ob,
		authorizedUserID: authorizedUserID,
		interval:         60 * time.Second,
	}
}

// Run polls on a fixed interval until ctx is cancelled, mirroring the
// "60s read timeout" cadence the chat poller is specified to use.
func (p *StubPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drainOnce(ctx)
		}
	}
}

func (p *StubPoller) drainOnce(ctx context.Context) {
	if !p.allowlist.IsAuthorized(p.authorizedUserID) {
		return
	}
	notifications, err := p.outbox.Drain(ctx, p.authorizedUserID)
	if err != nil {
		p.logger.Error("outbox drain failed", "error", err)
		return
	}
	for _, n := range notifications {
		p.logger.Info("notification delivered", "user_id", n.UserID, "kind", n.Kind, logging.MaskField("body", n.Message))
		if err := p.outbox.MarkProcessed(ctx, n.ID); err != nil {
			p.logger.Error("mark processed failed", "notification_id", n.ID, "error", err)
		}
	}
}
