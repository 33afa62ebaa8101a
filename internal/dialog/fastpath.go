package dialog

import (
	"context"

	"github.com/Juramirezlop/FinanceBot/internal/ledgerdb"
	"github.com/Juramirezlop/FinanceBot/internal/validate"
)

// FastPath implements the /expense and /income commands: they skip the
// state machine entirely, use the first active category of that kind
// (seeding a lone "Otros" if none exist), and commit directly.
func (m *Machine) FastPath(ctx context.Context, userID int64, kind ledgerdb.MovementKind, amountRaw, descriptionRaw string) (Result, error) {
	amount, err := validate.Amount(amountRaw, false)
	if err != nil {
		return Result{Message: fmtErr(err), Rejected: true}, nil
	}
	description := ""
	if descriptionRaw != "" && !validate.IsEmptyDescriptionLiteral(descriptionRaw) {
		description = validate.Description(descriptionRaw)
	}

	categoryKind := movementKindToCategoryKind(kind)
	if err := m.ledger.EnsureOtrosCategory(ctx, userID, categoryKind); err != nil {
		return Result{}, err
	}
	categories, err := m.ledger.ListCategories(ctx, userID, categoryKind)
	if err != nil {
		return Result{}, err
	}
	category := "Otros"
	if len(categories) > 0 {
		category = categories[0]
	}

	if _, err := m.ledger.AddMovement(ctx, userID, kind, category, amount, description); err != nil {
		return Result{}, err
	}
	return Result{Message: "✅ Recorded.", Done: true}, nil
}
