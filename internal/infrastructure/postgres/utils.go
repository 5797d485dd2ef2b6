package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/batch-ledger/internal/domain"
)

const (
	uniqueViolation     = "23505"
	checkViolation      = "23514"
	foreignKeyViolation = "23503"

	constraintAssignmentRef = "uq_batch_ledger_assignment_ref"
	constraintBatchNumber   = "uq_batches_product_number"
)

var errNoRows = pgx.ErrNoRows

// mapError traduce errores de PostgreSQL a errores de dominio; el resto se devuelve tal cual.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation: // el índice parcial de asignaciones es el único que indica doble escritura
		if pgErr.ConstraintName == constraintAssignmentRef {
			return domain.ErrDuplicateLedgerEntry
		}
		return domain.ErrDuplicate
	case foreignKeyViolation:
		return domain.ErrNotFound
	case checkViolation:
		return domain.ErrInvalidInput
	}
	return err
}
