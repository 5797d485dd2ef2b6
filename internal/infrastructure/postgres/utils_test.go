package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/batch-ledger/internal/domain"
)

func TestMapError_TraduceCodigosDePostgres(t *testing.T) {
	wrap := func(e *pgconn.PgError) error { return fmt.Errorf("insert: %w", e) }

	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, mapError(wrap(&pgconn.PgError{Code: "23505", ConstraintName: constraintAssignmentRef})), domain.ErrDuplicateLedgerEntry)
	assert.ErrorIs(t, mapError(wrap(&pgconn.PgError{Code: "23505", ConstraintName: constraintBatchNumber})), domain.ErrDuplicate)
	assert.ErrorIs(t, mapError(wrap(&pgconn.PgError{Code: "23503"})), domain.ErrNotFound)
	assert.ErrorIs(t, mapError(wrap(&pgconn.PgError{Code: "23514"})), domain.ErrInvalidInput)

	other := errors.New("conexión cerrada")
	assert.Equal(t, other, mapError(other))
}
