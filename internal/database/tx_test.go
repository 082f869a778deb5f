package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConnWithoutTxReturnsPool(t *testing.T) {
	var pool DBTX
	assert.Nil(t, Conn(context.Background(), pool))
}

func TestConstraintErrors(t *testing.T) {
	check := fmt.Errorf("release: %w", &pgconn.PgError{Code: "23514"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(fmt.Errorf("plain")))
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS events")
	assert.Contains(t, schema, "tickets_sold + tickets_available = total_tickets")
	assert.Contains(t, schema, "ON DELETE CASCADE")
}
