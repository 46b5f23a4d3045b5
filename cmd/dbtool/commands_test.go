package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedPath = "../../data/seeds/marketplace.yaml"

func useDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "market.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestExecuteClosesDatabaseWhenCommandFails(t *testing.T) {
	useDatabase(t)

	err := execute([]string{"seed", "--file", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	require.NotNil(t, conn)
	assert.ErrorContains(t, conn.Ping(), "database is closed")
}

func TestSeedThenExportOrders(t *testing.T) {
	useDatabase(t)

	require.NoError(t, execute([]string{"seed", "--file", seedPath}))

	out := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, execute([]string{"export", "orders", "--out", out, "--status", "completed"}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	csv := string(raw)
	assert.Contains(t, csv, "reference,created_at,shop,buyer,status,subtotal,delivery_fee,total")
	assert.Contains(t, csv, "ORD-SEED0001")
	assert.Contains(t, csv, "ORD-SEED0002")
	assert.NotContains(t, csv, "ORD-SEED0004")

	err = execute([]string{"export", "orders", "--from", "October"})
	assert.ErrorContains(t, err, "--from")
}
