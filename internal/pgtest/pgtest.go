// Package pgtest gives repository tests a freshly migrated Postgres schema.
// Tests using it are skipped unless POSTGRES_TEST_DSN holds a key=value
// connection string, e.g. "host=localhost port=5432 user=blueice
// password=blueice dbname=blueice_test sslmode=disable".
package pgtest

import (
	"os"
	"strings"
	"testing"

	"github.com/fekuna/blueice-inventory-service/migrations"
	"github.com/fekuna/blueice-inventory-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const EnvDSN = "POSTGRES_TEST_DSN"

// Open creates a private schema, applies every migration to it and returns a
// handle whose search_path points there. The schema is dropped on cleanup.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	admin, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	admin.MustExec(`CREATE SCHEMA ` + schema)
	t.Cleanup(func() {
		_, _ = admin.Exec(`DROP SCHEMA ` + schema + ` CASCADE`)
		_ = admin.Close()
	})

	scoped := dsn + " search_path=" + schema

	// The migrator closes the handle it is given.
	migDB, err := sqlx.Connect("postgres", scoped)
	require.NoError(t, err)
	m, err := postgres.NewMigrator(migDB, migrations.FS)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := sqlx.Connect("postgres", scoped)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedProduct inserts a product with the given counters.
func SeedProduct(t *testing.T, db *sqlx.DB, id string, returnable bool, filled, empty, damaged int) {
	t.Helper()
	db.MustExec(`
        INSERT INTO products (id, name, sku, is_returnable, stock_filled, stock_empty, stock_damaged)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, id, "Product "+id, "SKU-"+id, returnable, filled, empty, damaged)
}

// SeedCustomer inserts a customer on routeID, creating the route if needed.
// lat and lng may be nil.
func SeedCustomer(t *testing.T, db *sqlx.DB, id, routeID string, lat, lng *float64, seq *int) {
	t.Helper()
	db.MustExec(`INSERT INTO routes (id, name) VALUES ($1, $1) ON CONFLICT (id) DO NOTHING`, routeID)
	db.MustExec(`
        INSERT INTO customer_profiles (id, route_id, name, geo_lat, geo_lng, sequence_order)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, id, routeID, "Customer "+id, lat, lng, seq)
}
