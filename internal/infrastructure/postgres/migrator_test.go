package postgres_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/infrastructure/postgres"
)

// ─────────────────────────────────────────────────────────────────────────────
// Migraciones pendientes
// ─────────────────────────────────────────────────────────────────────────────

func TestPending_OrdenAlfabeticoYOmiteAplicadas(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.sql": {Data: []byte("SELECT 2")},
		"0001_a.sql": {Data: []byte("SELECT 1")},
		"0003_c.sql": {Data: []byte("SELECT 3")},
		"README.md":  {Data: []byte("no")},
		"sub/x.sql":  {Data: []byte("no")},
	}

	// Caso 1: nada aplicado → todas las .sql en orden.
	files, err := postgres.Pending(fsys, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0003_c.sql"}, files)

	// Caso 2: las aplicadas se omiten.
	files, err = postgres.Pending(fsys, map[string]bool{"0001_a.sql": true, "0003_c.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_b.sql"}, files)
}

func TestMigrations_EmbebidasContienenEsquema(t *testing.T) {
	files, err := postgres.Pending(postgres.Migrations(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])

	content, err := fs.ReadFile(postgres.Migrations(), "0001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS sales")
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS outbox_events")
}

func TestMigrations_OfertaEnviadaUnicaPorPar(t *testing.T) {
	files, err := postgres.Pending(postgres.Migrations(), nil)
	require.NoError(t, err)
	assert.Contains(t, files, "0003_offers_sent_unique.sql")

	content, err := fs.ReadFile(postgres.Migrations(), "0003_offers_sent_unique.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_sent_pair")
	assert.Contains(t, string(content), "WHERE status = 'Sent'")
}
