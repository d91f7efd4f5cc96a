package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestDialectorLocalFile(t *testing.T) {
	d, ok := dialector(Options{Path: "db/app.db"}).(*sqlite.Dialector)
	require.True(t, ok)
	assert.Equal(t, "db/app.db?_journal_mode=WAL&_foreign_keys=on", d.DSN)
	assert.Empty(t, d.DriverName)
}

func TestDialectorTurso(t *testing.T) {
	d, ok := dialector(Options{
		Path:       "db/app.db",
		TursoURL:   "libsql://reclamassur.turso.io",
		TursoToken: "token",
	}).(*sqlite.Dialector)
	require.True(t, ok)
	assert.Equal(t, "libsql", d.DriverName)
	assert.Equal(t, "libsql://reclamassur.turso.io?authToken=token", d.DSN)
}

func TestAutoMigrateWithoutDB(t *testing.T) {
	old := DB
	DB = nil
	defer func() { DB = old }()

	err := AutoMigrate()
	assert.EqualError(t, err, "database not initialized")
	assert.NoError(t, Close())
}
