package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "comida.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "profiles", "recipes", "saved_menus", "generation_metrics", "revoked_sessions", "chat_sessions"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestNewDBIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comida.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2025, time.September, 4, 10, 30, 15, 123456000, time.FixedZone("CEST", 2*3600))
	got, err := ParseTime(FormatTime(now))
	require.NoError(t, err)
	assert.True(t, now.Equal(got))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
