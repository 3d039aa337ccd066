package settings

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mfontana/overlay/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.ConfigSchema)
	require.NoError(t, err)
	return db
}

func TestGetMissingKey(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	value, err := repo.Get("no_such_key")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSetAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Set("default_vol_target", "0.10"))

	value, err := repo.Get("default_vol_target")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "0.10", *value)

	// Set replaces an existing value.
	require.NoError(t, repo.Set("default_vol_target", "0.12"))
	value, err = repo.Get("default_vol_target")
	require.NoError(t, err)
	assert.Equal(t, "0.12", *value)
}

func TestGetFloat(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.SetFloat("default_aum", 100_000_000))

	f, err := repo.GetFloat("default_aum")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 100_000_000.0, *f)

	missing, err := repo.GetFloat("no_such_key")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Set("broken", "not-a-number"))
	_, err = repo.GetFloat("broken")
	assert.Error(t, err)
}

func TestGetBool(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Set("auto_snapshot", "true"))

	b, err := repo.GetBool("auto_snapshot")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	require.NoError(t, repo.Set("auto_snapshot", "maybe"))
	_, err = repo.GetBool("auto_snapshot")
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Set("default_vol_target", "0.10"))
	require.NoError(t, repo.Set("fx_preference", "WDO"))

	all, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"default_vol_target": "0.10",
		"fx_preference":      "WDO",
	}, all)
}
