package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
)

func setupTestDB(t *testing.T) *sql.DB {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrationsAreIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	require.NoError(t, ApplyMigrations(conn))
}

func TestPutAndGetSetting(t *testing.T) {
	conn := setupTestDB(t)

	_, ok, err := GetSetting(conn, KeyWifiSSID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, PutSetting(conn, KeyWifiSSID, "greenhouse"))
	require.NoError(t, PutSetting(conn, KeyWifiSSID, "greenhouse-2"))

	v, ok, err := GetSetting(conn, KeyWifiSSID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "greenhouse-2", v)
}

func TestPutSettingsRejectsUnknownKeyAtomically(t *testing.T) {
	conn := setupTestDB(t)

	err := PutSettings(conn, map[string]string{
		KeyLightHours: "1,2,3",
		"EVIL":        "x",
	})
	require.Error(t, err)

	all, err := GetAllSettings(conn)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLoadSchedule(t *testing.T) {
	conn := setupTestDB(t)

	t.Run("missing uses fallback", func(t *testing.T) {
		s, err := LoadSchedule(conn, schedule.Default())
		require.NoError(t, err)
		assert.Equal(t, schedule.Default(), s)
	})

	t.Run("stored hour list", func(t *testing.T) {
		require.NoError(t, PutSetting(conn, KeyLightHours, "6,7,8,18"))
		s, err := LoadSchedule(conn, schedule.Default())
		require.NoError(t, err)
		assert.Equal(t, []int{6, 7, 8, 18}, s.Hours())
	})

	t.Run("malformed is empty", func(t *testing.T) {
		require.NoError(t, PutSetting(conn, KeyLightHours, "6,seven"))
		s, err := LoadSchedule(conn, schedule.Default())
		require.NoError(t, err)
		assert.True(t, s.IsEmpty())
	})
}

func TestCLIHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hydro.db")

	_, err := SetScheduleCLI(path, "0-2,x")
	assert.Error(t, err)

	s, err := SetScheduleCLI(path, "0-2,22-23")
	require.NoError(t, err)
	assert.Equal(t, "0-2,22-23", s.String())

	settings, err := GetSettingsCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "0,1,2,22,23", settings[KeyLightHours])

	loaded, err := GetScheduleCLI(path, schedule.Empty())
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	require.NoError(t, SetSettingCLI(path, KeyWifiPass, "hunter2"))
	assert.Error(t, SetSettingCLI(path, "NOPE", "1"))
}
