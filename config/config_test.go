package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"G2CALIB_ADDR", "G2CALIB_DB_PATH", "G2CALIB_LOG_LEVEL",
	"G2CALIB_RATE_LIMIT", "G2CALIB_RATE_BURST", "G2CALIB_KEY_MONTHS",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, Config{
		Addr:      DefaultAddr,
		DBPath:    DefaultDBPath,
		LogLevel:  zerolog.InfoLevel,
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
		KeyMonths: DefaultKeyMonths,
	}, cfg)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("G2CALIB_ADDR", ":9090")
	t.Setenv("G2CALIB_LOG_LEVEL", "debug")
	t.Setenv("G2CALIB_RATE_LIMIT", "2.5")
	t.Setenv("G2CALIB_KEY_MONTHS", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	require.Equal(t, 2.5, cfg.RateLimit)
	require.Equal(t, DefaultRateBurst, cfg.RateBurst)
	require.Equal(t, 12, cfg.KeyMonths)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty.
	for _, k := range []string{"G2CALIB_DB_PATH", "G2CALIB_RATE_BURST"} {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		os.Unsetenv("G2CALIB_DB_PATH")
		os.Unsetenv("G2CALIB_RATE_BURST")
	})

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("G2CALIB_DB_PATH=/tmp/runs.db\nG2CALIB_RATE_BURST=3\n"), 0644))

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "/tmp/runs.db", cfg.DBPath)
	require.Equal(t, 3, cfg.RateBurst)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"LOG_LEVEL", "G2CALIB_LOG_LEVEL", "loud"},
		{"RATE_LIMIT", "G2CALIB_RATE_LIMIT", "fast"},
		{"NEGATIVE_RATE_LIMIT", "G2CALIB_RATE_LIMIT", "-1"},
		{"RATE_BURST", "G2CALIB_RATE_BURST", "0"},
		{"KEY_MONTHS", "G2CALIB_KEY_MONTHS", "six"},
	}

	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.key)
		})
	}
}
