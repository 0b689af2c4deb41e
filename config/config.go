// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultAddr      = ":8080"
	DefaultDBPath    = "g2calib.db"
	DefaultRateLimit = 10.0
	DefaultRateBurst = 20
	DefaultKeyMonths = 6
)

type Config struct {
	Addr      string
	DBPath    string
	LogLevel  zerolog.Level
	RateLimit float64 // requests per second per API key
	RateBurst int
	KeyMonths int // lifetime of generated API keys
}

// Load reads the given .env files (".env" when none is named) and then the
// process environment. A missing file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return Config{}, errors.Wrapf(err, "load %s", f)
		}
	}

	cfg := Config{
		Addr:      getenv("G2CALIB_ADDR", DefaultAddr),
		DBPath:    getenv("G2CALIB_DB_PATH", DefaultDBPath),
		LogLevel:  zerolog.InfoLevel,
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
		KeyMonths: DefaultKeyMonths,
	}

	var err error
	if v := os.Getenv("G2CALIB_LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = zerolog.ParseLevel(v); err != nil {
			return Config{}, errors.Wrap(err, "G2CALIB_LOG_LEVEL")
		}
	}
	if v := os.Getenv("G2CALIB_RATE_LIMIT"); v != "" {
		if cfg.RateLimit, err = strconv.ParseFloat(v, 64); err != nil || cfg.RateLimit <= 0 {
			return Config{}, errors.Errorf("G2CALIB_RATE_LIMIT: invalid value %q", v)
		}
	}
	if cfg.RateBurst, err = positiveInt("G2CALIB_RATE_BURST", DefaultRateBurst); err != nil {
		return Config{}, err
	}
	if cfg.KeyMonths, err = positiveInt("G2CALIB_KEY_MONTHS", DefaultKeyMonths); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("%s: invalid value %q", key, v)
	}
	return n, nil
}
