package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/banachtech/g2calib/config"
	"github.com/banachtech/g2calib/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel = ""
	envFile  = ".env"

	cfg    config.Config
	logger = zerolog.Nop()
)

func setupLogger() error {
	level := cfg.LogLevel
	if logLevel != "" {
		var err error
		level, err = zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %v", err)
		}
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}

func handleCmdError(err error) {
	var invalid *model.InvalidInputError
	var domain *model.DomainError
	switch {
	case errors.As(err, &invalid):
		fmt.Fprintf(os.Stderr, "\nError: invalid input in field %q\n", invalid.Field)
	case errors.As(err, &domain):
		fmt.Fprintf(os.Stderr, "\nError: %q is outside its mathematical domain\n", domain.Field)
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "g2calib",
		Short: "g2calib maps calibrated G2++ parameters and reports calibration quality",
		Long: `g2calib maps calibrated G2++ short-rate parameters to the equivalent
two-factor Hull-White parameterization and reports how well a calibration
reproduces its market swaption quotes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(envFile)
			if err != nil {
				return err
			}
			return setupLogger()
		},
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel, "log level (trace, debug, info, warn, error), overrides G2CALIB_LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", envFile, "dotenv file to load before reading the environment")

	cmd.AddCommand(
		NewMapCommand(),
		NewImpliedVolCommand(),
		NewDemoCommand(),
		NewReportCommand(),
		NewRunCommand(),
		NewRunsCommand(),
		NewKeysCommand(),
		NewServeCommand(),
	)

	return cmd
}
