package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banachtech/g2calib/api"
	"github.com/banachtech/g2calib/black"
	"github.com/banachtech/g2calib/calendar"
	"github.com/banachtech/g2calib/data"
	"github.com/banachtech/g2calib/db"
	"github.com/banachtech/g2calib/mainfuncs"
	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(v)
}

func openStore(ctx context.Context) (db.Store, func(), error) {
	conn, err := db.ConnectDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("path", cfg.DBPath).Msg("opened database")
	return db.NewStore(conn), func() { conn.Close() }, nil
}

func NewMapCommand() *cobra.Command {
	p := model.NewG2pp()
	asJSON := false

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map G2++ parameters to two-factor Hull-White parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hw, err := model.Map(p.A, p.Sigma, p.B, p.Eta, p.Rho)
			if err != nil {
				return err
			}
			if err := hw.Validate(); err != nil {
				logger.Warn().Err(err).Msg("mapped correlation is outside [-1, 1]")
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), hw)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			fmt.Fprintln(cmd.OutOrStdout(), hw)
			return nil
		},
	}

	cmd.Flags().Float64Var(&p.A, "a", p.A, "mean reversion speed of the first factor")
	cmd.Flags().Float64Var(&p.Sigma, "sigma", p.Sigma, "volatility of the first factor")
	cmd.Flags().Float64Var(&p.B, "b", p.B, "mean reversion speed of the second factor")
	cmd.Flags().Float64Var(&p.Eta, "eta", p.Eta, "volatility of the second factor")
	cmd.Flags().Float64Var(&p.Rho, "rho", p.Rho, "correlation between the factors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func NewImpliedVolCommand() *cobra.Command {
	s := black.Swaption{Forward: 0.05, Strike: 0.05, Expiry: 1, Annuity: 1, Payer: true}
	settings := black.DefaultSolverSettings()
	price := 0.0
	receiver := false

	cmd := &cobra.Command{
		Use:   "implied-vol",
		Short: "Invert Black's formula for a swaption price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.Payer = !receiver
			vol, err := black.ImpliedVol(s, price, settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "implied volatility: %.6f\n", vol)
			return nil
		},
	}

	cmd.Flags().Float64Var(&s.Forward, "forward", s.Forward, "forward swap rate")
	cmd.Flags().Float64Var(&s.Strike, "strike", s.Strike, "strike rate")
	cmd.Flags().Float64Var(&s.Expiry, "expiry", s.Expiry, "time to exercise in years")
	cmd.Flags().Float64Var(&s.Annuity, "annuity", s.Annuity, "annuity (PV01) of the underlying swap")
	cmd.Flags().BoolVar(&receiver, "receiver", false, "price a receiver swaption")
	cmd.Flags().Float64Var(&price, "price", price, "swaption price to invert")
	cmd.Flags().Float64Var(&settings.Accuracy, "accuracy", settings.Accuracy, "price accuracy")
	cmd.Flags().IntVar(&settings.MaxEvaluations, "max-evaluations", settings.MaxEvaluations, "solver evaluation budget")
	cmd.Flags().Float64Var(&settings.MinVol, "min-vol", settings.MinVol, "lower volatility bound")
	cmd.Flags().Float64Var(&settings.MaxVol, "max-vol", settings.MaxVol, "upper volatility bound")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo FILE",
		Short: "Write the sample run file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := data.Save(args[0], data.Demo()); err != nil {
				return err
			}
			logger.Info().Str("file", args[0]).Msg("wrote sample run")
			return nil
		},
	}
}

func NewReportCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Print the calibration report of a run file's pricing results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := data.Open(args[0], data.RunFile{})
			if err != nil {
				return err
			}
			rep, err := report.Report(f.Instruments)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			rep.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func NewRunCommand() *cobra.Command {
	store := false
	asJSON := false

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Map parameters, report errors and date the instruments of a run file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := data.Open(args[0], data.RunFile{})
			if err != nil {
				return err
			}
			in, err := mainfuncs.NewRunInput(f)
			if err != nil {
				return err
			}
			res, err := mainfuncs.Run(in)
			if err != nil {
				return err
			}
			logger.Debug().
				Str("evaluation_date", in.EvaluationDate.Format(calendar.Layout)).
				Int("instruments", len(res.Report.Rows)).
				Float64("cumulative_error", res.Report.CumulativeError).
				Msg("run finished")

			if store {
				s, closeStore, err := openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer closeStore()
				run, err := s.CreateRun(cmd.Context(), api.NewCreateRunParams(res))
				if err != nil {
					return errors.Wrap(err, "store run")
				}
				logger.Info().Str("id", run.ID).Msg("stored run")
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, res.Parameters)
			fmt.Fprintln(w, res.HullWhite2F)
			fmt.Fprintln(w)
			for _, inst := range res.Instruments {
				fmt.Fprintf(w, "%-6s expiry %s  maturity %s\n", inst.Label, inst.Expiry.Format(calendar.Layout), inst.Maturity.Format(calendar.Layout))
			}
			if len(res.Instruments) > 0 {
				fmt.Fprintln(w)
			}
			res.Report.Print(w)
			return nil
		},
	}
	cmd.Flags().BoolVar(&store, "store", false, "persist the run in the database")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func NewRunsCommand() *cobra.Command {
	limit := 20

	cmd := &cobra.Command{
		Use:   "runs [ID]",
		Short: "List stored runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if len(args) == 1 {
				run, err := s.GetRun(cmd.Context(), args[0])
				if err != nil {
					return errors.Wrapf(err, "get run %s", args[0])
				}
				return printJSON(cmd.OutOrStdout(), run)
			}

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return errors.Wrap(err, "list runs")
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-36s  %-19s  %-10s  %s\n", "ID", "Created", "Evaluated", "Cumulative Error")
			for _, r := range runs {
				fmt.Fprintf(w, "%-36s  %-19s  %-10s  %.5f\n", r.ID, r.CreatedAt, r.EvaluationDate, r.CumulativeError)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", limit, "maximum number of runs to list")
	return cmd
}

func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create an API key for the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			apiKey, key, err := api.RegisterAPIKey(cmd.Context(), s, cfg.KeyMonths)
			if err != nil {
				return errors.Wrap(err, "create api key")
			}
			logger.Info().Str("prefix", key.Prefix).Str("expired_at", key.ExpiredAt).Msg("created api key")
			fmt.Fprintln(cmd.OutOrStdout(), apiKey)
			return nil
		},
	})
	return cmd
}

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			server := api.NewServer(s, cfg, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
