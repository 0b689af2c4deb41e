package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
	"github.com/google/uuid"
)

//go:generate mockgen -package mockdb -destination mock/store.go github.com/banachtech/g2calib/db Store

// Store provides all functions to persist calibration runs and API keys.
type Store interface {
	CreateRun(ctx context.Context, arg CreateRunParams) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (APIKey, error)
	GetAPIKey(ctx context.Context, prefix string) (APIKey, error)
}

// SQLStore provides all functions to execute SQL queries and transactions.
type SQLStore struct {
	*Queries
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &SQLStore{
		db:      db,
		Queries: New(db),
	}
}

// execTx executes a function within a database transaction
func (store *SQLStore) execTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// CreateRunParams is one finished calibration run. Labels, when present,
// name the report rows in order.
type CreateRunParams struct {
	EvaluationDate string
	Parameters     model.G2pp
	HullWhite2F    model.HullWhite2F
	Report         report.CalibrationReport
	Labels         []string
}

// CreateRun stores the run header and its report rows in one transaction.
func (store *SQLStore) CreateRun(ctx context.Context, arg CreateRunParams) (Run, error) {
	run := Run{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC().Format(Layout),
		EvaluationDate:  arg.EvaluationDate,
		Parameters:      arg.Parameters,
		HullWhite2F:     arg.HullWhite2F,
		CumulativeError: arg.Report.CumulativeError,
	}
	for i, row := range arg.Report.Rows {
		r := RunRow{Position: i, Row: row}
		if i < len(arg.Labels) {
			r.Label = arg.Labels[i]
		}
		run.Rows = append(run.Rows, r)
	}

	err := store.execTx(ctx, func(q *Queries) error {
		err := q.InsertRun(ctx, InsertRunParams{
			ID:              run.ID,
			CreatedAt:       run.CreatedAt,
			EvaluationDate:  run.EvaluationDate,
			A:               run.Parameters.A,
			Sigma:           run.Parameters.Sigma,
			B:               run.Parameters.B,
			Eta:             run.Parameters.Eta,
			Rho:             run.Parameters.Rho,
			Alpha:           run.HullWhite2F.Alpha,
			Beta:            run.HullWhite2F.Beta,
			Sigma1:          run.HullWhite2F.Sigma1,
			Sigma2:          run.HullWhite2F.Sigma2,
			RhoBar:          run.HullWhite2F.RhoBar,
			CumulativeError: run.CumulativeError,
		})
		if err != nil {
			return err
		}
		for _, r := range run.Rows {
			if err := q.InsertRunRow(ctx, InsertRunRowParams{RunID: run.ID, RunRow: r}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// GetRun loads a run with its rows. An unknown id yields sql.ErrNoRows.
func (store *SQLStore) GetRun(ctx context.Context, id string) (Run, error) {
	var result Run
	err := store.execTx(ctx, func(q *Queries) error {
		var err error

		result, err = q.GetRunHeader(ctx, id)
		if err != nil {
			return err
		}
		result.Rows, err = q.GetRunRows(ctx, id)
		return err
	})
	return result, err
}
