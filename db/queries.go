package db

import (
	"context"
)

const insertRun = `INSERT INTO runs (
  id, created_at, evaluation_date,
  a, sigma, b, eta, rho,
  alpha, beta, sigma_1, sigma_2, rho_bar,
  cumulative_error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertRunParams struct {
	ID              string
	CreatedAt       string
	EvaluationDate  string
	A               float64
	Sigma           float64
	B               float64
	Eta             float64
	Rho             float64
	Alpha           float64
	Beta            float64
	Sigma1          float64
	Sigma2          float64
	RhoBar          float64
	CumulativeError float64
}

func (q *Queries) InsertRun(ctx context.Context, arg InsertRunParams) error {
	_, err := q.db.ExecContext(ctx, insertRun,
		arg.ID, arg.CreatedAt, arg.EvaluationDate,
		arg.A, arg.Sigma, arg.B, arg.Eta, arg.Rho,
		arg.Alpha, arg.Beta, arg.Sigma1, arg.Sigma2, arg.RhoBar,
		arg.CumulativeError,
	)
	return err
}

const insertRunRow = `INSERT INTO run_rows (
  run_id, position, label,
  model_price, market_price, implied_volatility, market_volatility,
  relative_error, volatility_error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertRunRowParams struct {
	RunID string
	RunRow
}

func (q *Queries) InsertRunRow(ctx context.Context, arg InsertRunRowParams) error {
	_, err := q.db.ExecContext(ctx, insertRunRow,
		arg.RunID, arg.Position, arg.Label,
		arg.ModelPrice, arg.MarketPrice, arg.ImpliedVolatility, arg.MarketVolatility,
		arg.RelativeError, arg.VolatilityError,
	)
	return err
}

const runColumns = `id, created_at, evaluation_date,
  a, sigma, b, eta, rho,
  alpha, beta, sigma_1, sigma_2, rho_bar,
  cumulative_error`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.CreatedAt, &r.EvaluationDate,
		&r.Parameters.A, &r.Parameters.Sigma, &r.Parameters.B, &r.Parameters.Eta, &r.Parameters.Rho,
		&r.HullWhite2F.Alpha, &r.HullWhite2F.Beta, &r.HullWhite2F.Sigma1, &r.HullWhite2F.Sigma2, &r.HullWhite2F.RhoBar,
		&r.CumulativeError,
	)
	return r, err
}

const getRunHeader = `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

func (q *Queries) GetRunHeader(ctx context.Context, id string) (Run, error) {
	return scanRun(q.db.QueryRowContext(ctx, getRunHeader, id))
}

const listRuns = `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id LIMIT ?`

func (q *Queries) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRunRows = `SELECT position, label,
  model_price, market_price, implied_volatility, market_volatility,
  relative_error, volatility_error
FROM run_rows WHERE run_id = ? ORDER BY position`

func (q *Queries) GetRunRows(ctx context.Context, runID string) ([]RunRow, error) {
	rows, err := q.db.QueryContext(ctx, getRunRows, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RunRow{}
	for rows.Next() {
		var i RunRow
		if err := rows.Scan(
			&i.Position, &i.Label,
			&i.ModelPrice, &i.MarketPrice, &i.ImpliedVolatility, &i.MarketVolatility,
			&i.RelativeError, &i.VolatilityError,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertAPIKey = `INSERT INTO api_keys (prefix, token, generated_at, expired_at) VALUES (?, ?, ?, ?)`

type CreateAPIKeyParams struct {
	Prefix      string
	Token       string
	GeneratedAt string
	ExpiredAt   string
}

func (q *Queries) CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (APIKey, error) {
	_, err := q.db.ExecContext(ctx, insertAPIKey, arg.Prefix, arg.Token, arg.GeneratedAt, arg.ExpiredAt)
	if err != nil {
		return APIKey{}, err
	}
	return APIKey(arg), nil
}

const getAPIKey = `SELECT prefix, token, generated_at, expired_at FROM api_keys WHERE prefix = ?`

func (q *Queries) GetAPIKey(ctx context.Context, prefix string) (APIKey, error) {
	var i APIKey
	err := q.db.QueryRowContext(ctx, getAPIKey, prefix).Scan(&i.Prefix, &i.Token, &i.GeneratedAt, &i.ExpiredAt)
	return i, err
}
