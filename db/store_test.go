package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
	"github.com/banachtech/g2calib/util"
	"github.com/stretchr/testify/require"
)

func createRandomRun(t *testing.T) Run {
	src := util.NewSource(uint64(time.Now().UnixNano()))
	params := util.RandomG2pp(src)
	hw, err := params.HullWhite2F()
	require.NoError(t, err)

	n := util.RandomInt(1, 6)
	instruments := make([]report.InstrumentPricingResult, n)
	labels := make([]string, n)
	for i := range instruments {
		instruments[i] = util.RandomInstrument(src)
		labels[i] = util.RandomQuote().Label()
	}
	rep, err := report.Report(instruments)
	require.NoError(t, err)

	store := NewStore(testDB)
	arg := CreateRunParams{
		EvaluationDate: "2002-02-15",
		Parameters:     params,
		HullWhite2F:    hw,
		Report:         rep,
		Labels:         labels,
	}
	run, err := store.CreateRun(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	require.Equal(t, arg.EvaluationDate, run.EvaluationDate)
	require.Equal(t, arg.Parameters, run.Parameters)
	require.Equal(t, arg.HullWhite2F, run.HullWhite2F)
	require.Equal(t, rep.CumulativeError, run.CumulativeError)
	require.Len(t, run.Rows, n)
	return run
}

func TestCreateRun(t *testing.T) {
	createRandomRun(t)
}

func TestGetRun(t *testing.T) {
	run := createRandomRun(t)
	store := NewStore(testDB)

	got, err := store.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.Equal(t, run, got)
	for i, row := range got.Rows {
		require.Equal(t, i, row.Position)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := NewStore(testDB)
	_, err := store.GetRun(context.Background(), util.RandomString(12))
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateRunConcurrent(t *testing.T) {
	store := NewStore(testDB)
	rep, err := report.Report([]report.InstrumentPricingResult{
		{ModelPrice: 0.00871, MarketPrice: 0.00949, ImpliedVolatility: 0.10531, MarketVolatility: 0.1148},
	})
	require.NoError(t, err)

	n := 5
	errs := make(chan error)
	ids := make(chan string)
	for i := 0; i < n; i++ {
		go func() {
			run, err := store.CreateRun(context.Background(), CreateRunParams{
				EvaluationDate: "2002-02-15",
				Parameters:     model.NewG2pp(),
				Report:         rep,
			})
			errs <- err
			ids <- run.ID
		}()
	}
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
		id := <-ids
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestListRuns(t *testing.T) {
	for i := 0; i < 3; i++ {
		createRandomRun(t)
	}
	runs, err := testQueries.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		require.NotEmpty(t, r.ID)
		require.Empty(t, r.Rows)
	}
}

func TestAPIKey(t *testing.T) {
	now := time.Now().UTC()
	arg := CreateAPIKeyParams{
		Prefix:      util.RandomString(8),
		Token:       util.RandomString(32),
		GeneratedAt: now.Format(Layout),
		ExpiredAt:   now.AddDate(0, 6, 0).Format(Layout),
	}
	key, err := testQueries.CreateAPIKey(context.Background(), arg)
	require.NoError(t, err)
	require.Equal(t, arg.Prefix, key.Prefix)

	got, err := testQueries.GetAPIKey(context.Background(), arg.Prefix)
	require.NoError(t, err)
	require.Equal(t, key, got)

	_, err = testQueries.GetAPIKey(context.Background(), util.RandomString(9))
	require.ErrorIs(t, err, sql.ErrNoRows)
}
