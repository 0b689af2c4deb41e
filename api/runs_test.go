package api

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banachtech/g2calib/data"
	"github.com/banachtech/g2calib/db"
	mockdb "github.com/banachtech/g2calib/db/mock"
	"github.com/banachtech/g2calib/model"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func storedRun(arg db.CreateRunParams) db.Run {
	run := db.Run{
		ID:              "c0ffee00-0000-4000-8000-000000000000",
		CreatedAt:       "2024-01-02 03:04:05",
		EvaluationDate:  arg.EvaluationDate,
		Parameters:      arg.Parameters,
		HullWhite2F:     arg.HullWhite2F,
		CumulativeError: arg.Report.CumulativeError,
	}
	for i, row := range arg.Report.Rows {
		run.Rows = append(run.Rows, db.RunRow{Position: i, Label: arg.Labels[i], Row: row})
	}
	return run
}

func TestCreateRunAPI(t *testing.T) {
	badRho := data.Demo()
	badRho.Parameters.Rho = -1.5

	mismatch := data.Demo()
	mismatch.Quotes = data.DefaultQuotes[:4]

	badDate := data.Demo()
	badDate.EvaluationDate = "15/02/2002"

	testCases := []struct {
		name          string
		body          data.RunFile
		buildStubs    func(store *mockdb.MockStore)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			body: data.Demo(),
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().
					CreateRun(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg db.CreateRunParams) (db.Run, error) {
						return storedRun(arg), nil
					})
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				run := decode[db.Run](t, recorder.Body)
				require.Equal(t, "2002-02-15", run.EvaluationDate)
				require.InDelta(t, 0.12288, run.CumulativeError, 1e-4)
				require.Len(t, run.Rows, 5)
				require.Equal(t, "1x5", run.Rows[0].Label)
				require.Equal(t, "5x1", run.Rows[4].Label)
			},
		},
		{
			name: "BAD_RHO",
			body: badRho,
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				requireErrorField(t, recorder.Body, "rho")
			},
		},
		{
			name: "QUOTE_COUNT",
			body: mismatch,
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				requireErrorField(t, recorder.Body, "quotes")
			},
		},
		{
			name: "BAD_DATE",
			body: badDate,
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				requireErrorField(t, recorder.Body, "evaluation_date")
			},
		},
		{
			name: "INTERNAL_ERROR",
			body: data.Demo(),
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Times(1).Return(db.Run{}, sql.ErrConnDone)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(store)
			tc.buildStubs(store)

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodPost, "/v1/runs", tc.body)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestGetRunAPI(t *testing.T) {
	run := db.Run{ID: "c0ffee00-0000-4000-8000-000000000000", EvaluationDate: "2002-02-15", Parameters: model.NewG2pp()}

	testCases := []struct {
		name          string
		id            string
		buildStubs    func(store *mockdb.MockStore)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			id:   run.ID,
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetRun(gomock.Any(), gomock.Eq(run.ID)).Times(1).Return(run, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Equal(t, run, decode[db.Run](t, recorder.Body))
			},
		},
		{
			name: "NOT_FOUND",
			id:   "missing",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetRun(gomock.Any(), gomock.Eq("missing")).Times(1).Return(db.Run{}, sql.ErrNoRows)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "INTERNAL_ERROR",
			id:   run.ID,
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().GetRun(gomock.Any(), gomock.Eq(run.ID)).Times(1).Return(db.Run{}, sql.ErrConnDone)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(store)
			tc.buildStubs(store)

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodGet, "/v1/runs/"+tc.id, nil)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestListRunsAPI(t *testing.T) {
	runs := []db.Run{
		{ID: "b", EvaluationDate: "2002-02-15", Parameters: model.NewG2pp()},
		{ID: "a", EvaluationDate: "2002-02-14", Parameters: model.NewG2pp()},
	}

	testCases := []struct {
		name          string
		query         string
		buildStubs    func(store *mockdb.MockStore)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name:  "DEFAULT_LIMIT",
			query: "",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().ListRuns(gomock.Any(), gomock.Eq(defaultListLimit)).Times(1).Return(runs, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Equal(t, runs, decode[[]db.Run](t, recorder.Body))
			},
		},
		{
			name:  "LIMIT",
			query: "?limit=5",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().ListRuns(gomock.Any(), gomock.Eq(5)).Times(1).Return(runs[:1], nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Len(t, decode[[]db.Run](t, recorder.Body), 1)
			},
		},
		{
			name:  "LIMIT_TOO_LARGE",
			query: "?limit=1000",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().ListRuns(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:  "BAD_LIMIT",
			query: "?limit=ten",
			buildStubs: func(store *mockdb.MockStore) {
				store.EXPECT().ListRuns(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mockdb.NewMockStore(ctrl)
			expectAuth(store)
			tc.buildStubs(store)

			server := newTestServer(t, store)
			recorder := serve(t, server, http.MethodGet, "/v1/runs"+tc.query, nil)
			tc.checkResponse(t, recorder)
		})
	}
}
