package report

import (
	"fmt"
	"io"
	"math"

	"github.com/banachtech/g2calib/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// InstrumentPricingResult is what the external pricing engine returns for one
// calibration instrument.
type InstrumentPricingResult struct {
	ModelPrice        float64 `json:"model_price"`
	MarketPrice       float64 `json:"market_price"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	MarketVolatility  float64 `json:"market_volatility"`
}

// Row is one reported instrument. RelativeError compares prices,
// VolatilityError compares the implied and market volatilities.
type Row struct {
	InstrumentPricingResult
	RelativeError   float64 `json:"relative_error"`
	VolatilityError float64 `json:"volatility_error"`
}

// Summary holds descriptive statistics of the volatility errors.
type Summary struct {
	MeanVolatilityError   float64 `json:"mean_volatility_error"`
	StdDevVolatilityError float64 `json:"stddev_volatility_error"`
	MaxAbsVolatilityError float64 `json:"max_abs_volatility_error"`
}

// CalibrationReport lists rows in input order. CumulativeError is the
// root-sum-of-squares of the volatility errors.
type CalibrationReport struct {
	Rows            []Row   `json:"rows"`
	CumulativeError float64 `json:"cumulative_error"`
	Summary         Summary `json:"summary"`
}

// Report computes per-instrument errors and the cumulative volatility error.
// It fails on the first instrument whose ratios are undefined.
func Report(instruments []InstrumentPricingResult) (CalibrationReport, error) {
	if len(instruments) == 0 {
		return CalibrationReport{}, model.NewInvalidInputError("report", "instruments", 0, "no instruments to report")
	}

	rows := make([]Row, len(instruments))
	volErrs := make([]float64, len(instruments))
	for i, inst := range instruments {
		if err := inst.validate(i); err != nil {
			return CalibrationReport{}, err
		}
		if inst.MarketPrice == 0 {
			return CalibrationReport{}, &model.DomainError{Op: "report", Field: "market_price", Index: i, Value: 0, Msg: "relative price error undefined"}
		}
		if inst.MarketVolatility == 0 {
			return CalibrationReport{}, &model.DomainError{Op: "report", Field: "market_volatility", Index: i, Value: 0, Msg: "relative volatility error undefined"}
		}
		rows[i] = Row{
			InstrumentPricingResult: inst,
			RelativeError:           inst.ModelPrice/inst.MarketPrice - 1.0,
			VolatilityError:         inst.ImpliedVolatility/inst.MarketVolatility - 1.0,
		}
		volErrs[i] = rows[i].VolatilityError
	}

	return CalibrationReport{
		Rows:            rows,
		CumulativeError: floats.Norm(volErrs, 2),
		Summary:         summarize(volErrs),
	}, nil
}

func (r InstrumentPricingResult) validate(i int) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"model_price", r.ModelPrice},
		{"market_price", r.MarketPrice},
		{"implied_volatility", r.ImpliedVolatility},
		{"market_volatility", r.MarketVolatility},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &model.InvalidInputError{Op: "report", Field: f.name, Index: i, Value: f.value, Msg: "must be finite"}
		}
	}
	return nil
}

func summarize(volErrs []float64) Summary {
	var s Summary
	if len(volErrs) > 1 {
		s.MeanVolatilityError, s.StdDevVolatilityError = stat.MeanStdDev(volErrs, nil)
	} else {
		s.MeanVolatilityError = volErrs[0]
	}
	abs := make([]float64, len(volErrs))
	for i, v := range volErrs {
		abs[i] = math.Abs(v)
	}
	s.MaxAbsVolatilityError = floats.Max(abs)
	return s
}

// Print writes the report as a table, one instrument per line.
func (r CalibrationReport) Print(w io.Writer) {
	fmt.Fprintf(w, "%-12s %-12s %-14s %-12s %-12s %-12s\n", "Model Price", "Market Price", "Implied Vol", "Market Vol", "Rel Error", "Vol Error")
	fmt.Fprintln(w, "---------------------------------------------------------------------------------")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%-12.5f %-12.5f %-14.5f %-12.5f %-12.5f %-12.5f\n",
			row.ModelPrice, row.MarketPrice, row.ImpliedVolatility, row.MarketVolatility, row.RelativeError, row.VolatilityError)
	}
	fmt.Fprintln(w, "---------------------------------------------------------------------------------")
	fmt.Fprintf(w, "Cumulative Error : %15.5f\n", r.CumulativeError)
}
