package data

import (
	"fmt"
	"math"

	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
)

// CalibrationQuote is one market swaption: an option starting in StartYears
// on a swap of LengthYears, quoted at MarketVolatility.
type CalibrationQuote struct {
	StartYears       int     `json:"start_years"`
	LengthYears      int     `json:"length_years"`
	MarketVolatility float64 `json:"market_volatility"`
}

// RunFile is the on-disk input of one calibration run. The parameters and
// pricing results come from the external calibration engine.
type RunFile struct {
	EvaluationDate string                           `json:"evaluation_date"`
	Calendar       string                           `json:"calendar"`
	Quotes         []CalibrationQuote               `json:"quotes"`
	Parameters     model.G2pp                       `json:"parameters"`
	Instruments    []report.InstrumentPricingResult `json:"instruments"`
}

// DefaultQuotes is the co-terminal 6y swaption strip used by the sample run.
var DefaultQuotes = []CalibrationQuote{
	{StartYears: 1, LengthYears: 5, MarketVolatility: 0.1148},
	{StartYears: 2, LengthYears: 4, MarketVolatility: 0.1108},
	{StartYears: 3, LengthYears: 3, MarketVolatility: 0.1070},
	{StartYears: 4, LengthYears: 2, MarketVolatility: 0.1021},
	{StartYears: 5, LengthYears: 1, MarketVolatility: 0.1000},
}

// Label returns the usual "start x length" name, e.g. "1x5".
func (q CalibrationQuote) Label() string {
	return fmt.Sprintf("%dx%d", q.StartYears, q.LengthYears)
}

// Validate checks one quote; i is its position in the strip.
func (q CalibrationQuote) Validate(i int) error {
	if q.StartYears <= 0 {
		return &model.InvalidInputError{Op: "quote", Field: "start_years", Index: i, Value: float64(q.StartYears), Msg: "must be positive"}
	}
	if q.LengthYears <= 0 {
		return &model.InvalidInputError{Op: "quote", Field: "length_years", Index: i, Value: float64(q.LengthYears), Msg: "must be positive"}
	}
	if math.IsNaN(q.MarketVolatility) || math.IsInf(q.MarketVolatility, 0) || q.MarketVolatility <= 0 {
		return &model.InvalidInputError{Op: "quote", Field: "market_volatility", Index: i, Value: q.MarketVolatility, Msg: "must be finite and positive"}
	}
	return nil
}

// Demo returns the sample run: the default quote strip on 2002-02-15 with the
// parameters and pricing results of a finished calibration.
func Demo() RunFile {
	quotes := make([]CalibrationQuote, len(DefaultQuotes))
	copy(quotes, DefaultQuotes)
	return RunFile{
		EvaluationDate: "2002-02-15",
		Calendar:       "TARGET",
		Quotes:         quotes,
		Parameters:     model.G2pp{A: 0.521159, Sigma: 0.005779, B: 0.075631, Eta: 0.011573, Rho: -0.986876},
		Instruments: []report.InstrumentPricingResult{
			{ModelPrice: 0.00871, MarketPrice: 0.00949, ImpliedVolatility: 0.10531, MarketVolatility: 0.1148},
			{ModelPrice: 0.00968, MarketPrice: 0.01008, ImpliedVolatility: 0.10634, MarketVolatility: 0.1108},
			{ModelPrice: 0.00867, MarketPrice: 0.00871, ImpliedVolatility: 0.10652, MarketVolatility: 0.1070},
			{ModelPrice: 0.00653, MarketPrice: 0.00625, ImpliedVolatility: 0.10665, MarketVolatility: 0.1021},
			{ModelPrice: 0.00357, MarketPrice: 0.00334, ImpliedVolatility: 0.10680, MarketVolatility: 0.1000},
		},
	}
}
