package mainfuncs

import (
	"math"
	"time"

	"github.com/banachtech/g2calib/calendar"
	"github.com/banachtech/g2calib/data"
	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
)

// volatilityTolerance bounds the mismatch allowed between a quote and the
// market volatility echoed back by the pricing engine.
const volatilityTolerance = 1e-12

// RunInput is everything one calibration report needs. The evaluation date is
// explicit; nothing reads an ambient "today".
type RunInput struct {
	EvaluationDate time.Time
	Calendar       calendar.CalendarID
	Quotes         []data.CalibrationQuote
	Parameters     model.G2pp
	Instruments    []report.InstrumentPricingResult
}

// Instrument ties a report row to its quote and schedule.
type Instrument struct {
	Label    string    `json:"label,omitempty"`
	Expiry   time.Time `json:"expiry"`
	Maturity time.Time `json:"maturity"`
}

// RunResult is the outcome of Run.
type RunResult struct {
	EvaluationDate time.Time                `json:"evaluation_date"`
	Parameters     model.G2pp               `json:"parameters"`
	HullWhite2F    model.HullWhite2F        `json:"hull_white_2f"`
	Report         report.CalibrationReport `json:"report"`
	Instruments    []Instrument             `json:"instruments,omitempty"`
}

// NewRunInput converts a run file into a RunInput.
func NewRunInput(f data.RunFile) (RunInput, error) {
	eval, err := calendar.ParseDate(f.EvaluationDate)
	if err != nil {
		return RunInput{}, model.NewInvalidInputError("run", "evaluation_date", 0, err.Error())
	}
	cal, err := calendar.Lookup(f.Calendar)
	if err != nil {
		return RunInput{}, err
	}
	return RunInput{
		EvaluationDate: eval,
		Calendar:       cal,
		Quotes:         f.Quotes,
		Parameters:     f.Parameters,
		Instruments:    f.Instruments,
	}, nil
}

// Run validates the input, maps the calibrated parameters and builds the
// calibration report. Either everything succeeds or the first failure is returned.
func Run(in RunInput) (RunResult, error) {
	if err := in.Parameters.Validate(); err != nil {
		return RunResult{}, err
	}
	if err := checkQuotes(in.Quotes, in.Instruments); err != nil {
		return RunResult{}, err
	}

	hw, err := in.Parameters.HullWhite2F()
	if err != nil {
		return RunResult{}, err
	}
	rep, err := report.Report(in.Instruments)
	if err != nil {
		return RunResult{}, err
	}

	res := RunResult{
		EvaluationDate: in.EvaluationDate,
		Parameters:     in.Parameters,
		HullWhite2F:    hw,
		Report:         rep,
	}
	for _, q := range in.Quotes {
		expiry, maturity := calendar.SwaptionDates(in.Calendar, in.EvaluationDate, q.StartYears, q.LengthYears)
		res.Instruments = append(res.Instruments, Instrument{Label: q.Label(), Expiry: expiry, Maturity: maturity})
	}
	return res, nil
}

func checkQuotes(quotes []data.CalibrationQuote, instruments []report.InstrumentPricingResult) error {
	if len(quotes) == 0 {
		return nil
	}
	if len(quotes) != len(instruments) {
		return model.NewInvalidInputError("run", "quotes", float64(len(quotes)), "quote count does not match instrument count")
	}
	for i, q := range quotes {
		if err := q.Validate(i); err != nil {
			return err
		}
		if math.Abs(q.MarketVolatility-instruments[i].MarketVolatility) > volatilityTolerance {
			return &model.InvalidInputError{Op: "run", Field: "market_volatility", Index: i, Value: instruments[i].MarketVolatility, Msg: "does not match the quoted volatility"}
		}
	}
	return nil
}
