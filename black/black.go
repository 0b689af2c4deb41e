// Package black prices European swaptions with Black's formula and inverts
// the formula for implied volatility.
package black

import (
	"math"

	"github.com/banachtech/g2calib/model"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

// Swaption is a European option on a swap. Forward is the forward swap rate,
// Annuity the discounted fixed-leg accrual (PV01), Expiry the time to exercise
// in years.
type Swaption struct {
	Forward float64 `json:"forward"`
	Strike  float64 `json:"strike"`
	Expiry  float64 `json:"expiry"`
	Annuity float64 `json:"annuity"`
	Payer   bool    `json:"payer"`
}

// SolverSettings bound the implied-volatility search.
type SolverSettings struct {
	Accuracy       float64 `json:"accuracy"`
	MaxEvaluations int     `json:"max_evaluations"`
	MinVol         float64 `json:"min_vol"`
	MaxVol         float64 `json:"max_vol"`
}

// DefaultSolverSettings returns the bounds and accuracy used for calibration reports.
func DefaultSolverSettings() SolverSettings {
	return SolverSettings{Accuracy: 1e-6, MaxEvaluations: 500, MinVol: 0.0, MaxVol: 0.5}
}

// Validate checks that the contract is priceable.
func (s Swaption) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"forward", s.Forward},
		{"strike", s.Strike},
		{"expiry", s.Expiry},
		{"annuity", s.Annuity},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return model.NewInvalidInputError("swaption", f.name, f.value, "must be finite")
		}
	}
	if s.Forward <= 0 {
		return model.NewInvalidInputError("swaption", "forward", s.Forward, "must be positive")
	}
	if s.Strike <= 0 {
		return model.NewInvalidInputError("swaption", "strike", s.Strike, "must be positive")
	}
	if s.Expiry < 0 {
		return model.NewInvalidInputError("swaption", "expiry", s.Expiry, "must be non-negative")
	}
	if s.Annuity <= 0 {
		return model.NewInvalidInputError("swaption", "annuity", s.Annuity, "must be positive")
	}
	return nil
}

// Price returns the Black price for volatility vol. A zero total variance
// gives the discounted intrinsic value.
func (s Swaption) Price(vol float64) float64 {
	x := vol * math.Sqrt(s.Expiry)
	if x == 0 {
		if s.Payer {
			return s.Annuity * math.Max(s.Forward-s.Strike, 0)
		}
		return s.Annuity * math.Max(s.Strike-s.Forward, 0)
	}
	d1 := (math.Log(s.Forward/s.Strike) + 0.5*x*x) / x
	d2 := d1 - x

	N := distuv.UnitNormal
	if s.Payer {
		return s.Annuity * (s.Forward*N.CDF(d1) - s.Strike*N.CDF(d2))
	}
	return s.Annuity * (s.Strike*N.CDF(-d2) - s.Forward*N.CDF(-d1))
}

// ImpliedVol returns the volatility in [MinVol, MaxVol] whose Black price is
// within Accuracy of target. A target outside the prices attainable inside the
// bounds, or a search that ends short of Accuracy, is a DomainError.
func ImpliedVol(s Swaption, target float64, settings SolverSettings) (float64, error) {
	if err := s.Validate(); err != nil {
		return math.NaN(), err
	}
	if err := settings.validate(); err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return math.NaN(), model.NewInvalidInputError("implied vol", "target", target, "must be finite")
	}

	lo, hi := s.Price(settings.MinVol), s.Price(settings.MaxVol)
	switch {
	case math.Abs(target-lo) <= settings.Accuracy:
		return settings.MinVol, nil
	case math.Abs(target-hi) <= settings.Accuracy:
		return settings.MaxVol, nil
	case target < lo || target > hi:
		return math.NaN(), model.NewDomainError("implied vol", "target", target, "no root within volatility bounds")
	}

	vol := func(x float64) float64 {
		return settings.MinVol + (settings.MaxVol-settings.MinVol)/(1.0+math.Exp(-x))
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return math.Pow((s.Price(vol(x[0]))-target)/settings.Accuracy, 2)
		},
	}
	res, err := optimize.Minimize(problem, []float64{0.0}, &optimize.Settings{
		FuncEvaluations: settings.MaxEvaluations,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-6, Iterations: 20},
	}, &optimize.NelderMead{})
	if res == nil {
		return math.NaN(), err
	}

	v := vol(res.X[0])
	if math.Abs(s.Price(v)-target) > settings.Accuracy {
		return math.NaN(), model.NewDomainError("implied vol", "target", target, "solver did not reach the requested accuracy")
	}
	return v, nil
}

func (s SolverSettings) validate() error {
	if !(s.Accuracy > 0) || math.IsInf(s.Accuracy, 0) {
		return model.NewInvalidInputError("implied vol", "accuracy", s.Accuracy, "must be positive")
	}
	if s.MaxEvaluations <= 0 {
		return model.NewInvalidInputError("implied vol", "max_evaluations", float64(s.MaxEvaluations), "must be positive")
	}
	if math.IsNaN(s.MinVol) || math.IsInf(s.MinVol, 0) || s.MinVol < 0 {
		return model.NewInvalidInputError("implied vol", "min_vol", s.MinVol, "must be finite and non-negative")
	}
	if math.IsNaN(s.MaxVol) || math.IsInf(s.MaxVol, 0) || s.MaxVol <= s.MinVol {
		return model.NewInvalidInputError("implied vol", "max_vol", s.MaxVol, "must be finite and above min_vol")
	}
	return nil
}
