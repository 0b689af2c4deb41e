package model

import (
	"context"
	"io"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Engine prices calibration instrument i under the given G2++ parameters.
// Implementations wrap an external pricing library; the instrument set is
// owned by the engine.
type Engine interface {
	ModelPrice(ctx context.Context, p G2pp, i int) (float64, error)
}

// FitSettings controls the optimizer. Zero values select the defaults.
type FitSettings struct {
	MaxIterations     int
	FunctionTolerance float64
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// DefaultFitSettings returns the end criteria of the sample calibration.
func DefaultFitSettings() FitSettings {
	return FitSettings{MaxIterations: 1000, FunctionTolerance: 1e-8}
}

// Calibration is the outcome of Fit.
type Calibration struct {
	Parameters  G2pp    `json:"parameters"`
	Objective   float64 `json:"objective"`
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
}

// Get returns parameters transformed to the domain (-Inf, Inf).
func (p G2pp) Get() []float64 {
	x := make([]float64, 5)
	x[0], x[1], x[2], x[3] = math.Log(p.A), math.Log(p.Sigma), math.Log(p.B), math.Log(p.Eta)
	x[4] = math.Atanh(p.Rho)
	return x
}

// Set creates parameters from the transformed values produced by Get.
func (p G2pp) Set(x []float64) G2pp {
	p.A, p.Sigma, p.B, p.Eta = math.Exp(x[0]), math.Exp(x[1]), math.Exp(x[2]), math.Exp(x[3])
	p.Rho = math.Tanh(x[4])
	return p
}

// Fit calibrates G2++ parameters so that the engine's model prices match
// targets, minimising the sum of squared relative price errors with
// Nelder-Mead. targets[i] is the market price of instrument i.
func Fit(ctx context.Context, engine Engine, targets []float64, initial G2pp, settings FitSettings) (Calibration, error) {
	if len(targets) == 0 {
		return Calibration{}, NewInvalidInputError("fit", "targets", 0, "no calibration instruments")
	}
	for i, v := range targets {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Calibration{}, &InvalidInputError{Op: "fit", Field: "target", Index: i, Value: v, Msg: "must be finite and non-zero"}
		}
	}
	if err := initial.Validate(); err != nil {
		return Calibration{}, err
	}
	if initial.A == 0 || initial.Sigma == 0 || initial.B == 0 || initial.Eta == 0 || math.Abs(initial.Rho) == 1 {
		return Calibration{}, NewInvalidInputError("fit", "initial", 0, "initial guess must lie in the interior of the domain")
	}
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = DefaultFitSettings().MaxIterations
	}
	if settings.FunctionTolerance <= 0 {
		settings.FunctionTolerance = DefaultFitSettings().FunctionTolerance
	}

	var engineErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if engineErr != nil {
				return math.Inf(1)
			}
			loss, err := relativeLoss(ctx, engine, initial.Set(x), targets)
			if err != nil {
				engineErr = err
				return math.Inf(1)
			}
			return loss
		},
	}
	rec := newRecorder(ctx, settings, func() error { return engineErr })
	res, err := optimize.Minimize(problem, initial.Get(), &optimize.Settings{
		MajorIterations: settings.MaxIterations,
		Converger:       &optimize.FunctionConverge{Absolute: settings.FunctionTolerance, Iterations: 50},
		Recorder:        rec,
	}, &optimize.NelderMead{})
	rec.finish()
	if engineErr != nil {
		return Calibration{}, engineErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Calibration{}, ctxErr
	}
	if res == nil {
		return Calibration{}, err
	}
	if err != nil && res.Status != optimize.IterationLimit {
		return Calibration{}, err
	}

	return Calibration{
		Parameters:  initial.Set(res.X),
		Objective:   res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations,
	}, nil
}

// Sum of squared relative price errors between model and target prices.
func relativeLoss(ctx context.Context, engine Engine, p G2pp, targets []float64) (float64, error) {
	loss := 0.0
	for i := range targets {
		v, err := engine.ModelPrice(ctx, p, i)
		if err != nil {
			return math.NaN(), err
		}
		loss += math.Pow(v/targets[i]-1.0, 2)
	}
	return loss, nil
}
