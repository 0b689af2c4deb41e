package model

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/optimize"
)

// recorder reports optimizer progress and stops the run once the context is
// done or the engine has failed.
type recorder struct {
	ctx    context.Context
	bar    *progressbar.ProgressBar
	failed func() error
}

func newRecorder(ctx context.Context, settings FitSettings, failed func() error) *recorder {
	r := &recorder{ctx: ctx, failed: failed}
	if settings.Progress != nil {
		r.bar = progressBar(settings.MaxIterations, settings)
	}
	return r
}

func (r *recorder) Init() error {
	return r.ctx.Err()
}

func (r *recorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if err := r.failed(); err != nil {
		return err
	}
	if r.bar != nil && op == optimize.MajorIteration {
		r.bar.Describe(fmt.Sprintf("calibrating G2++ (loss %.3e)", loc.F))
		_ = r.bar.Add(1)
	}
	return nil
}

func (r *recorder) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// progress bar initialization
func progressBar(length int, settings FitSettings) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		length,
		progressbar.OptionSetWriter(settings.Progress),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
