package util

import (
	"strings"
	"time"

	"github.com/banachtech/g2calib/data"
	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var src = rand.NewSource(uint64(time.Now().UnixNano()))

// NewSource returns a seeded source for reproducible draws.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// RandomInt generates a random integer between min and max
func RandomInt(min, max int) int {
	return min + rand.New(src).Intn(max-min+1)
}

// RandomFloat draws uniformly from [min, max).
func RandomFloat(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
}

// RandomString generates a random string of length n
func RandomString(n int) string {
	var sb strings.Builder
	r := rand.New(src)
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return sb.String()
}

// RandomG2pp draws parameters from the valid G2++ domain: speeds in (0, 1),
// volatilities in (0, 0.05) and a correlation in [-1, 1].
func RandomG2pp(s rand.Source) model.G2pp {
	speed := distuv.Uniform{Min: 1e-4, Max: 1.0, Src: s}
	vol := distuv.Uniform{Min: 1e-5, Max: 0.05, Src: s}
	corr := distuv.Uniform{Min: -1.0, Max: 1.0, Src: s}
	return model.G2pp{A: speed.Rand(), Sigma: vol.Rand(), B: speed.Rand(), Eta: vol.Rand(), Rho: corr.Rand()}
}

// RandomQuote generates a swaption quote with a start and length of up to ten years.
func RandomQuote() data.CalibrationQuote {
	return data.CalibrationQuote{
		StartYears:       RandomInt(1, 10),
		LengthYears:      RandomInt(1, 10),
		MarketVolatility: RandomFloat(0.05, 0.30),
	}
}

// RandomInstrument generates a priced instrument with strictly positive fields.
func RandomInstrument(s rand.Source) report.InstrumentPricingResult {
	price := distuv.Uniform{Min: 1e-3, Max: 2e-2, Src: s}
	vol := distuv.Uniform{Min: 0.05, Max: 0.30, Src: s}
	return report.InstrumentPricingResult{
		ModelPrice:        price.Rand(),
		MarketPrice:       price.Rand(),
		ImpliedVolatility: vol.Rand(),
		MarketVolatility:  vol.Rand(),
	}
}
