package model

import (
	"fmt"
	"math"
)

// rhoBarTolerance is the slack allowed on |rho_bar| <= 1 for floating-point rounding.
const rhoBarTolerance = 1e-12

// G2pp holds calibrated G2++ parameters. A and B are the mean-reversion speeds
// of the two factors, Sigma and Eta their volatilities, Rho their correlation.
type G2pp struct {
	A     float64 `json:"a"`
	Sigma float64 `json:"sigma"`
	B     float64 `json:"b"`
	Eta   float64 `json:"eta"`
	Rho   float64 `json:"rho"`
}

// HullWhite2F holds the equivalent two-factor Hull-White parameterization.
type HullWhite2F struct {
	Alpha  float64 `json:"alpha"`
	Beta   float64 `json:"beta"`
	Sigma1 float64 `json:"sigma_1"`
	Sigma2 float64 `json:"sigma_2"`
	RhoBar float64 `json:"rho_bar"`
}

// NewG2pp returns the starting point used for calibration.
func NewG2pp() G2pp {
	return G2pp{A: 0.1, Sigma: 0.01, B: 0.1, Eta: 0.01, Rho: -0.75}
}

func (p G2pp) String() string {
	return fmt.Sprintf("a = %6.5f, sigma = %6.5f, b = %6.5f, eta = %6.5f, rho = %6.5f", p.A, p.Sigma, p.B, p.Eta, p.Rho)
}

func (h HullWhite2F) String() string {
	return fmt.Sprintf("alpha = %6.5f, beta = %6.5f, sigma_1 = %6.5f, sigma_2 = %6.5f, rho_bar = %6.5f", h.Alpha, h.Beta, h.Sigma1, h.Sigma2, h.RhoBar)
}

// Validate checks the full parameter domain: finite values, non-negative
// speeds and volatilities, and a correlation in [-1, 1].
func (p G2pp) Validate() error {
	for _, f := range p.fields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return NewInvalidInputError("validate", f.name, f.value, "must be finite")
		}
		if f.name != "rho" && f.value < 0 {
			return NewInvalidInputError("validate", f.name, f.value, "must be non-negative")
		}
	}
	if p.Rho < -1 || p.Rho > 1 {
		return NewInvalidInputError("validate", "rho", p.Rho, "must lie in [-1, 1]")
	}
	return nil
}

// HullWhite2F maps p to its two-factor Hull-White parameterization.
func (p G2pp) HullWhite2F() (HullWhite2F, error) {
	return Map(p.A, p.Sigma, p.B, p.Eta, p.Rho)
}

// Map converts G2++ parameters into two-factor Hull-White parameters:
//
//	alpha   = a
//	beta    = b
//	sigma_1 = sqrt(sigma^2 + eta^2 + 2*rho*sigma*eta)
//	sigma_2 = eta * (a - b)
//	rho_bar = (sigma*rho + eta) / sigma_1
//
// Non-finite inputs and negative volatilities are rejected with an
// InvalidInputError. rho is not range checked here; a negative radicand or a
// zero sigma_1 is reported as a DomainError.
func Map(a, sigma, b, eta, rho float64) (HullWhite2F, error) {
	p := G2pp{A: a, Sigma: sigma, B: b, Eta: eta, Rho: rho}
	for _, f := range p.fields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return HullWhite2F{}, NewInvalidInputError("map", f.name, f.value, "must be finite")
		}
	}
	if sigma < 0 {
		return HullWhite2F{}, NewInvalidInputError("map", "sigma", sigma, "must be non-negative")
	}
	if eta < 0 {
		return HullWhite2F{}, NewInvalidInputError("map", "eta", eta, "must be non-negative")
	}

	// For |rho| <= 1 the completed square cannot round below zero.
	radicand := sigma*sigma + eta*eta + 2.0*rho*sigma*eta
	if math.Abs(rho) <= 1 {
		radicand = math.Pow(sigma+rho*eta, 2) + eta*eta*(1.0-rho*rho)
	}
	if radicand < 0 {
		return HullWhite2F{}, NewDomainError("map", "sigma_1", radicand, "negative radicand")
	}
	sigma1 := math.Sqrt(radicand)
	if sigma1 == 0 {
		return HullWhite2F{}, NewDomainError("map", "rho_bar", sigma1, "sigma_1 is zero")
	}

	return HullWhite2F{
		Alpha:  a,
		Beta:   b,
		Sigma1: sigma1,
		Sigma2: eta * (a - b),
		RhoBar: (sigma*rho + eta) / sigma1,
	}, nil
}

// Validate reports a correlation outside [-1, 1], which a valid G2++ input
// never produces.
func (h HullWhite2F) Validate() error {
	if math.Abs(h.RhoBar) > 1+rhoBarTolerance {
		return NewDomainError("validate", "rho_bar", h.RhoBar, "correlation outside [-1, 1]")
	}
	return nil
}

type field struct {
	name  string
	value float64
}

func (p G2pp) fields() []field {
	return []field{{"a", p.A}, {"sigma", p.Sigma}, {"b", p.B}, {"eta", p.Eta}, {"rho", p.Rho}}
}
