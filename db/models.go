package db

import (
	"github.com/banachtech/g2calib/model"
	"github.com/banachtech/g2calib/report"
)

// Layout is the timestamp format stored in text columns.
const Layout = "2006-01-02 15:04:05"

type Run struct {
	ID              string            `json:"id"`
	CreatedAt       string            `json:"created_at"`
	EvaluationDate  string            `json:"evaluation_date"`
	Parameters      model.G2pp        `json:"parameters"`
	HullWhite2F     model.HullWhite2F `json:"hull_white_2f"`
	CumulativeError float64           `json:"cumulative_error"`
	Rows            []RunRow          `json:"rows,omitempty"`
}

type RunRow struct {
	Position int    `json:"position"`
	Label    string `json:"label,omitempty"`
	report.Row
}

type APIKey struct {
	Prefix      string `json:"prefix"`
	Token       string `json:"-"`
	GeneratedAt string `json:"generated_at"`
	ExpiredAt   string `json:"expired_at"`
}
