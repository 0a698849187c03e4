package model

import "time"

// Release represents one published estimate of GDP growth for a target
// period, identified by its release sequence number (horizon). Horizon 1 is
// the first publication; higher horizons are successive revisions.
type Release struct {
	Period      Period    `json:"period"`
	Horizon     int       `json:"horizon"`
	Value       float64   `json:"value"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// BenchmarkFlag marks whether the release at (period, horizon) coincides
// with a statistical base-year/benchmark revision event, as opposed to an
// ordinary routine revision.
type BenchmarkFlag struct {
	Period  Period `json:"period"`
	Horizon int    `json:"horizon"`
	Flag    bool   `json:"flag"`
}
