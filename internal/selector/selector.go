package selector

import (
	"fmt"
	"math"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/arima"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/stats"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/timeseries"
)

// Default search bounds. The grid is intentionally small: with nine or ten
// training points anything beyond second-order terms cannot be estimated
// meaningfully, and AICc would reject it anyway.
const (
	DefaultMaxP = 2
	DefaultMaxD = 2
	DefaultMaxQ = 2

	// DefaultEpsilon is the criterion margin within which two candidates are
	// considered tied and the simpler model wins.
	DefaultEpsilon = 1e-4
)

// Config bounds the order search.
type Config struct {
	// MaxP and MaxQ bound the AR and MA orders of the grid.
	MaxP int
	MaxQ int

	// MaxD caps the differencing order chosen by the stationarity scan.
	MaxD int

	// Epsilon is the AICc margin treated as a tie.
	Epsilon float64
}

// DefaultConfig returns the default search bounds.
func DefaultConfig() Config {
	return Config{
		MaxP:    DefaultMaxP,
		MaxD:    DefaultMaxD,
		MaxQ:    DefaultMaxQ,
		Epsilon: DefaultEpsilon,
	}
}

// Selection is the outcome of an order search for one series.
type Selection struct {
	// Spec is the selected order. When Fallback is true it is the naive
	// fallback order, not a converged search result.
	Spec model.ModelSpec

	// AICc is the criterion value of the winning candidate. +Inf for
	// fallback selections, which have no comparable likelihood.
	AICc float64

	// ModelsEvaluated counts candidates that produced a finite criterion.
	ModelsEvaluated int

	// Fallback is true when no grid candidate converged and the naive model
	// was substituted. This is reported, never silent.
	Fallback bool

	// FallbackReason explains the substitution.
	FallbackReason string
}

// Select searches the bounded order grid for the series and returns the
// candidate minimizing AICc.
//
// The caller must pass only the training window: Select never slices or
// windows the series itself, so it cannot observe held-out years.
//
// Tie-break: candidates within Epsilon of the best criterion prefer lower
// p+q, then lower p.
func Select(series *timeseries.Series, cfg Config) Selection {
	if cfg.MaxP <= 0 && cfg.MaxQ <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}

	d := stats.NDiffs(series, cfg.MaxD, arima.MinObservations(model.ModelSpec{}))

	type candidate struct {
		spec model.ModelSpec
		crit float64
	}
	var candidates []candidate

	for p := 0; p <= cfg.MaxP; p++ {
		for q := 0; q <= cfg.MaxQ; q++ {
			spec := model.ModelSpec{P: p, D: d, Q: q}
			fitted, err := arima.Fit(series, spec)
			if err != nil {
				continue
			}
			crit := fitted.AICc()
			if math.IsNaN(crit) || math.IsInf(crit, 0) {
				continue
			}
			candidates = append(candidates, candidate{spec: spec, crit: crit})
		}
	}

	if len(candidates) == 0 {
		return fallbackSelection(series, "no candidate order converged")
	}

	minCrit := math.Inf(1)
	for _, c := range candidates {
		if c.crit < minCrit {
			minCrit = c.crit
		}
	}

	// Among candidates tied within epsilon of the minimum, take the one with
	// the fewest parameters, then the lowest AR order.
	best := candidate{crit: math.Inf(1)}
	chosen := false
	for _, c := range candidates {
		if c.crit > minCrit+cfg.Epsilon {
			continue
		}
		if !chosen || simpler(c.spec, best.spec) {
			best = c
			chosen = true
		}
	}

	return Selection{
		Spec:            best.spec,
		AICc:            best.crit,
		ModelsEvaluated: len(candidates),
	}
}

// simpler reports whether a should be preferred over b on a criterion tie.
func simpler(a, b model.ModelSpec) bool {
	if a.P+a.Q != b.P+b.Q {
		return a.P+a.Q < b.P+b.Q
	}
	return a.P < b.P
}

// fallbackSelection builds the naive selection for degenerate series.
// A constant series gets ARIMA(0,0,0), predicting the constant level;
// anything else gets ARIMA(0,1,0), predicting the last observed value.
func fallbackSelection(series *timeseries.Series, why string) Selection {
	spec := model.ModelSpec{P: 0, D: 1, Q: 0}
	if series.IsConstant() {
		spec = model.ModelSpec{P: 0, D: 0, Q: 0}
	}
	return Selection{
		Spec:            spec,
		AICc:            math.Inf(1),
		Fallback:        true,
		FallbackReason:  fmt.Sprintf("%s; using naive %s", why, spec),
		ModelsEvaluated: 0,
	}
}
