package model

import (
	"fmt"
	"time"
)

// ModelSpec is an explicit, immutable ARIMA order (p, d, q).
//
// Design decision: The spec is a plain value rather than state hidden inside
// a fitted model object. Order selection produces a ModelSpec, and fitting is
// a separate pure function, so the two steps are independently testable.
type ModelSpec struct {
	// P is the autoregressive order.
	P int `json:"p"`
	// D is the differencing order.
	D int `json:"d"`
	// Q is the moving-average order.
	Q int `json:"q"`
}

// Params returns the number of estimated parameters (AR + MA + intercept).
func (s ModelSpec) Params() int {
	return s.P + s.Q + 1
}

// String returns the conventional ARIMA(p,d,q) notation.
func (s ModelSpec) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", s.P, s.D, s.Q)
}

// Mode distinguishes the two evaluator invocation modes.
type Mode int

const (
	// ModeValidation holds out the final observed year: the model trains on
	// the preceding years, forecasts the held-out year, and accuracy metrics
	// are computed against ground truth.
	ModeValidation Mode = iota

	// ModeProduction trains on the full observed window and forecasts the
	// next, unobserved year. There is no ground truth, so metrics are absent.
	ModeProduction
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeValidation:
		return "validation"
	case ModeProduction:
		return "production"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "validation":
		*m = ModeValidation
	case "production":
		*m = ModeProduction
	default:
		return fmt.Errorf("unknown mode %q", string(text))
	}
	return nil
}

// Metrics holds forecast accuracy metrics for validation mode.
type Metrics struct {
	// MAE is the mean absolute error over the test window.
	MAE float64 `json:"mae"`

	// RMSE is the root mean squared error over the test window.
	RMSE float64 `json:"rmse"`

	// MAPE is the mean absolute percentage error over the test points whose
	// actual value is non-zero. Only meaningful when MAPEDefined is true.
	MAPE float64 `json:"mape"`

	// MAPEDefined is false when every test point had a zero actual value,
	// leaving no point over which MAPE can be computed.
	MAPEDefined bool `json:"mape_defined"`

	// MAPEExcludedYears lists test years excluded from the MAPE average
	// because their actual value was zero.
	MAPEExcludedYears []int `json:"mape_excluded_years,omitempty"`
}

// ForecastResult is the evaluated forecast for one entity in one mode.
// It is produced once per entity per mode per run and never mutated after.
type ForecastResult struct {
	// Scope and EntityKey identify the forecast entity.
	Scope     Scope  `json:"scope"`
	EntityKey string `json:"entity_key"`

	// CrimeType is the crime type for city-wide entities, or "ALL" for
	// neighbourhood totals.
	CrimeType string `json:"crime_type"`

	// Mode records whether this is a validation or production result.
	Mode Mode `json:"mode"`

	// Spec is the fitted model order.
	Spec ModelSpec `json:"spec"`

	// TrainStart and TrainEnd bound the training window (inclusive).
	TrainStart int `json:"train_start"`
	TrainEnd   int `json:"train_end"`

	// TestYears are the forecast years, in order.
	TestYears []int `json:"test_years"`

	// Forecasts are the reported point forecasts, clamped to >= 0.
	Forecasts []float64 `json:"forecasts"`

	// RawForecasts are the unclamped model outputs, kept for diagnostics.
	RawForecasts []float64 `json:"raw_forecasts"`

	// Actuals are the ground-truth counts for TestYears. Nil in production
	// mode where the forecast year has not been observed.
	Actuals []float64 `json:"actuals,omitempty"`

	// Metrics are accuracy metrics against Actuals. Nil in production mode.
	Metrics *Metrics `json:"metrics,omitempty"`

	// Fallback is true when no candidate order converged and the naive
	// fallback model produced this forecast.
	Fallback bool `json:"fallback,omitempty"`

	// FallbackReason explains why the fallback was used.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Skip records an entity that the runner could not forecast.
// Skipped entities are enumerated on the run report rather than silently
// dropped from the output.
type Skip struct {
	// EntityKey is the skipped entity.
	EntityKey string `json:"entity_key"`

	// Reason explains the skip, e.g. "series too short: 3 < 6".
	Reason string `json:"reason"`
}

// RunReport is everything produced by one pipeline run over one scope.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Scope is the entity scope this run covered.
	Scope Scope `json:"scope"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Results holds validation and production results, ordered by entity key
	// and, within an entity, validation before production.
	Results []ForecastResult `json:"results"`

	// Skips enumerates entities that could not be forecast.
	Skips []Skip `json:"skips,omitempty"`

	// Observations are each forecast entity's full observed series, so the
	// output table can interleave actual values with forecasts.
	Observations []ObservationPoint `json:"observations,omitempty"`
}

// FallbackCount returns how many results used the naive fallback model.
func (r *RunReport) FallbackCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Fallback {
			n++
		}
	}
	return n
}

// OutputRow is one row of the table consumed by the visualization layer:
// (scope, entity, crime type or ALL, year, value kind, count, metrics).
// Metric pointers are nil for actual rows and for production-mode forecasts.
type OutputRow struct {
	Scope     Scope    `json:"scope"`
	EntityKey string   `json:"entity_key"`
	CrimeType string   `json:"crime_type"`
	Year      int      `json:"year"`
	Kind      string   `json:"kind"` // "actual" or "forecast"
	Value     float64  `json:"value"`
	MAE       *float64 `json:"mae,omitempty"`
	RMSE      *float64 `json:"rmse,omitempty"`
	MAPE      *float64 `json:"mape,omitempty"`
}

// Output row kinds.
const (
	KindActual   = "actual"
	KindForecast = "forecast"
)

// CrimeTypeAll marks rows aggregated across all crime types.
const CrimeTypeAll = "ALL"
