package evaluate

import (
	"errors"
	"fmt"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/arima"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/selector"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/timeseries"
)

// ErrEmptyTestWindow is returned by validation mode when the cutoff leaves
// no held-out observations to score against.
var ErrEmptyTestWindow = errors.New("no held-out observations after training cutoff")

// Request describes one evaluation.
type Request struct {
	// Scope, EntityKey, and CrimeType identify the entity on the result.
	Scope     model.Scope
	EntityKey string
	CrimeType string

	// Selection is the order chosen for this entity's training window.
	Selection selector.Selection

	// CutoffYear is the last training year (inclusive).
	CutoffYear int

	// Mode selects validation or production evaluation.
	Mode model.Mode

	// Horizon is how many years past the cutoff to forecast in production
	// mode. Validation mode forecasts the full held-out suffix instead.
	Horizon int
}

// Validate runs validation mode: fit on the series up to the cutoff year,
// forecast every held-out year, and score against ground truth.
func Validate(series *timeseries.Series, req Request) (*model.ForecastResult, error) {
	req.Mode = model.ModeValidation

	train, test, err := series.SplitAt(req.CutoffYear)
	if err != nil {
		return nil, err
	}
	if test == nil || test.Len() == 0 {
		return nil, fmt.Errorf("%w: cutoff %d, series ends %d", ErrEmptyTestWindow, req.CutoffYear, series.EndYear())
	}

	result, err := forecast(train, req, test.Len())
	if err != nil {
		return nil, err
	}

	result.TestYears = test.Years()
	result.Actuals = test.Values()
	result.Metrics = computeMetrics(result.Actuals, result.Forecasts, result.TestYears)
	return result, nil
}

// Forecast runs production mode: fit on the series up to the cutoff year and
// forecast Horizon years forward. No ground truth exists, so the result
// carries no actuals and no metrics.
func Forecast(series *timeseries.Series, req Request) (*model.ForecastResult, error) {
	req.Mode = model.ModeProduction
	if req.Horizon < 1 {
		req.Horizon = 1
	}

	train, ok := series.Through(req.CutoffYear)
	if !ok {
		return nil, fmt.Errorf("cutoff year %d precedes series start %d", req.CutoffYear, series.StartYear())
	}

	result, err := forecast(train, req, req.Horizon)
	if err != nil {
		return nil, err
	}

	years := make([]int, req.Horizon)
	for i := range years {
		years[i] = train.EndYear() + 1 + i
	}
	result.TestYears = years
	return result, nil
}

// forecast fits the selection strictly on train and forecasts steps ahead.
// Clamping to non-negative counts happens here, on the reported values only;
// the raw model output is preserved for diagnostics.
func forecast(train *timeseries.Series, req Request, steps int) (*model.ForecastResult, error) {
	var fitted *arima.FittedModel
	if req.Selection.Fallback {
		fitted = arima.NaiveFit(train, req.Selection.Spec)
	} else {
		var err error
		fitted, err = arima.Fit(train, req.Selection.Spec)
		if err != nil {
			// The order converged during selection but not on this window
			// (production refit over a longer window can behave differently).
			// Degrade to the naive model rather than dropping the entity.
			req.Selection = selector.Selection{
				Spec:           naiveSpec(train),
				Fallback:       true,
				FallbackReason: fmt.Sprintf("refit failed: %v", err),
			}
			fitted = arima.NaiveFit(train, req.Selection.Spec)
		}
	}

	raw := fitted.Forecast(steps)
	clamped := make([]float64, len(raw))
	for i, v := range raw {
		if v < 0 {
			v = 0
		}
		clamped[i] = v
	}

	return &model.ForecastResult{
		Scope:          req.Scope,
		EntityKey:      req.EntityKey,
		CrimeType:      req.CrimeType,
		Mode:           req.Mode,
		Spec:           fitted.Spec(),
		TrainStart:     train.StartYear(),
		TrainEnd:       train.EndYear(),
		Forecasts:      clamped,
		RawForecasts:   raw,
		Fallback:       req.Selection.Fallback,
		FallbackReason: req.Selection.FallbackReason,
	}, nil
}

// naiveSpec mirrors the selector's fallback order choice.
func naiveSpec(series *timeseries.Series) model.ModelSpec {
	if series.IsConstant() {
		return model.ModelSpec{}
	}
	return model.ModelSpec{D: 1}
}
