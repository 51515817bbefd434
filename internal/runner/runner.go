package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/evaluate"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/selector"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/store"
)

// ErrSeriesTooShort marks entities whose series has fewer observations than
// the configured minimum. The entity is skipped, not zero-padded.
var ErrSeriesTooShort = errors.New("series too short")

// DefaultWorkers is the default worker-pool size.
const DefaultWorkers = 8

// DefaultEntityTimeout is the default per-entity budget for model search and
// evaluation.
const DefaultEntityTimeout = 30 * time.Second

// Runner executes the forecast pipeline over one scope at a time.
type Runner struct {
	store  *store.SeriesStore
	logger *slog.Logger

	selCfg          selector.Config
	workers         int
	entityTimeout   time.Duration
	minObservations int
	retrainOnFull   bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithWorkers sets the maximum number of concurrent entity forecasts.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithSelectorConfig sets the order search bounds.
func WithSelectorConfig(cfg selector.Config) Option {
	return func(r *Runner) { r.selCfg = cfg }
}

// WithEntityTimeout bounds one entity's search and evaluation.
func WithEntityTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.entityTimeout = d
		}
	}
}

// WithMinObservations sets the minimum series length to forecast.
func WithMinObservations(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.minObservations = n
		}
	}
}

// WithRetrainOnFullWindow controls production-mode order selection: when
// true the order is re-selected on the full observed window, when false the
// validation-selected order is reused and only the coefficients are refit.
func WithRetrainOnFullWindow(retrain bool) Option {
	return func(r *Runner) { r.retrainOnFull = retrain }
}

// New creates a Runner over the given series store.
func New(s *store.SeriesStore, opts ...Option) *Runner {
	r := &Runner{
		store:           s,
		selCfg:          selector.DefaultConfig(),
		workers:         DefaultWorkers,
		entityTimeout:   DefaultEntityTimeout,
		minObservations: 6,
		retrainOnFull:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// entityOutcome holds one worker's output. Each worker writes only its own
// index of the pre-allocated slice, so no synchronization is needed beyond
// the errgroup join.
type entityOutcome struct {
	results      []model.ForecastResult
	observations []model.ObservationPoint
	skip         *model.Skip
}

// Run forecasts every entity in the scope and returns the assembled report.
// Results are ordered by entity key with the validation result before the
// production result for each entity, deterministically across runs.
func (r *Runner) Run(ctx context.Context, scope model.Scope) (*model.RunReport, error) {
	keys := r.store.EntityKeys(scope)
	_, maxYear := r.store.YearRange()
	cutoff := maxYear - 1 // hold out the final observed year for validation

	r.logger.Info("starting forecast run",
		"scope", scope.String(),
		"entities", len(keys),
		"workers", r.workers,
		"cutoff", cutoff,
	)
	startedAt := time.Now()

	outcomes := make([]entityOutcome, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, key := range keys {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outcomes[i] = r.runEntity(gctx, scope, key, cutoff, maxYear)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.RunReport{
		RunID:     uuid.NewString(),
		Scope:     scope,
		StartedAt: startedAt,
		Elapsed:   time.Since(startedAt),
	}
	for _, o := range outcomes {
		if o.skip != nil {
			report.Skips = append(report.Skips, *o.skip)
			continue
		}
		report.Results = append(report.Results, o.results...)
		report.Observations = append(report.Observations, o.observations...)
	}

	r.logger.Info("forecast run complete",
		"scope", scope.String(),
		"results", len(report.Results),
		"skips", len(report.Skips),
		"fallbacks", report.FallbackCount(),
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// runEntity performs the full select-validate-forecast cycle for one entity.
// Nothing here reads any other entity's series, spec, or result; the store's
// keyed lookup is the only data access.
func (r *Runner) runEntity(ctx context.Context, scope model.Scope, key string, cutoff, maxYear int) entityOutcome {
	ctx, cancel := context.WithTimeout(ctx, r.entityTimeout)
	defer cancel()

	skip := func(reason string) entityOutcome {
		r.logger.Warn("entity skipped", "scope", scope.String(), "entity", key, "reason", reason)
		return entityOutcome{skip: &model.Skip{EntityKey: key, Reason: reason}}
	}

	series, ok := r.store.Series(scope, key)
	if !ok {
		return skip("entity not found in series store")
	}
	if series.Len() < r.minObservations {
		return skip(fmt.Sprintf("%v: %d observations, need %d", ErrSeriesTooShort, series.Len(), r.minObservations))
	}

	crimeType := model.CrimeTypeAll
	if scope == model.ScopeCityWide {
		crimeType = key
	}

	// Order selection sees only the training prefix. The held-out year is
	// first observed inside Validate, and only as ground truth for scoring.
	train, _, err := series.SplitAt(cutoff)
	if err != nil {
		return skip(fmt.Sprintf("train window: %v", err))
	}
	sel := selector.Select(train, r.selCfg)
	if sel.Fallback {
		r.logger.Warn("fallback model selected",
			"scope", scope.String(), "entity", key, "reason", sel.FallbackReason)
	}
	if ctx.Err() != nil {
		return skip(fmt.Sprintf("timed out during model selection: %v", ctx.Err()))
	}

	valResult, err := evaluate.Validate(series, evaluate.Request{
		Scope:      scope,
		EntityKey:  key,
		CrimeType:  crimeType,
		Selection:  sel,
		CutoffYear: cutoff,
	})
	if err != nil {
		return skip(fmt.Sprintf("validation failed: %v", err))
	}

	prodSel := sel
	if r.retrainOnFull {
		full, _ := series.Through(maxYear)
		prodSel = selector.Select(full, r.selCfg)
	}
	if ctx.Err() != nil {
		return skip(fmt.Sprintf("timed out during model selection: %v", ctx.Err()))
	}

	prodResult, err := evaluate.Forecast(series, evaluate.Request{
		Scope:      scope,
		EntityKey:  key,
		CrimeType:  crimeType,
		Selection:  prodSel,
		CutoffYear: maxYear,
		Horizon:    1,
	})
	if err != nil {
		return skip(fmt.Sprintf("production forecast failed: %v", err))
	}

	observations := make([]model.ObservationPoint, 0, series.Len())
	for _, year := range series.Years() {
		v, _ := series.Value(year)
		observations = append(observations, model.ObservationPoint{
			Scope:     scope,
			EntityKey: key,
			CrimeType: crimeType,
			Year:      year,
			Count:     int(v),
		})
	}

	return entityOutcome{
		results:      []model.ForecastResult{*valResult, *prodResult},
		observations: observations,
	}
}
