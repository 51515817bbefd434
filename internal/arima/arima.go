package arima

import (
	"errors"
	"fmt"
	"math"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/stats"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/timeseries"
)

// Fit errors.
var (
	// ErrSeriesTooShort is returned when the series cannot support the
	// requested order.
	ErrSeriesTooShort = errors.New("insufficient observations for the requested order")

	// ErrFitDiverged is returned when estimation produced non-finite
	// parameters or a degenerate likelihood. Callers fall back to the naive
	// model instead of treating this as fatal.
	ErrFitDiverged = errors.New("model estimation diverged")
)

// Estimation constants. The gradient refinement is deliberately simple and
// fully deterministic so repeated runs over identical input produce
// bit-identical forecasts.
const (
	maxIterations = 100
	tolerance     = 1e-6
	learningRate  = 0.01

	// coeffBound keeps AR coefficients inside the stationarity region and
	// MA coefficients inside the invertibility region.
	coeffBound = 0.99
)

// MinObservations returns the minimum series length needed to fit the spec.
func MinObservations(spec model.ModelSpec) int {
	return spec.P + spec.D + spec.Q + 3
}

// FittedModel is an ARIMA model estimated on one training series.
type FittedModel struct {
	spec      model.ModelSpec
	arCoeffs  []float64
	maCoeffs  []float64
	intercept float64
	variance  float64
	criteria  stats.InformationCriteria
	residuals []float64

	// diffValues is the d-times differenced training series; levels holds
	// the original values needed to integrate forecasts back.
	diffValues []float64
	levels     []float64

	// naive marks the fallback model, which ignores the CSS machinery and
	// forecasts a constant level.
	naive      bool
	naiveLevel float64
}

// Spec returns the model order.
func (m *FittedModel) Spec() model.ModelSpec { return m.spec }

// AICc returns the corrected Akaike information criterion of the fit.
func (m *FittedModel) AICc() float64 { return m.criteria.AICc }

// AIC returns the Akaike information criterion of the fit.
func (m *FittedModel) AIC() float64 { return m.criteria.AIC }

// BIC returns the Bayesian information criterion of the fit.
func (m *FittedModel) BIC() float64 { return m.criteria.BIC }

// LogLik returns the Gaussian log-likelihood of the fit.
func (m *FittedModel) LogLik() float64 { return m.criteria.LogLik }

// Variance returns the residual variance.
func (m *FittedModel) Variance() float64 { return m.variance }

// Residuals returns a copy of the in-sample residuals.
func (m *FittedModel) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// Naive reports whether this is the fallback model.
func (m *FittedModel) Naive() bool { return m.naive }

// Fit estimates an ARIMA model of the given order on the series.
// The series is read, never mutated; the returned model owns copies of
// everything it needs.
func Fit(series *timeseries.Series, spec model.ModelSpec) (*FittedModel, error) {
	if spec.P < 0 || spec.D < 0 || spec.Q < 0 {
		return nil, fmt.Errorf("invalid order %s: negative component", spec)
	}
	if series.Len() < MinObservations(spec) {
		return nil, fmt.Errorf("%w: %s needs %d observations, have %d",
			ErrSeriesTooShort, spec, MinObservations(spec), series.Len())
	}

	diffed := series.DiffN(spec.D)
	y := diffed.Values()
	if len(y) < 2 {
		return nil, fmt.Errorf("%w: differencing left %d observations", ErrSeriesTooShort, len(y))
	}

	m := &FittedModel{
		spec:       spec,
		arCoeffs:   make([]float64, spec.P),
		maCoeffs:   make([]float64, spec.Q),
		diffValues: y,
		levels:     series.Values(),
	}

	if err := m.fitCSS(); err != nil {
		return nil, err
	}

	m.criteria = stats.CalculateIC(stats.GaussianLogLik(m.residuals, m.variance), len(m.residuals), spec.Params())
	return m, nil
}

// fitCSS estimates parameters by conditional sum of squares.
func (m *FittedModel) fitCSS() error {
	y := m.diffValues
	n := len(y)
	p := m.spec.P
	q := m.spec.Q

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)
	m.intercept = mean

	if p == 0 && q == 0 {
		// White noise around the mean of the (differenced) series.
		m.residuals = make([]float64, n)
		sse := 0.0
		for i, v := range y {
			m.residuals[i] = v - mean
			sse += m.residuals[i] * m.residuals[i]
		}
		m.variance = sse / float64(n-1)
		return nil
	}

	// Starting values: Yule-Walker for AR terms, small constants for MA.
	if p > 0 {
		acf := stats.ACF(y, p)
		if acf == nil {
			// Zero-variance differenced series cannot identify AR/MA terms.
			return fmt.Errorf("%w: differenced series is constant", ErrFitDiverged)
		}
		if phi := yuleWalker(acf, p); phi != nil {
			copy(m.arCoeffs, phi)
		}
	}
	for i := range m.maCoeffs {
		m.maCoeffs[i] = 0.1
	}

	m.optimizeCSS()

	if !m.finite() {
		return ErrFitDiverged
	}
	return nil
}

// optimizeCSS refines the coefficients by gradient descent on the
// conditional sum of squares.
func (m *FittedModel) optimizeCSS() {
	y := m.diffValues
	n := len(y)
	p := m.spec.P
	q := m.spec.Q
	start := max(p, q)

	for iter := 0; iter < maxIterations; iter++ {
		residuals := make([]float64, n)
		prevSSE := 0.0
		for t := start; t < n; t++ {
			residuals[t] = y[t] - m.predictAt(y, residuals, t)
			prevSSE += residuals[t] * residuals[t]
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := start; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.arCoeffs[i] -= learningRate * arGrad[i] / float64(n)
			m.arCoeffs[i] = math.Max(-coeffBound, math.Min(coeffBound, m.arCoeffs[i]))
		}
		for i := 0; i < q; i++ {
			m.maCoeffs[i] -= learningRate * maGrad[i] / float64(n)
			m.maCoeffs[i] = math.Max(-coeffBound, math.Min(coeffBound, m.maCoeffs[i]))
		}

		newSSE := 0.0
		for t := start; t < n; t++ {
			residuals[t] = y[t] - m.predictAt(y, residuals, t)
			newSSE += residuals[t] * residuals[t]
		}

		if math.Abs(prevSSE-newSSE) < tolerance {
			break
		}
	}

	// Final residual pass over the whole sample.
	m.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < start {
			m.residuals[t] = y[t] - m.intercept
			continue
		}
		m.residuals[t] = y[t] - m.predictAt(y, m.residuals, t)
	}

	sse := 0.0
	count := 0
	for t := start; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > m.spec.P+m.spec.Q+1 {
		m.variance = sse / float64(count-m.spec.P-m.spec.Q-1)
	} else if count > 0 {
		m.variance = sse / float64(count)
	}
}

// predictAt computes the one-step CSS prediction at index t of the
// differenced series given the residual history.
func (m *FittedModel) predictAt(y, residuals []float64, t int) float64 {
	pred := m.intercept
	for i := 0; i < m.spec.P && t-i-1 >= 0; i++ {
		pred += m.arCoeffs[i] * (y[t-i-1] - m.intercept)
	}
	for i := 0; i < m.spec.Q && t-i-1 >= 0; i++ {
		pred += m.maCoeffs[i] * residuals[t-i-1]
	}
	return pred
}

// finite reports whether every estimated quantity is a finite number.
func (m *FittedModel) finite() bool {
	check := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	if !check(m.intercept) || !check(m.variance) {
		return false
	}
	for _, c := range m.arCoeffs {
		if !check(c) {
			return false
		}
	}
	for _, c := range m.maCoeffs {
		if !check(c) {
			return false
		}
	}
	return true
}

// Forecast produces point forecasts for the given number of steps ahead,
// integrated back to the original scale. Forecasts are raw model output and
// may be negative; clamping to valid count space happens at reporting time.
func (m *FittedModel) Forecast(steps int) []float64 {
	if steps < 1 {
		return nil
	}
	if m.naive {
		out := make([]float64, steps)
		for i := range out {
			out[i] = m.naiveLevel
		}
		return out
	}

	y := m.diffValues
	n := len(y)
	p := m.spec.P
	q := m.spec.Q

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.arCoeffs[i] * (extY[t-i-1] - m.intercept)
		}
		// Future residuals have expectation zero.
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.maCoeffs[i] * extResiduals[t-i-1]
		}
		extY[t] = pred
		extResiduals[t] = 0
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])

	if m.spec.D > 0 {
		forecasts = m.integrate(forecasts)
	}
	return forecasts
}

// integrate undoes differencing to return forecasts on the original scale.
// Each cumulative-sum pass lowers the differencing order by one, so pass i
// must be seeded with the last value of the (d-1-i)-times differenced
// training series, not a raw level.
func (m *FittedModel) integrate(forecasts []float64) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	// lastByOrder[k] is the final value of the k-times differenced levels.
	lastByOrder := make([]float64, m.spec.D)
	diffed := make([]float64, len(m.levels))
	copy(diffed, m.levels)
	for k := 0; k < m.spec.D; k++ {
		lastByOrder[k] = diffed[len(diffed)-1]
		next := make([]float64, len(diffed)-1)
		for i := range next {
			next[i] = diffed[i+1] - diffed[i]
		}
		diffed = next
	}

	for i := 0; i < m.spec.D; i++ {
		lastVal := lastByOrder[m.spec.D-1-i]
		for j := range result {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}

// NaiveFit builds the fallback model used when no candidate order converges.
// For a constant series the fallback predicts the series mean (equivalently
// the constant itself); otherwise it predicts the last observed value, i.e.
// a random walk without drift.
func NaiveFit(series *timeseries.Series, spec model.ModelSpec) *FittedModel {
	level := series.Last()
	if spec.D == 0 {
		level = series.Mean()
	}
	return &FittedModel{
		spec:       spec,
		levels:     series.Values(),
		naive:      true,
		naiveLevel: level,
	}
}

// yuleWalker estimates AR coefficients from the sample ACF via
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		if v == 0 {
			break
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}
