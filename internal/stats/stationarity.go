package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/timeseries"
)

// minTestObservations is the smallest series length the Dickey-Fuller
// regression accepts. Below this the t-statistic has essentially no power
// and the test reports nothing rather than a misleading verdict.
const minTestObservations = 5

// StationarityResult is the outcome of a Dickey-Fuller test.
type StationarityResult struct {
	// Statistic is the t-statistic of the lagged-level coefficient.
	Statistic float64

	// PValue is the approximate MacKinnon p-value for the statistic.
	PValue float64

	// Stationary is true when the unit-root null is rejected at 5%.
	Stationary bool
}

// DickeyFuller runs the Dickey-Fuller unit-root test with a constant term
// and no augmentation lags. The null hypothesis is that the series has a
// unit root; a p-value below 0.05 rejects it in favour of stationarity.
//
// The test is deliberately unaugmented: annual series of nine to eleven
// points cannot support lagged-difference regressors, and the lag-0
// regression keeps every available degree of freedom.
//
// Returns nil when the series is too short to regress. A constant series is
// reported as stationary without regression, since the regression matrix is
// singular but a flat line is trivially stationary.
func DickeyFuller(s *timeseries.Series) *StationarityResult {
	n := s.Len()
	if n < minTestObservations {
		return nil
	}
	if s.IsConstant() {
		return &StationarityResult{Statistic: math.Inf(-1), PValue: 0.001, Stationary: true}
	}

	values := s.Values()

	// Regress delta_y_t on a constant and y_{t-1}. Testing beta = 0 (unit
	// root) against beta < 0 (stationary).
	lagged := values[:n-1]
	dy := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dy[i-1] = values[i] - values[i-1]
	}

	alpha, beta := stat.LinearRegression(lagged, dy, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil
	}

	nObs := len(dy)
	sse := 0.0
	for i, x := range lagged {
		resid := dy[i] - alpha - beta*x
		sse += resid * resid
	}
	if nObs <= 2 {
		return nil
	}
	s2 := sse / float64(nObs-2)

	xMean := floats.Sum(lagged) / float64(nObs)
	sxx := 0.0
	for _, x := range lagged {
		d := x - xMean
		sxx += d * d
	}
	if sxx == 0 || s2 == 0 {
		// Degenerate regression: no spread in the lagged level or a perfect
		// fit. Treat as non-informative rather than guessing.
		return nil
	}

	tStat := beta / math.Sqrt(s2/sxx)
	pValue := mackinnonPValue(tStat)

	return &StationarityResult{
		Statistic:  tStat,
		PValue:     pValue,
		Stationary: pValue < 0.05,
	}
}

// NDiffs determines how many first differences make the series stationary,
// capped at maxD. Differencing stops early when the differenced series would
// fall below minLen observations, to avoid over-differencing short series.
func NDiffs(s *timeseries.Series, maxD, minLen int) int {
	if maxD <= 0 {
		maxD = 2
	}
	current := s
	for d := 0; d < maxD; d++ {
		result := DickeyFuller(current)
		if result == nil || result.Stationary {
			// Too short to test further, or already stationary.
			return d
		}
		current = current.Diff()
		if current.Len() < minLen {
			return d
		}
	}
	return maxD
}

// mackinnonPValue approximates the p-value for a Dickey-Fuller statistic
// using interpolation over MacKinnon (1994) critical values for the
// constant-only regression.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}
