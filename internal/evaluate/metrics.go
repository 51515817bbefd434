package evaluate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// MAE returns the mean absolute error between actuals and forecasts.
// Both slices must have the same non-zero length.
func MAE(actuals, forecasts []float64) float64 {
	abs := make([]float64, len(actuals))
	for i := range actuals {
		abs[i] = math.Abs(actuals[i] - forecasts[i])
	}
	return stat.Mean(abs, nil)
}

// RMSE returns the root mean squared error between actuals and forecasts.
func RMSE(actuals, forecasts []float64) float64 {
	sq := make([]float64, len(actuals))
	for i := range actuals {
		d := actuals[i] - forecasts[i]
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// MAPE returns the mean absolute percentage error between actuals and
// forecasts, as a percentage. Points whose actual value is zero are excluded
// from the average; their indices are returned so callers can flag the
// exclusion. defined is false when every point was excluded.
func MAPE(actuals, forecasts []float64) (mape float64, excluded []int, defined bool) {
	sum := 0.0
	n := 0
	for i := range actuals {
		if actuals[i] == 0 {
			excluded = append(excluded, i)
			continue
		}
		sum += math.Abs(actuals[i]-forecasts[i]) / math.Abs(actuals[i])
		n++
	}
	if n == 0 {
		return 0, excluded, false
	}
	return sum / float64(n) * 100, excluded, true
}

// computeMetrics scores forecasts against actuals for the given test years.
func computeMetrics(actuals, forecasts []float64, testYears []int) *model.Metrics {
	mape, excludedIdx, defined := MAPE(actuals, forecasts)

	var excludedYears []int
	for _, i := range excludedIdx {
		excludedYears = append(excludedYears, testYears[i])
	}

	return &model.Metrics{
		MAE:               MAE(actuals, forecasts),
		RMSE:              RMSE(actuals, forecasts),
		MAPE:              mape,
		MAPEDefined:       defined,
		MAPEExcludedYears: excludedYears,
	}
}
