// Package arima fits ARIMA(p,d,q) models to short annual series and
// produces point forecasts on the original scale.
//
// Fitting uses conditional sum of squares with Yule-Walker starting values
// for the AR terms and bounded gradient refinement. The minimum series
// length scales with the order (p+d+q+3) instead of assuming the long
// series a general-purpose library can demand, because the pipeline trains
// on nine to ten yearly observations.
//
// Fit is a pure function from (series, spec) to a FittedModel; the model
// object carries no hidden global state and is never reused across entities.
package arima
