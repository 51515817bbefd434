// Package evaluate fits a selected model on a training window, forecasts the
// test window, and scores the forecast.
//
// Two invocation modes exist. Validation mode forecasts years that have
// ground truth and computes MAE, RMSE, and MAPE. Production mode forecasts
// an unobserved future year and carries no metrics. MAPE points with a zero
// actual value are excluded from the average explicitly rather than leaking
// Inf or NaN into aggregated output.
package evaluate
