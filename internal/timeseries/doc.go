// Package timeseries provides the annual series type the pipeline operates
// on: an ordered run of (year, value) pairs with strictly increasing,
// contiguous years.
//
// Series values are float64 even though crime counts are integers, because
// differencing, model fitting, and forecasting all work on the real line.
package timeseries
