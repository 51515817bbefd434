// Package stats provides the statistical machinery behind order selection:
// autocorrelation, a Dickey-Fuller stationarity test sized for short annual
// series, differencing-order detection, and small-sample corrected
// information criteria.
package stats
