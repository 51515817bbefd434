// Package selector chooses an ARIMA order for one training series.
//
// The search space is a bounded (p, q) grid with the differencing order d
// fixed up front by a stationarity scan. Candidates are ranked by AICc;
// near-ties prefer the simpler model. The selector only ever sees the
// training window a caller hands it, which is the primary leakage-prevention
// checkpoint of the pipeline.
package selector
