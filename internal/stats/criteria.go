package stats

import "math"

// InformationCriteria holds the model selection criteria for one fit.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC computes AIC, AICc, and BIC from a Gaussian log-likelihood.
// nObs is the number of residuals entering the likelihood and nParams the
// number of estimated parameters.
//
// AICc is the small-sample corrected criterion the selector minimizes: with
// nine or ten training points the plain AIC under-penalizes parameters badly,
// while AICc diverges to +Inf as nParams approaches nObs, which naturally
// rules out over-parameterized candidates.
func CalculateIC(logLik float64, nObs, nParams int) InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}

// GaussianLogLik computes the log-likelihood of residuals under a Gaussian
// error model with the given variance. Returns -Inf for non-positive
// variance, which propagates to +Inf criteria and removes the candidate from
// contention.
func GaussianLogLik(residuals []float64, variance float64) float64 {
	if variance <= 0 {
		return math.Inf(-1)
	}
	n := float64(len(residuals))
	sse := 0.0
	for _, r := range residuals {
		sse += r * r
	}
	return -n/2*math.Log(2*math.Pi) - n/2*math.Log(variance) - sse/(2*variance)
}
