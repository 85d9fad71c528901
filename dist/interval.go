package dist

import (
	"fmt"
	"math"

	"github.com/gonum/mathext"
)

// Interval is a confidence interval of a proportion.
type Interval struct {
	// Estimate is the point estimate.
	Estimate float64 `json:"estimate"`
	// Lower and Upper are the interval bounds.
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	// Level is the confidence level, e.g. 0.95.
	Level float64 `json:"level"`
	// Exact is true if the Clopper-Pearson interval was used.
	Exact bool `json:"exact,omitempty"`
}

// Contains tests if x lies inside the interval.
func (ci Interval) Contains(x float64) bool {
	return x >= ci.Lower && x <= ci.Upper
}

func (ci Interval) String() string {
	return fmt.Sprintf("%g [%g; %g]", ci.Estimate, ci.Lower, ci.Upper)
}

// Proportion returns a confidence interval for a binomial proportion
// with k successes out of n trials. The normal approximation (Wald)
// is used unless k is 0 or n, where it degenerates; in that case the
// Clopper-Pearson interval is returned.
func Proportion(k, n int, level float64) Interval {
	if n <= 0 {
		return Interval{Lower: 0, Upper: 1, Level: level}
	}
	if k == 0 || k == n {
		return ClopperPearson(k, n, level)
	}
	p := float64(k) / float64(n)
	z := QuantileNormal(1 - (1-level)/2)
	h := z * math.Sqrt(p*(1-p)/float64(n))
	return Interval{
		Estimate: p,
		Lower:    math.Max(0, p-h),
		Upper:    math.Min(1, p+h),
		Level:    level,
	}
}

// ClopperPearson returns the exact (Clopper-Pearson) confidence
// interval for a binomial proportion.
func ClopperPearson(k, n int, level float64) Interval {
	alpha := 1 - level
	ci := Interval{
		Estimate: float64(k) / float64(n),
		Lower:    0,
		Upper:    1,
		Level:    level,
		Exact:    true,
	}
	if k > 0 {
		ci.Lower = mathext.InvRegIncBeta(float64(k), float64(n-k+1), alpha/2)
	}
	if k < n {
		ci.Upper = mathext.InvRegIncBeta(float64(k+1), float64(n-k), 1-alpha/2)
	}
	return ci
}
