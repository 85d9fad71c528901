// Package dist implements functions for discrete distributions of
// independent events and for binomial proportions.
package dist

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/mathext"

	"bitbucket.org/Davydov/mutsim/check"
)

// PoissonBinomial returns the distribution of the number of successes
// among independent Bernoulli trials with success probabilities p.
// The result has len(p)+1 entries. It is computed exactly by
// convolving the trials one by one, O(N^2).
func PoissonBinomial(p []float64) ([]float64, error) {
	pmf := make([]float64, len(p)+1)
	pmf[0] = 1
	for i, pi := range p {
		if pi < 0 || pi > 1 || math.IsNaN(pi) {
			return nil, check.Invalid("probability %v at %d", pi, i)
		}
		qi := 1 - pi
		// going backwards lets us update in place
		for k := i + 1; k > 0; k-- {
			pmf[k] = pmf[k]*qi + pmf[k-1]*pi
		}
		pmf[0] *= qi
	}
	if err := check.Distribution("Poisson-binomial distribution", pmf); err != nil {
		return nil, err
	}
	return pmf, nil
}

// AnyOf returns the probability that at least one of the independent
// events with probabilities p happens.
func AnyOf(p []float64) float64 {
	none := 1.0
	for _, pi := range p {
		none *= 1 - pi
	}
	return 1 - none
}

// Mean returns the expected value of a distribution over 0..len-1.
func Mean(pmf []float64) (m float64) {
	for k, p := range pmf {
		m += float64(k) * p
	}
	return
}

// Tail returns the probability of k >= from.
func Tail(pmf []float64, from int) float64 {
	if from >= len(pmf) {
		return 0
	}
	if from < 0 {
		from = 0
	}
	return floats.Sum(pmf[from:])
}

// QuantileNormal returns quantile for normal distribution.
func QuantileNormal(prob float64) float64 {
	return mathext.NormalQuantile(prob)
}
