// Package risk combines per-codon outcome distributions into
// protein-level risk figures, analytically (Aggregate) and by
// simulation (Simulate).
//
// Codon positions are assumed to mutate independently. Under this
// assumption the number of positions where the protein changes
// follows a Poisson-binomial distribution, which is computed exactly.
package risk

import (
	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/dist"
	"bitbucket.org/Davydov/mutsim/subst"
)

// log is the global logging variable.
var log = logging.MustGetLogger("risk")

// Result is the protein-level risk summary for a sequence, a matrix
// and a number of rounds.
type Result struct {
	// NCodons is the number of codons including the stop codon.
	NCodons int `json:"nCodons"`
	// Rounds is the number of copying rounds.
	Rounds int `json:"rounds"`
	// Unchanged is the probability that the protein is unchanged.
	Unchanged float64 `json:"unchanged"`
	// PrematureStop is the probability of at least one premature
	// stop codon.
	PrematureStop float64 `json:"prematureStop"`
	// DelayedStop is the probability that the stop codon is lost.
	DelayedStop float64 `json:"delayedStop"`
	// MovedStart is the probability that the start codon is lost.
	MovedStart float64 `json:"movedStart"`
	// Nonsilent[k] is the probability of k codons changing the
	// protein, k = 0..NCodons.
	Nonsilent []float64 `json:"nonsilent"`
	// ExpectedNonsilent is the mean of Nonsilent.
	ExpectedNonsilent float64 `json:"expectedNonsilent"`
	// ROI is the region of interest summary, if requested.
	ROI *ROIResult `json:"roi,omitempty"`
}

// ROIResult is the risk summary for a region of interest.
type ROIResult struct {
	// Region is the requested nucleotide region.
	Region codon.Region `json:"region"`
	// FirstCodon and LastCodon are 0-based inclusive codon positions.
	FirstCodon int `json:"firstCodon"`
	LastCodon  int `json:"lastCodon"`
	// Nonsilent[k] is the probability of k codons of the region
	// changing the protein.
	Nonsilent []float64 `json:"nonsilent"`
	// AnyNonsilent is the probability of at least one change.
	AnyNonsilent float64 `json:"anyNonsilent"`
	// PrematureStop is the probability of a premature stop codon
	// inside the region.
	PrematureStop float64 `json:"prematureStop"`
}

// NCodons returns the number of codons in the region.
func (roi *ROIResult) NCodons() int {
	return roi.LastCodon - roi.FirstCodon + 1
}

// Positions computes outcome distributions for codon positions
// first..last (inclusive). Identical codons with the same role share
// a single Outcome.
func Positions(seq *codon.Sequence, cache *codon.Cache, first, last int) ([]*codon.Outcome, error) {
	res := make([]*codon.Outcome, 0, last-first+1)
	for i := first; i <= last; i++ {
		o, err := cache.Get(seq.Codons[i], seq.IsStart(i), seq.IsTerminal(i))
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, nil
}

// combine computes the nonsilent count distribution and the premature
// stop probability for a set of positions.
func combine(pos []*codon.Outcome) (pmf []float64, stop float64, err error) {
	altered := make([]float64, len(pos))
	stops := make([]float64, len(pos))
	for i, o := range pos {
		altered[i] = o.Altered()
		stops[i] = o.PrematureStop
	}
	pmf, err = dist.PoissonBinomial(altered)
	if err != nil {
		return nil, 0, err
	}
	return pmf, dist.AnyOf(stops), nil
}

// Aggregate computes the risk summary for a coding sequence under the
// R-round matrix mr. If region is not nil, the region of interest
// summary is computed as well. The genetic code of the sequence is
// used for classification.
func Aggregate(seq *codon.Sequence, mr *subst.Matrix, region *codon.Region) (*Result, error) {
	var first, last int
	if region != nil {
		if err := region.Validate(seq.NucLen()); err != nil {
			return nil, err
		}
		first, last = region.Codons()
	}

	cache := codon.NewCache(mr, seq.GCode)
	pos, err := Positions(seq, cache, 0, seq.Len()-1)
	if err != nil {
		return nil, err
	}
	log.Debugf("%d codons, %d distinct outcome distributions", seq.Len(), cache.Len())

	res := &Result{
		NCodons:     seq.Len(),
		Rounds:      mr.Rounds,
		DelayedStop: pos[len(pos)-1].StopLost,
		MovedStart:  pos[0].StartLost,
	}
	res.Nonsilent, res.PrematureStop, err = combine(pos)
	if err != nil {
		return nil, err
	}
	res.Unchanged = res.Nonsilent[0]
	res.ExpectedNonsilent = dist.Mean(res.Nonsilent)

	if region != nil {
		roi := &ROIResult{
			Region:     *region,
			FirstCodon: first,
			LastCodon:  last,
		}
		if !region.Aligned() {
			log.Infof("Region %v is not codon-aligned, using codons %d-%d", region, first+1, last+1)
		}
		roi.Nonsilent, roi.PrematureStop, err = combine(pos[first : last+1])
		if err != nil {
			return nil, err
		}
		roi.AnyNonsilent = 1 - roi.Nonsilent[0]
		res.ROI = roi
	}
	return res, nil
}
