package risk

import (
	"context"
	"math/rand"
	"runtime"
	"sort"

	"github.com/gonum/floats"
	"golang.org/x/sync/errgroup"

	"bitbucket.org/Davydov/mutsim/check"
	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/dist"
	"bitbucket.org/Davydov/mutsim/subst"
)

const (
	// DefaultTrials is the default number of simulated sequences.
	DefaultTrials = 10000
	// DefaultLevel is the default confidence level.
	DefaultLevel = 0.95
	// checkEvery is how often (in trials) workers check for
	// cancellation.
	checkEvery = 256
)

// SimOptions are the simulation settings.
type SimOptions struct {
	// Trials is the number of simulated sequences, DefaultTrials if
	// zero.
	Trials int
	// Workers is the number of goroutines; GOMAXPROCS if <= 0.
	// The results depend on the number of workers.
	Workers int
	// Seed is the random generator seed. Worker i uses Seed+i.
	Seed int64
	// Level is the confidence level of the intervals.
	Level float64
	// Region is the optional region of interest.
	Region *codon.Region
}

// Intervals stores the confidence intervals of simulated
// proportions.
type Intervals struct {
	Unchanged       dist.Interval  `json:"unchanged"`
	PrematureStop   dist.Interval  `json:"prematureStop"`
	DelayedStop     dist.Interval  `json:"delayedStop"`
	MovedStart      dist.Interval  `json:"movedStart"`
	ROIAnyNonsilent *dist.Interval `json:"roiAnyNonsilent,omitempty"`
}

// SimResult is the result of a simulation.
type SimResult struct {
	// Empirical is the risk summary estimated from the simulated
	// sequences.
	Empirical *Result `json:"empirical"`
	// Intervals are the confidence intervals.
	Intervals Intervals `json:"intervals"`
	// Trials is the number of simulated sequences.
	Trials int `json:"trials"`
	// Seed is the random generator seed.
	Seed int64 `json:"seed"`
}

// sampler draws resulting codons from an outcome distribution.
type sampler struct {
	o   *codon.Outcome
	cum []float64
	// last is the last codon with a positive probability.
	last int
}

func newSampler(o *codon.Outcome) *sampler {
	s := &sampler{
		o:   o,
		cum: floats.CumSum(make([]float64, codon.NCodon), o.P[:]),
	}
	for i, p := range o.P {
		if p > 0 {
			s.last = i
		}
	}
	return s
}

// draw returns a resulting codon.
func (s *sampler) draw(rnd *rand.Rand) codon.Codon {
	u := rnd.Float64() * s.cum[codon.NCodon-1]
	i := sort.Search(codon.NCodon, func(i int) bool { return s.cum[i] > u })
	if i > s.last {
		i = s.last
	}
	return codon.Codon(i)
}

// counts stores the simulation counters of a single worker.
type counts struct {
	trials        int
	prematureStop int
	delayedStop   int
	movedStart    int
	roiStop       int
	// k[i] is the number of trials with i altered codons.
	k    []int
	kROI []int
}

func newCounts(ncodons, nroi int) *counts {
	return &counts{
		k:    make([]int, ncodons+1),
		kROI: make([]int, nroi+1),
	}
}

// merge adds counters of o to c.
func (c *counts) merge(o *counts) {
	c.trials += o.trials
	c.prematureStop += o.prematureStop
	c.delayedStop += o.delayedStop
	c.movedStart += o.movedStart
	c.roiStop += o.roiStop
	for i, n := range o.k {
		c.k[i] += n
	}
	for i, n := range o.kROI {
		c.kROI[i] += n
	}
}

// frequencies converts a histogram to frequencies.
func frequencies(h []int, n int) []float64 {
	res := make([]float64, len(h))
	for i, v := range h {
		res[i] = float64(v) / float64(n)
	}
	return res
}

// Simulate estimates the risk summary by sampling resulting codons
// for every position directly from its R-round outcome distribution.
// Trials are split between workers; if ctx is cancelled, partial
// results are discarded and the context error is returned.
func Simulate(ctx context.Context, seq *codon.Sequence, mr *subst.Matrix, opts SimOptions) (*SimResult, error) {
	if opts.Trials < 0 {
		return nil, check.Invalid("number of trials should be positive, got %d", opts.Trials)
	}
	if opts.Trials == 0 {
		opts.Trials = DefaultTrials
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > opts.Trials {
		opts.Workers = opts.Trials
	}
	if opts.Level <= 0 || opts.Level >= 1 {
		opts.Level = DefaultLevel
	}

	first, last := 0, -1
	if opts.Region != nil {
		if err := opts.Region.Validate(seq.NucLen()); err != nil {
			return nil, err
		}
		first, last = opts.Region.Codons()
	}

	cache := codon.NewCache(mr, seq.GCode)
	pos, err := Positions(seq, cache, 0, seq.Len()-1)
	if err != nil {
		return nil, err
	}
	samplers := make([]*sampler, len(pos))
	shared := make(map[*codon.Outcome]*sampler, cache.Len())
	for i, o := range pos {
		if shared[o] == nil {
			shared[o] = newSampler(o)
		}
		samplers[i] = shared[o]
	}

	log.Infof("Simulating %d sequences using %d workers", opts.Trials, opts.Workers)

	nroi := last - first + 1
	results := make([]*counts, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		w := w
		ntrials := opts.Trials / opts.Workers
		if w < opts.Trials%opts.Workers {
			ntrials++
		}
		g.Go(func() error {
			rnd := rand.New(rand.NewSource(opts.Seed + int64(w)))
			c := newCounts(len(pos), nroi)
			for t := 0; t < ntrials; t++ {
				if t%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				simulateOne(rnd, samplers, first, last, c)
			}
			results[w] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newCounts(len(pos), nroi)
	for _, c := range results {
		total.merge(c)
	}
	return summarize(total, seq, mr, opts, first, last), nil
}

// simulateOne simulates a single sequence and updates the counters.
func simulateOne(rnd *rand.Rand, samplers []*sampler, first, last int, c *counts) {
	k, kROI := 0, 0
	stop, roiStop := false, false
	for i, s := range samplers {
		x := s.draw(rnd)
		if s.o.IsStart && x != s.o.Reference {
			c.movedStart++
		}
		class := s.o.Class[x]
		if class == codon.Silent {
			continue
		}
		k++
		inROI := i >= first && i <= last
		if inROI {
			kROI++
		}
		switch class {
		case codon.PrematureStop:
			stop = true
			if inROI {
				roiStop = true
			}
		case codon.StopLost:
			c.delayedStop++
		}
	}
	c.trials++
	c.k[k]++
	if last >= first {
		c.kROI[kROI]++
	}
	if stop {
		c.prematureStop++
	}
	if roiStop {
		c.roiStop++
	}
}

// summarize converts counters to a SimResult.
func summarize(c *counts, seq *codon.Sequence, mr *subst.Matrix, opts SimOptions, first, last int) *SimResult {
	n := c.trials
	emp := &Result{
		NCodons:       seq.Len(),
		Rounds:        mr.Rounds,
		Unchanged:     float64(c.k[0]) / float64(n),
		PrematureStop: float64(c.prematureStop) / float64(n),
		DelayedStop:   float64(c.delayedStop) / float64(n),
		MovedStart:    float64(c.movedStart) / float64(n),
		Nonsilent:     frequencies(c.k, n),
	}
	emp.ExpectedNonsilent = dist.Mean(emp.Nonsilent)
	res := &SimResult{
		Empirical: emp,
		Trials:    n,
		Seed:      opts.Seed,
		Intervals: Intervals{
			Unchanged:     dist.Proportion(c.k[0], n, opts.Level),
			PrematureStop: dist.Proportion(c.prematureStop, n, opts.Level),
			DelayedStop:   dist.Proportion(c.delayedStop, n, opts.Level),
			MovedStart:    dist.Proportion(c.movedStart, n, opts.Level),
		},
	}
	if opts.Region != nil {
		roi := &ROIResult{
			Region:        *opts.Region,
			FirstCodon:    first,
			LastCodon:     last,
			Nonsilent:     frequencies(c.kROI, n),
			PrematureStop: float64(c.roiStop) / float64(n),
		}
		roi.AnyNonsilent = 1 - roi.Nonsilent[0]
		emp.ROI = roi
		ci := dist.Proportion(n-c.kROI[0], n, opts.Level)
		res.Intervals.ROIAnyNonsilent = &ci
	}
	log.Infof("Simulated unchanged=%v", res.Intervals.Unchanged)
	return res
}
