package codon

import (
	"fmt"

	"github.com/gonum/floats"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
	"bitbucket.org/Davydov/mutsim/subst"
)

// Class is an outcome class of a mutated codon relative to the
// reference codon.
type Class int

// Outcome classes. They are mutually exclusive.
const (
	// Same amino acid (or a stop codon staying a stop).
	Silent Class = iota
	// Different amino acid.
	Nonsilent
	// Sense codon became a stop codon.
	PrematureStop
	// Terminal stop codon became a sense codon.
	StopLost
)

func (c Class) String() string {
	switch c {
	case Silent:
		return "silent"
	case Nonsilent:
		return "nonsilent"
	case PrematureStop:
		return "premature-stop"
	case StopLost:
		return "stop-lost"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Outcome is the distribution of the resulting codon for a single
// reference codon after R rounds, folded into outcome classes.
type Outcome struct {
	// Reference is the original codon.
	Reference Codon
	// IsStart is true for the first codon of the sequence.
	IsStart bool
	// IsTerminal is true for the last (stop) codon.
	IsTerminal bool
	// P is the probability of every resulting codon.
	P [NCodon]float64
	// Class is the outcome class of every resulting codon.
	Class [NCodon]Class

	// Class probabilities; Silent+Nonsilent+PrematureStop+StopLost = 1.
	Silent        float64
	Nonsilent     float64
	PrematureStop float64
	StopLost      float64
	// StartLost is the probability that the start codon changes. It
	// overlaps with the other classes and is zero unless IsStart.
	StartLost float64
}

// Altered returns the probability that the encoded protein changes
// at this position.
func (o *Outcome) Altered() float64 {
	return o.Nonsilent + o.PrematureStop + o.StopLost
}

// Classes returns class probabilities indexed by Class.
func (o *Outcome) Classes() []float64 {
	return []float64{o.Silent, o.Nonsilent, o.PrematureStop, o.StopLost}
}

// classify returns the outcome class of codon x for the reference
// amino acid refAA.
func classify(x Codon, refAA byte, gcode *bio.GeneticCode, isTerminal bool) Class {
	aa := x.AminoAcid(gcode)
	switch {
	case aa == refAA:
		return Silent
	case isTerminal:
		return StopLost
	case aa == '*':
		return PrematureStop
	}
	return Nonsilent
}

// Outcomes computes the distribution over the 64 resulting codons of
// reference codon c under the R-round matrix mr and classifies it.
// For the start codon any change of the codon is reported as
// StartLost; for the terminal codon every non-silent outcome is
// StopLost.
func Outcomes(c Codon, mr *subst.Matrix, gcode *bio.GeneticCode, isStart, isTerminal bool) (*Outcome, error) {
	o := &Outcome{
		Reference:  c,
		IsStart:    isStart,
		IsTerminal: isTerminal,
	}
	refAA := c.AminoAcid(gcode)
	if refAA == 0 {
		return nil, check.Invalid("codon %s is not in genetic code %d", c, gcode.ID)
	}

	b := c.Bases()
	p0 := mr.Row(b[0])
	p1 := mr.Row(b[1])
	p2 := mr.Row(b[2])
	for x0 := bio.Base(0); x0 < bio.NBase; x0++ {
		for x1 := bio.Base(0); x1 < bio.NBase; x1++ {
			p01 := p0[x0] * p1[x1]
			for x2 := bio.Base(0); x2 < bio.NBase; x2++ {
				x := New(x0, x1, x2)
				p := p01 * p2[x2]
				o.P[x] = p
				o.Class[x] = classify(x, refAA, gcode, isTerminal)
				switch o.Class[x] {
				case Silent:
					o.Silent += p
				case Nonsilent:
					o.Nonsilent += p
				case PrematureStop:
					o.PrematureStop += p
				case StopLost:
					o.StopLost += p
				}
				if isStart && x != c {
					o.StartLost += p
				}
			}
		}
	}

	if err := check.Distribution(fmt.Sprintf("outcomes of %s", c), o.P[:]); err != nil {
		return nil, err
	}
	if s := floats.Sum(o.Classes()); !check.AlmostOne(s) {
		return nil, &check.InternalConsistencyError{What: fmt.Sprintf("outcome classes of %s", c), Sum: s}
	}
	return o, nil
}

// MostLikelyChange returns the most probable codon different from the
// reference and its probability.
func (o *Outcome) MostLikelyChange() (Codon, float64) {
	best := o.Reference
	bestP := -1.0
	for x, p := range o.P {
		if Codon(x) == o.Reference {
			continue
		}
		if p > bestP {
			best, bestP = Codon(x), p
		}
	}
	return best, bestP
}

// role is a key for Cache.
type role struct {
	c          Codon
	start, end bool
}

// Cache computes and stores outcomes for a fixed matrix and genetic
// code, so that repeated codons of a sequence are computed once. It
// is not safe for concurrent use.
type Cache struct {
	mr    *subst.Matrix
	gcode *bio.GeneticCode
	m     map[role]*Outcome
}

// NewCache creates a new empty Cache.
func NewCache(mr *subst.Matrix, gcode *bio.GeneticCode) *Cache {
	return &Cache{mr: mr, gcode: gcode, m: make(map[role]*Outcome)}
}

// Get returns outcomes for a codon, computing them if needed.
func (cache *Cache) Get(c Codon, isStart, isTerminal bool) (*Outcome, error) {
	k := role{c, isStart, isTerminal}
	if o, ok := cache.m[k]; ok {
		return o, nil
	}
	o, err := Outcomes(c, cache.mr, cache.gcode, isStart, isTerminal)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s (start=%v, terminal=%v): silent=%g, nonsilent=%g, stop=%g, stoplost=%g",
		c, isStart, isTerminal, o.Silent, o.Nonsilent, o.PrematureStop, o.StopLost)
	cache.m[k] = o
	return o, nil
}

// Len returns the number of distinct outcomes computed.
func (cache *Cache) Len() int {
	return len(cache.m)
}
