package codon

import (
	"math"
	"math/rand"
	"testing"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
	"bitbucket.org/Davydov/mutsim/subst"
)

const smallDiff = 1e-9

func init() {
	logging.SetLevel(logging.WARNING, "codon")
	logging.SetLevel(logging.WARNING, "subst")
}

func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

// oneWay returns a matrix where base from becomes base to with
// probability e during a round.
func oneWay(from, to bio.Base, e float64) *subst.Matrix {
	rows := subst.Identity().Rows()
	rows[from][from] = 1 - e
	rows[from][to] = e
	m, err := subst.New(rows)
	if err != nil {
		panic(err)
	}
	return m
}

func TestCodonNumbering(tst *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < NCodon; i++ {
		c := Codon(i)
		s := c.String()
		if seen[s] {
			tst.Error("Duplicate codon", s)
		}
		seen[s] = true
		p, err := Parse(s)
		if err != nil || p != c {
			tst.Errorf("Parse(%s)=%v, %v", s, p, err)
		}
	}
	if MustParse("ATG") != MustParse("AUG") {
		tst.Error("DNA codon parsed differently")
	}
	if _, err := Parse("AXG"); err == nil {
		tst.Error("Bad codon accepted")
	}
	if MustParse("GCU").AminoAcid(bio.Standard) != 'A' {
		tst.Error("GCU should encode alanine")
	}
}

func TestOutcomesSumToOne(tst *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	rows := make([][]float64, bio.NBase)
	for i := range rows {
		rows[i] = make([]float64, bio.NBase)
		s := 0.0
		for j := range rows[i] {
			rows[i][j] = rnd.Float64()
			s += rows[i][j]
		}
		for j := range rows[i] {
			rows[i][j] /= s
		}
	}
	m, err := subst.New(rows)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	mr, err := m.Power(3)
	if err != nil {
		tst.Fatal("Error:", err)
	}

	for i := 0; i < NCodon; i++ {
		for _, terminal := range []bool{false, true} {
			o, err := Outcomes(Codon(i), mr, bio.Standard, i == int(startCodon), terminal)
			if err != nil {
				tst.Fatal("Error:", err)
			}
			s := 0.0
			for _, p := range o.P {
				s += p
			}
			if !check.AlmostOne(s) {
				tst.Errorf("%s: codon probabilities sum to %v", Codon(i), s)
			}
			if !check.AlmostOne(o.Silent + o.Altered()) {
				tst.Errorf("%s: classes sum to %v", Codon(i), o.Silent+o.Altered())
			}
			if terminal && (o.Nonsilent != 0 || o.PrematureStop != 0) {
				tst.Errorf("%s: terminal codon has nonsilent outcomes", Codon(i))
			}
			if !terminal && o.StopLost != 0 {
				tst.Errorf("%s: internal codon has stop-lost outcomes", Codon(i))
			}
		}
	}
}

func TestOutcomesIdentity(tst *testing.T) {
	for i := 0; i < NCodon; i++ {
		o, err := Outcomes(Codon(i), subst.Identity(), bio.Standard, true, false)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if o.Silent != 1 || o.Altered() != 0 || o.StartLost != 0 {
			tst.Errorf("%s: identity matrix changes the codon: %+v", Codon(i), o)
		}
		if o.P[i] != 1 {
			tst.Errorf("%s: P(self)=%v", Codon(i), o.P[i])
		}
	}
}

func TestOutcomesBiased(tst *testing.T) {
	// A->G with 10% per round
	m := oneWay(bio.A, bio.G, 0.1)
	mr, err := m.Power(2)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	s := 0.81

	// AAA (K): the third position A->G gives AAG (K)
	o, err := Outcomes(MustParse("AAA"), mr, bio.Standard, false, false)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !appreq(o.Silent, s*s) || !appreq(o.Nonsilent, 1-s*s) || o.PrematureStop != 0 {
		tst.Errorf("AAA: silent=%v, nonsilent=%v, stop=%v", o.Silent, o.Nonsilent, o.PrematureStop)
	}
	if !appreq(o.P[MustParse("GGG")], (1-s)*(1-s)*(1-s)) {
		tst.Error("AAA->GGG: wrong probability", o.P[MustParse("GGG")])
	}
	if o.Class[MustParse("AGA")] != Nonsilent || o.Class[MustParse("AAG")] != Silent {
		tst.Error("AAA: wrong classification")
	}

	// AUG as a start codon
	o, err = Outcomes(MustParse("AUG"), mr, bio.Standard, true, false)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !appreq(o.StartLost, 1-s) || !appreq(o.Nonsilent, 1-s) {
		tst.Errorf("AUG: startLost=%v, nonsilent=%v", o.StartLost, o.Nonsilent)
	}
	c, p := o.MostLikelyChange()
	if c != MustParse("GUG") || !appreq(p, 1-s) {
		tst.Errorf("AUG: most likely change %s (%v)", c, p)
	}

	// UAA as a terminal codon: only UGG (W) escapes the stop
	o, err = Outcomes(MustParse("UAA"), mr, bio.Standard, false, true)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !appreq(o.StopLost, (1-s)*(1-s)) || !appreq(o.Silent, 1-(1-s)*(1-s)) {
		tst.Errorf("UAA: stopLost=%v, silent=%v", o.StopLost, o.Silent)
	}
	if o.Class[MustParse("UGA")] != Silent {
		tst.Error("UAA->UGA should be silent")
	}
}

func TestOutcomesPrematureStop(tst *testing.T) {
	// C->U with 10% per round; CAG (Q) -> UAG (stop)
	m := oneWay(bio.C, bio.U, 0.1)
	o, err := Outcomes(MustParse("CAG"), m, bio.Standard, false, false)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !appreq(o.PrematureStop, 0.1) || o.Nonsilent != 0 {
		tst.Errorf("CAG: stop=%v, nonsilent=%v", o.PrematureStop, o.Nonsilent)
	}
	if o.Class[MustParse("UAG")] != PrematureStop {
		tst.Error("CAG->UAG should be a premature stop")
	}
	if PrematureStop.String() != "premature-stop" {
		tst.Error("Wrong class name", PrematureStop)
	}
}

func TestCache(tst *testing.T) {
	cache := NewCache(oneWay(bio.A, bio.G, 0.1), bio.Standard)
	o1, err := cache.Get(MustParse("AAA"), false, false)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	o2, _ := cache.Get(MustParse("AAA"), false, false)
	if o1 != o2 {
		tst.Error("Cached outcome recomputed")
	}
	o3, _ := cache.Get(MustParse("AAA"), false, true)
	if o3 == o1 || cache.Len() != 2 {
		tst.Error("Roles not distinguished")
	}
}
