package subst

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/gonum/floats"
	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
)

const smallDiff = 1e-9

func init() {
	logging.SetLevel(logging.WARNING, "subst")
}

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

// randomMatrix returns a random row-stochastic matrix.
func randomMatrix(rnd *rand.Rand) *Matrix {
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
	m, err := New(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// biasedMatrix returns a matrix where only A mutates (to G) with
// probability e.
func biasedMatrix(e float64) *Matrix {
	m, err := New([][]float64{
		{1 - e, 0, e, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})
	if err != nil {
		panic(err)
	}
	return m
}

func TestNewValidation(tst *testing.T) {
	bad := [][][]float64{
		{{1, 0, 0, 0}},
		{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0, 0, 0}},
		{{0.5, 0.5, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0.5, 0.6}},
		{{1.5, -0.5, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
		{{math.NaN(), 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
	}
	for i, rows := range bad {
		_, err := New(rows)
		if !check.IsValidation(err) {
			tst.Errorf("Matrix %d: expected validation error, got %v", i, err)
		}
	}

	if _, err := New([][]float64{
		{0.25, 0.25, 0.25, 0.25 + 5e-7},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}); err != nil {
		tst.Error("Matrix within tolerance rejected:", err)
	}
}

// nearStochastic returns a matrix with rows summing to 1-9e-7.
func nearStochastic() [][]float64 {
	return [][]float64{
		{0.97 - 9e-7, 0.01, 0.01, 0.01},
		{1 - 9e-7, 0, 0, 0},
		{0, 0.005, 0.995 - 9e-7, 0},
		{0, 0, 0.02, 0.98 - 9e-7},
	}
}

func TestNewNormalizes(tst *testing.T) {
	m, err := New(nearStochastic())
	if err != nil {
		tst.Fatal("Matrix within tolerance rejected:", err)
	}
	for i, row := range m.Rows() {
		if s := floats.Sum(row); math.Abs(s-1) > 1e-12 {
			tst.Errorf("Row %d sums to %v", i, s)
		}
	}
	if !appreq(m.At(bio.C, bio.A), 1) {
		tst.Error("Wrong normalized value:", m.At(bio.C, bio.A))
	}

	for _, r := range []int{1, 2, 3, 5, 100} {
		p, err := m.Power(r)
		if err != nil {
			tst.Fatalf("R=%d: %v", r, err)
		}
		pn, err := m.PowerNaive(r)
		if err != nil {
			tst.Fatalf("R=%d: %v", r, err)
		}
		if !p.EqualApprox(pn, 1e-12) {
			tst.Errorf("R=%d: squaring and naive power differ", r)
		}
	}
}

func TestPowerOne(tst *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		m := randomMatrix(rnd)
		p, err := m.Power(1)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if !p.Equal(m) {
			tst.Error("M^1 != M:", p, m)
		}
	}
}

func TestPowerInvalidRounds(tst *testing.T) {
	for _, r := range []int{0, -1} {
		_, err := Identity().Power(r)
		if !errors.Is(err, check.ErrInvalidRoundCount) {
			tst.Errorf("R=%d: expected ErrInvalidRoundCount, got %v", r, err)
		}
		_, err = Identity().PowerNaive(r)
		if !errors.Is(err, check.ErrInvalidRoundCount) {
			tst.Errorf("R=%d: expected ErrInvalidRoundCount, got %v", r, err)
		}
	}
}

func TestPowerStochastic(tst *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		m := randomMatrix(rnd)
		for _, r := range []int{1, 2, 3, 4, 5, 7, 16, 31, 100, 1000} {
			p, err := m.Power(r)
			if err != nil {
				tst.Fatal("Error:", err)
			}
			if p.Rounds != r {
				tst.Error("Wrong number of rounds:", p.Rounds)
			}
			for _, row := range p.Rows() {
				s := 0.0
				for _, v := range row {
					if v < 0 {
						tst.Error("Negative probability", v)
					}
					s += v
				}
				if !check.AlmostOne(s) {
					tst.Errorf("R=%d: row sums to %v", r, s)
				}
			}
		}
	}
}

func TestSquaringMatchesNaive(tst *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		m := randomMatrix(rnd)
		for r := 1; r <= 40; r++ {
			p1, err := m.Power(r)
			if err != nil {
				tst.Fatal("Error:", err)
			}
			p2, err := m.PowerNaive(r)
			if err != nil {
				tst.Fatal("Error:", err)
			}
			if !p1.EqualApprox(p2, 1e-12) {
				tst.Errorf("R=%d: squaring %v != naive %v", r, p1, p2)
			}
		}
	}
}

func TestPowerBiased(tst *testing.T) {
	m := biasedMatrix(0.1)
	for _, r := range []int{1, 2, 5, 8} {
		p, err := m.Power(r)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		stay := math.Pow(0.9, float64(r))
		if !appreq(p.At(bio.A, bio.A), stay) || !appreq(p.At(bio.A, bio.G), 1-stay) {
			tst.Errorf("R=%d: expected A->A=%v, got %v", r, stay, p.At(bio.A, bio.A))
		}
		if p.At(bio.G, bio.G) != 1 || p.At(bio.U, bio.U) != 1 {
			tst.Error("Non-mutating bases changed:", p)
		}
	}
}

func TestPowerUniform(tst *testing.T) {
	m, err := Uniform(0.025)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	p, err := m.Power(5)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	// the non-stationary eigenvalue of the uniform matrix is 1-4e/3
	lambda := math.Pow(1-4*0.025/3, 5)
	for i := 0; i < bio.NBase; i++ {
		for j := 0; j < bio.NBase; j++ {
			exp := 0.25 - 0.25*lambda
			if i == j {
				exp = 0.25 + 0.75*lambda
			}
			if !appreq(p.At(bio.Base(i), bio.Base(j)), exp) {
				tst.Errorf("P[%d][%d]=%v, expected %v", i, j, p.At(bio.Base(i), bio.Base(j)), exp)
			}
		}
	}
}

func TestIdentityPower(tst *testing.T) {
	p, err := Identity().Power(5)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !p.Equal(Identity()) {
		tst.Error("Identity^5 != identity:", p)
	}
}

func TestReadCSV(tst *testing.T) {
	m, err := ReadCSV(strings.NewReader("A,C,G,U\n0.97,0.01,0.01,0.01\n0.01,0.97,0.01,0.01\n0.02,0.0,0.98,0\n0,0.1,0,0.9\n"))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if m.At(bio.G, bio.A) != 0.02 || m.At(bio.U, bio.C) != 0.1 {
		tst.Error("Wrong values:", m)
	}

	// reordered header with row labels and T instead of U
	m2, err := ReadCSV(strings.NewReader(",T,G,C,A\nT,0.9,0,0.1,0\nG,0,0.98,0,0.02\nC,0.01,0.01,0.97,0.01\nA,0.01,0.01,0.01,0.97\n"))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !m2.Equal(m) {
		tst.Error("Matrices differ:", m, m2)
	}

	bad := []string{
		"",
		"A,C,G\n1,0,0\n",
		"A,C,G,X\n",
		"A,C,G,U\n1,0,0,0\n0,1,0,0\n0,0,1,0\n",
		"A,C,G,U\n1,0,0,0\n0,1,0,0\n0,0,1,0\n0,0,0,x\n",
		"A,C,G,U\n1,0,0,0\n0,1,0,0\n0,0,1,0\n0,0,0,0.5\n",
	}
	for _, s := range bad {
		if _, err := ReadCSV(strings.NewReader(s)); err == nil {
			tst.Errorf("Bad matrix %q accepted", s)
		}
	}
}

func TestReadYAML(tst *testing.T) {
	m, err := ReadYAML(strings.NewReader(`
A: {A: 0.9, G: 0.1}
C: {C: 1}
G: {G: 1}
T: {T: 1}
`))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !m.Equal(biasedMatrix(0.1)) {
		tst.Error("Wrong matrix:", m)
	}

	if _, err := ReadYAML(strings.NewReader("A: {A: 1}\nC: {C: 1}\nG: {G: 1}\n")); !check.IsValidation(err) {
		tst.Error("Missing row not detected:", err)
	}
}
