// Package subst implements the per-round nucleotide substitution
// matrix and its R-round Markov chain power.
//
// A substitution matrix P holds P[i][j], the probability that base i
// is copied as base j during one round. Rounds are independent and
// identical, so the transition probabilities after R rounds are the
// R-th power of P.
package subst

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
)

// log is the global logging variable.
var log = logging.MustGetLogger("subst")

// squaringThreshold is the smallest power computed by repeated
// squaring; smaller powers use repeated multiplication.
const squaringThreshold = 4

// Matrix is a validated row-stochastic 4x4 substitution matrix. Rows
// and columns are in bio.Alphabet order. Matrix is never modified
// after creation.
type Matrix struct {
	d *mat64.Dense
	// Rounds is the number of rounds the matrix represents.
	Rounds int
}

// New validates rows and creates a new one-round Matrix. Every row
// should sum to 1 within check.Tolerance; such rows are normalized.
func New(rows [][]float64) (*Matrix, error) {
	if len(rows) != bio.NBase {
		return nil, check.Invalid("matrix should have %d rows, got %d", bio.NBase, len(rows))
	}
	data := make([]float64, 0, bio.NBase*bio.NBase)
	for i, row := range rows {
		if len(row) != bio.NBase {
			return nil, check.Invalid("row %s should have %d columns, got %d", bio.Base(i), bio.NBase, len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, check.Invalid("P[%s][%s]=%v is not a probability", bio.Base(i), bio.Base(j), v)
			}
		}
		s := floats.Sum(row)
		if !check.AlmostOne(s) {
			return nil, check.Invalid("row %s sums to %v, should be 1", bio.Base(i), s)
		}
		n := len(data)
		data = append(data, row...)
		// rows within tolerance are rescaled to sum to one
		if s != 1 {
			floats.Scale(1/s, data[n:])
		}
	}
	return &Matrix{d: mat64.NewDense(bio.NBase, bio.NBase, data), Rounds: 1}, nil
}

// Identity returns a matrix without substitutions.
func Identity() *Matrix {
	d := mat64.NewDense(bio.NBase, bio.NBase, nil)
	for i := 0; i < bio.NBase; i++ {
		d.Set(i, i, 1)
	}
	return &Matrix{d: d, Rounds: 1}
}

// Uniform returns a matrix where every base is substituted with
// probability rate, split equally between the three other bases.
func Uniform(rate float64) (*Matrix, error) {
	rows := make([][]float64, bio.NBase)
	for i := range rows {
		rows[i] = make([]float64, bio.NBase)
		for j := range rows[i] {
			if i == j {
				rows[i][j] = 1 - rate
			} else {
				rows[i][j] = rate / (bio.NBase - 1)
			}
		}
	}
	return New(rows)
}

// At returns the probability of base from becoming base to.
func (m *Matrix) At(from, to bio.Base) float64 {
	return m.d.At(int(from), int(to))
}

// Row returns a copy of the transition probabilities from a base.
func (m *Matrix) Row(from bio.Base) []float64 {
	row := make([]float64, bio.NBase)
	copy(row, m.d.RawRowView(int(from)))
	return row
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, bio.NBase)
	for i := range rows {
		rows[i] = m.Row(bio.Base(i))
	}
	return rows
}

// Equal tests if two matrices have the same values.
func (m *Matrix) Equal(o *Matrix) bool {
	return mat64.Equal(m.d, o.d)
}

// EqualApprox tests if two matrices have values within epsilon.
func (m *Matrix) EqualApprox(o *Matrix, epsilon float64) bool {
	return mat64.EqualApprox(m.d, o.d, epsilon)
}

// Power computes the R-round transition matrix M^r. For r = 1 a
// matrix equal to m is returned. Large powers are computed by
// repeated squaring. The result is checked to be row-stochastic.
func (m *Matrix) Power(r int) (*Matrix, error) {
	if r < 1 {
		return nil, fmt.Errorf("%w (R=%d)", check.ErrInvalidRoundCount, r)
	}
	var p *mat64.Dense
	if r < squaringThreshold {
		p = naivePower(m.d, r)
	} else {
		p = squaringPower(m.d, r)
	}
	res := &Matrix{d: p, Rounds: m.Rounds * r}
	if err := res.checkStochastic(); err != nil {
		return nil, err
	}
	log.Debugf("P^%d=%v", r, res)
	return res, nil
}

// PowerNaive computes M^r by r-1 multiplications. It is equivalent to
// Power and is used to cross-check it.
func (m *Matrix) PowerNaive(r int) (*Matrix, error) {
	if r < 1 {
		return nil, fmt.Errorf("%w (R=%d)", check.ErrInvalidRoundCount, r)
	}
	res := &Matrix{d: naivePower(m.d, r), Rounds: m.Rounds * r}
	if err := res.checkStochastic(); err != nil {
		return nil, err
	}
	return res, nil
}

// naivePower multiplies a by itself r-1 times.
func naivePower(a *mat64.Dense, r int) *mat64.Dense {
	res := mat64.DenseCopyOf(a)
	for i := 1; i < r; i++ {
		p := mat64.NewDense(bio.NBase, bio.NBase, nil)
		p.Mul(res, a)
		res = p
	}
	return res
}

// squaringPower computes a^r by exponentiation by squaring.
func squaringPower(a *mat64.Dense, r int) *mat64.Dense {
	var res *mat64.Dense
	sq := mat64.DenseCopyOf(a)
	for {
		if r&1 == 1 {
			if res == nil {
				res = mat64.DenseCopyOf(sq)
			} else {
				p := mat64.NewDense(bio.NBase, bio.NBase, nil)
				p.Mul(res, sq)
				res = p
			}
		}
		r >>= 1
		if r == 0 {
			break
		}
		p := mat64.NewDense(bio.NBase, bio.NBase, nil)
		p.Mul(sq, sq)
		sq = p
	}
	return res
}

// checkStochastic verifies that every row sums to one.
func (m *Matrix) checkStochastic() error {
	for i := 0; i < bio.NBase; i++ {
		if err := check.Distribution(fmt.Sprintf("row %s of P^%d", bio.Base(i), m.Rounds), m.d.RawRowView(i)); err != nil {
			return err
		}
	}
	return nil
}

// String returns a compact matrix representation.
func (m *Matrix) String() string {
	var b bytes.Buffer
	b.WriteString("<Matrix")
	for i := 0; i < bio.NBase; i++ {
		fmt.Fprintf(&b, " %s:[", bio.Base(i))
		for j := 0; j < bio.NBase; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.6g", m.d.At(i, j))
		}
		b.WriteByte(']')
	}
	b.WriteByte('>')
	return b.String()
}
