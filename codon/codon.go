// Package codon computes what a codon becomes after R rounds of
// error-prone copying.
//
// The three nucleotide positions of a codon are assumed to mutate
// independently of each other, and codons at different positions of
// a coding sequence are assumed to mutate independently as well. The
// probability of codon (b0, b1, b2) becoming (x0, x1, x2) is therefore
// P[b0][x0]*P[b1][x1]*P[b2][x2], where P is the R-round matrix.
package codon

import (
	"fmt"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mutsim/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("codon")

// NCodon is the number of codons.
const NCodon = bio.NCodon

// Codon is a codon number, 16*b0 + 4*b1 + b2 where b0..b2 are bases
// in bio.Alphabet order.
type Codon byte

// New creates a codon from three bases.
func New(b0, b1, b2 bio.Base) Codon {
	return Codon(b0)<<4 | Codon(b1)<<2 | Codon(b2)
}

// Parse converts a three-letter string (RNA or DNA) to a Codon.
func Parse(s string) (Codon, error) {
	if len(s) != 3 {
		return 0, fmt.Errorf("codon %q should have 3 letters", s)
	}
	var bs [3]bio.Base
	for i := range bs {
		b, ok := bio.BaseOf(s[i])
		if !ok {
			return 0, fmt.Errorf("codon %q: unknown nucleotide %q", s, s[i])
		}
		bs[i] = b
	}
	return New(bs[0], bs[1], bs[2]), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Codon {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Bases returns three bases of the codon.
func (c Codon) Bases() [3]bio.Base {
	return [3]bio.Base{bio.Base(c >> 4), bio.Base(c >> 2 & 3), bio.Base(c & 3)}
}

// String returns the RNA triplet.
func (c Codon) String() string {
	b := c.Bases()
	return b[0].String() + b[1].String() + b[2].String()
}

// AminoAcid returns the amino acid (or '*') encoded by the codon.
func (c Codon) AminoAcid(gcode *bio.GeneticCode) byte {
	return gcode.Map[c.String()]
}
