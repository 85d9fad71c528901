package codon

import (
	"bytes"
	"strings"
	"unicode"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
)

// startCodon is the required reference start codon.
var startCodon = MustParse("AUG")

// Sequence is a validated coding sequence: it starts with AUG, ends
// with a stop codon and has no internal stop codons.
type Sequence struct {
	Name   string
	Codons []Codon
	GCode  *bio.GeneticCode
}

// NewSequence validates a nucleotide sequence and converts it to
// codons. T is treated as U, whitespace is ignored.
func NewSequence(name, nseq string, gcode *bio.GeneticCode) (*Sequence, error) {
	nseq = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, bio.ToRNA(nseq))

	if len(nseq) == 0 {
		return nil, check.Invalid("empty sequence")
	}
	if len(nseq)%3 != 0 {
		return nil, check.Invalid("sequence length %d doesn't divide by 3", len(nseq))
	}

	seq := &Sequence{
		Name:   name,
		Codons: make([]Codon, 0, len(nseq)/3),
		GCode:  gcode,
	}
	for i := 0; i < len(nseq); i += 3 {
		c, err := Parse(nseq[i : i+3])
		if err != nil {
			return nil, check.Invalid("position %d: %v", i+1, err)
		}
		seq.Codons = append(seq.Codons, c)
	}

	if len(seq.Codons) < 2 {
		return nil, check.Invalid("sequence should contain a start and a stop codon")
	}
	if seq.Codons[0] != startCodon {
		return nil, check.Invalid("sequence starts with %s, not with AUG", seq.Codons[0])
	}
	last := len(seq.Codons) - 1
	if seq.Codons[last].AminoAcid(gcode) != '*' {
		return nil, check.Invalid("sequence ends with %s, not with a stop codon", seq.Codons[last])
	}
	for i, c := range seq.Codons[:last] {
		if c.AminoAcid(gcode) == '*' {
			return nil, check.Invalid("internal stop codon %s at codon %d", c, i+1)
		}
	}
	return seq, nil
}

// Len returns the number of codons including the stop codon.
func (seq *Sequence) Len() int {
	return len(seq.Codons)
}

// NucLen returns the number of nucleotides.
func (seq *Sequence) NucLen() int {
	return 3 * len(seq.Codons)
}

// IsStart tests if position i is the start codon.
func (seq *Sequence) IsStart(i int) bool {
	return i == 0
}

// IsTerminal tests if position i is the stop codon.
func (seq *Sequence) IsTerminal(i int) bool {
	return i == len(seq.Codons)-1
}

// Nucleotides returns the RNA sequence.
func (seq *Sequence) Nucleotides() string {
	var b bytes.Buffer
	for _, c := range seq.Codons {
		b.WriteString(c.String())
	}
	return b.String()
}

// Protein returns the reference protein sequence (without stop).
func (seq *Sequence) Protein() string {
	p, err := bio.Translate(seq.Nucleotides(), seq.GCode)
	if err != nil {
		log.Errorf("Cannot translate %s: %v", seq.Name, err)
	}
	return p
}

// String returns the sequence in FASTA format.
func (seq *Sequence) String() string {
	return bio.Sequence{Name: seq.Name, Sequence: seq.Nucleotides()}.String()
}
