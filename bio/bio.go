// Package bio provides functions related to nucleotide sequences and
// the genetic code.
package bio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// Alphabet is the order of nucleotides used for substitution
// matrices and codon numbering.
const Alphabet = "ACGU"

// Base is a nucleotide index in Alphabet.
type Base byte

// Bases in Alphabet order.
const (
	A Base = iota
	C
	G
	U
)

// NBase is the number of nucleotides.
const NBase = 4

// String returns the nucleotide letter.
func (b Base) String() string {
	return Alphabet[b : b+1]
}

// BaseOf returns the base corresponding to a letter. T is treated as
// U; lowercase letters are accepted.
func BaseOf(l byte) (Base, bool) {
	switch l {
	case 'A', 'a':
		return A, true
	case 'C', 'c':
		return C, true
	case 'G', 'g':
		return G, true
	case 'U', 'u', 'T', 't':
		return U, true
	}
	return 0, false
}

// ToRNA converts a sequence to uppercase and replaces T with U.
func ToRNA(seq string) string {
	return strings.Replace(strings.ToUpper(seq), "T", "U", -1)
}

// CleanRNA converts a sequence to RNA and drops every letter which is
// not a nucleotide (whitespace, digits, gaps).
func CleanRNA(seq string) string {
	var b bytes.Buffer
	for _, l := range []byte(ToRNA(strings.TrimSpace(seq))) {
		if strings.IndexByte(Alphabet, l) >= 0 {
			b.WriteByte(l)
		}
	}
	return b.String()
}

// Translate translates nucleotide sequence string into the protein
// string. Error is returned is sequence is not divisible by three,
// non-terminal stop-codon is found or wrong codon is encountered.
func Translate(nseq string, gcode *GeneticCode) (string, error) {
	var buffer bytes.Buffer

	if len(nseq)%3 != 0 {
		return "", errors.New("sequence length doesn't divide by 3")
	}

	nseq = ToRNA(nseq)

	for i := 0; i < len(nseq); i += 3 {
		aa := gcode.Map[nseq[i:i+3]]
		if aa == 0 {
			return buffer.String(), errors.New("unknown codon")
		} else if aa == '*' {
			if i+3 >= len(nseq) {
				// it's ok if this is the last codon
				break
			}
			return buffer.String(), errors.New("premature stop codon")
		}
		buffer.WriteByte(aa)
	}
	return buffer.String(), nil
}

// ExtractCDS returns the coding sequence which starts at the first AUG
// and ends with the first in-frame stop codon (inclusive). If there is
// no AUG or no in-frame stop codon an error is returned.
func ExtractCDS(seq string, gcode *GeneticCode) (string, error) {
	s := ToRNA(seq)
	start := strings.Index(s, "AUG")
	if start == -1 {
		return "", errors.New("no AUG found")
	}
	for i := start; i+3 <= len(s); i += 3 {
		if gcode.IsStopCodon(s[i : i+3]) {
			return s[start : i+3], nil
		}
	}
	return "", errors.New("no in-frame stop codon after the first AUG")
}

// Sequence is a type which is intended for storing nucleotide or
// protein sequence with it's name.
type Sequence struct {
	Name     string
	Sequence string
}

// Sequences stores multiple sequences.
type Sequences []Sequence

// ParseFasta parses FASTA sequences from a reader.
func ParseFasta(rd io.Reader) (seqs Sequences, err error) {
	seqs = make(Sequences, 0, 1)
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			seq := Sequence{Name: line[1:]}
			seqs = append(seqs, seq)
		} else {
			if len(seqs) == 0 {
				return nil, errors.New("sequence w/o prefix")
			}
			line = strings.ToUpper(strings.Replace(line, " ", "", -1))
			seqs[len(seqs)-1].Sequence += line
		}
	}
	err = scanner.Err()
	return
}

// Wrap inputs a string and wraps it so string length is n characters
// or less.
func Wrap(seq string, n int) (s string) {
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		s += seq[i:end] + "\n"
	}
	return
}

// String returns a sequence in FASTA format.
func (seq Sequence) String() (s string) {
	s = ">" + seq.Name + "\n" + Wrap(seq.Sequence, 80)
	return
}
