package codon

import (
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/Davydov/mutsim/check"
)

// Region is an inclusive 1-based nucleotide interval.
type Region struct {
	Start, End int
}

// ParseRegion parses a region like "300-600". Reversed bounds are
// swapped.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Region{}, check.Invalid("region %q should look like 300-600", s)
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || a < 1 || b < 1 {
		return Region{}, check.Invalid("region %q should look like 300-600 (positive integers)", s)
	}
	if b < a {
		a, b = b, a
	}
	return Region{Start: a, End: b}, nil
}

// Validate checks that the region lies within a sequence of nlen
// nucleotides.
func (r Region) Validate(nlen int) error {
	if r.Start < 1 || r.End < r.Start || r.End > nlen {
		return check.Invalid("region %v is outside of sequence 1-%d", r, nlen)
	}
	return nil
}

// Codons returns the first and the last (inclusive, 0-based) codon
// positions overlapping the region. A codon with at least one
// nucleotide inside the region is included.
func (r Region) Codons() (first, last int) {
	return (r.Start - 1) / 3, (r.End - 1) / 3
}

// Aligned tests if the region starts and ends on codon boundaries.
func (r Region) Aligned() bool {
	return (r.Start-1)%3 == 0 && r.End%3 == 0
}

func (r Region) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
