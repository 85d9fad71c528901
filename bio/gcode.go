package bio

import (
	"fmt"
	"strings"
)

// NCodon is the number of all possible codons.
const NCodon = 64

// GeneticCode maps codons to amino acids. Codons are RNA triplets
// (capital letters, U instead of T). Stop codons are mapped to '*'.
//
// A GeneticCode is created once and never modified afterwards, so it
// can be shared between goroutines.
type GeneticCode struct {
	// ID is the NCBI genetic code id.
	ID int
	// Name is the full name of the genetic code.
	Name string
	// ShortName is an abbreviation (may be empty).
	ShortName string
	// Map maps a codon to an amino acid.
	Map map[string]byte
	// Start is the set of initiation codons.
	Start map[string]bool
}

// tcag is the nucleotide order used by NCBI tables.
const tcag = "UCAG"

// newGeneticCode creates a genetic code from NCBI-style amino acid
// (ncbieaa) and start (sncbieaa) strings.
func newGeneticCode(id int, name, shortName, ncbieaa, sncbieaa string) *GeneticCode {
	gc := &GeneticCode{
		ID:        id,
		Name:      name,
		ShortName: shortName,
		Map:       make(map[string]byte, NCodon),
		Start:     make(map[string]bool),
	}
	i := 0
	for _, l1 := range []byte(tcag) {
		for _, l2 := range []byte(tcag) {
			for _, l3 := range []byte(tcag) {
				codon := string([]byte{l1, l2, l3})
				gc.Map[codon] = ncbieaa[i]
				if sncbieaa[i] == 'M' {
					gc.Start[codon] = true
				}
				i++
			}
		}
	}
	return gc
}

// AminoAcid returns the amino acid encoded by a codon, '*' for stop
// codons and 0 for an unknown codon. DNA codons are accepted.
func (gc *GeneticCode) AminoAcid(codon string) byte {
	return gc.Map[strings.Replace(strings.ToUpper(codon), "T", "U", -1)]
}

// IsStopCodon tests if the codon is a stop-codon.
func (gc *GeneticCode) IsStopCodon(codon string) bool {
	return gc.AminoAcid(codon) == '*'
}

// IsStartCodon tests if the codon can initiate translation.
func (gc *GeneticCode) IsStartCodon(codon string) bool {
	return gc.Start[strings.Replace(strings.ToUpper(codon), "T", "U", -1)]
}

func (gc *GeneticCode) String() string {
	return fmt.Sprintf("<GC: ID=%d, Name=\"%s\">", gc.ID, gc.Name)
}

// GeneticCodes is a map holding the supported genetic codes.
var GeneticCodes = map[int]*GeneticCode{
	1: newGeneticCode(1,
		"Standard",
		"SGC0",
		"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
		"---M------**--*----M---------------M----------------------------"),
	2: newGeneticCode(2,
		"Vertebrate Mitochondrial",
		"SGC1",
		"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSS**VVVVAAAADDEEGGGG",
		"----------**--------------------MMMM----------**---M------------"),
	11: newGeneticCode(11,
		"Bacterial, Archaeal and Plant Plastid",
		"",
		"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
		"---M------**--*----M------------MMMM---------------M------------"),
}

// Standard is the standard genetic code.
var Standard = GeneticCodes[1]
