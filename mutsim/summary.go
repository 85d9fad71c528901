package main

import (
	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/risk"
)

// Summary is storing mutsim run summary information.
type Summary struct {
	// Version stores mutsim version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed,omitempty"`
	// NThreads is the number of processes used.
	NThreads int `json:"nThreads,omitempty"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
	// Input describes the analyzed sequence.
	Input InputSummary `json:"input"`
	// Rounds is the number of replication rounds.
	Rounds int `json:"rounds"`
	// Matrix is the per-round substitution matrix.
	Matrix [][]float64 `json:"matrix"`
	// MatrixR is the matrix after all the rounds.
	MatrixR [][]float64 `json:"matrixR"`
	// Analytic is the analytic result.
	Analytic *risk.Result `json:"analytic,omitempty"`
	// Simulated is the simulation result.
	Simulated *risk.SimResult `json:"simulated,omitempty"`
}

// InputSummary stores information on the input sequence.
type InputSummary struct {
	Name        string        `json:"name"`
	NCodons     int           `json:"nCodons"`
	GeneticCode int           `json:"geneticCode"`
	Protein     string        `json:"protein"`
	Region      *codon.Region `json:"region,omitempty"`
}

// setInput fills in the input-related fields.
func (s *Summary) setInput(in *input) {
	s.Input = InputSummary{
		Name:        in.seq.Name,
		NCodons:     in.seq.Len(),
		GeneticCode: in.seq.GCode.ID,
		Protein:     in.seq.Protein(),
		Region:      in.region,
	}
	s.Matrix = in.m.Rows()
	s.MatrixR = in.mr.Rows()
}
