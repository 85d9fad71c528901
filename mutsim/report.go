package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/dist"
	"bitbucket.org/Davydov/mutsim/risk"
)

// percent formats a probability as percents.
func percent(p float64) string {
	return fmt.Sprintf("%.4f%%", p*100)
}

// interval formats a confidence interval as percents.
func interval(ci dist.Interval) string {
	return fmt.Sprintf("[%.4f%%; %.4f%%]", ci.Lower*100, ci.Upper*100)
}

// newTable creates a table in the report style.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// printResult prints the risk summary. If sim is not nil, confidence
// intervals are added.
func printResult(w io.Writer, in *input, res *risk.Result, sim *risk.SimResult) {
	fmt.Fprintf(w, "Sequence: %s (%d codons)\n", in.seq.Name, in.seq.Len())
	fmt.Fprintf(w, "Protein: %s\n", in.seq.Protein())
	fmt.Fprintf(w, "Rounds: %d\n", res.Rounds)
	if sim != nil {
		fmt.Fprintf(w, "Trials: %d, seed: %d\n", sim.Trials, sim.Seed)
	}
	fmt.Fprintln(w)

	header := []string{"Outcome", "Probability"}
	if sim != nil {
		header = append(header, "CI")
	}
	table := newTable(w, header...)
	add := func(name string, p float64, ci *dist.Interval) {
		row := []string{name, percent(p)}
		if sim != nil {
			if ci != nil {
				row = append(row, interval(*ci))
			} else {
				row = append(row, "")
			}
		}
		table.Append(row)
	}
	var cis risk.Intervals
	if sim != nil {
		cis = sim.Intervals
	}
	ptr := func(ci dist.Interval) *dist.Interval {
		if sim == nil {
			return nil
		}
		return &ci
	}
	add("unchanged", res.Unchanged, ptr(cis.Unchanged))
	add("premature stop", res.PrematureStop, ptr(cis.PrematureStop))
	add("delayed stop", res.DelayedStop, ptr(cis.DelayedStop))
	add("moved start", res.MovedStart, ptr(cis.MovedStart))
	if res.ROI != nil {
		roi := res.ROI
		name := fmt.Sprintf("region %v (codons %d-%d)", roi.Region, roi.FirstCodon+1, roi.LastCodon+1)
		add(name+" changed", roi.AnyNonsilent, cis.ROIAnyNonsilent)
		add(name+" premature stop", roi.PrematureStop, nil)
	}
	table.Render()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Expected number of changed codons: %.4f\n", res.ExpectedNonsilent)
	printDistribution(w, "Changed codons", res.Nonsilent)
	if res.ROI != nil {
		printDistribution(w, "Changed codons in region", res.ROI.Nonsilent)
	}
}

// printDistribution prints pmf for k=0..maxk and the tail.
func printDistribution(w io.Writer, title string, pmf []float64) {
	fmt.Fprintln(w)
	table := newTable(w, title, "Probability")
	n := len(pmf)
	if *maxK >= 0 && *maxK+1 < n {
		n = *maxK + 1
	}
	for k := 0; k < n; k++ {
		table.Append([]string{fmt.Sprintf("%d", k), percent(pmf[k])})
	}
	if n < len(pmf) {
		table.Append([]string{fmt.Sprintf(">%d", n-1), percent(dist.Tail(pmf, n))})
	}
	table.Render()
}

// printComparison prints analytic and simulated values side by side.
func printComparison(w io.Writer, res *risk.Result, sim *risk.SimResult) {
	fmt.Fprintln(w)
	table := newTable(w, "Outcome", "Analytic", "Simulated", "CI", "Inside")
	add := func(name string, p float64, ci dist.Interval) {
		inside := "yes"
		if !ci.Contains(p) {
			inside = "no"
		}
		table.Append([]string{name, percent(p), percent(ci.Estimate), interval(ci), inside})
	}
	add("unchanged", res.Unchanged, sim.Intervals.Unchanged)
	add("premature stop", res.PrematureStop, sim.Intervals.PrematureStop)
	add("delayed stop", res.DelayedStop, sim.Intervals.DelayedStop)
	add("moved start", res.MovedStart, sim.Intervals.MovedStart)
	if res.ROI != nil && sim.Intervals.ROIAnyNonsilent != nil {
		add("region changed", res.ROI.AnyNonsilent, *sim.Intervals.ROIAnyNonsilent)
	}
	table.Render()
}

// printCodons prints per-codon outcome probabilities.
func printCodons(w io.Writer, in *input) error {
	cache := codon.NewCache(in.mr, in.seq.GCode)
	pos, err := risk.Positions(in.seq, cache, 0, in.seq.Len()-1)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	table := newTable(w, "Pos", "Codon", "AA", "Silent", "Nonsilent", "Stop", "Stop lost", "Likely change")
	for i, o := range pos {
		c, p := o.MostLikelyChange()
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			o.Reference.String(),
			string(o.Reference.AminoAcid(in.seq.GCode)),
			percent(o.Silent),
			percent(o.Nonsilent),
			percent(o.PrematureStop),
			percent(o.StopLost),
			fmt.Sprintf("%v->%v (%s)", o.Reference, c, percent(p)),
		})
	}
	table.Render()
	return nil
}

// printGeneticCodes lists genetic codes with their start and stop
// codons.
func printGeneticCodes(w io.Writer) {
	ids := make([]int, 0, len(bio.GeneticCodes))
	for id := range bio.GeneticCodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	table := newTable(w, "Id", "Name", "Start codons", "Stop codons")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, id := range ids {
		gc := bio.GeneticCodes[id]
		var starts, stops []string
		for c := codon.Codon(0); c < codon.NCodon; c++ {
			if gc.IsStartCodon(c.String()) {
				starts = append(starts, c.String())
			}
			if gc.IsStopCodon(c.String()) {
				stops = append(stops, c.String())
			}
		}
		table.Append([]string{fmt.Sprintf("%d", id), gc.Name, fmt.Sprint(starts), fmt.Sprint(stops)})
	}
	table.Render()
}
