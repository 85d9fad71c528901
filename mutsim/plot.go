package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotDistribution creates a bar chart of the number of changed
// codons distribution. Only k=0..maxk are shown.
func plotDistribution(pmf []float64, title, fileName string) error {
	n := len(pmf)
	if *maxK >= 0 && *maxK+1 < n {
		n = *maxK + 1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, %d rounds", title, *rounds)
	p.X.Label.Text = "changed codons"
	p.Y.Label.Text = "probability"

	bars, err := plotter.NewBarChart(plotter.Values(pmf[:n]), vg.Points(12))
	if err != nil {
		return err
	}
	p.Add(bars)

	names := make([]string, n)
	for k := range names {
		names[k] = fmt.Sprintf("%d", k)
	}
	p.NominalX(names...)

	log.Infof("Saving plot to %s", fileName)
	return p.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
