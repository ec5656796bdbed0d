package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samuelfneumann/gordinal/internal/config"
	"github.com/samuelfneumann/gordinal/internal/logger"
	"github.com/urfave/cli/v2"
	G "gorgonia.org/gorgonia"
)

var ProbsCommand = cli.Command{
	Action: reportProbs,
	Name:   "probs",
	Usage:  "print the category probabilities of an ordered logistic distribution",
	Flags: []cli.Flag{
		&config.CutpointsFlag,
		&config.LocationFlag,
		&config.SamplesFlag,
		&config.SeedFlag,
	},
	Description: `
The probs command prints the probability and cumulative probability of
each category, followed by the mode and entropy. With --samples, the
empirical frequency of each category in that many samples is printed
as well.`,
}

// probsReport holds the evaluated properties of a distribution
type probsReport struct {
	probs       []float64
	cdf         []float64
	frequencies []float64
	mode        int
	entropy     float64
}

// reportProbs prints the probsReport of the configured distribution
func reportProbs(ctx *cli.Context) error {
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Probs")

	log.Debugf("building distribution with cutpoints %v and location %v",
		cfg.Cutpoints, cfg.Location)
	r, err := evaluateProbs(cfg)
	if err != nil {
		return err
	}
	log.Infof("evaluated %v categories", len(r.probs))

	tw := table.NewWriter()
	tw.SetOutputMirror(ctx.App.Writer)
	header := table.Row{"category", "probability", "cdf"}
	if r.frequencies != nil {
		header = append(header, "frequency")
	}
	tw.AppendHeader(header)

	for k := range r.probs {
		row := table.Row{
			k,
			fmt.Sprintf("%.6f", r.probs[k]),
			fmt.Sprintf("%.6f", r.cdf[k]),
		}
		if r.frequencies != nil {
			row = append(row, fmt.Sprintf("%.6f", r.frequencies[k]))
		}
		tw.AppendRow(row)
	}
	tw.Render()

	fmt.Fprintf(ctx.App.Writer, "mode: %v\n", r.mode)
	fmt.Fprintf(ctx.App.Writer, "entropy: %.6f\n", r.entropy)
	return nil
}

// evaluateProbs builds and runs the graph of the distribution in cfg
func evaluateProbs(cfg *config.Config) (*probsReport, error) {
	g := G.NewGraph()
	dist, err := newOrderedLogistic(g, cfg.Cutpoints, cfg.Location,
		cfg.Seed)
	if err != nil {
		return nil, err
	}

	probs, err := dist.CategoricalProbs()
	if err != nil {
		return nil, err
	}
	cdf, err := dist.Cdf(categories(g, len(cfg.Cutpoints)+1))
	if err != nil {
		return nil, err
	}
	mode, err := dist.Mode()
	if err != nil {
		return nil, err
	}
	entropy, err := dist.Entropy()
	if err != nil {
		return nil, err
	}

	var probsVal, cdfVal, modeVal, entropyVal, samplesVal G.Value
	G.Read(probs, &probsVal)
	G.Read(cdf, &cdfVal)
	G.Read(mode, &modeVal)
	G.Read(entropy, &entropyVal)

	if cfg.Samples > 0 {
		samples, err := dist.Sample(cfg.Samples)
		if err != nil {
			return nil, err
		}
		G.Read(samples, &samplesVal)
	}

	if err := run(g); err != nil {
		return nil, err
	}

	r := &probsReport{
		probs:   append([]float64{}, probsVal.Data().([]float64)...),
		cdf:     append([]float64{}, cdfVal.Data().([]float64)...),
		mode:    modeVal.Data().(int),
		entropy: entropyVal.Data().(float64),
	}

	if samplesVal != nil {
		r.frequencies = make([]float64, len(r.probs))
		samples := samplesVal.Data().([]int)
		for _, s := range samples {
			r.frequencies[s]++
		}
		for k := range r.frequencies {
			r.frequencies[k] /= float64(len(samples))
		}
	}

	return r, nil
}
