package main

import (
	"fmt"

	"github.com/samuelfneumann/gordinal/distribution"
	"github.com/samuelfneumann/gordinal/internal/config"
	"github.com/samuelfneumann/gordinal/internal/logger"
	"github.com/urfave/cli/v2"
	G "gorgonia.org/gorgonia"
)

var KLCommand = cli.Command{
	Action: reportKL,
	Name:   "kl",
	Usage:  "print the KL divergence between two ordered logistic distributions",
	Flags: []cli.Flag{
		&config.CutpointsFlag,
		&config.LocationFlag,
		&config.OtherCutpointsFlag,
		&config.OtherLocationFlag,
		&config.SamplesFlag,
		&config.SeedFlag,
	},
	Description: `
The kl command prints KL(p || q), where p has the given cutpoints and
location and q the other cutpoints and other location. Without other
cutpoints, q shares the cutpoints of p. With --samples, a Monte Carlo
estimate from that many samples of p is printed as well.`,
}

// reportKL prints the divergence of the configured distributions
func reportKL(ctx *cli.Context) error {
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "KL")

	otherCutpoints := cfg.OtherCutpoints
	if len(otherCutpoints) == 0 {
		log.Debug("using the same cutpoints for both distributions")
		otherCutpoints = cfg.Cutpoints
	}

	g := G.NewGraph()
	p, err := newOrderedLogistic(g, cfg.Cutpoints, cfg.Location, cfg.Seed)
	if err != nil {
		return err
	}
	q, err := newOrderedLogistic(g, otherCutpoints, cfg.OtherLocation,
		cfg.Seed)
	if err != nil {
		return err
	}

	kl, err := distribution.KL(p, q)
	if err != nil {
		return err
	}
	var klVal G.Value
	G.Read(kl, &klVal)

	var pLogProbVal, qLogProbVal G.Value
	if cfg.Samples > 0 {
		samples, err := p.Sample(cfg.Samples)
		if err != nil {
			return err
		}
		pLogProb, err := p.LogProb(samples)
		if err != nil {
			return err
		}
		qLogProb, err := q.LogProb(samples)
		if err != nil {
			return err
		}
		G.Read(pLogProb, &pLogProbVal)
		G.Read(qLogProb, &qLogProbVal)
	}

	if err := run(g); err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "kl: %.6f\n", klVal.Data().(float64))

	if pLogProbVal != nil {
		pData := pLogProbVal.Data().([]float64)
		qData := qLogProbVal.Data().([]float64)

		diffs := make([]float64, len(pData))
		for i := range diffs {
			diffs[i] = pData[i] - qData[i]
		}
		log.Infof("estimated divergence from %v samples", len(diffs))
		fmt.Fprintf(ctx.App.Writer, "estimate: %.6f\n", mean(diffs))
	}

	return nil
}
