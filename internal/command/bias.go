// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/clarify"
	"github.com/clarifyctl/clarifyctl/internal/config"
	"github.com/clarifyctl/clarifyctl/internal/meta"
)

// biasCommandAction is the action handler for the "bias" subcommand. It runs
// a Clarify processing job computing pre- and post-training bias metrics for
// the endpoint's model against the staged dataset.
func biasCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "bias"

	return runClarifyJob(ctx, cmd, "bias", buildBiasConfig)
}

// buildBiasConfig assembles the bias analysis document from flags and the
// dataset columns.
func buildBiasConfig(cmd *cli.Command, ds *jobDataset, model string) (*clarify.AnalysisConfig, error) {
	facet := cmd.String("facet")
	if facet == "" {
		return nil, fmt.Errorf("bias analysis requires --facet naming the sensitive column")
	}

	labelValues, err := parseFloats(cmd.String("label-values"))
	if err != nil {
		return nil, fmt.Errorf("bad --label-values: %w", err)
	}
	facetValues, err := parseFloats(cmd.String("facet-values"))
	if err != nil {
		return nil, fmt.Errorf("bad --facet-values: %w", err)
	}

	return clarify.NewBiasConfig(clarify.BiasSpec{
		Headers:              ds.headers,
		Label:                labelColumn(cmd, ds),
		LabelValues:          labelValues,
		FacetName:            facet,
		FacetValues:          facetValues,
		ProbabilityThreshold: cmd.Float("threshold"),
		ModelName:            model,
		InstanceType:         cmd.String("instance-type"),
		InstanceCount:        cmd.Int("instance-count"),
	})
}

// biasCommandBuilder constructs the cli.Command for "bias", wiring metadata,
// flags, and action handlers.
func biasCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "bias",
		Usage:     "run a Clarify bias analysis job",
		UsageText: "clarifyctl bias --facet COLUMN [options]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "facet",
				Usage: "sensitive column to measure bias against",
			},
			&cli.StringFlag{
				Name:  "facet-values",
				Usage: "comma-separated sensitive values or threshold",
				Value: "1",
			},
			&cli.StringFlag{
				Name:  "label-values",
				Usage: "comma-separated positive label values or threshold",
				Value: "1",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "probability cutoff applied to model output",
				Value: 0.5,
			},
		}, newClarifyJobFlags("bias", meta.Config.Source)...),
		Action: biasCommandAction,
		Meta:   meta,
	}).Build()
}
