// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/clarify"
	"github.com/clarifyctl/clarifyctl/internal/config"
	"github.com/clarifyctl/clarifyctl/internal/meta"
)

// explainCommandAction is the action handler for the "explain" subcommand.
// It runs a Clarify processing job computing SHAP feature attributions for
// the endpoint's model against the staged dataset.
func explainCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "explain"

	return runClarifyJob(ctx, cmd, "explain", buildExplainConfig)
}

// buildExplainConfig assembles the SHAP analysis document from flags and the
// dataset. When no --baseline is given, the first data row (minus the label
// column) is used.
func buildExplainConfig(cmd *cli.Command, ds *jobDataset, model string) (*clarify.AnalysisConfig, error) {
	baseline, err := parseFloats(cmd.String("baseline"))
	if err != nil {
		return nil, fmt.Errorf("bad --baseline: %w", err)
	}

	label := labelColumn(cmd, ds)
	if baseline == nil {
		if baseline, err = baselineFromDataset(ds, label); err != nil {
			return nil, err
		}
	}

	return clarify.NewExplainConfig(clarify.ExplainSpec{
		Headers:       ds.headers,
		Label:         label,
		Baseline:      baseline,
		NumSamples:    cmd.Int("num-samples"),
		AggMethod:     cmd.String("agg"),
		ModelName:     model,
		InstanceType:  cmd.String("instance-type"),
		InstanceCount: cmd.Int("instance-count"),
	})
}

// baselineFromDataset derives the SHAP baseline from the dataset's first data
// row, dropping the label column.
func baselineFromDataset(ds *jobDataset, label string) ([]float64, error) {
	if len(ds.rows) == 0 {
		return nil, fmt.Errorf("no local dataset rows; provide --baseline with --dataset-uri")
	}

	labelAt := -1
	for i, h := range ds.headers {
		if strings.EqualFold(h, label) {
			labelAt = i
			break
		}
	}

	var baseline []float64
	for i, field := range strings.Split(ds.rows[0], ",") {
		if i == labelAt {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset row is not numeric; provide --baseline explicitly: %w", err)
		}
		baseline = append(baseline, v)
	}

	return baseline, nil
}

// explainCommandBuilder constructs the cli.Command for "explain", wiring
// metadata, flags, and action handlers.
func explainCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "explain",
		Usage:     "run a Clarify SHAP explainability job",
		UsageText: "clarifyctl explain [options]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "agg",
				Usage: "SHAP aggregation method",
				Value: "mean_abs",
			},
			&cli.StringFlag{
				Name:  "baseline",
				Usage: "comma-separated baseline feature values",
			},
			&cli.IntFlag{
				Name:  "num-samples",
				Usage: "number of Kernel SHAP samples",
				Value: 100,
			},
		}, newClarifyJobFlags("explain", meta.Config.Source)...),
		Action: explainCommandAction,
		Meta:   meta,
	}).Build()
}
