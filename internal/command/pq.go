// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/filters"
	"github.com/clarifyctl/clarifyctl/internal/meta"
)

// pqDefaultAttrs specifies the default attributes displayed for processing
// jobs in the "pq" command output.
var pqDefaultAttrs = []string{
	".ProcessingJobName:name",
	".ProcessingJobStatus:status",
	".CreationTime:created:T",
}

// pqCommandAction is the action handler for the "pq" subcommand. It lists
// processing jobs, which is where Clarify bias and explainability runs land.
func pqCommandAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	client := aws.NewSageMaker(cfg)

	fetcher := func(
		ctx context.Context,
		opts *smv2.ListProcessingJobsInput,
	) ([]types.ProcessingJobSummary, *string, error) {
		page, err := client.ListProcessingJobs(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return page.ProcessingJobSummaries, page.NextToken, nil
	}

	fn := ListQueryFetcherFactory(
		fetcher,
		pqServerSideFilterAugmenter,
		"list processing jobs",
	)

	return NewQueryActionRunner(
		"pq",
		reflect.TypeOf(types.ProcessingJobSummary{}),
		pqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// pqServerSideFilterAugmenter augments the ListProcessingJobsInput with
// server-side filters extracted from the --filter flag. Flags with
// ServerSide=true populate matching fields in opts based on the filter key
// (name or status).
func pqServerSideFilterAugmenter(
	_ context.Context,
	cmd *cli.Command,
	opts *smv2.ListProcessingJobsInput,
) error {
	spec := cmd.String("filter")
	filterList := filters.BuildFilters(spec)

	for _, f := range filterList {
		// We only care about server-side filters.
		if f.ServerSide {
			switch f.Key {
			case "name":
				opts.NameContains = &f.Value
			case "status":
				opts.StatusEquals = types.ProcessingJobStatus(f.Value)
			}
		}
	}

	log.Debugf("opts after augmentation: %+v", opts)

	return nil
}

// pqCommandBuilder constructs the cli.Command for "pq", wiring metadata,
// flags, and action handlers.
func pqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "pq",
		Usage:     "processing job query",
		UsageText: "clarifyctl pq [options]",
		Flags: []cli.Flag{
			NewProfileFlag("pq", meta.Config.Source),
			NewRegionFlag("pq", meta.Config.Source),
		},
		Action: pqCommandAction,
		Meta:   meta,
	}).Build()
}
