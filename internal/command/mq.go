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

// mqDefaultAttrs specifies the default attributes displayed for models in
// the "mq" command output.
var mqDefaultAttrs = []string{
	".ModelName:name",
	".CreationTime:created:T",
}

// mqCommandAction is the action handler for the "mq" subcommand. It lists
// models in the account.
func mqCommandAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	client := aws.NewSageMaker(cfg)

	fetcher := func(
		ctx context.Context,
		opts *smv2.ListModelsInput,
	) ([]types.ModelSummary, *string, error) {
		page, err := client.ListModels(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return page.Models, page.NextToken, nil
	}

	fn := ListQueryFetcherFactory(
		fetcher,
		mqServerSideFilterAugmenter,
		"list models",
	)

	return NewQueryActionRunner(
		"mq",
		reflect.TypeOf(types.ModelSummary{}),
		mqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// mqServerSideFilterAugmenter augments the ListModelsInput with server-side
// filters extracted from the --filter flag.
func mqServerSideFilterAugmenter(
	_ context.Context,
	cmd *cli.Command,
	opts *smv2.ListModelsInput,
) error {
	spec := cmd.String("filter")
	filterList := filters.BuildFilters(spec)

	for _, f := range filterList {
		// We only care about server-side filters.
		if f.ServerSide {
			switch f.Key {
			case "name":
				opts.NameContains = &f.Value
			}
		}
	}

	log.Debugf("opts after augmentation: %+v", opts)

	return nil
}

// mqCommandBuilder constructs the cli.Command for "mq", wiring metadata,
// flags, and action handlers.
func mqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "mq",
		Usage:     "model query",
		UsageText: "clarifyctl mq [options]",
		Flags: []cli.Flag{
			NewProfileFlag("mq", meta.Config.Source),
			NewRegionFlag("mq", meta.Config.Source),
		},
		Action: mqCommandAction,
		Meta:   meta,
	}).Build()
}
