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
	"github.com/clarifyctl/clarifyctl/internal/discover"
	"github.com/clarifyctl/clarifyctl/internal/filters"
	"github.com/clarifyctl/clarifyctl/internal/meta"
)

// eqDefaultAttrs specifies the default attributes displayed for endpoints
// in the "eq" command output.
var eqDefaultAttrs = []string{
	".EndpointName:name",
	".EndpointStatus:status",
	".CreationTime:created:T",
}

// eqDescribeAttrs specifies the default attributes displayed when a single
// endpoint is resolved with --endpoint.
var eqDescribeAttrs = []string{
	".Name:name",
	".Status:status",
	".ConfigName:config",
	".VariantName:variant",
	".ModelName:model",
	".InstanceType:instance",
	".CapturePrefix:capture",
}

// eqCommandAction is the action handler for the "eq" subcommand. It lists
// endpoints in the account, supports --tldr/--schema shortcuts, and emits
// results per common flags. With --endpoint it describes that one endpoint
// instead, walking endpoint -> config -> variant -> model.
func eqCommandAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	client := aws.NewSageMaker(cfg)

	if name := cmd.String("endpoint"); name != "" {
		ep, err := discover.ResolveEndpoint(ctx, client, name)
		if err != nil {
			return err
		}
		attrs := BuildAttrs(cmd, eqDescribeAttrs...)
		return EmitJSONSlice([]discover.Endpoint{ep}, attrs, cmd)
	}

	// Create a fetcher that captures the client in a closure.
	fetcher := func(
		ctx context.Context,
		opts *smv2.ListEndpointsInput,
	) ([]types.EndpointSummary, *string, error) {
		page, err := client.ListEndpoints(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return page.Endpoints, page.NextToken, nil
	}

	fn := ListQueryFetcherFactory(
		fetcher,
		eqServerSideFilterAugmenter,
		"list endpoints",
	)

	return NewQueryActionRunner(
		"eq",
		reflect.TypeOf(types.EndpointSummary{}),
		eqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// eqServerSideFilterAugmenter augments the ListEndpointsInput with
// server-side filters extracted from the --filter flag. Flags with
// ServerSide=true populate matching fields in opts based on the filter key
// (name or status).
func eqServerSideFilterAugmenter(
	_ context.Context,
	cmd *cli.Command,
	opts *smv2.ListEndpointsInput,
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
				opts.StatusEquals = types.EndpointStatus(f.Value)
			}
		}
	}

	log.Debugf("opts after augmentation: %+v", opts)

	return nil
}

// eqCommandBuilder constructs the cli.Command for "eq", wiring metadata,
// flags, and action handlers.
func eqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "eq",
		Usage:     "endpoint query",
		UsageText: "clarifyctl eq [options]",
		Flags: []cli.Flag{
			NewEndpointFlag("eq", meta.Config.Source),
			NewProfileFlag("eq", meta.Config.Source),
			NewRegionFlag("eq", meta.Config.Source),
		},
		Action: eqCommandAction,
		Meta:   meta,
	}).Build()
}
