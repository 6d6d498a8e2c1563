// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strconv"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/attrs"
	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/discover"
	"github.com/clarifyctl/clarifyctl/internal/meta"
	"github.com/clarifyctl/clarifyctl/internal/output"
)

// DefaultMaxResults is the page size requested from all SageMaker list
// operations. The service caps pages at 100.
const DefaultMaxResults int32 = 100

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the JSON schema for the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitJSONSlice marshals a slice as JSON and passes it to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	var raw bytes.Buffer
	raw.Write(data)
	output.SliceDiceSpit(raw, al, cmd, "", os.Stdout, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewAWSConfig builds the SDK config honoring the --profile and --region
// flags when the command carries them.
func NewAWSConfig(ctx context.Context, cmd *cli.Command) (awsv2.Config, error) {
	var opts []aws.Option
	if p := cmd.String("profile"); p != "" {
		opts = append(opts, aws.WithProfile(p))
	}
	if r := cmd.String("region"); r != "" {
		opts = append(opts, aws.WithRegion(r))
	}
	return aws.LoadAWSConfig(ctx, opts...)
}

// PaginateWithOptions[T, O] is a generic paginator that drives token-based
// list calls with mutable options. The augmenter callback (if provided) is
// called once before the first API invocation, allowing options customization
// (e.g., setting server-side name filters). The fetcher callback encapsulates
// the actual API call and must return the page's items, the next token, and
// any error.
func PaginateWithOptions[T, O any](
	ctx context.Context,
	cmd *cli.Command,
	options *O,
	fetcher func(context.Context, *O) ([]T, *string, error),
	augmenter Augmenter[O],
) ([]T, error) {
	var results []T

	setMaxResultsDefault(options)

	if augmenter != nil {
		if err := augmenter(ctx, cmd, options); err != nil {
			return nil, err
		}
	}

	// Paginate through pages.
	for {
		items, next, err := fetcher(ctx, options)
		if err != nil {
			return nil, err
		}

		results = append(results, items...)

		if next == nil || *next == "" {
			break
		}

		setNextToken(options, next)
	}

	return results, nil
}

// ListQueryFetcherFactory creates a generic fetch function for SageMaker list
// queries. It handles the common pagination and augmentation logic,
// delegating only the API call itself to the provided fetcher, and wrapping
// errors with the provided operation name for context.
func ListQueryFetcherFactory[T, O any](
	fetcher func(context.Context, *O) ([]T, *string, error),
	augmenter Augmenter[O],
	operation string,
) func(context.Context, *cli.Command) ([]T, error) {
	return func(ctx context.Context, cmd *cli.Command) ([]T, error) {
		options := new(O)

		results, err := PaginateWithOptions(
			ctx,
			cmd,
			options,
			func(ctx context.Context, opts *O) ([]T, *string, error) {
				items, next, err := fetcher(ctx, opts)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to %s: %w", operation, err)
				}
				return items, next, nil
			},
			augmenter,
		)
		return results, err
	}
}

// ResolveEndpointName returns the --endpoint flag value, falling back to the
// most recently created endpoint in the account.
func ResolveEndpointName(ctx context.Context, cfg awsv2.Config, cmd *cli.Command) (string, error) {
	if name := cmd.String("endpoint"); name != "" {
		return name, nil
	}
	return discover.LatestEndpoint(ctx, aws.NewSageMaker(cfg))
}

// ResolveBucket returns the --bucket flag value, falling back to the
// account's default SageMaker bucket.
func ResolveBucket(ctx context.Context, cfg awsv2.Config, cmd *cli.Command) (string, error) {
	if bucket := cmd.String("bucket"); bucket != "" {
		return bucket, nil
	}
	return discover.DefaultBucket(ctx, aws.NewSTS(cfg), cfg.Region)
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr clarifyctl <subcmd>` and returns true so the caller can exit
// early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "clarifyctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// parseFloats parses a comma-separated list of numbers.
func parseFloats(spec string) ([]float64, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var values []float64
	for _, part := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		values = append(values, v)
	}
	return values, nil
}

// setMaxResultsDefault uses reflection to set DefaultMaxResults on an options
// struct's MaxResults field. SageMaker list inputs all carry *int32.
func setMaxResultsDefault(options any) {
	v := reflect.ValueOf(options).Elem()
	mr := v.FieldByName("MaxResults")
	if mr.IsValid() && mr.CanSet() && mr.Kind() == reflect.Ptr && mr.IsNil() {
		mr.Set(reflect.ValueOf(awsv2.Int32(DefaultMaxResults)))
	}
}

// setNextToken uses reflection to set the NextToken field in the options
// struct. It assumes the struct has a *string NextToken field (standard in
// SageMaker list inputs).
func setNextToken(options any, token *string) {
	v := reflect.ValueOf(options).Elem()
	nt := v.FieldByName("NextToken")
	if nt.IsValid() && nt.CanSet() {
		nt.Set(reflect.ValueOf(token))
	}
}
