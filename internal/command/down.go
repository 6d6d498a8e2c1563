// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/smithy-go"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/discover"
	"github.com/clarifyctl/clarifyctl/internal/meta"
	"github.com/clarifyctl/clarifyctl/internal/poll"
)

// Deletion records the outcome of one teardown step.
type Deletion struct {
	Resource string `json:"resource"`
	Name     string `json:"name"`
	Result   string `json:"result"`
}

// downDefaultAttrs specifies the default attributes displayed for teardown
// steps.
var downDefaultAttrs = []string{".resource", ".name", ".result"}

// downCommandAction is the action handler for the "down" subcommand. It tears
// down the billable endpoint plus, unless kept, its endpoint config and
// model. Resources already gone are reported, not failed on.
func downCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "down") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(Deletion{})) {
		return nil
	}

	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	client := aws.NewSageMaker(cfg)

	name := cmd.String("endpoint")
	if name == "" {
		return fmt.Errorf("down requires --endpoint; refusing to guess what to delete")
	}

	// Resolve first: config and model names are only reachable through the
	// endpoint, so grab them before it goes away.
	ep, err := discover.ResolveEndpoint(ctx, client, name)
	if err != nil && !isGone(err) {
		return err
	}

	var deletions []Deletion

	_, err = client.DeleteEndpoint(ctx, &smv2.DeleteEndpointInput{
		EndpointName: awsv2.String(name),
	})
	deletions = append(deletions, deletionResult("endpoint", name, err))
	if err != nil && !isGone(err) {
		return emitDeletions(cmd, deletions, err)
	}

	// Deleting the endpoint is asynchronous. The config and model can be
	// removed while it drains, but --wait confirms the endpoint is gone.
	if err == nil && cmd.Bool("wait") {
		err := poll.Wait(ctx, "deleting "+name, cmd.Duration("interval"), cmd.Duration("timeout"),
			func(ctx context.Context) (bool, string, error) {
				desc, err := client.DescribeEndpoint(ctx, &smv2.DescribeEndpointInput{
					EndpointName: awsv2.String(name),
				})
				if err != nil {
					if isGone(err) {
						return true, "gone", nil
					}
					return false, "", err
				}
				return false, string(desc.EndpointStatus), nil
			})
		if err != nil {
			return emitDeletions(cmd, deletions, err)
		}
	}

	if !cmd.Bool("keep-config") && ep.ConfigName != "" {
		_, err := client.DeleteEndpointConfig(ctx, &smv2.DeleteEndpointConfigInput{
			EndpointConfigName: awsv2.String(ep.ConfigName),
		})
		deletions = append(deletions, deletionResult("endpoint-config", ep.ConfigName, err))
		if err != nil && !isGone(err) {
			return emitDeletions(cmd, deletions, err)
		}
	}

	if !cmd.Bool("keep-model") && ep.ModelName != "" {
		_, err := client.DeleteModel(ctx, &smv2.DeleteModelInput{
			ModelName: awsv2.String(ep.ModelName),
		})
		deletions = append(deletions, deletionResult("model", ep.ModelName, err))
		if err != nil && !isGone(err) {
			return emitDeletions(cmd, deletions, err)
		}
	}

	return emitDeletions(cmd, deletions, nil)
}

// emitDeletions renders the teardown steps taken so far, then returns err.
func emitDeletions(cmd *cli.Command, deletions []Deletion, err error) error {
	attrs := BuildAttrs(cmd, downDefaultAttrs...)
	if emitErr := EmitJSONSlice(deletions, attrs, cmd); emitErr != nil && err == nil {
		return emitErr
	}
	return err
}

// deletionResult classifies one delete call's outcome.
func deletionResult(resource, name string, err error) Deletion {
	d := Deletion{Resource: resource, Name: name, Result: "deleted"}
	switch {
	case err == nil:
	case isGone(err):
		d.Result = "already gone"
	default:
		d.Result = "failed"
	}
	return d
}

// isGone reports whether err means the resource no longer exists. SageMaker
// surfaces missing endpoints as ValidationException rather than a dedicated
// not-found code.
func isGone(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ResourceNotFound", "ResourceNotFoundException":
		return true
	case "ValidationException":
		return strings.Contains(apiErr.ErrorMessage(), "Could not find")
	}
	return false
}

// downCommandBuilder constructs the cli.Command for "down", wiring metadata,
// flags, and action handlers.
func downCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "down",
		Usage:     "tear down the endpoint, its config, and its model",
		UsageText: "clarifyctl down --endpoint NAME [options]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "polling interval while waiting for deletion",
				Value: 15 * time.Second,
			},
			&cli.BoolFlag{
				Name:        "keep-config",
				Usage:       "leave the endpoint config in place",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "keep-model",
				Usage:       "leave the model in place",
				HideDefault: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "how long to wait for deletion before giving up",
				Value: 10 * time.Minute,
			},
			&cli.BoolFlag{
				Name:        "wait",
				Usage:       "wait until the endpoint is fully deleted",
				HideDefault: true,
			},
			NewEndpointFlag("down", meta.Config.Source),
			NewProfileFlag("down", meta.Config.Source),
			NewRegionFlag("down", meta.Config.Source),
		},
		Action: downCommandAction,
		Meta:   meta,
	}).Build()
}
