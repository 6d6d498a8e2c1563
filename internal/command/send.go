// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	smrtv2 "github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/config"
	"github.com/clarifyctl/clarifyctl/internal/meta"
	"github.com/clarifyctl/clarifyctl/internal/poll"
)

// Prediction is one request/response pair from endpoint traffic.
type Prediction struct {
	Row        int    `json:"row"`
	Payload    string `json:"payload"`
	Prediction string `json:"prediction"`
}

// sendDefaultAttrs specifies the default attributes displayed for endpoint
// invocations.
var sendDefaultAttrs = []string{".row", ".prediction"}

// sendCommandAction is the action handler for the "send" subcommand. It waits
// for the endpoint to come InService, then replays each feature row against
// it, which both smoke-tests the model and seeds data capture.
func sendCommandAction(ctx context.Context, cmd *cli.Command) error {
	meta := GetMeta(cmd)
	log.Debugf("Executing action for %v", meta.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "send") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(Prediction{})) {
		return nil
	}

	config.Config.Namespace = "send"

	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	name, err := ResolveEndpointName(ctx, cfg, cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("no-wait") {
		if err := waitForInService(ctx, cmd, aws.NewSageMaker(cfg), name); err != nil {
			return err
		}
	}

	rows, err := readFeatureRows(cmd)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no feature rows to send")
	}

	runtime := aws.NewSageMakerRuntime(cfg)
	pause := cmd.Duration("sleep")

	predictions := make([]Prediction, 0, len(rows))
	for i, row := range rows {
		out, err := runtime.InvokeEndpoint(ctx, &smrtv2.InvokeEndpointInput{
			EndpointName: awsv2.String(name),
			ContentType:  awsv2.String("text/csv"),
			Body:         []byte(row),
		})
		if err != nil {
			return fmt.Errorf("failed to invoke endpoint %s (row %d): %w", name, i, err)
		}
		predictions = append(predictions, Prediction{
			Row:        i,
			Payload:    row,
			Prediction: strings.TrimSpace(string(out.Body)),
		})

		if pause > 0 && i < len(rows)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
	}

	log.Infof("sent %d rows to %s", len(predictions), name)

	attrs := BuildAttrs(cmd, sendDefaultAttrs...)
	return EmitJSONSlice(predictions, attrs, cmd)
}

// waitForInService polls the endpoint until it reports InService. Creation
// takes several minutes, so the default budget is generous.
func waitForInService(ctx context.Context, cmd *cli.Command, client *smv2.Client, name string) error {
	return poll.Wait(ctx, "endpoint "+name, cmd.Duration("interval"), cmd.Duration("timeout"),
		func(ctx context.Context) (bool, string, error) {
			desc, err := client.DescribeEndpoint(ctx, &smv2.DescribeEndpointInput{
				EndpointName: awsv2.String(name),
			})
			if err != nil {
				return false, "", err
			}
			switch desc.EndpointStatus {
			case types.EndpointStatusInService:
				return true, string(desc.EndpointStatus), nil
			case types.EndpointStatusFailed:
				return false, "", fmt.Errorf("endpoint %s failed: %s",
					name, awsv2.ToString(desc.FailureReason))
			}
			return false, string(desc.EndpointStatus), nil
		})
}

// readFeatureRows loads the features CSV and returns its data rows as raw
// comma-separated payloads. The header row is skipped unless --no-header.
func readFeatureRows(cmd *cli.Command) ([]string, error) {
	source := cmd.String("file")

	var input io.ReadCloser
	if source == "-" {
		input = os.Stdin
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open features file: %w", err)
		}
		defer f.Close()
		input = f
	}

	var rows []string
	first := true
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if !cmd.Bool("no-header") {
				continue
			}
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// sendCommandBuilder constructs the cli.Command for "send", wiring metadata,
// flags, and action handlers.
func sendCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "send",
		Usage:     "send sampled feature rows to the endpoint",
		UsageText: "clarifyctl send [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "features CSV to send, or - for stdin",
				Value: "validation-sample-features.csv",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "polling interval while waiting for InService",
				Value: 15 * time.Second,
			},
			&cli.BoolFlag{
				Name:        "no-header",
				Usage:       "treat the first line as data, not a header",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "no-wait",
				Usage:       "skip waiting for the endpoint to come InService",
				HideDefault: true,
			},
			&cli.DurationFlag{
				Name:  "sleep",
				Usage: "pause between invocations",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "how long to wait for InService before giving up",
				Value: 15 * time.Minute,
			},
			NewEndpointFlag("send", meta.Config.Source),
			NewProfileFlag("send", meta.Config.Source),
			NewRegionFlag("send", meta.Config.Source),
		},
		Action: sendCommandAction,
		Meta:   meta,
	}).Build()
}
