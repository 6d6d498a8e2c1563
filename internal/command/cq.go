// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/capture"
	"github.com/clarifyctl/clarifyctl/internal/discover"
	"github.com/clarifyctl/clarifyctl/internal/meta"
	"github.com/clarifyctl/clarifyctl/internal/poll"
)

// cqDefaultAttrs specifies the default attributes displayed for capture
// records in the "cq" command output.
var cqDefaultAttrs = []string{
	".eventId:event",
	".inferenceTime:time:T",
	".input",
	".output",
}

// cqObjectAttrs specifies the default attributes displayed when listing
// capture objects instead of records.
var cqObjectAttrs = []string{
	".Key:key",
	".Size:size",
	".LastModified:modified:T",
}

// cqCommandAction is the action handler for the "cq" subcommand. It locates
// the endpoint's data-capture destination in S3, optionally waits for the
// first file to land, and renders decoded request/response records.
func cqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "cq") {
		return nil
	}
	schemaType := reflect.TypeOf(capture.Record{})
	if cmd.Bool("objects") {
		schemaType = reflect.TypeOf(capture.Object{})
	}
	if DumpSchemaIfRequested(cmd, schemaType) {
		return nil
	}

	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	s3c := aws.NewS3(cfg)

	// Capture location: explicit URI or derived from the endpoint's
	// data-capture config.
	uri := cmd.String("capture-uri")
	var keyPrefix string
	if uri == "" {
		name, err := ResolveEndpointName(ctx, cfg, cmd)
		if err != nil {
			return err
		}
		ep, err := discover.ResolveEndpoint(ctx, aws.NewSageMaker(cfg), name)
		if err != nil {
			return err
		}
		if ep.CapturePrefix == "" {
			return fmt.Errorf("data capture is not configured on endpoint %s", ep.Name)
		}
		uri = ep.CapturePrefix
		bucket, dest, err := capture.ParseS3URI(uri)
		if err != nil {
			return err
		}
		keyPrefix = capture.Prefix(dest, ep.Name, ep.VariantName)
		uri = "s3://" + bucket + "/" + keyPrefix
	}

	bucket, keyPrefix, err := capture.ParseS3URI(uri)
	if err != nil {
		return err
	}

	// Capture files land asynchronously, usually within a few minutes of the
	// first invocation. --wait polls until at least one shows up.
	var objects []capture.Object
	if budget := cmd.Duration("wait"); budget > 0 {
		err := poll.Wait(ctx, "capture files", cmd.Duration("interval"), budget,
			func(ctx context.Context) (bool, string, error) {
				objects, err = capture.List(ctx, s3c, bucket, keyPrefix)
				if err != nil {
					return false, "", err
				}
				return len(objects) > 0, fmt.Sprintf("%d files", len(objects)), nil
			})
		if err != nil {
			return err
		}
	} else {
		objects, err = capture.List(ctx, s3c, bucket, keyPrefix)
		if err != nil {
			return err
		}
	}

	if cmd.Bool("objects") {
		attrs := BuildAttrs(cmd, cqObjectAttrs...)
		return EmitJSONSlice(objects, attrs, cmd)
	}

	var records []capture.Record
	for _, obj := range objects {
		body, err := capture.ReadObject(ctx, s3c, bucket, obj.Key)
		if err != nil {
			return err
		}
		records = append(records, capture.DecodeLines(obj.Key, body)...)
	}

	if cmd.Bool("dump") {
		return dumpRecords(records)
	}

	attrs := BuildAttrs(cmd, cqDefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	return EmitJSONSlice(records, attrs, cmd)
}

// dumpRecords pretty-prints the capture documents exactly as the endpoint
// wrote them, one indented JSON document per line, bypassing the columnar
// pipeline.
func dumpRecords(records []capture.Record) error {
	for _, r := range records {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(r.Raw), "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

// cqCommandBuilder constructs the cli.Command for "cq", wiring metadata,
// flags, and action handlers.
func cqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "cq",
		Usage:     "capture record query",
		UsageText: "clarifyctl cq [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "capture-uri",
				Usage: "S3 URI of the capture destination. Overrides endpoint discovery",
			},
			&cli.BoolFlag{
				Name:        "dump",
				Usage:       "pretty-print the raw capture documents instead of columns",
				HideDefault: true,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "polling interval while waiting",
				Value: 15 * time.Second,
			},
			&cli.BoolFlag{
				Name:        "objects",
				Usage:       "list capture files instead of records",
				HideDefault: true,
			},
			&cli.DurationFlag{
				Name:  "wait",
				Usage: "how long to wait for the first capture file to land",
			},
			NewEndpointFlag("cq", meta.Config.Source),
			NewProfileFlag("cq", meta.Config.Source),
			NewRegionFlag("cq", meta.Config.Source),
		},
		Action: cqCommandAction,
		Meta:   meta,
	}).Build()
}
