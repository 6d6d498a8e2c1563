// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/clarify"
	"github.com/clarifyctl/clarifyctl/internal/config"
	"github.com/clarifyctl/clarifyctl/internal/meta"
	"github.com/clarifyctl/clarifyctl/internal/sampler"
)

// SampleArtifact represents one file written (and optionally uploaded) by the
// sample command.
type SampleArtifact struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Size     string `json:"size"`
	Location string `json:"location,omitempty"`
}

// sampleDefaultAttrs specifies the default attributes displayed for written
// sample artifacts.
var sampleDefaultAttrs = []string{".path", ".rows", ".size", ".location"}

// sampleCommandAction is the action handler for the "sample" subcommand. It
// reads a validation CSV from a file or stdin, carves out the block-sampled
// subset, and writes it twice: once with the label column for the Clarify
// dataset, once without for endpoint traffic.
func sampleCommandAction(ctx context.Context, cmd *cli.Command) error {
	meta := GetMeta(cmd)
	log.Debugf("Executing action for %v", meta.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "sample") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(SampleArtifact{})) {
		return nil
	}

	config.Config.Namespace = "sample"

	// Get the positional argument (the validation CSV or default to stdin).
	var sampleInput string
	if len(meta.Args) > 2 && meta.Args[2] != "-" {
		sampleInput = meta.Args[2]
	} else {
		sampleInput = "-"
	}

	var input io.ReadCloser
	if sampleInput == "-" {
		input = os.Stdin
	} else {
		if info, err := os.Stat(sampleInput); err != nil {
			return fmt.Errorf("validation file does not exist: %s", sampleInput)
		} else if info.IsDir() {
			return fmt.Errorf("validation input cannot be a directory: %s", sampleInput)
		}
		f, err := os.Open(sampleInput)
		if err != nil {
			return fmt.Errorf("failed to open validation file: %w", err)
		}
		defer f.Close()
		input = f
	}

	blocks := sampler.DefaultBlocks
	if spec := cmd.String("blocks"); spec != "" {
		var err error
		if blocks, err = sampler.ParseBlocks(spec); err != nil {
			return err
		}
	}

	sample, err := sampler.Read(input, blocks, cmd.String("label"))
	if err != nil {
		return err
	}
	if len(sample.Rows) == 0 {
		return fmt.Errorf("no rows sampled; input may be smaller than the first block")
	}

	out := cmd.String("out")
	labeled := out + ".csv"
	features := out + "-features.csv"

	artifacts := make([]SampleArtifact, 0, 2)
	for _, spec := range []struct {
		path      string
		withLabel bool
	}{
		{labeled, true},
		{features, false},
	} {
		f, err := os.Create(spec.path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", spec.path, err)
		}
		if err := sample.WriteCSV(f, spec.withLabel); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		info, err := os.Stat(spec.path)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, SampleArtifact{
			Path: spec.path,
			Rows: len(sample.Rows),
			Size: humanize.Bytes(uint64(info.Size())),
		})
	}

	if cmd.Bool("upload") {
		if err := uploadArtifacts(ctx, cmd, artifacts); err != nil {
			return err
		}
	}

	attrs := BuildAttrs(cmd, sampleDefaultAttrs...)
	return EmitJSONSlice(artifacts, attrs, cmd)
}

// uploadArtifacts pushes the written sample files to the data prefix in S3
// and records the resulting URIs on the artifacts.
func uploadArtifacts(ctx context.Context, cmd *cli.Command, artifacts []SampleArtifact) error {
	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	bucket, err := ResolveBucket(ctx, cfg, cmd)
	if err != nil {
		return err
	}
	s3c := aws.NewS3(cfg)

	for i, a := range artifacts {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return err
		}
		key := path.Join(cmd.String("prefix"), "data", path.Base(a.Path))
		uri, err := clarify.UploadDocument(ctx, s3c, bucket, key, data, "text/csv")
		if err != nil {
			return err
		}
		artifacts[i].Location = uri
	}

	return nil
}

// sampleCommandBuilder constructs the cli.Command for "sample", wiring
// metadata, flags, and action handlers.
func sampleCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "sample",
		Usage:     "carve a block sample out of a validation CSV",
		UsageText: "clarifyctl sample [FILE|-] [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "blocks",
				Usage: "comma-separated start:len row blocks to sample",
				Validator: func(value string) error {
					return FlagValidators(value, BlocksValidator)
				},
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "label column name. Defaults to the first column",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "basename for the written sample files",
				Value: "validation-sample",
			},
			&cli.BoolFlag{
				Name:        "upload",
				Aliases:     []string{"u"},
				Usage:       "upload the sample files to S3",
				HideDefault: true,
			},
			NewBucketFlag("sample", meta.Config.Source),
			NewPrefixFlag("sample", meta.Config.Source),
			NewProfileFlag("sample", meta.Config.Source),
			NewRegionFlag("sample", meta.Config.Source),
		},
		Action: sampleCommandAction,
		Meta:   meta,
	}).Build()
}
