// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/clarify"
	"github.com/clarifyctl/clarifyctl/internal/discover"
	"github.com/clarifyctl/clarifyctl/internal/poll"
)

// jobDataset is the tabular input handed to a Clarify processing job: column
// names plus raw CSV data rows, or a pointer at an object already in S3.
type jobDataset struct {
	headers []string
	rows    []string
	uri     string
}

// jobResultAttrs specifies the default attributes displayed for a finished
// (or launched) Clarify job.
var jobResultAttrs = []string{".Name:name", ".State:state", ".OutputS3URI:output"}

// runClarifyJob drives one Clarify processing job end to end: resolve the
// endpoint and its model, stage the dataset and analysis document in S3,
// create the job, and optionally wait for it to finish. buildConfig supplies
// the kind-specific analysis document.
func runClarifyJob(
	ctx context.Context,
	cmd *cli.Command,
	kind string,
	buildConfig func(*cli.Command, *jobDataset, string) (*clarify.AnalysisConfig, error),
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, kind) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(clarify.Status{})) {
		return nil
	}

	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	smc := aws.NewSageMaker(cfg)

	name, err := ResolveEndpointName(ctx, cfg, cmd)
	if err != nil {
		return err
	}
	ep, err := discover.ResolveEndpoint(ctx, smc, name)
	if err != nil {
		return err
	}
	if ep.ModelName == "" {
		return fmt.Errorf("endpoint %s has no model to analyze", ep.Name)
	}

	role := cmd.String("role")
	if role == "" {
		if role, err = discover.ModelExecutionRole(ctx, smc, ep.ModelName); err != nil {
			return err
		}
	}

	ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	doc, err := buildConfig(cmd, ds, ep.ModelName)
	if err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	bucket, err := ResolveBucket(ctx, cfg, cmd)
	if err != nil {
		return err
	}
	s3c := aws.NewS3(cfg)

	jobName := clarify.JobName("clarify-"+kind, time.Now())
	base := path.Join(cmd.String("prefix"), jobName)

	datasetURI := ds.uri
	if datasetURI == "" {
		// The analysis document names the columns, so the staged object holds
		// data rows only.
		body := strings.Join(ds.rows, "\n") + "\n"
		datasetURI, err = clarify.UploadDocument(ctx, s3c,
			bucket, path.Join(base, "dataset", "validation.csv"), []byte(body), "text/csv")
		if err != nil {
			return err
		}
	}

	configURI, err := clarify.UploadDocument(ctx, s3c,
		bucket, path.Join(base, "config", "analysis_config.json"), data, "application/json")
	if err != nil {
		return err
	}

	outputURI := "s3://" + bucket + "/" + path.Join(base, "output")

	spec := clarify.JobSpec{
		Name:         jobName,
		Region:       cfg.Region,
		RoleArn:      role,
		DatasetS3URI: datasetURI,
		ConfigS3URI:  configURI,
		OutputS3URI:  outputURI,
		InstanceType: cmd.String("instance-type"),
	}
	spec.InstanceCount, spec.VolumeSizeGB, spec.MaxRuntimeSecs = jobResources(cmd)
	arn, err := clarify.Run(ctx, smc, spec)
	if err != nil {
		return err
	}
	log.Infof("created processing job %s (%s)", jobName, arn)

	status := clarify.Status{Name: jobName, OutputS3URI: outputURI}
	if !cmd.Bool("no-wait") {
		if status, err = waitForJob(ctx, cmd, smc, jobName); err != nil {
			return err
		}
		log.Infof("job %s finished: %s", jobName, status.State)
		if status.FailureReason != "" {
			return fmt.Errorf("job %s failed: %s", jobName, status.FailureReason)
		}
	}

	attrs := BuildAttrs(cmd, jobResultAttrs...)
	return EmitJSONSlice([]clarify.Status{status}, attrs, cmd)
}

// jobResources reads the cluster sizing flags. The SDK takes these as int32;
// the flag layer hands back int and a duration.
func jobResources(cmd *cli.Command) (instanceCount, volumeGB, maxRuntimeSecs int32) {
	return int32(cmd.Int("instance-count")),
		int32(cmd.Int("volume")),
		int32(cmd.Duration("max-runtime").Seconds())
}

// waitForJob polls the processing job until it reaches a terminal state.
func waitForJob(ctx context.Context, cmd *cli.Command, client *smv2.Client, jobName string) (clarify.Status, error) {
	var status clarify.Status
	err := poll.Wait(ctx, "job "+jobName, cmd.Duration("interval"), cmd.Duration("timeout"),
		func(ctx context.Context) (bool, string, error) {
			var err error
			status, err = clarify.Describe(ctx, client, jobName)
			if err != nil {
				return false, "", err
			}
			return status.Terminal(), string(status.State), nil
		})
	return status, err
}

// loadDataset resolves the --dataset/--dataset-uri flags into a jobDataset.
// Local files carry their own header row; an S3 URI needs --headers.
func loadDataset(cmd *cli.Command) (*jobDataset, error) {
	if uri := cmd.String("dataset-uri"); uri != "" {
		spec := cmd.String("headers")
		if spec == "" {
			return nil, fmt.Errorf("--dataset-uri requires --headers naming its columns")
		}
		ds := &jobDataset{uri: uri}
		for _, h := range strings.Split(spec, ",") {
			ds.headers = append(ds.headers, strings.TrimSpace(h))
		}
		return ds, nil
	}

	source := cmd.String("dataset")
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", source, err)
	}

	ds := &jobDataset{}
	for line := range strings.SplitSeq(strings.TrimSpace(string(raw)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ds.headers == nil {
			for _, h := range strings.Split(line, ",") {
				ds.headers = append(ds.headers, strings.TrimSpace(h))
			}
			continue
		}
		ds.rows = append(ds.rows, line)
	}
	if len(ds.rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no data rows", source)
	}

	return ds, nil
}

// newClarifyJobFlags returns the flag set shared by the bias and explain
// commands.
func newClarifyJobFlags(ns, cfgFile string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "labeled validation CSV to stage as the analysis dataset",
			Value: "validation-sample.csv",
		},
		&cli.StringFlag{
			Name:  "dataset-uri",
			Usage: "S3 URI of an already-staged dataset. Overrides --dataset",
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "print the analysis document without creating a job",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  "headers",
			Usage: "comma-separated column names, required with --dataset-uri",
		},
		&cli.IntFlag{
			Name:  "instance-count",
			Usage: "processing cluster size",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "instance-type",
			Usage: "processing instance type",
			Value: "ml.m5.xlarge",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "polling interval while waiting for the job",
			Value: 15 * time.Second,
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "label column name. Defaults to the first column",
		},
		&cli.DurationFlag{
			Name:  "max-runtime",
			Usage: "processing job runtime cap",
			Value: time.Hour,
		},
		&cli.BoolFlag{
			Name:        "no-wait",
			Usage:       "create the job and return without waiting",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  "role",
			Usage: "execution role ARN. Defaults to the model's role",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "how long to wait for the job before giving up",
			Value: 2 * time.Hour,
		},
		&cli.IntFlag{
			Name:  "volume",
			Usage: "processing volume size in GB",
			Value: 30,
		},
		NewBucketFlag(ns, cfgFile),
		NewEndpointFlag(ns, cfgFile),
		NewPrefixFlag(ns, cfgFile),
		NewProfileFlag(ns, cfgFile),
		NewRegionFlag(ns, cfgFile),
	}
}

// labelColumn returns the label column name for the dataset, honoring the
// --label override.
func labelColumn(cmd *cli.Command, ds *jobDataset) string {
	if label := cmd.String("label"); label != "" {
		return label
	}
	if len(ds.headers) > 0 {
		return ds.headers[0]
	}
	return ""
}
