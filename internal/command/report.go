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

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/clarifyctl/clarifyctl/internal/aws"
	"github.com/clarifyctl/clarifyctl/internal/capture"
	"github.com/clarifyctl/clarifyctl/internal/clarify"
	"github.com/clarifyctl/clarifyctl/internal/differ"
	"github.com/clarifyctl/clarifyctl/internal/meta"
)

// ReportMetric is one flattened metric row out of a Clarify analysis.json.
type ReportMetric struct {
	Section     string  `json:"section"`
	Facet       string  `json:"facet,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Metric      float64 `json:"metric"`
}

// reportDefaultAttrs specifies the default attributes displayed for report
// metrics.
var reportDefaultAttrs = []string{".section", ".facet", ".name", ".metric"}

// reportCommandAction is the action handler for the "report" subcommand. It
// pulls the analysis.json a Clarify job wrote and renders its metrics, or
// with --diff compares two runs.
func reportCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "report") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(ReportMetric{})) {
		return nil
	}

	cfg, err := NewAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}
	smc := aws.NewSageMaker(cfg)
	s3c := aws.NewS3(cfg)

	var jobs []string
	if spec := cmd.String("job"); spec != "" {
		for _, j := range strings.Split(spec, ",") {
			jobs = append(jobs, strings.TrimSpace(j))
		}
	}

	if cmd.Bool("diff") {
		return reportDiff(ctx, cmd, smc, s3c, jobs)
	}

	if len(jobs) == 0 {
		latest, err := completedClarifyJobs(ctx, smc, 1)
		if err != nil {
			return err
		}
		if len(latest) == 0 {
			return fmt.Errorf("no completed Clarify jobs found")
		}
		jobs = []string{latest[0].Name}
	}

	doc, err := fetchAnalysis(ctx, smc, s3c, jobs[0])
	if err != nil {
		return err
	}

	// Raw passes the analysis document through untouched.
	if cmd.String("output") == "raw" {
		_, err := os.Stdout.Write(doc)
		return err
	}

	metrics := flattenAnalysis(doc)
	attrs := BuildAttrs(cmd, reportDefaultAttrs...)
	return EmitJSONSlice(metrics, attrs, cmd)
}

// reportDiff compares the analysis documents of two jobs. Missing job names
// are picked interactively from the completed Clarify jobs.
func reportDiff(
	ctx context.Context,
	cmd *cli.Command,
	smc *smv2.Client,
	s3c *s3v2.Client,
	jobs []string,
) error {
	if len(jobs) < 2 {
		candidates, err := completedClarifyJobs(ctx, smc, 0)
		if err != nil {
			return err
		}
		picked := differ.SelectJobs(candidates)
		jobs = nil
		for _, p := range picked {
			jobs = append(jobs, p.Name)
		}
	}
	if len(jobs) != 2 {
		return fmt.Errorf("diff needs exactly two jobs, got %d", len(jobs))
	}

	reports := make([][]byte, 0, 2)
	for _, job := range jobs {
		doc, err := fetchAnalysis(ctx, smc, s3c, job)
		if err != nil {
			return err
		}
		reports = append(reports, doc)
	}

	return differ.Diff(cmd, reports)
}

// newJobItem maps a processing job summary onto a picker row. Created stays
// a time.Time; the picker renders it.
func newJobItem(job types.ProcessingJobSummary) differ.JobItem {
	item := differ.JobItem{
		Name:   awsv2.ToString(job.ProcessingJobName),
		Status: string(job.ProcessingJobStatus),
	}
	if job.CreationTime != nil {
		item.Created = job.CreationTime.UTC()
	}
	return item
}

// completedClarifyJobs lists completed processing jobs with the clarify-
// name prefix, newest first. A limit of zero returns all of them.
func completedClarifyJobs(ctx context.Context, client *smv2.Client, limit int) ([]differ.JobItem, error) {
	var items []differ.JobItem

	paginator := smv2.NewListProcessingJobsPaginator(client, &smv2.ListProcessingJobsInput{
		NameContains: awsv2.String("clarify-"),
		StatusEquals: types.ProcessingJobStatusCompleted,
		SortBy:       types.SortByCreationTime,
		SortOrder:    types.SortOrderDescending,
		MaxResults:   awsv2.Int32(DefaultMaxResults),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list processing jobs: %w", err)
		}
		for _, job := range page.ProcessingJobSummaries {
			items = append(items, newJobItem(job))
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}

	return items, nil
}

// fetchAnalysis reads the analysis.json beneath the job's output URI. Output
// of a finished job never changes, so the read goes through the object cache.
func fetchAnalysis(ctx context.Context, smc *smv2.Client, s3c *s3v2.Client, job string) ([]byte, error) {
	status, err := clarify.Describe(ctx, smc, job)
	if err != nil {
		return nil, err
	}
	if status.OutputS3URI == "" {
		return nil, fmt.Errorf("job %s has no output location", job)
	}

	bucket, key, err := capture.ParseS3URI(status.OutputS3URI)
	if err != nil {
		return nil, err
	}

	return capture.ReadObject(ctx, s3c, bucket, path.Join(key, "analysis.json"))
}

// flattenAnalysis walks the analysis document and flattens every bias metric
// and global SHAP value into rows.
func flattenAnalysis(doc []byte) []ReportMetric {
	var metrics []ReportMetric
	root := gjson.ParseBytes(doc)

	for _, section := range []string{"pre_training_bias_metrics", "post_training_bias_metrics"} {
		root.Get(section + ".facets").ForEach(func(facet, entries gjson.Result) bool {
			entries.ForEach(func(_, entry gjson.Result) bool {
				entry.Get("metrics").ForEach(func(_, m gjson.Result) bool {
					if !m.Get("value").Exists() {
						return true
					}
					metrics = append(metrics, ReportMetric{
						Section:     section,
						Facet:       facet.String(),
						Name:        m.Get("name").String(),
						Description: m.Get("description").String(),
						Metric:      m.Get("value").Float(),
					})
					return true
				})
				return true
			})
			return true
		})
	}

	root.Get("explanations.kernel_shap").ForEach(func(label, entry gjson.Result) bool {
		entry.Get("global_shap_values").ForEach(func(feature, value gjson.Result) bool {
			metrics = append(metrics, ReportMetric{
				Section: "shap",
				Facet:   label.String(),
				Name:    feature.String(),
				Metric:  value.Float(),
			})
			return true
		})
		return true
	})

	return metrics
}

// reportCommandBuilder constructs the cli.Command for "report", wiring
// metadata, flags, and action handlers.
func reportCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "report",
		Usage:     "render or diff Clarify analysis reports",
		UsageText: "clarifyctl report [--job NAME[,NAME]] [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "diff",
				Usage:       "compare the reports of two jobs",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:   "diff_filter",
				Usage:  "comma-separated keys to drop from diff output",
				Value:  "version",
				Hidden: true,
			},
			&cli.StringFlag{
				Name:    "job",
				Aliases: []string{"j"},
				Usage:   "job name(s). Defaults to the latest completed Clarify job",
			},
			NewProfileFlag("report", meta.Config.Source),
			NewRegionFlag("report", meta.Config.Source),
		},
		Action: reportCommandAction,
		Meta:   meta,
	}).Build()
}
