// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisDoc = `{
	"version": "1.0",
	"pre_training_bias_metrics": {
		"label": "churn",
		"facets": {
			"gender": [
				{
					"value_or_threshold": "1",
					"metrics": [
						{"name": "CI", "description": "Class Imbalance (CI)", "value": 0.24},
						{"name": "DPL", "description": "Difference in Positive Proportions in Labels (DPL)", "value": -0.08},
						{"name": "KS", "description": "Kolmogorov-Smirnov Distance (KS)"}
					]
				}
			]
		}
	},
	"post_training_bias_metrics": {
		"label": "churn",
		"facets": {
			"gender": [
				{
					"value_or_threshold": "1",
					"metrics": [
						{"name": "DPPL", "description": "Difference in Positive Proportions in Predicted Labels (DPPL)", "value": 0.11}
					]
				}
			]
		}
	},
	"explanations": {
		"kernel_shap": {
			"churn": {
				"global_shap_values": {
					"age": 0.31,
					"tenure": 0.12
				}
			}
		}
	}
}`

func TestFlattenAnalysis(t *testing.T) {
	metrics := flattenAnalysis([]byte(analysisDoc))

	// KS carries no value and is dropped; the rest survive.
	require.Len(t, metrics, 5)

	byName := map[string]ReportMetric{}
	for _, m := range metrics {
		byName[m.Name] = m
	}

	ci := byName["CI"]
	assert.Equal(t, "pre_training_bias_metrics", ci.Section)
	assert.Equal(t, "gender", ci.Facet)
	assert.Equal(t, "Class Imbalance (CI)", ci.Description)
	assert.Equal(t, 0.24, ci.Metric)

	dpl := byName["DPL"]
	assert.Equal(t, -0.08, dpl.Metric)

	dppl := byName["DPPL"]
	assert.Equal(t, "post_training_bias_metrics", dppl.Section)
	assert.Equal(t, 0.11, dppl.Metric)

	age := byName["age"]
	assert.Equal(t, "shap", age.Section)
	assert.Equal(t, "churn", age.Facet)
	assert.Equal(t, 0.31, age.Metric)

	_, found := byName["KS"]
	assert.False(t, found)
}

func TestNewJobItem(t *testing.T) {
	created := time.Date(2026, 8, 29, 14, 30, 5, 0, time.FixedZone("EST", -5*3600))

	item := newJobItem(types.ProcessingJobSummary{
		ProcessingJobName:   awsv2.String("clarify-bias-2026-08-29-19-30-05"),
		ProcessingJobStatus: types.ProcessingJobStatusCompleted,
		CreationTime:        awsv2.Time(created),
	})

	assert.Equal(t, "clarify-bias-2026-08-29-19-30-05", item.Name)
	assert.Equal(t, "Completed", item.Status)
	assert.Equal(t, created.UTC(), item.Created)
}

func TestNewJobItemNilCreationTime(t *testing.T) {
	item := newJobItem(types.ProcessingJobSummary{
		ProcessingJobName: awsv2.String("clarify-explain-2026-08-29-19-30-05"),
	})

	assert.Equal(t, "clarify-explain-2026-08-29-19-30-05", item.Name)
	assert.True(t, item.Created.IsZero())
}

func TestFlattenAnalysisEmptyDocument(t *testing.T) {
	metrics := flattenAnalysis([]byte(`{}`))
	assert.Empty(t, metrics)
}

func TestFlattenAnalysisBiasOnly(t *testing.T) {
	doc := `{
		"pre_training_bias_metrics": {
			"facets": {
				"age_group": [
					{"metrics": [{"name": "CI", "value": 0.5}]}
				]
			}
		}
	}`

	metrics := flattenAnalysis([]byte(doc))
	require.Len(t, metrics, 1)
	assert.Equal(t, "age_group", metrics[0].Facet)
	assert.Equal(t, 0.5, metrics[0].Metric)
}
