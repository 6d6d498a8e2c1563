// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package clarify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewBiasConfig(t *testing.T) {
	cfg, err := NewBiasConfig(BiasSpec{
		Headers:              []string{"churn", "age", "gender", "tenure"},
		Label:                "churn",
		LabelValues:          []float64{1},
		FacetName:            "gender",
		FacetValues:          []float64{1},
		ProbabilityThreshold: 0.5,
		ModelName:            "churn-model",
	})
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "text/csv", doc.Get("dataset_type").String())
	assert.Equal(t, "churn", doc.Get("label").String())
	assert.Equal(t, "gender", doc.Get("facet.0.name_or_index").String())
	assert.Equal(t, float64(1), doc.Get("facet.0.value_or_threshold.0").Float())
	assert.Equal(t, float64(1), doc.Get("label_values_or_threshold.0").Float())
	assert.Equal(t, 0.5, doc.Get("probability_threshold").Float())
	assert.Equal(t, "all", doc.Get("methods.pre_training_bias.methods").String())
	assert.Equal(t, "all", doc.Get("methods.post_training_bias.methods").String())
	assert.False(t, doc.Get("methods.shap").Exists())
	assert.Equal(t, "churn-model", doc.Get("predictor.model_name").String())
	assert.Equal(t, "ml.m5.xlarge", doc.Get("predictor.instance_type").String())
	assert.Equal(t, int64(1), doc.Get("predictor.initial_instance_count").Int())
	assert.Equal(t, "text/csv", doc.Get("predictor.content_type").String())

	headers := doc.Get("headers").Array()
	require.Len(t, headers, 4)
	assert.Equal(t, "churn", headers[0].String())
}

func TestNewBiasConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		spec BiasSpec
	}{
		{
			name: "missing label",
			spec: BiasSpec{FacetName: "gender", ModelName: "m"},
		},
		{
			name: "missing facet",
			spec: BiasSpec{Label: "churn", ModelName: "m"},
		},
		{
			name: "missing model",
			spec: BiasSpec{Label: "churn", FacetName: "gender"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBiasConfig(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestNewExplainConfig(t *testing.T) {
	cfg, err := NewExplainConfig(ExplainSpec{
		Headers:   []string{"churn", "age", "tenure"},
		Label:     "churn",
		Baseline:  []float64{35, 12},
		ModelName: "churn-model",
	})
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "churn", doc.Get("label").String())
	assert.False(t, doc.Get("methods.pre_training_bias").Exists())
	assert.False(t, doc.Get("methods.post_training_bias").Exists())
	assert.Equal(t, float64(35), doc.Get("methods.shap.baseline.0.0").Float())
	assert.Equal(t, float64(12), doc.Get("methods.shap.baseline.0.1").Float())
	assert.Equal(t, int64(100), doc.Get("methods.shap.num_samples").Int())
	assert.Equal(t, "mean_abs", doc.Get("methods.shap.agg_method").String())
	assert.True(t, doc.Get("methods.shap.save_local_shap_values").Bool())
	assert.Equal(t, "churn-model", doc.Get("predictor.model_name").String())
}

func TestNewExplainConfigOverrides(t *testing.T) {
	cfg, err := NewExplainConfig(ExplainSpec{
		Headers:       []string{"churn", "age"},
		Label:         "churn",
		Baseline:      []float64{35},
		NumSamples:    500,
		AggMethod:     "median",
		ModelName:     "churn-model",
		InstanceType:  "ml.c5.xlarge",
		InstanceCount: 2,
	})
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, int64(500), doc.Get("methods.shap.num_samples").Int())
	assert.Equal(t, "median", doc.Get("methods.shap.agg_method").String())
	assert.Equal(t, "ml.c5.xlarge", doc.Get("predictor.instance_type").String())
	assert.Equal(t, int64(2), doc.Get("predictor.initial_instance_count").Int())
}

func TestNewExplainConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		spec ExplainSpec
	}{
		{
			name: "missing label",
			spec: ExplainSpec{Baseline: []float64{1}, ModelName: "m"},
		},
		{
			name: "missing baseline",
			spec: ExplainSpec{Label: "churn", ModelName: "m"},
		},
		{
			name: "missing model",
			spec: ExplainSpec{Label: "churn", Baseline: []float64{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExplainConfig(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestMarshalIsIndented(t *testing.T) {
	cfg, err := NewBiasConfig(BiasSpec{
		Headers:   []string{"churn", "gender"},
		Label:     "churn",
		FacetName: "gender",
		ModelName: "m",
	})
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"dataset_type\"")
}
