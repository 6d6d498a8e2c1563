// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clarify

import (
	"encoding/json"
	"fmt"
)

// AnalysisConfig is the document the Clarify processing container reads from
// /opt/ml/processing/input/config/analysis_config.json. Field names and
// layout are fixed by the service contract; the bias and SHAP sections are
// optional and included per run kind.
type AnalysisConfig struct {
	DatasetType            string      `json:"dataset_type"`
	Headers                []string    `json:"headers"`
	Label                  string      `json:"label"`
	LabelValuesOrThreshold []float64   `json:"label_values_or_threshold,omitempty"`
	Facet                  []FacetSpec `json:"facet,omitempty"`
	ProbabilityThreshold   float64     `json:"probability_threshold,omitempty"`
	Methods                Methods     `json:"methods"`
	Predictor              *Predictor  `json:"predictor,omitempty"`
}

// FacetSpec names the sensitive column and the value(s) of its disadvantaged
// group.
type FacetSpec struct {
	NameOrIndex      string    `json:"name_or_index"`
	ValueOrThreshold []float64 `json:"value_or_threshold,omitempty"`
}

// Methods selects which analyses the container runs.
type Methods struct {
	PreTrainingBias  *BiasMethods `json:"pre_training_bias,omitempty"`
	PostTrainingBias *BiasMethods `json:"post_training_bias,omitempty"`
	SHAP             *SHAPConfig  `json:"shap,omitempty"`
	Report           *Report      `json:"report,omitempty"`
}

// BiasMethods selects the bias metric set; "all" computes every metric the
// service supports.
type BiasMethods struct {
	Methods string `json:"methods"`
}

// SHAPConfig configures the kernel SHAP estimation.
type SHAPConfig struct {
	Baseline            [][]float64 `json:"baseline"`
	NumSamples          int         `json:"num_samples"`
	AggMethod           string      `json:"agg_method"`
	SaveLocalShapValues bool        `json:"save_local_shap_values"`
}

// Report names the rendered report artifact.
type Report struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Predictor describes the shadow endpoint Clarify stands up to obtain
// predictions for post-training metrics and SHAP.
type Predictor struct {
	ModelName            string `json:"model_name"`
	InstanceType         string `json:"instance_type"`
	InitialInstanceCount int    `json:"initial_instance_count"`
	AcceptType           string `json:"accept_type,omitempty"`
	ContentType          string `json:"content_type,omitempty"`
}

// BiasSpec carries the caller-facing knobs for a bias run.
type BiasSpec struct {
	Headers              []string
	Label                string
	LabelValues          []float64
	FacetName            string
	FacetValues          []float64
	ProbabilityThreshold float64
	ModelName            string
	InstanceType         string
	InstanceCount        int
}

// ExplainSpec carries the caller-facing knobs for a SHAP explainability run.
type ExplainSpec struct {
	Headers       []string
	Label         string
	Baseline      []float64
	NumSamples    int
	AggMethod     string
	ModelName     string
	InstanceType  string
	InstanceCount int
}

// NewBiasConfig builds the analysis document for a pre- plus post-training
// bias run against the given shadow model.
func NewBiasConfig(spec BiasSpec) (*AnalysisConfig, error) {
	if spec.Label == "" {
		return nil, fmt.Errorf("bias config requires a label column")
	}
	if spec.FacetName == "" {
		return nil, fmt.Errorf("bias config requires a facet column")
	}
	if spec.ModelName == "" {
		return nil, fmt.Errorf("bias config requires a model name")
	}

	cfg := &AnalysisConfig{
		DatasetType:            "text/csv",
		Headers:                spec.Headers,
		Label:                  spec.Label,
		LabelValuesOrThreshold: spec.LabelValues,
		Facet: []FacetSpec{{
			NameOrIndex:      spec.FacetName,
			ValueOrThreshold: spec.FacetValues,
		}},
		ProbabilityThreshold: spec.ProbabilityThreshold,
		Methods: Methods{
			PreTrainingBias:  &BiasMethods{Methods: "all"},
			PostTrainingBias: &BiasMethods{Methods: "all"},
			Report:           &Report{Name: "report", Title: "Bias Report"},
		},
		Predictor: newPredictor(spec.ModelName, spec.InstanceType, spec.InstanceCount),
	}

	return cfg, nil
}

// NewExplainConfig builds the analysis document for a SHAP run. The baseline
// is a single reference row; the container perturbs features against it.
func NewExplainConfig(spec ExplainSpec) (*AnalysisConfig, error) {
	if spec.Label == "" {
		return nil, fmt.Errorf("explain config requires a label column")
	}
	if len(spec.Baseline) == 0 {
		return nil, fmt.Errorf("explain config requires a baseline row")
	}
	if spec.ModelName == "" {
		return nil, fmt.Errorf("explain config requires a model name")
	}

	numSamples := spec.NumSamples
	if numSamples <= 0 {
		numSamples = 100
	}
	aggMethod := spec.AggMethod
	if aggMethod == "" {
		aggMethod = "mean_abs"
	}

	cfg := &AnalysisConfig{
		DatasetType: "text/csv",
		Headers:     spec.Headers,
		Label:       spec.Label,
		Methods: Methods{
			SHAP: &SHAPConfig{
				Baseline:            [][]float64{spec.Baseline},
				NumSamples:          numSamples,
				AggMethod:           aggMethod,
				SaveLocalShapValues: true,
			},
			Report: &Report{Name: "report", Title: "Explainability Report"},
		},
		Predictor: newPredictor(spec.ModelName, spec.InstanceType, spec.InstanceCount),
	}

	return cfg, nil
}

// Marshal renders the document as indented JSON, the form uploaded to S3 and
// shown with --dry-run.
func (c *AnalysisConfig) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis config: %w", err)
	}
	return data, nil
}

func newPredictor(model, instanceType string, count int) *Predictor {
	if instanceType == "" {
		instanceType = "ml.m5.xlarge"
	}
	if count <= 0 {
		count = 1
	}
	return &Predictor{
		ModelName:            model,
		InstanceType:         instanceType,
		InitialInstanceCount: count,
		AcceptType:           "text/csv",
		ContentType:          "text/csv",
	}
}
