// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clarify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/clarifyctl/clarifyctl/internal/log"
)

// Container-side paths fixed by the Clarify processing image.
const (
	configLocalPath  = "/opt/ml/processing/input/config"
	datasetLocalPath = "/opt/ml/processing/input/data"
	outputLocalPath  = "/opt/ml/processing/output"
)

// JobSpec is everything needed to launch one Clarify processing job. The
// S3 URIs must already hold the dataset and the analysis config document.
type JobSpec struct {
	Name           string
	Region         string
	RoleArn        string
	DatasetS3URI   string
	ConfigS3URI    string
	OutputS3URI    string
	InstanceType   string
	InstanceCount  int32
	VolumeSizeGB   int32
	MaxRuntimeSecs int32
}

// JobName derives a unique processing job name from a prefix. SageMaker job
// names must be unique per account, so a timestamp suffix is appended.
func JobName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, now.UTC().Format("2006-01-02-15-04-05"))
}

// UploadDocument puts a document (dataset CSV or analysis config) at the
// given bucket/key.
func UploadDocument(ctx context.Context, client *s3v2.Client, bucket, key string, data []byte, contentType string) (string, error) {
	_, err := client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(bucket),
		Key:         awsv2.String(key),
		Body:        bytes.NewReader(data),
		ContentType: awsv2.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	uri := fmt.Sprintf("s3://%s/%s", bucket, key)
	log.Debugf("uploaded: uri=%s bytes=%d", uri, len(data))
	return uri, nil
}

// Run assembles and submits the processing job, returning its ARN.
func Run(ctx context.Context, client *smv2.Client, spec JobSpec) (string, error) {
	image, err := ImageURI(spec.Region)
	if err != nil {
		return "", err
	}

	instanceType := types.ProcessingInstanceType(spec.InstanceType)
	if spec.InstanceType == "" {
		instanceType = types.ProcessingInstanceTypeMlM5Xlarge
	}
	instanceCount := spec.InstanceCount
	if instanceCount <= 0 {
		instanceCount = 1
	}
	volume := spec.VolumeSizeGB
	if volume <= 0 {
		volume = 30
	}
	maxRuntime := spec.MaxRuntimeSecs
	if maxRuntime <= 0 {
		maxRuntime = 3600
	}

	input := &smv2.CreateProcessingJobInput{
		ProcessingJobName: awsv2.String(spec.Name),
		RoleArn:           awsv2.String(spec.RoleArn),
		AppSpecification: &types.AppSpecification{
			ImageUri: awsv2.String(image),
		},
		ProcessingInputs: []types.ProcessingInput{
			{
				InputName: awsv2.String("analysis_config"),
				S3Input: &types.ProcessingS3Input{
					S3Uri:                  awsv2.String(spec.ConfigS3URI),
					LocalPath:              awsv2.String(configLocalPath),
					S3DataType:             types.ProcessingS3DataTypeS3Prefix,
					S3InputMode:            types.ProcessingS3InputModeFile,
					S3DataDistributionType: types.ProcessingS3DataDistributionTypeFullyreplicated,
				},
			},
			{
				InputName: awsv2.String("dataset"),
				S3Input: &types.ProcessingS3Input{
					S3Uri:                  awsv2.String(spec.DatasetS3URI),
					LocalPath:              awsv2.String(datasetLocalPath),
					S3DataType:             types.ProcessingS3DataTypeS3Prefix,
					S3InputMode:            types.ProcessingS3InputModeFile,
					S3DataDistributionType: types.ProcessingS3DataDistributionTypeFullyreplicated,
				},
			},
		},
		ProcessingOutputConfig: &types.ProcessingOutputConfig{
			Outputs: []types.ProcessingOutput{
				{
					OutputName: awsv2.String("analysis_result"),
					S3Output: &types.ProcessingS3Output{
						S3Uri:        awsv2.String(spec.OutputS3URI),
						LocalPath:    awsv2.String(outputLocalPath),
						S3UploadMode: types.ProcessingS3UploadModeEndOfJob,
					},
				},
			},
		},
		ProcessingResources: &types.ProcessingResources{
			ClusterConfig: &types.ProcessingClusterConfig{
				InstanceCount:  awsv2.Int32(instanceCount),
				InstanceType:   instanceType,
				VolumeSizeInGB: awsv2.Int32(volume),
			},
		},
		StoppingCondition: &types.ProcessingStoppingCondition{
			MaxRuntimeInSeconds: awsv2.Int32(maxRuntime),
		},
	}

	out, err := client.CreateProcessingJob(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create processing job %s: %w", spec.Name, err)
	}

	arn := awsv2.ToString(out.ProcessingJobArn)
	log.Debugf("processing job created: name=%s arn=%s", spec.Name, arn)
	return arn, nil
}

// Status is a snapshot of a processing job's state.
type Status struct {
	Name          string
	State         types.ProcessingJobStatus
	FailureReason string
	ExitMessage   string
	OutputS3URI   string
}

// Terminal reports whether the job has stopped making progress.
func (s Status) Terminal() bool {
	switch s.State {
	case types.ProcessingJobStatusCompleted,
		types.ProcessingJobStatusFailed,
		types.ProcessingJobStatusStopped:
		return true
	}
	return false
}

// Describe fetches the current status of a processing job.
func Describe(ctx context.Context, client *smv2.Client, name string) (Status, error) {
	out, err := client.DescribeProcessingJob(ctx, &smv2.DescribeProcessingJobInput{
		ProcessingJobName: awsv2.String(name),
	})
	if err != nil {
		return Status{}, fmt.Errorf("failed to describe processing job %s: %w", name, err)
	}

	status := Status{
		Name:          name,
		State:         out.ProcessingJobStatus,
		FailureReason: awsv2.ToString(out.FailureReason),
		ExitMessage:   awsv2.ToString(out.ExitMessage),
	}
	if oc := out.ProcessingOutputConfig; oc != nil && len(oc.Outputs) > 0 && oc.Outputs[0].S3Output != nil {
		status.OutputS3URI = awsv2.ToString(oc.Outputs[0].S3Output.S3Uri)
	}
	return status, nil
}
