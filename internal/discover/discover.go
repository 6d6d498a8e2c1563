// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package discover

import (
	"context"
	"fmt"
	"sort"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	smv2 "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	stsv2 "github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/clarifyctl/clarifyctl/internal/log"
)

// Endpoint is the resolved view of a deployed endpoint: the endpoint itself,
// the config behind it, the production variant serving traffic, and the model
// the variant hosts. This is the unit most commands operate on.
type Endpoint struct {
	Name           string
	Arn            string
	Status         string
	ConfigName     string
	VariantName    string
	ModelName      string
	InstanceType   string
	CapturePrefix  string
	CaptureEnabled bool
}

// DefaultBucket returns the account's conventional SageMaker bucket,
// sagemaker-<region>-<account>. The account is resolved via STS.
func DefaultBucket(ctx context.Context, sts *stsv2.Client, region string) (string, error) {
	ident, err := sts.GetCallerIdentity(ctx, &stsv2.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	if ident.Account == nil || *ident.Account == "" {
		return "", fmt.Errorf("caller identity has no account")
	}
	bucket := BucketName(region, *ident.Account)
	log.Debugf("default bucket: bucket=%s", bucket)
	return bucket, nil
}

// BucketName formats the conventional SageMaker bucket name for a
// region/account pair.
func BucketName(region, account string) string {
	return fmt.Sprintf("sagemaker-%s-%s", region, account)
}

// LatestEndpoint returns the name of the most recently created endpoint,
// preferring InService endpoints. Returns an error when the account has no
// endpoints at all.
func LatestEndpoint(ctx context.Context, client *smv2.Client) (string, error) {
	var all []types.EndpointSummary

	paginator := smv2.NewListEndpointsPaginator(client, &smv2.ListEndpointsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list endpoints: %w", err)
		}
		all = append(all, page.Endpoints...)
	}

	if len(all) == 0 {
		return "", fmt.Errorf("no endpoints found in this account/region")
	}

	// Newest first. InService beats everything regardless of age.
	sort.Slice(all, func(i, j int) bool {
		iIn := all[i].EndpointStatus == types.EndpointStatusInService
		jIn := all[j].EndpointStatus == types.EndpointStatusInService
		if iIn != jIn {
			return iIn
		}
		if all[i].CreationTime == nil || all[j].CreationTime == nil {
			return all[j].CreationTime == nil
		}
		return all[i].CreationTime.After(*all[j].CreationTime)
	})

	name := awsv2.ToString(all[0].EndpointName)
	log.Debugf("latest endpoint: name=%s status=%s", name, all[0].EndpointStatus)
	return name, nil
}

// ResolveEndpoint walks endpoint -> endpoint config -> production variant ->
// model and returns the combined view. When the endpoint serves multiple
// variants, the first is used; single-variant deployments are the norm for
// this tool's workflow.
func ResolveEndpoint(ctx context.Context, client *smv2.Client, name string) (Endpoint, error) {
	ep := Endpoint{Name: name}

	desc, err := client.DescribeEndpoint(ctx, &smv2.DescribeEndpointInput{
		EndpointName: awsv2.String(name),
	})
	if err != nil {
		return ep, fmt.Errorf("failed to describe endpoint %s: %w", name, err)
	}

	ep.Arn = awsv2.ToString(desc.EndpointArn)
	ep.Status = string(desc.EndpointStatus)
	ep.ConfigName = awsv2.ToString(desc.EndpointConfigName)
	if dc := desc.DataCaptureConfig; dc != nil {
		ep.CapturePrefix = awsv2.ToString(dc.DestinationS3Uri)
		ep.CaptureEnabled = dc.CaptureStatus == types.CaptureStatusStarted
	}
	if len(desc.ProductionVariants) > 0 {
		ep.VariantName = awsv2.ToString(desc.ProductionVariants[0].VariantName)
	}

	cfg, err := client.DescribeEndpointConfig(ctx, &smv2.DescribeEndpointConfigInput{
		EndpointConfigName: awsv2.String(ep.ConfigName),
	})
	if err != nil {
		return ep, fmt.Errorf("failed to describe endpoint config %s: %w", ep.ConfigName, err)
	}

	if len(cfg.ProductionVariants) > 0 {
		pv := cfg.ProductionVariants[0]
		ep.ModelName = awsv2.ToString(pv.ModelName)
		ep.InstanceType = string(pv.InstanceType)
		if ep.VariantName == "" {
			ep.VariantName = awsv2.ToString(pv.VariantName)
		}
	}

	// The endpoint description only carries capture info once capture has
	// started; fall back to the config's destination for endpoints that have
	// not served traffic yet.
	if ep.CapturePrefix == "" && cfg.DataCaptureConfig != nil {
		ep.CapturePrefix = awsv2.ToString(cfg.DataCaptureConfig.DestinationS3Uri)
	}

	log.Debugf("resolved endpoint: %+v", ep)
	return ep, nil
}

// ModelExecutionRole returns the execution role ARN of the named model. The
// Clarify processing job reuses it so the shadow endpoint can pull the same
// image and model data.
func ModelExecutionRole(ctx context.Context, client *smv2.Client, model string) (string, error) {
	desc, err := client.DescribeModel(ctx, &smv2.DescribeModelInput{
		ModelName: awsv2.String(model),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe model %s: %w", model, err)
	}
	role := awsv2.ToString(desc.ExecutionRoleArn)
	if role == "" {
		return "", fmt.Errorf("model %s has no execution role", model)
	}
	return role, nil
}
