package cloudwatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// NewMetricsClient creates a new CloudWatch (metrics) client with the specified profile and region.
func NewMetricsClient(ctx context.Context, profile, region string) (*cloudwatch.Client, error) {
	cfg, err := loadAWSConfig(ctx, profile, region)
	if err != nil {
		return nil, err
	}
	return cloudwatch.NewFromConfig(cfg), nil
}

// loadAWSConfig loads the AWS configuration with optional profile and region.
func loadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}

// ResolvedRegion returns the AWS region that would be used for the given profile.
// If region is explicitly provided, it returns that. Otherwise it returns the region
// from the profile configuration or the default region.
func ResolvedRegion(ctx context.Context, profile, region string) (string, error) {
	cfg, err := loadAWSConfig(ctx, profile, region)
	if err != nil {
		return "", err
	}
	return cfg.Region, nil
}
