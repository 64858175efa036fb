package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider represents the S3-compatible storage provider
type S3Provider string

const (
	S3ProviderAWS    S3Provider = "aws"
	S3ProviderWasabi S3Provider = "wasabi"
	// S3ProviderCustom covers MinIO, R2 and friends behind an explicit endpoint.
	S3ProviderCustom S3Provider = "custom"
)

// S3ClientConfig holds configuration for S3-compatible storage
type S3ClientConfig struct {
	Provider        S3Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string

	// Endpoint overrides the provider default, e.g. "s3.ap-southeast-1.wasabisys.com"
	Endpoint string
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// ResolveEndpoint returns the base endpoint for cfg, or "" for plain AWS.
func (cfg S3ClientConfig) ResolveEndpoint() (string, error) {
	if cfg.Endpoint != "" {
		return cfg.Endpoint, nil
	}
	switch cfg.Provider {
	case S3ProviderWasabi:
		if endpoint, ok := WasabiEndpoints[cfg.Region]; ok {
			return endpoint, nil
		}
		return "", fmt.Errorf("unknown Wasabi region: %s", cfg.Region)
	case S3ProviderCustom:
		return "", fmt.Errorf("custom S3 provider requires an endpoint")
	default:
		return "", nil
	}
}

// NewS3Client creates an S3 client with the given config
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	endpoint, err := cfg.ResolveEndpoint()
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if endpoint == "" {
		return s3.NewFromConfig(awsCfg), nil
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(withScheme(endpoint))
		o.UsePathStyle = true // non-AWS providers want path-style
	}), nil
}

func withScheme(endpoint string) string {
	if len(endpoint) > 8 && (endpoint[:7] == "http://" || endpoint[:8] == "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

// CheckBucket verifies the bucket is reachable with the configured credentials
func CheckBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", bucket, err)
	}
	return nil
}
