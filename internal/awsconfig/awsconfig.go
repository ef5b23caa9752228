package awsconfig

import (
	"context"
	"fmt"

	"pxv-pay/internal/config"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Load builds an AWS config from storage settings. Static credentials are used
// when both keys are set, otherwise the default chain applies.
func Load(ctx context.Context, cfg config.Storage) (sdkaws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsCfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return awsCfg, nil
}
