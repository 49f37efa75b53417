package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// awsTokenTTL is how long RDS honors a generated IAM auth token.
const awsTokenTTL = 15 * time.Minute

// AWSIAMTokenProvider mints short-lived RDS auth tokens that stand in for
// the database password. Credentials come from the default AWS chain, so
// the provider itself holds no secrets; a retry round that outlives the
// previous token simply mints a fresh one.
type AWSIAMTokenProvider struct {
	endpoint string // host:port of the RDS instance
	region   string
	username string
}

// NewAWSIAMTokenProvider validates the signing inputs up front so a bad
// flag fails before the first retry round rather than inside it.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth needs the RDS endpoint as host:port")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth needs a region: pass --aws-region or set aws_region in pgfetch.yaml")
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth needs the database user mapped to the IAM principal")
	}

	return &AWSIAMTokenProvider{
		endpoint: endpoint,
		region:   region,
		username: username,
	}, nil
}

// GetToken signs a token against the configured endpoint. The reported
// expiry is acquisition time plus the fixed RDS token lifetime.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load AWS credentials: %w", err)
	}

	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign RDS auth token for %s: %w", p.username, err)
	}

	return token, time.Now().Add(awsTokenTTL), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}
