// Package awsintegrations holds the optional AWS-backed secondary signals
// the DOMAIN STACK wires in alongside the core engines: a Route53 health
// check corroborating the HTTPS probe, an ACM certificate-expiration
// poller feeding the independent TLS clock, a CloudFront lookup annotating
// CDN-fronted domains, and a Bedrock-backed conflict suggestion drafter.
// None of these block their host engine: every client here is optional,
// and a failure degrades to "signal unavailable", never to an error
// surfaced up through the core engine's own contract.
//
// Clients are built from one shared aws.Config: config.LoadDefaultConfig
// with an optional shared-profile override, one *_.Client per AWS service.
package awsintegrations

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// LoadConfig builds an aws.Config for the given region, optionally pinned
// to a named shared-config profile (empty uses the default credential
// chain).
func LoadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}
