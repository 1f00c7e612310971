package awsintegrations

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
	"github.com/ignite/seo-noc/internal/service/availability"
)

// Route53SecondaryProber decorates a primary availability.Prober with an
// optional Route53 health-check lookup, consulted only when the primary
// probe already classified a domain as down: a second witness, per the
// DOMAIN STACK wiring note, never a vote that can override the HTTP
// probe's own classification.
type Route53SecondaryProber struct {
	primary availability.Prober
	client  *route53.Client
}

// NewRoute53SecondaryProber wraps primary with an AWS Route53 corroboration
// check against client.
func NewRoute53SecondaryProber(primary availability.Prober, client *route53.Client) *Route53SecondaryProber {
	return &Route53SecondaryProber{primary: primary, client: client}
}

// Probe satisfies availability.Prober.
func (p *Route53SecondaryProber) Probe(ctx context.Context, domainName string) availability.ProbeResult {
	result := p.primary.Probe(ctx, domainName)
	if result.Status != domain.PingDown {
		return result
	}

	down, found, err := p.witnessDown(ctx, domainName)
	switch {
	case err != nil:
		logger.Warn("awsintegrations: route53 corroboration failed", "domain", domainName, "error", err.Error())
	case !found:
		logger.Info("awsintegrations: no route53 health check found for domain", "domain", domainName)
	case down:
		logger.Info("awsintegrations: route53 corroborates down state", "domain", domainName)
	default:
		logger.Warn("awsintegrations: route53 disagrees with down classification", "domain", domainName)
	}

	return result
}

// witnessDown finds the health check whose FullyQualifiedDomainName
// matches domainName and reports its current health.
func (p *Route53SecondaryProber) witnessDown(ctx context.Context, domainName string) (down bool, found bool, err error) {
	checks, err := p.client.ListHealthChecks(ctx, &route53.ListHealthChecksInput{})
	if err != nil {
		return false, false, err
	}

	var healthCheckID string
	for _, hc := range checks.HealthChecks {
		if hc.HealthCheckConfig != nil && hc.HealthCheckConfig.FullyQualifiedDomainName != nil &&
			*hc.HealthCheckConfig.FullyQualifiedDomainName == domainName {
			healthCheckID = aws.ToString(hc.Id)
			break
		}
	}
	if healthCheckID == "" {
		return false, false, nil
	}

	status, err := p.client.GetHealthCheckStatus(ctx, &route53.GetHealthCheckStatusInput{
		HealthCheckId: aws.String(healthCheckID),
	})
	if err != nil {
		return false, true, err
	}

	for _, observation := range status.HealthCheckObservations {
		if observation.StatusReport != nil && observation.StatusReport.Status != nil {
			if isHealthyReport(*observation.StatusReport.Status) {
				return false, true, nil
			}
		}
	}
	return true, true, nil
}

// isHealthyReport reports whether a Route53 health check status string
// indicates a healthy observation; Route53 prefixes these with "Success:".
func isHealthyReport(report string) bool {
	return len(report) >= len("Success") && report[:len("Success")] == "Success"
}
