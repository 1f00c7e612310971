package awsintegrations

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"

	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const defaultCertPollInterval = 12 * time.Hour

// CertRepository is the narrow data-access contract the certificate poller
// needs: the domain universe to match against ACM, and a place to persist
// each match's expiration.
type CertRepository interface {
	ListDomainNames(ctx context.Context) ([]string, error)
	UpdateCertExpiration(ctx context.Context, domainName string, expiresAt time.Time) error
}

// CertExpirationPoller is the TLS-certificate expiration clock: ACM's
// DescribeCertificate.NotAfter polled independently of the registrar's
// expiration_date, since cert expiry and registrar expiry are different
// failure modes.
// Shaped like availability.Service/expiration.Service's own mutex+stopCh
// ticker loop.
type CertExpirationPoller struct {
	repo   CertRepository
	client *acm.Client

	pollInterval time.Duration
	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
}

// NewCertExpirationPoller builds a poller. pollInterval defaults to 12h.
func NewCertExpirationPoller(repo CertRepository, client *acm.Client, pollInterval time.Duration) *CertExpirationPoller {
	if pollInterval <= 0 {
		pollInterval = defaultCertPollInterval
	}
	return &CertExpirationPoller{repo: repo, client: client, pollInterval: pollInterval}
}

// Start begins the background polling loop.
func (p *CertExpirationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	logger.Info("awsintegrations: acm certificate poller started", "poll_interval", p.pollInterval.String())

	go func() {
		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()
		p.RunOnce(ctx)

		for {
			select {
			case <-ticker.C:
				p.RunOnce(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the polling loop.
func (p *CertExpirationPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
	logger.Info("awsintegrations: acm certificate poller stopped")
}

// RunOnce lists every ACM certificate and updates the matching domain's
// cert_expiration_date. Unmatched certificates and unmatched domains are
// both silently skipped: a domain certificate managed outside ACM has no
// secondary clock to report, and that's expected, not an error.
func (p *CertExpirationPoller) RunOnce(ctx context.Context) {
	domainNames, err := p.repo.ListDomainNames(ctx)
	if err != nil {
		logger.Error("awsintegrations: listing domain names failed", "error", err.Error())
		return
	}
	known := make(map[string]bool, len(domainNames))
	for _, d := range domainNames {
		known[d] = true
	}

	paginator := acm.NewListCertificatesPaginator(p.client, &acm.ListCertificatesInput{
		CertificateStatuses: []acmtypes.CertificateStatus{acmtypes.CertificateStatusIssued},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logger.Error("awsintegrations: listing acm certificates failed", "error", err.Error())
			return
		}
		for _, summary := range page.CertificateSummaryList {
			domainName := aws.ToString(summary.DomainName)
			if !known[domainName] {
				continue
			}
			p.syncOne(ctx, aws.ToString(summary.CertificateArn), domainName)
		}
	}
}

func (p *CertExpirationPoller) syncOne(ctx context.Context, arn, domainName string) {
	desc, err := p.client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)})
	if err != nil {
		logger.Warn("awsintegrations: describe certificate failed", "domain", domainName, "error", err.Error())
		return
	}
	if desc.Certificate == nil || desc.Certificate.NotAfter == nil {
		return
	}
	if err := p.repo.UpdateCertExpiration(ctx, domainName, *desc.Certificate.NotAfter); err != nil {
		logger.Error("awsintegrations: updating cert expiration failed", "domain", domainName, "error", err.Error())
	}
}
