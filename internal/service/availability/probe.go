package availability

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
)

const (
	probeTimeout   = 15 * time.Second
	probeBodyCap   = 5 * 1024
	probeUserAgent = "SEO-NOC-Availability-Probe/1.0"
)

// ProbeResult is the outcome of a single HTTPS probe against a domain,
// ready to persist via Repository.UpdateProbeResult.
type ProbeResult struct {
	Status        domain.PingStatus
	HTTPCode      int
	SoftBlockType domain.SoftBlockType
	Reason        string
	CheckedAt     time.Time
}

// Prober issues one availability probe. Exported as an interface
// so tests can substitute a fake transport without standing up a server.
type Prober interface {
	Probe(ctx context.Context, domainName string) ProbeResult
}

// HTTPProber is the production Prober: GET https://{domain}, 15s timeout,
// redirects followed, body capped at 5 KB.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber builds an HTTPProber with the standard 15s timeout.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{Timeout: probeTimeout}}
}

// Probe performs the HTTPS GET and classifies the result.
func (p *HTTPProber) Probe(ctx context.Context, domainName string) ProbeResult {
	now := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domainName, nil)
	if err != nil {
		return ProbeResult{Status: domain.PingDown, Reason: "Connection Failed", CheckedAt: now}
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return ProbeResult{Status: domain.PingDown, Reason: classifyError(err), CheckedAt: now}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, probeBodyCap))
	return classifyResponse(resp.StatusCode, string(body), now)
}

// classifyError implements the exception-message classification: timeout
// → "Connection Timeout"; DNS/connect failures whose text mentions DNS or
// getaddrinfo → "DNS Error"; anything else → "Connection Failed".
func classifyError(err error) string {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
		return "Connection Timeout"
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "dns") || strings.Contains(lower, "getaddrinfo") || strings.Contains(lower, "no such host") {
		return "DNS Error"
	}
	return "Connection Failed"
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// classifyResponse implements the status-code classification table.
func classifyResponse(statusCode int, body string, now time.Time) ProbeResult {
	base := ProbeResult{HTTPCode: statusCode, CheckedAt: now}

	switch {
	case statusCode >= 200 && statusCode < 400:
		if blockType, ok := scanSoftBlock(body); ok {
			base.Status = domain.PingSoftBlocked
			base.SoftBlockType = blockType
			return base
		}
		base.Status = domain.PingUp
		return base
	case statusCode == 403 || statusCode == 451:
		if blockType, ok := scanSoftBlock(body); ok {
			base.Status = domain.PingSoftBlocked
			base.SoftBlockType = blockType
			return base
		}
		base.Status = domain.PingDown
		return base
	case statusCode >= 500:
		base.Status = domain.PingDown
		return base
	default:
		base.Status = domain.PingDown
		return base
	}
}

// softBlockIndicator is one (substring, classification) pair from the
// table, checked case-insensitively against the probe response body.
type softBlockIndicator struct {
	substring string
	blockType domain.SoftBlockType
}

var softBlockIndicators = []softBlockIndicator{
	{"cf-ray", domain.SoftBlockCloudflareChallenge},
	{"checking your browser", domain.SoftBlockCloudflareChallenge},
	{"challenge-platform", domain.SoftBlockCloudflareChallenge},
	{"captcha", domain.SoftBlockCaptcha},
	{"recaptcha", domain.SoftBlockCaptcha},
	{"hcaptcha", domain.SoftBlockCaptcha},
	{"access denied", domain.SoftBlockGeoBlocked},
	{"not available in your country", domain.SoftBlockGeoBlocked},
	{"region blocked", domain.SoftBlockGeoBlocked},
	{"bot detected", domain.SoftBlockBotProtection},
	{"automated access", domain.SoftBlockBotProtection},
	{"please verify", domain.SoftBlockBotProtection},
}

func scanSoftBlock(body string) (domain.SoftBlockType, bool) {
	lower := strings.ToLower(body)
	for _, ind := range softBlockIndicators {
		if strings.Contains(lower, ind.substring) {
			return ind.blockType, true
		}
	}
	return "", false
}
