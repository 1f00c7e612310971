package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ignite/seo-noc/internal/pkg/httpretry"
)

// SESAdapter sends HTML email through AWS SES v2, the primary email
// backend, sized for single operator-alert sends rather than bulk
// campaigns.
type SESAdapter struct {
	client *sesv2.Client
	from   string
}

// NewSESAdapter builds a SESAdapter against an already-configured SES v2
// client (see internal/awsintegrations for the shared aws.Config builder).
func NewSESAdapter(client *sesv2.Client, from string) *SESAdapter {
	return &SESAdapter{client: client, from: from}
}

// Send delivers an HTML email to recipient. topic is ignored — email has
// no sub-thread concept.
func (a *SESAdapter) Send(ctx context.Context, recipient, message, topic string) (bool, error) {
	if a.client == nil {
		return false, fmt.Errorf("notify: SES client not configured")
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(a.from),
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String("SEO NOC Notification"), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(message), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	_, err := a.client.SendEmail(ctx, input)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// OAuthEmailAdapter is the second email backend the DOMAIN STACK wiring
// table calls for: a client-credentials OAuth2-authenticated transactional
// email provider, selectable alongside SES via config. The wire format
// matches the generic send-provider contract: HTTPS POST with
// {from, to[], subject, html}.
type OAuthEmailAdapter struct {
	endpoint string
	from     string
	source   oauth2.TokenSource
	client   httpretry.HTTPDoer
}

// NewOAuthEmailAdapter builds an OAuthEmailAdapter using a client-credentials
// token source built from cfg.
func NewOAuthEmailAdapter(endpoint, from string, cfg clientcredentials.Config, doer httpretry.HTTPDoer) *OAuthEmailAdapter {
	return &OAuthEmailAdapter{
		endpoint: endpoint,
		from:     from,
		source:   cfg.TokenSource(context.Background()),
		client:   httpretry.NewRetryClient(doer, 3),
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send posts an email through the OAuth2-authenticated provider. topic is
// ignored, matching SESAdapter.
func (a *OAuthEmailAdapter) Send(ctx context.Context, recipient, message, topic string) (bool, error) {
	token, err := a.source.Token()
	if err != nil {
		return false, fmt.Errorf("notify: fetching oauth2 token: %w", err)
	}

	payload := sendEmailRequest{From: a.from, To: []string{recipient}, Subject: "SEO NOC Notification", HTML: message}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("notify: encoding email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(raw))
	if err != nil {
		return false, fmt.Errorf("notify: building email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
