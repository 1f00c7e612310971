package awsintegrations

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
)

// CDNResolver implements enrich.CDNResolver against AWS CloudFront:
// ListDistributions resolves whether a domain is one of a distribution's
// aliases, surfaced on DomainEnrichment.CDNFronted so operators can tell a
// CDN challenge page apart from a genuine soft block.
type CDNResolver struct {
	client *cloudfront.Client
}

// NewCDNResolver builds a CDNResolver.
func NewCDNResolver(client *cloudfront.Client) *CDNResolver {
	return &CDNResolver{client: client}
}

// IsCDNFronted satisfies enrich.CDNResolver.
func (r *CDNResolver) IsCDNFronted(ctx context.Context, domainName string) (bool, error) {
	paginator := cloudfront.NewListDistributionsPaginator(r.client, &cloudfront.ListDistributionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, err
		}
		if page.DistributionList == nil {
			continue
		}
		for _, dist := range page.DistributionList.Items {
			if aws.ToString(dist.DomainName) == domainName {
				return true, nil
			}
			if dist.Aliases == nil {
				continue
			}
			for _, alias := range dist.Aliases.Items {
				if alias == domainName {
					return true, nil
				}
			}
		}
	}
	return false, nil
}
