package paapi

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

const (
	defaultBaseURL     = "https://webservices.amazon.com.br"
	defaultRegion      = "us-east-1"
	defaultMarketplace = "www.amazon.com.br"
	defaultPartnerType = "Associates"

	serviceName = "ProductAdvertisingAPI"
)

// DefaultResources are the item fields requested from SearchItems.
var DefaultResources = []string{
	"ItemInfo.Title",
	"Offers.Listings.Price",
	"OffersV2.Listings.Price",
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=paapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Product Advertising API 5.0.
type Client struct {
	// baseURL is the scheme and host of the regional endpoint.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// credentials sign every request.
	credentials aws.Credentials
	signer      *v4.Signer
	region      string

	partnerTag  string
	partnerType string
	marketplace string
	resources   []string

	now func() time.Time
}

// Option is a configuration option for the client.
type Option func(*Client)

// WithBaseURL sets the endpoint, e.g. https://webservices.amazon.com.br.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithRegion sets the signing region of the endpoint.
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// WithMarketplace sets the target marketplace, e.g. www.amazon.com.br.
func WithMarketplace(marketplace string) Option {
	return func(c *Client) {
		c.marketplace = marketplace
	}
}

// WithPartnerType overrides the partner type (Associates).
func WithPartnerType(partnerType string) Option {
	return func(c *Client) {
		c.partnerType = partnerType
	}
}

// WithResources overrides the requested item resources.
func WithResources(resources ...string) Option {
	return func(c *Client) {
		c.resources = append([]string(nil), resources...)
	}
}

// WithClock sets the time source used for request signing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Product Advertising API client.
func NewClient(accessKey, secretKey, partnerTag string, options ...Option) (*Client, error) {
	if accessKey == "" || secretKey == "" {
		return nil, ErrMissingCredentials
	}
	if partnerTag == "" {
		return nil, ErrMissingPartnerTag
	}
	var c = &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		credentials: aws.Credentials{
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
			Source:          "pricedigest",
		},
		signer:      v4.NewSigner(),
		region:      defaultRegion,
		partnerTag:  partnerTag,
		partnerType: defaultPartnerType,
		marketplace: defaultMarketplace,
		resources:   DefaultResources,
		now:         time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// clone returns a shallow copy with its own header so per-call options
// never leak into the shared client.
func (c *Client) clone() *Client {
	cp := *c
	cp.header = c.header.Clone()
	return &cp
}
