package paapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pricedigest/internal/catalog"
)

// MaxItemCount is the largest ItemCount SearchItems accepts.
const MaxItemCount = 10

const searchItemsTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"

type searchItemsRequest struct {
	Keywords    string   `json:"Keywords"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
	Resources   []string `json:"Resources,omitempty"`
}

type searchItemsResponse struct {
	SearchResult *struct {
		Items            []catalog.Item `json:"Items"`
		TotalResultCount int            `json:"TotalResultCount"`
	} `json:"SearchResult"`
	Errors []apiError `json:"Errors"`
}

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// SearchItems runs a keyword search and returns the raw item objects.
// Numbers inside items are decoded as json.Number.
func (c *Client) SearchItems(ctx context.Context, keywords string, itemCount int, opts ...Option) ([]catalog.Item, error) {
	if itemCount < 1 || itemCount > MaxItemCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidItemCount, itemCount)
	}
	override := c.clone()
	for _, opt := range opts {
		opt(override)
	}

	body, err := json.Marshal(searchItemsRequest{
		Keywords:    keywords,
		ItemCount:   itemCount,
		PartnerTag:  override.partnerTag,
		PartnerType: override.partnerType,
		Marketplace: override.marketplace,
		Resources:   override.resources,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := strings.TrimRight(override.baseURL, "/") + "/paapi5/searchitems"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range override.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", searchItemsTarget)

	sum := sha256.Sum256(body)
	if err := override.signer.SignHTTP(ctx, override.credentials, req, hex.EncodeToString(sum[:]), serviceName, override.region, override.now()); err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	var out searchItemsResponse
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	decodeErr := dec.Decode(&out)

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, describe(out.Errors))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, describe(out.Errors))

	case http.StatusTooManyRequests:
		return nil, ErrRateLimited

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	if decodeErr != nil && decodeErr != io.EOF {
		return nil, fmt.Errorf("decoding search response: %w", decodeErr)
	}
	for _, e := range out.Errors {
		if e.Code == "NoResults" {
			return nil, fmt.Errorf("%w for %q", ErrNoResults, keywords)
		}
	}
	if out.SearchResult == nil || len(out.SearchResult.Items) == 0 {
		if len(out.Errors) > 0 {
			return nil, fmt.Errorf("search failed: %s", describe(out.Errors))
		}
		return nil, fmt.Errorf("%w for %q", ErrNoResults, keywords)
	}
	return out.SearchResult.Items, nil
}

func describe(errs []apiError) string {
	if len(errs) == 0 {
		return "no error details"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Code+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}
