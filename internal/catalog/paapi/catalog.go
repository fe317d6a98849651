package paapi

import (
	"context"

	"pricedigest/internal/catalog"
)

var _ catalog.Catalog = (*Client)(nil)

func (c *Client) Name() string { return "paapi:" + c.marketplace }

// Search implements catalog.Catalog.
func (c *Client) Search(ctx context.Context, keyword string, itemCount int) ([]catalog.Item, error) {
	return c.SearchItems(ctx, keyword, itemCount)
}
