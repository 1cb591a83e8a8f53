package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

// ProductQuery holds the catalog listing parameters.
type ProductQuery struct {
	Search  string
	Page    int
	PerPage int
}

// ProductPage is a page of catalog results.
type ProductPage struct {
	Products   []domain.Product
	Pagination *domain.Pagination
}

// productListResponse covers both response shapes the platform has been
// observed to return: an object with products/pagination, or a bare array.
type productListResponse struct {
	Products   []domain.Product   `json:"products"`
	Pagination *domain.Pagination `json:"pagination"`
}

// Products lists or searches the catalog. The search term is sent under
// three redundant parameter names (search, q, name) because the platform's
// search contract has varied between deployments; callers are expected to
// re-filter results defensively.
func (c *Client) Products(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
		query.Set("q", q.Search)
		query.Set("name", q.Search)
	}

	return c.fetchProducts(ctx, "/products", query)
}

// ProductsByCategory lists products within a category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID string, page, perPage int) (*ProductPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	return c.fetchProducts(ctx, "/products/category/"+url.PathEscape(categoryID), query)
}

func (c *Client) fetchProducts(ctx context.Context, path string, query url.Values) (*ProductPage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	// The platform returns either {products, pagination} or a bare array.
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var bare []domain.Product
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil, fmt.Errorf("failed to decode product list: %w", err)
		}
		return &ProductPage{Products: bare}, nil
	}

	var resp productListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}
	return &ProductPage{Products: resp.Products, Pagination: resp.Pagination}, nil
}

// Categories fetches the category tree (one level of children).
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.get(ctx, "/categories", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return resp.Categories, nil
}
