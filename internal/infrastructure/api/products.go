package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// Products devuelve el catálogo completo.
func (c *Client) Products(ctx context.Context) ([]entity.Product, error) {
	var out []productDTO
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &out); err != nil {
		return nil, err
	}
	return productsToEntities(out), nil
}

// ProductByID devuelve un producto puntual.
func (c *Client) ProductByID(ctx context.Context, id int64) (*entity.Product, error) {
	var out productDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	p := out.toEntity()
	return &p, nil
}

// ProductsByCategory devuelve los productos de una categoría.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]entity.Product, error) {
	var out []productDTO
	path := "/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return productsToEntities(out), nil
}

// SearchProducts busca productos por palabra clave.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]entity.Product, error) {
	var out []productDTO
	q := url.Values{"keyword": {keyword}}
	if err := c.do(ctx, http.MethodGet, "/products/search", q, nil, &out); err != nil {
		return nil, err
	}
	return productsToEntities(out), nil
}
