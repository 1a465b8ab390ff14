package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// Cart devuelve el carrito de la sesión, con el total ya normalizado.
func (c *Client) Cart(ctx context.Context) (*entity.Cart, error) {
	var out cartDTO
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &out); err != nil {
		return nil, err
	}
	cart := out.toEntity()
	return &cart, nil
}

// addItemRequest payload para agregar una línea al carrito.
type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddCartItem agrega quantity unidades del producto al carrito.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPost, "/cart/items", nil, addItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

// UpdateCartItem cambia la cantidad de una línea existente.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemID), q, nil, nil)
}

// RemoveCartItem elimina una línea del carrito.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil, nil, nil)
}

// ClearCart vacía el carrito completo.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil, nil)
}
