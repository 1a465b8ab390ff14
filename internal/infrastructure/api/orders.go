package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// CreateOrder ejecuta el checkout del carrito actual y devuelve la orden creada.
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderRequest) (*entity.Order, error) {
	var out orderDTO
	if err := c.do(ctx, http.MethodPost, "/orders", nil, in, &out); err != nil {
		return nil, err
	}
	o := out.toEntity()
	return &o, nil
}

// Orders devuelve las órdenes del usuario autenticado.
func (c *Client) Orders(ctx context.Context) ([]entity.Order, error) {
	var out []orderDTO
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return ordersToEntities(out), nil
}

// OrderByID devuelve una orden puntual.
func (c *Client) OrderByID(ctx context.Context, id int64) (*entity.Order, error) {
	var out orderDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	o := out.toEntity()
	return &o, nil
}

// UpdateOrderStatus pide al servidor transicionar el estado de la orden.
// El cliente nunca transiciona estados localmente; solo refleja la respuesta.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	var out orderDTO
	q := url.Values{"status": {string(status)}}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/status", orderID), q, nil, &out); err != nil {
		return nil, err
	}
	o := out.toEntity()
	return &o, nil
}
