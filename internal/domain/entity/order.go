package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de la orden. Progresión lineal manejada por el servidor;
// el cliente nunca la transiciona localmente.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// Valid reporta si el estado es uno de los valores conocidos.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order orden de compra creada por un checkout exitoso.
// Items es un snapshot del carrito al momento de la compra; inmutable después de creada.
type Order struct {
	ID              int64
	UserID          int64
	Items           []CartItem
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	Phone           string
	Email           string
	Status          OrderStatus
	CreatedAt       time.Time
}
