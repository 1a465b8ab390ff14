package entity

import "github.com/shopspring/decimal"

// CartItem línea del carrito con snapshot desnormalizado del producto.
type CartItem struct {
	ID        int64
	ProductID int64
	Quantity  int // siempre positivo
	Product   Product
}

// Cart carrito de compras de la sesión autenticada (exactamente uno por sesión).
// TotalAmount lo calcula el servidor; el cliente confía en él y no lo recalcula.
type Cart struct {
	ID          int64
	Items       []CartItem
	TotalAmount decimal.Decimal
}

// IsEmpty reporta si el carrito no tiene líneas.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount devuelve el total de unidades en el carrito.
func (c Cart) ItemCount() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}
