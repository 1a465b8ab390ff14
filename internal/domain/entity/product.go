package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo.
// La fuente de verdad es el servidor; el cliente nunca muta un Product.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta, nunca negativo
	ImageURL    string          // opcional
	Category    string
	Stock       int // unidades disponibles, nunca negativo
}

// InStock reporta si el producto tiene unidades disponibles.
func (p Product) InStock() bool {
	return p.Stock > 0
}
