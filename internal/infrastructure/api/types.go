package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// DTOs de cable del backend. Los totales monetarios pueden venir bajo el
// nombre legado (totalPrice) o el vigente (totalAmount); se normalizan aquí,
// en la frontera de la caché, al campo canónico TotalAmount (gana el primero
// no nulo). Ninguna otra capa vuelve a ver los nombres de cable.

// RegisterRequest payload de registro de usuario.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// LoginRequest payload de login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult token + usuario devueltos por un login exitoso.
type LoginResult struct {
	Token string
	User  entity.User
}

// CreateOrderRequest payload del checkout.
type CreateOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress,omitempty"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
}

// ── DTOs de respuesta ─────────────────────────────────────────────────────────

type userDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

func (d userDTO) toEntity() entity.User {
	return entity.User{
		ID:        d.ID,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Role:      d.Role,
	}
}

type loginResponseDTO struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type productDTO struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    string           `json:"imageUrl"`
	Category    string           `json:"category"`
	Stock       int              `json:"stock"`
}

func (d productDTO) toEntity() entity.Product {
	p := entity.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Category:    d.Category,
		Stock:       d.Stock,
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	return p
}

func productsToEntities(dtos []productDTO) []entity.Product {
	out := make([]entity.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEntity())
	}
	return out
}

type cartItemDTO struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"productId"`
	Quantity  int        `json:"quantity"`
	Product   productDTO `json:"product"`
}

func (d cartItemDTO) toEntity() entity.CartItem {
	it := entity.CartItem{
		ID:        d.ID,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		Product:   d.Product.toEntity(),
	}
	// El backend legado omite productId en la línea; se toma del snapshot.
	if it.ProductID == 0 {
		it.ProductID = it.Product.ID
	}
	return it
}

func cartItemsToEntities(dtos []cartItemDTO) []entity.CartItem {
	out := make([]entity.CartItem, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEntity())
	}
	return out
}

type cartDTO struct {
	ID          int64            `json:"id"`
	Items       []cartItemDTO    `json:"items"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`  // nombre legado
	TotalAmount *decimal.Decimal `json:"totalAmount"` // nombre vigente
}

func (d cartDTO) toEntity() entity.Cart {
	return entity.Cart{
		ID:          d.ID,
		Items:       cartItemsToEntities(d.Items),
		TotalAmount: normalizeTotal(d.TotalPrice, d.TotalAmount),
	}
}

type orderDTO struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"userId"`
	Items           []cartItemDTO    `json:"items"`
	TotalPrice      *decimal.Decimal `json:"totalPrice"`  // nombre legado
	TotalAmount     *decimal.Decimal `json:"totalAmount"` // nombre vigente
	ShippingAddress string           `json:"shippingAddress"`
	BillingAddress  string           `json:"billingAddress"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func (d orderDTO) toEntity() entity.Order {
	return entity.Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Items:           cartItemsToEntities(d.Items),
		TotalAmount:     normalizeTotal(d.TotalPrice, d.TotalAmount),
		ShippingAddress: d.ShippingAddress,
		BillingAddress:  d.BillingAddress,
		Phone:           d.Phone,
		Email:           d.Email,
		Status:          entity.OrderStatus(d.Status),
		CreatedAt:       d.CreatedAt,
	}
}

func ordersToEntities(dtos []orderDTO) []entity.Order {
	out := make([]entity.Order, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEntity())
	}
	return out
}

// normalizeTotal canonicaliza el total monetario: gana el primer valor no
// nulo, en el orden legado → vigente; cero si ninguno viene.
func normalizeTotal(legacy, current *decimal.Decimal) decimal.Decimal {
	if legacy != nil {
		return *legacy
	}
	if current != nil {
		return *current
	}
	return decimal.Zero
}
