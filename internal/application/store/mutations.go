package store

import (
	"context"

	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/internal/domain/entity"
	"github.com/jhoicas/shop-client/internal/infrastructure/api"
)

// Pasarela de mutaciones: cada operación de escritura llama a la API y SOLO
// si el servidor confirma el éxito dispara el router de invalidación. Una
// mutación fallida no toca la caché: no hay apply/rollback optimista, la
// caché solo se actualiza con respuestas confirmadas. Por invocación:
// idle -> in_flight -> {succeeded | failed}, terminal en ambos casos, sin
// reintentos implícitos.

// Register crea una cuenta. No inicia sesión ni invalida nada.
func (s *Store) Register(ctx context.Context, in api.RegisterRequest) error {
	if in.Email == "" || in.Password == "" {
		return domain.NewValidationError("email y password son obligatorios")
	}
	return s.api.Register(ctx, in)
}

// Login autentica, persiste la sesión, re-arma el one-shot del teardown y
// fuerza el refetch de user y cart.
func (s *Store) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email y password son obligatorios")
	}
	res, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s.session.Set(res.Token, &res.User)
	s.rearmTeardown()
	s.invalidate(ctx, MutationLogin, 0)
	return &res.User, nil
}

// Logout cierra la sesión en el servidor y SIEMPRE limpia el estado local
// (sesión + entradas de user y cart), aunque la llamada remota falle: una
// sesión que el cliente decidió terminar no revive por un error de red.
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("logout remoto falló; se limpia el estado local igual")
	}
	s.session.Clear()
	s.invalidate(ctx, MutationLogout, 0)
	return err
}

// AddToCart agrega quantity unidades del producto y refetchea el carrito.
func (s *Store) AddToCart(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("la cantidad debe ser positiva")
	}
	if err := s.api.AddCartItem(ctx, productID, quantity); err != nil {
		return err
	}
	s.invalidate(ctx, MutationCartItemAdded, 0)
	return nil
}

// UpdateCartItem cambia la cantidad de una línea y refetchea el carrito.
func (s *Store) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("la cantidad debe ser positiva")
	}
	if err := s.api.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return err
	}
	s.invalidate(ctx, MutationCartItemUpdated, 0)
	return nil
}

// RemoveCartItem elimina una línea y refetchea el carrito.
func (s *Store) RemoveCartItem(ctx context.Context, itemID int64) error {
	if err := s.api.RemoveCartItem(ctx, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, MutationCartItemRemoved, 0)
	return nil
}

// ClearCart vacía el carrito y desaloja su entrada.
func (s *Store) ClearCart(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		return err
	}
	s.invalidate(ctx, MutationCartCleared, 0)
	return nil
}

// PlaceOrder ejecuta el checkout: desaloja el carrito y refetchea la lista de
// órdenes. Devuelve la orden confirmada por el servidor.
func (s *Store) PlaceOrder(ctx context.Context, in api.CreateOrderRequest) (*entity.Order, error) {
	if in.ShippingAddress == "" {
		return nil, domain.NewValidationError("la dirección de envío es obligatoria")
	}
	if in.Phone == "" {
		return nil, domain.NewValidationError("el teléfono es obligatorio")
	}
	order, err := s.api.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, MutationOrderPlaced, 0)
	return order, nil
}

// UpdateOrderStatus pide la transición de estado al servidor y refetchea la
// lista de órdenes y la orden afectada.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("estado de orden desconocido: " + string(status))
	}
	order, err := s.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, MutationOrderStatusChanged, orderID)
	return order, nil
}
