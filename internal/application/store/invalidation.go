package store

import (
	"context"

	"github.com/jhoicas/shop-client/internal/cache"
)

// MutationKind identifica el efecto de una mutación confirmada sobre la caché.
type MutationKind string

const (
	MutationLogin              MutationKind = "login"
	MutationLogout             MutationKind = "logout"
	MutationCartItemAdded      MutationKind = "cart_item_added"
	MutationCartItemUpdated    MutationKind = "cart_item_updated"
	MutationCartItemRemoved    MutationKind = "cart_item_removed"
	MutationCartCleared        MutationKind = "cart_cleared"
	MutationOrderPlaced        MutationKind = "order_placed"
	MutationOrderStatusChanged MutationKind = "order_status_changed"
)

// effectsFor tabla de invalidación: qué claves se desalojan y cuáles se
// refetchean a la fuerza tras confirmar cada mutación. orderID solo aplica a
// cambios de estado de orden.
func effectsFor(kind MutationKind, orderID int64) (evict, refetch []cache.Key) {
	switch kind {
	case MutationLogin:
		refetch = []cache.Key{cache.UserKey(), cache.CartKey()}
	case MutationLogout:
		evict = []cache.Key{cache.UserKey(), cache.CartKey()}
	case MutationCartItemAdded, MutationCartItemUpdated, MutationCartItemRemoved:
		refetch = []cache.Key{cache.CartKey()}
	case MutationCartCleared:
		evict = []cache.Key{cache.CartKey()}
	case MutationOrderPlaced:
		evict = []cache.Key{cache.CartKey()}
		refetch = []cache.Key{cache.OrdersKey()}
	case MutationOrderStatusChanged:
		refetch = []cache.Key{cache.OrdersKey(), cache.OrderKey(orderID)}
	}
	return evict, refetch
}

// invalidate aplica los efectos de una mutación confirmada. Se invoca solo
// después de que el servidor confirmó el éxito, y sus refetches son síncronos:
// al volver, las entradas afectadas ya reflejan la respuesta fresca (o su
// error, registrado en la entrada; un refetch fallido no revierte la mutación).
func (s *Store) invalidate(ctx context.Context, kind MutationKind, orderID int64) {
	evict, refetch := effectsFor(kind, orderID)
	for _, k := range evict {
		s.cache.Evict(k)
	}
	for _, k := range refetch {
		if err := s.ForceRefetch(ctx, k); err != nil {
			s.log.Warn().Str("key", k.String()).Str("mutation", string(kind)).Err(err).
				Msg("refetch post-mutación falló; el error queda en la entrada")
		}
	}
}
