package store

import (
	"context"
	"strings"

	"github.com/jhoicas/shop-client/internal/cache"
	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// FetchIfAbsent resuelve la clave con política perezosa: entradas ready no
// vuelven a la red y los fetches concurrentes de una clave se coalescen.
func (s *Store) FetchIfAbsent(ctx context.Context, k cache.Key) error {
	load, err := s.loaderFor(k)
	if err != nil {
		return err
	}
	return s.coord.FetchIfAbsent(ctx, k, load)
}

// ForceRefetch siempre va a la red y sobreescribe la entrada, salvo que un
// fetch más nuevo de la clave ya haya completado.
func (s *Store) ForceRefetch(ctx context.Context, k cache.Key) error {
	load, err := s.loaderFor(k)
	if err != nil {
		return err
	}
	return s.coord.ForceRefetch(ctx, k, load)
}

// loaderFor mapea cada clave de caché a su endpoint de la API.
func (s *Store) loaderFor(k cache.Key) (cache.Loader, error) {
	switch k.Entity {
	case cache.EntityUser:
		return func(ctx context.Context) (any, error) {
			return s.api.Me(ctx)
		}, nil

	case cache.EntityCart:
		return func(ctx context.Context) (any, error) {
			return s.api.Cart(ctx)
		}, nil

	case cache.EntityProduct:
		switch {
		case k.ID != 0:
			id := k.ID
			return func(ctx context.Context) (any, error) {
				return s.api.ProductByID(ctx, id)
			}, nil
		case strings.HasPrefix(k.Query, "category:"):
			category := strings.TrimPrefix(k.Query, "category:")
			return func(ctx context.Context) (any, error) {
				return s.api.ProductsByCategory(ctx, category)
			}, nil
		case strings.HasPrefix(k.Query, "search:"):
			keyword := strings.TrimPrefix(k.Query, "search:")
			return func(ctx context.Context) (any, error) {
				return s.api.SearchProducts(ctx, keyword)
			}, nil
		default:
			return func(ctx context.Context) (any, error) {
				return s.api.Products(ctx)
			}, nil
		}

	case cache.EntityOrder:
		if k.ID != 0 {
			id := k.ID
			return func(ctx context.Context) (any, error) {
				return s.api.OrderByID(ctx, id)
			}, nil
		}
		return func(ctx context.Context) (any, error) {
			return s.api.Orders(ctx)
		}, nil
	}
	return nil, domain.NewValidationError("clave de caché sin endpoint: " + k.String())
}

// ── Lecturas tipadas ──────────────────────────────────────────────────────────
// Azúcar sobre Read: devuelven el snapshot más el dato ya asertado al tipo de
// la entidad (nil/zero si la entrada no tiene dato).

// ReadUser usuario autenticado cacheado.
func (s *Store) ReadUser() (cache.Entry, *entity.User) {
	e := s.cache.Read(cache.UserKey())
	u, _ := e.Data.(*entity.User)
	return e, u
}

// ReadCart carrito cacheado.
func (s *Store) ReadCart() (cache.Entry, *entity.Cart) {
	e := s.cache.Read(cache.CartKey())
	c, _ := e.Data.(*entity.Cart)
	return e, c
}

// ReadProducts lista de productos de la clave dada (catálogo, categoría o búsqueda).
func (s *Store) ReadProducts(k cache.Key) (cache.Entry, []entity.Product) {
	e := s.cache.Read(k)
	ps, _ := e.Data.([]entity.Product)
	return e, ps
}

// ReadProduct producto puntual cacheado.
func (s *Store) ReadProduct(id int64) (cache.Entry, *entity.Product) {
	e := s.cache.Read(cache.ProductKey(id))
	p, _ := e.Data.(*entity.Product)
	return e, p
}

// ReadOrders lista de órdenes cacheada.
func (s *Store) ReadOrders() (cache.Entry, []entity.Order) {
	e := s.cache.Read(cache.OrdersKey())
	os, _ := e.Data.([]entity.Order)
	return e, os
}

// ReadOrder orden puntual cacheada.
func (s *Store) ReadOrder(id int64) (cache.Entry, *entity.Order) {
	e := s.cache.Read(cache.OrderKey(id))
	o, _ := e.Data.(*entity.Order)
	return e, o
}
