package cache

import "fmt"

// EntityKind tipo de entidad que una clave de caché direcciona.
type EntityKind string

const (
	EntityUser    EntityKind = "user"
	EntityProduct EntityKind = "product"
	EntityCart    EntityKind = "cart"
	EntityOrder   EntityKind = "order"
)

// Key clave estructurada de caché. Dos claves son iguales sii coinciden
// Entity, ID y Query: eso decide qué vistas comparten un mismo slot.
// El diseño no normaliza entidades anidadas entre claves: la lista de
// productos y un producto por id son slots distintos aunque los datos se
// solapen, aceptando inconsistencia temporal hasta que alguno se invalide.
type Key struct {
	Entity EntityKind
	ID     int64  // 0 cuando la clave no direcciona una entidad puntual
	Query  string // discriminador de listas: "", "category:x", "search:y"
}

// String representación legible para logs.
func (k Key) String() string {
	switch {
	case k.ID != 0:
		return fmt.Sprintf("%s/%d", k.Entity, k.ID)
	case k.Query != "":
		return fmt.Sprintf("%s?%s", k.Entity, k.Query)
	default:
		return string(k.Entity)
	}
}

// Claves predefinidas de las entidades de la tienda.

// UserKey clave del usuario autenticado actual.
func UserKey() Key { return Key{Entity: EntityUser} }

// CartKey clave del carrito de la sesión.
func CartKey() Key { return Key{Entity: EntityCart} }

// ProductsKey clave del catálogo completo.
func ProductsKey() Key { return Key{Entity: EntityProduct} }

// ProductKey clave de un producto puntual.
func ProductKey(id int64) Key { return Key{Entity: EntityProduct, ID: id} }

// CategoryKey clave de la lista de productos de una categoría.
func CategoryKey(category string) Key {
	return Key{Entity: EntityProduct, Query: "category:" + category}
}

// SearchKey clave de un resultado de búsqueda de productos.
func SearchKey(keyword string) Key {
	return Key{Entity: EntityProduct, Query: "search:" + keyword}
}

// OrdersKey clave de la lista de órdenes del usuario.
func OrdersKey() Key { return Key{Entity: EntityOrder} }

// OrderKey clave de una orden puntual.
func OrderKey(id int64) Key { return Key{Entity: EntityOrder, ID: id} }
