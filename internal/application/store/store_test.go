package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstore "github.com/jhoicas/shop-client/internal/application/store"
	"github.com/jhoicas/shop-client/internal/cache"
	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/internal/infrastructure/api"
	"github.com/jhoicas/shop-client/internal/session"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso de la tienda
// ──────────────────────────────────────────────────────────────────────────────

const testToken = "token-de-prueba"

// fakeShop backend HTTP con estado: catálogo fijo, carrito mutable y órdenes.
// Calcula totales del lado servidor (como el backend real) y los expone con el
// nombre legado totalPrice para ejercitar la normalización.
type fakeShop struct {
	mu         sync.Mutex
	cartItems  []fakeItem
	nextItemID int64
	orders     []fakeOrder

	cartGets  int32         // hits a GET /cart (atómico)
	force401  atomic.Bool   // todo endpoint autenticado responde 401
	holdCart  chan struct{} // si no es nil, GET /cart espera aquí
}

type fakeItem struct {
	ID        int64
	ProductID int64
	Quantity  int
}

type fakeOrder struct {
	ID     int64
	Status string
	Total  decimal.Decimal
}

var fakeProducts = map[int64]struct {
	Name  string
	Price decimal.Decimal
	Stock int
}{
	7: {Name: "Cafetera italiana", Price: decimal.RequireFromString("19.99"), Stock: 3},
	8: {Name: "Molinillo manual", Price: decimal.RequireFromString("45.00"), Stock: 10},
}

func newFakeShop(t *testing.T) *fakeShop {
	t.Helper()
	return &fakeShop{nextItemID: 100}
}

func (f *fakeShop) productJSON(id int64) string {
	p := fakeProducts[id]
	return fmt.Sprintf(`{"id":%d,"name":%q,"description":"","price":%s,"category":"cocina","stock":%d}`,
		id, p.Name, p.Price.String(), p.Stock)
}

func (f *fakeShop) cartJSON() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	items := make([]string, 0, len(f.cartItems))
	for _, it := range f.cartItems {
		p := fakeProducts[it.ProductID]
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, fmt.Sprintf(`{"id":%d,"quantity":%d,"product":%s}`,
			it.ID, it.Quantity, f.productJSONLocked(it.ProductID)))
	}
	return fmt.Sprintf(`{"id":1,"items":[%s],"totalPrice":%s}`, strings.Join(items, ","), total.String())
}

func (f *fakeShop) productJSONLocked(id int64) string {
	p := fakeProducts[id]
	return fmt.Sprintf(`{"id":%d,"name":%q,"price":%s,"category":"cocina","stock":%d}`, id, p.Name, p.Price.String(), p.Stock)
}

// handler arma el mux del backend falso.
func (f *fakeShop) handler() http.Handler {
	mux := http.NewServeMux()

	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if f.force401.Load() || r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, `{"message":"no autorizado"}`, http.StatusUnauthorized)
			return false
		}
		return true
	}
	writeJSON := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secreta" {
			http.Error(w, `{"message":"credenciales inválidas"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, fmt.Sprintf(`{"token":%q,"user":{"id":1,"email":%q,"firstName":"Ana","lastName":"Gómez","phone":"300"}}`, testToken, in.Email))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, `{"message":"ok"}`)
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, `{"id":1,"email":"ana@example.com","firstName":"Ana","lastName":"Gómez","phone":"300"}`)
	})

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fmt.Sprintf(`[%s,%s]`, f.productJSON(7), f.productJSON(8)))
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if _, ok := fakeProducts[id]; !ok {
			http.Error(w, `{"message":"producto no encontrado"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, f.productJSON(id))
	})

	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		atomic.AddInt32(&f.cartGets, 1)
		if f.holdCart != nil {
			<-f.holdCart
		}
		writeJSON(w, f.cartJSON())
	})
	mux.HandleFunc("POST /cart/items", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var in struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		p, ok := fakeProducts[in.ProductID]
		if !ok {
			http.Error(w, `{"code":"NOT_FOUND","message":"producto no encontrado"}`, http.StatusNotFound)
			return
		}
		if in.Quantity > p.Stock {
			http.Error(w, `{"code":"OUT_OF_STOCK","message":"stock insuficiente"}`, http.StatusConflict)
			return
		}
		f.mu.Lock()
		f.nextItemID++
		f.cartItems = append(f.cartItems, fakeItem{ID: f.nextItemID, ProductID: in.ProductID, Quantity: in.Quantity})
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /cart", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		f.cartItems = nil
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		total := decimal.Zero
		for _, it := range f.cartItems {
			total = total.Add(fakeProducts[it.ProductID].Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		id := int64(len(f.orders) + 1)
		f.orders = append(f.orders, fakeOrder{ID: id, Status: "PENDING", Total: total})
		f.cartItems = nil
		f.mu.Unlock()
		writeJSON(w, fmt.Sprintf(`{"id":%d,"userId":1,"items":[],"totalPrice":%s,"status":"PENDING","shippingAddress":"Calle 1"}`, id, total.String()))
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		rows := make([]string, 0, len(f.orders))
		for _, o := range f.orders {
			rows = append(rows, fmt.Sprintf(`{"id":%d,"userId":1,"totalPrice":%s,"status":%q}`, o.ID, o.Total.String(), o.Status))
		}
		f.mu.Unlock()
		writeJSON(w, "["+strings.Join(rows, ",")+"]")
	})

	return mux
}

// newTestStore levanta el backend falso y un store aislado (sesión en tempdir).
func newTestStore(t *testing.T, shop *fakeShop) (*appstore.Store, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(shop.handler())
	t.Cleanup(srv.Close)

	sess := session.NewStore(filepath.Join(t.TempDir(), "session.json"), logger.Nop())
	st := appstore.New(appstore.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, sess, logger.Nop())
	return st, sess
}

// login inicia sesión contra el backend falso.
func login(t *testing.T, st *appstore.Store) {
	t.Helper()
	_, err := st.Login(context.Background(), "ana@example.com", "secreta")
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login y sesión
// ──────────────────────────────────────────────────────────────────────────────

// El login persiste la sesión y fuerza el refetch de user y cart.
func TestStore_Login_RefetchaUserYCart(t *testing.T) {
	st, sess := newTestStore(t, newFakeShop(t))

	login(t, st)

	assert.True(t, sess.Current().Authenticated())

	userEntry, user := st.ReadUser()
	assert.Equal(t, cache.StatusReady, userEntry.Status)
	require.NotNil(t, user)
	assert.Equal(t, "ana@example.com", user.Email)

	cartEntry, cart := st.ReadCart()
	assert.Equal(t, cache.StatusReady, cartEntry.Status)
	require.NotNil(t, cart)
	assert.True(t, cart.IsEmpty())
}

// Un login fallido no toca sesión ni caché.
func TestStore_LoginFallido_NoTocaNada(t *testing.T) {
	st, sess := newTestStore(t, newFakeShop(t))

	_, err := st.Login(context.Background(), "ana@example.com", "incorrecta")
	require.Error(t, err)

	assert.False(t, sess.Current().Authenticated())
	userEntry, _ := st.ReadUser()
	assert.Equal(t, cache.StatusIdle, userEntry.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones de carrito
// ──────────────────────────────────────────────────────────────────────────────

// Escenario completo: producto 7 (19.99, stock 3), agregar 2 unidades → el
// total visible tras el refetch forzado es el del servidor: 39.98. Luego
// logout → cart y user desalojados y sesión vacía.
func TestStore_AgregarAlCarrito_TotalDelServidor_LuegoLogout(t *testing.T) {
	st, sess := newTestStore(t, newFakeShop(t))
	login(t, st)

	require.NoError(t, st.FetchIfAbsent(context.Background(), cache.ProductKey(7)))
	_, product := st.ReadProduct(7)
	require.NotNil(t, product)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 3, product.Stock)

	require.NoError(t, st.AddToCart(context.Background(), 7, 2))

	cartEntry, cart := st.ReadCart()
	assert.Equal(t, cache.StatusReady, cartEntry.Status)
	require.NotNil(t, cart)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("39.98")),
		"el total visible debe ser el calculado por el servidor, sin recomputar en el cliente")
	assert.Equal(t, 2, cart.ItemCount())

	require.NoError(t, st.Logout(context.Background()))

	cartEntry, _ = st.ReadCart()
	userEntry, _ := st.ReadUser()
	assert.Equal(t, cache.StatusIdle, cartEntry.Status, "logout debe desalojar el carrito")
	assert.Equal(t, cache.StatusIdle, userEntry.Status, "logout debe desalojar el usuario")
	assert.False(t, sess.Current().Authenticated())
	assert.Nil(t, sess.Current().Identity)
}

// Una mutación rechazada por el servidor no toca la caché: el carrito sigue
// mostrando el último estado confirmado.
func TestStore_MutacionFallida_NoTocaCache(t *testing.T) {
	st, _ := newTestStore(t, newFakeShop(t))
	login(t, st)

	require.NoError(t, st.AddToCart(context.Background(), 7, 1))
	_, before := st.ReadCart()
	require.NotNil(t, before)

	// stock de 7 es 3: pedir 99 provoca OUT_OF_STOCK
	err := st.AddToCart(context.Background(), 7, 99)
	require.Error(t, err)
	apiErr := domain.AsAPIError(err)
	assert.Equal(t, "OUT_OF_STOCK", apiErr.Code)

	entry, after := st.ReadCart()
	assert.Equal(t, cache.StatusReady, entry.Status)
	require.NotNil(t, after)
	assert.True(t, after.TotalAmount.Equal(before.TotalAmount), "la mutación fallida no debe alterar el carrito cacheado")
}

// La validación local corta antes de llegar a la red.
func TestStore_CantidadInvalida_ValidationError(t *testing.T) {
	st, _ := newTestStore(t, newFakeShop(t))
	login(t, st)

	err := st.AddToCart(context.Background(), 7, 0)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.AsAPIError(err).Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Coalescing a nivel de store
// ──────────────────────────────────────────────────────────────────────────────

// Dos FetchIfAbsent('cart') concurrentes disparan un solo GET /cart.
func TestStore_FetchIfAbsentConcurrente_UnSoloGET(t *testing.T) {
	shop := newFakeShop(t)
	shop.holdCart = make(chan struct{})
	st, sess := newTestStore(t, shop)

	// Sesión directa, sin login: el login ya refetchea cart y ensuciaría el conteo.
	sess.Set(testToken, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, st.FetchIfAbsent(context.Background(), cache.CartKey()))
		}()
	}

	// deja que ambos llamantes entren y libera el backend
	time.Sleep(50 * time.Millisecond)
	close(shop.holdCart)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&shop.cartGets), "debe haber exactamente un GET /cart")
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────────────────────────────────

// PlaceOrder desaloja el carrito y refetchea la lista de órdenes.
func TestStore_PlaceOrder_EvictaCarritoYRefetchaOrdenes(t *testing.T) {
	st, _ := newTestStore(t, newFakeShop(t))
	login(t, st)

	require.NoError(t, st.AddToCart(context.Background(), 8, 1))

	order, err := st.PlaceOrder(context.Background(), api.CreateOrderRequest{
		ShippingAddress: "Calle 1 # 2-3",
		Phone:           "3001234567",
	})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("45.00")))
	assert.Equal(t, "PENDING", string(order.Status))

	cartEntry, _ := st.ReadCart()
	assert.Equal(t, cache.StatusIdle, cartEntry.Status, "el carrito debe quedar desalojado tras el checkout")

	ordersEntry, orders := st.ReadOrders()
	assert.Equal(t, cache.StatusReady, ordersEntry.Status)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("45.00")))
}

// Sin dirección de envío el checkout ni siquiera llega a la red.
func TestStore_PlaceOrderSinDireccion_ValidationError(t *testing.T) {
	st, _ := newTestStore(t, newFakeShop(t))
	login(t, st)

	_, err := st.PlaceOrder(context.Background(), api.CreateOrderRequest{Phone: "300"})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.AsAPIError(err).Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Teardown de sesión por 401
// ──────────────────────────────────────────────────────────────────────────────

// Tres peticiones concurrentes que fallan con 401 desalojan toda la caché y
// limpian la sesión exactamente UNA vez: un solo evento "sesión terminada".
func TestStore_Teardown401_ExactamenteUnaVez(t *testing.T) {
	shop := newFakeShop(t)
	st, sess := newTestStore(t, shop)
	login(t, st)

	// precarga entradas para comprobar el desalojo total
	require.NoError(t, st.FetchIfAbsent(context.Background(), cache.ProductsKey()))

	var ended int32
	cancel := st.SubscribeSessionEnd(func() { atomic.AddInt32(&ended, 1) })
	defer cancel()

	shop.force401.Store(true)

	keys := []cache.Key{cache.CartKey(), cache.OrdersKey(), cache.UserKey()}
	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k cache.Key) {
			defer wg.Done()
			err := st.ForceRefetch(context.Background(), k)
			assert.Error(t, err)
			assert.True(t, domain.IsAuth(err), "cada petición debe fallar con AuthError")
		}(k)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ended), "el teardown debe emitirse exactamente una vez")
	assert.False(t, sess.Current().Authenticated(), "la sesión debe quedar limpia")

	for _, k := range append(keys, cache.ProductsKey()) {
		assert.Equal(t, cache.StatusIdle, st.Read(k).Status, "toda entrada debe quedar desalojada: "+k.String())
	}
}

// Un login exitoso re-arma el one-shot: un teardown posterior vuelve a emitirse.
func TestStore_LoginRearmaTeardown(t *testing.T) {
	shop := newFakeShop(t)
	st, _ := newTestStore(t, shop)
	login(t, st)

	var ended int32
	cancel := st.SubscribeSessionEnd(func() { atomic.AddInt32(&ended, 1) })
	defer cancel()

	shop.force401.Store(true)
	_ = st.ForceRefetch(context.Background(), cache.CartKey())
	assert.Equal(t, int32(1), atomic.LoadInt32(&ended))

	// segundo 401 con el flag ya disparado: no-op
	_ = st.ForceRefetch(context.Background(), cache.CartKey())
	assert.Equal(t, int32(1), atomic.LoadInt32(&ended))

	shop.force401.Store(false)
	login(t, st)
	shop.force401.Store(true)
	_ = st.ForceRefetch(context.Background(), cache.CartKey())
	assert.Equal(t, int32(2), atomic.LoadInt32(&ended), "tras un login el teardown debe poder dispararse de nuevo")
}
