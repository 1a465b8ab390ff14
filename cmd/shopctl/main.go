package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appstore "github.com/jhoicas/shop-client/internal/application/store"
	"github.com/jhoicas/shop-client/internal/cache"
	"github.com/jhoicas/shop-client/internal/infrastructure/api"
	"github.com/jhoicas/shop-client/internal/session"
	"github.com/jhoicas/shop-client/pkg/config"
	"github.com/jhoicas/shop-client/pkg/logger"
)

const usage = `shopctl — cliente de la tienda

Uso:
  shopctl login <email> <password>
  shopctl logout
  shopctl me
  shopctl products [categoria]
  shopctl search <keyword>
  shopctl cart
  shopctl cart-add <productID> <cantidad>
  shopctl cart-set <itemID> <cantidad>
  shopctl cart-rm <itemID>
  shopctl cart-clear
  shopctl checkout <direccion> <telefono>
  shopctl orders
  shopctl order <id>
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	sess := session.NewStore(cfg.Session.File, log)
	store := appstore.New(appstore.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
	}, sess, log)

	// La UI decide qué hacer cuando la sesión muere; aquí solo se avisa.
	store.SubscribeSessionEnd(func() {
		fmt.Fprintln(os.Stderr, "sesión terminada: vuelve a iniciar sesión con `shopctl login`")
	})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, store, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, store *appstore.Store, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("uso: shopctl login <email> <password>")
		}
		user, err := store.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("sesión iniciada como %s (%s)\n", user.FullName(), user.Email)
		return nil

	case "logout":
		if err := store.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("sesión cerrada")
		return nil

	case "me":
		if err := store.FetchIfAbsent(ctx, cache.UserKey()); err != nil {
			return err
		}
		_, user := store.ReadUser()
		if user == nil {
			return fmt.Errorf("no hay usuario en caché")
		}
		fmt.Printf("%s <%s> tel: %s\n", user.FullName(), user.Email, user.Phone)
		return nil

	case "products":
		key := cache.ProductsKey()
		if len(args) == 1 {
			key = cache.CategoryKey(args[0])
		}
		if err := store.FetchIfAbsent(ctx, key); err != nil {
			return err
		}
		_, products := store.ReadProducts(key)
		for _, p := range products {
			fmt.Printf("%4d  %-30s  $%s  (stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}
		return nil

	case "search":
		if len(args) != 1 {
			return fmt.Errorf("uso: shopctl search <keyword>")
		}
		key := cache.SearchKey(args[0])
		if err := store.FetchIfAbsent(ctx, key); err != nil {
			return err
		}
		_, products := store.ReadProducts(key)
		for _, p := range products {
			fmt.Printf("%4d  %-30s  $%s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}
		return nil

	case "cart":
		if err := store.FetchIfAbsent(ctx, cache.CartKey()); err != nil {
			return err
		}
		_, cart := store.ReadCart()
		if cart == nil || cart.IsEmpty() {
			fmt.Println("carrito vacío")
			return nil
		}
		for _, it := range cart.Items {
			fmt.Printf("%4d  %-30s  x%d  $%s\n", it.ID, it.Product.Name, it.Quantity, it.Product.Price.StringFixed(2))
		}
		fmt.Printf("total: $%s\n", cart.TotalAmount.StringFixed(2))
		return nil

	case "cart-add":
		productID, quantity, err := twoInts(args, "shopctl cart-add <productID> <cantidad>")
		if err != nil {
			return err
		}
		if err := store.AddToCart(ctx, productID, int(quantity)); err != nil {
			return err
		}
		_, cart := store.ReadCart()
		if cart != nil {
			fmt.Printf("agregado; total: $%s\n", cart.TotalAmount.StringFixed(2))
		}
		return nil

	case "cart-set":
		itemID, quantity, err := twoInts(args, "shopctl cart-set <itemID> <cantidad>")
		if err != nil {
			return err
		}
		return store.UpdateCartItem(ctx, itemID, int(quantity))

	case "cart-rm":
		if len(args) != 1 {
			return fmt.Errorf("uso: shopctl cart-rm <itemID>")
		}
		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("itemID inválido: %s", args[0])
		}
		return store.RemoveCartItem(ctx, itemID)

	case "cart-clear":
		return store.ClearCart(ctx)

	case "checkout":
		if len(args) != 2 {
			return fmt.Errorf("uso: shopctl checkout <direccion> <telefono>")
		}
		order, err := store.PlaceOrder(ctx, api.CreateOrderRequest{
			ShippingAddress: args[0],
			Phone:           args[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("orden %d creada, total $%s, estado %s\n", order.ID, order.TotalAmount.StringFixed(2), order.Status)
		return nil

	case "orders":
		if err := store.FetchIfAbsent(ctx, cache.OrdersKey()); err != nil {
			return err
		}
		_, orders := store.ReadOrders()
		for _, o := range orders {
			fmt.Printf("%4d  %-10s  $%s  %s\n", o.ID, o.Status, o.TotalAmount.StringFixed(2), o.CreatedAt.Format("2006-01-02"))
		}
		return nil

	case "order":
		if len(args) != 1 {
			return fmt.Errorf("uso: shopctl order <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("id inválido: %s", args[0])
		}
		if err := store.FetchIfAbsent(ctx, cache.OrderKey(id)); err != nil {
			return err
		}
		_, order := store.ReadOrder(id)
		if order == nil {
			return fmt.Errorf("orden %d no está en caché", id)
		}
		fmt.Printf("orden %d: %s, total $%s, envío a %s\n", order.ID, order.Status, order.TotalAmount.StringFixed(2), order.ShippingAddress)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("comando desconocido: %s", command)
	}
}

func twoInts(args []string, usageLine string) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("uso: %s", usageLine)
	}
	a, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("valor inválido: %s", args[0])
	}
	b, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("valor inválido: %s", args[1])
	}
	return a, b, nil
}
