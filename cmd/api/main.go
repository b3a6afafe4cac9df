package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/cart"
	"github.com/safar/storefront/internal/catalog"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/order"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Load config: %v", err)
	}

	log := newLogger(cfg.Log)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Info("connected to database")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	lookup := catalog.NewDBCatalog(db)
	carts := cart.NewService(cart.NewStore(rdb, cfg.Redis.CartTTL, log), lookup)
	orders := order.NewService(order.NewPostgresRepository(db), lookup, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(auth.Authenticate(auth.NewDBResolver(db)))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handleListProducts(db, log))
			r.Get("/{id}", handleGetProduct(lookup, log))
			r.With(auth.RequireAdmin).Post("/", handleCreateProduct(db, log))
			r.With(auth.RequireAdmin).Put("/{id}/price", handleUpdatePrice(db, log))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", handleGetCart(carts, log))
			r.Get("/summary", handleCartSummary(carts, log))
			r.Post("/items", handleAddCartItem(carts, log))
			r.Put("/items/{productID}", handleUpdateCartItem(carts, log))
			r.Delete("/items/{productID}", handleRemoveCartItem(carts, log))
			r.Delete("/", handleClearCart(carts, log))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(auth.RequireAuth).Post("/", handleCreateOrder(orders, log))
			r.With(auth.RequireAdmin).Get("/", handleListOrders(orders, log))
			r.With(auth.RequireAuth).Get("/{id}", handleGetOrder(orders, log))
			r.With(auth.RequireAuth).Get("/user/{userID}", handleListUserOrders(orders, log))
			r.With(auth.RequireAdmin).Put("/{id}", handleSetOrderStatus(orders, log))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Infof("server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
