package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/cart"
	"github.com/safar/storefront/internal/catalog"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/order"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const idempotencyHeader = "Idempotency-Key"

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func handleListProducts(db *sql.DB, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		result, err := catalog.ListProducts(r.Context(), db, page, pageSize)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleGetProduct(lookup catalog.Lookup, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			respondValidation(w, "invalid product id")
			return
		}

		product, err := lookup.Product(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleCreateProduct(db *sql.DB, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SKU         string  `json:"sku"`
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Price       float64 `json:"price"`
			Stock       int     `json:"stock"`
			ImageURL    string  `json:"image_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}

		price := decimal.NewFromFloat(req.Price)
		product, err := catalog.CreateProduct(r.Context(), db, req.SKU, req.Name, req.Description, req.ImageURL, price, req.Stock)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func handleUpdatePrice(db *sql.DB, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			respondValidation(w, "invalid product id")
			return
		}

		var req struct {
			Price float64 `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}

		if err := catalog.UpdatePrice(r.Context(), db, id, decimal.NewFromFloat(req.Price)); err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type cartResponse struct {
	*models.Cart
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func renderCart(c *models.Cart) cartResponse {
	return cartResponse{
		Cart:      c,
		ItemCount: cart.ItemCount(c),
		Subtotal:  cart.Subtotal(c),
	}
}

func handleGetCart(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		c, err := carts.Get(r.Context(), principal.UserID)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, renderCart(c))
	}
}

func handleCartSummary(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		quote, err := carts.Summary(r.Context(), principal.UserID)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, quote)
	}
}

func handleAddCartItem(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int   `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		c, err := carts.AddItem(r.Context(), principal.UserID, req.ProductID, req.Quantity)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, renderCart(c))
	}
}

func handleUpdateCartItem(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		productID, ok := pathID(r, "productID")
		if !ok {
			respondValidation(w, "invalid product id")
			return
		}

		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}

		c, err := carts.UpdateQuantity(r.Context(), principal.UserID, productID, req.Quantity)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, renderCart(c))
	}
}

func handleRemoveCartItem(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		productID, ok := pathID(r, "productID")
		if !ok {
			respondValidation(w, "invalid product id")
			return
		}

		c, err := carts.RemoveItem(r.Context(), principal.UserID, productID)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, renderCart(c))
	}
}

func handleClearCart(carts *cart.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		if err := carts.Clear(r.Context(), principal.UserID); err != nil {
			respondError(w, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCreateOrder(orders *order.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		var req order.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}
		req.IdempotencyKey = strings.TrimSpace(r.Header.Get(idempotencyHeader))

		o, err := orders.Create(r.Context(), principal, req)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusCreated, o)
	}
}

func handleListOrders(orders *order.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := orders.ListAll(r.Context())
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, all)
	}
}

func handleGetOrder(orders *order.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		id, ok := pathID(r, "id")
		if !ok {
			respondValidation(w, "invalid order id")
			return
		}

		o, err := orders.Get(r.Context(), principal, id)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, o)
	}
}

func handleListUserOrders(orders *order.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		userID, ok := pathID(r, "userID")
		if !ok {
			respondValidation(w, "invalid user id")
			return
		}

		userOrders, err := orders.ListByUser(r.Context(), principal, userID)
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, userOrders)
	}
}

func handleSetOrderStatus(orders *order.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())

		id, ok := pathID(r, "id")
		if !ok {
			respondValidation(w, "invalid order id")
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, "invalid request body")
			return
		}
		if req.Status == "" {
			respondValidation(w, "status is required")
			return
		}

		o, err := orders.SetStatus(r.Context(), principal, id, models.OrderStatus(req.Status))
		if err != nil {
			respondError(w, log, err)
			return
		}

		respondJSON(w, http.StatusOK, o)
	}
}
