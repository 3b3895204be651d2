package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/store"
)

func handlePlaceOrder(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, _ := auth.UserFrom(r.Context())

		var req struct {
			Items []struct {
				ProductID int64 `json:"product_id"`
				Quantity  int   `json:"quantity"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		items := make([]store.OrderItemRequest, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, store.OrderItemRequest{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := store.PlaceOrder(r.Context(), db, store.PlaceOrderRequest{
			CustomerID: customer.ID,
			Items:      items,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "order placed successfully",
			"order":   order,
		})
	}
}

func handleCustomerOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, _ := auth.UserFrom(r.Context())

		cursor := r.URL.Query().Get("cursor")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		page, err := store.CustomerOrders(r.Context(), db, customer.ID, cursor, limit)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, page)
	}
}

func handleSellerOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		result, err := store.SellerOrders(r.Context(), db, seller.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleSellerSales(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		summary, err := store.SellerSales(r.Context(), db, seller.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, summary)
	}
}

func handleReconcileSellerSales(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		user, err := store.ReconcileSellerCounters(r.Context(), db, seller.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "seller counters reconciled",
			"user":    user,
		})
	}
}

func handleSellerStats(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		stats, err := store.SellerStatsLive(r.Context(), db, seller.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, stats)
	}
}

func handleCompleteOrder(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, _ := auth.UserFrom(r.Context())

		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		order, err := store.CompleteOrder(r.Context(), db, customer.ID, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "order completed",
			"order":   order,
		})
	}
}
