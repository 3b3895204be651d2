package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/safar/go-marketplace/internal/auth"
	"github.com/safar/go-marketplace/internal/store"
	"github.com/shopspring/decimal"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func handleCreateProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		var req struct {
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Price       float64 `json:"price"`
			Quantity    int     `json:"quantity"`
			Image       string  `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Name == "" || req.Description == "" {
			respondError(w, http.StatusBadRequest, "name and description are required")
			return
		}
		if req.Price <= 0 {
			respondError(w, http.StatusBadRequest, "price must be greater than 0")
			return
		}
		if req.Quantity < 0 {
			respondError(w, http.StatusBadRequest, "quantity cannot be negative")
			return
		}

		price := decimal.NewFromFloat(req.Price)
		product, err := store.CreateProduct(r.Context(), db, seller.ID, req.Name, req.Description, price, req.Quantity, req.Image)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func handleListProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		result, err := store.ListProducts(r.Context(), db, page, pageSize)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleSellerProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, _ := auth.UserFrom(r.Context())

		products, err := store.ListSellerProducts(r.Context(), db, seller.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
	}
}

func handleGetProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		product, err := store.GetProduct(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleUpdateProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.UserFrom(r.Context())

		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		var req struct {
			Name        *string  `json:"name"`
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			Quantity    *int     `json:"quantity"`
			Image       *string  `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		update := store.UpdateProductRequest{
			Name:        req.Name,
			Description: req.Description,
			Quantity:    req.Quantity,
			Image:       req.Image,
		}
		if req.Price != nil {
			price := decimal.NewFromFloat(*req.Price)
			update.Price = &price
		}

		product, err := store.UpdateProduct(r.Context(), db, principal.ID, id, update)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleDeleteProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.UserFrom(r.Context())

		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		if err := store.DeleteProduct(r.Context(), db, principal.ID, id); err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
	}
}

func handleBuyProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		req := struct {
			Quantity int `json:"quantity"`
		}{Quantity: 1}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		product, err := store.BuyProduct(r.Context(), db, id, req.Quantity)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "purchase successful",
			"product": product,
		})
	}
}
