package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/safar/go-marketplace/internal/config"
	"github.com/safar/go-marketplace/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAuth(db, &cfg.Auth, h)
	}

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/signup", handleSignup(db)).Methods("POST")
	authRoutes.HandleFunc("/login", handleLogin(db, &cfg.Auth)).Methods("POST")
	authRoutes.HandleFunc("/logout", handleLogout(&cfg.Auth)).Methods("POST")
	authRoutes.HandleFunc("/check", authed(handleAuthCheck())).Methods("GET")

	userRoutes := api.PathPrefix("/users").Subrouter()
	userRoutes.HandleFunc("/profile", authed(handleGetProfile())).Methods("GET")
	userRoutes.HandleFunc("/profile", authed(handleUpdateProfile(db))).Methods("PUT")

	productRoutes := api.PathPrefix("/products").Subrouter()
	productRoutes.HandleFunc("", authed(requireSeller(handleCreateProduct(db)))).Methods("POST")
	productRoutes.HandleFunc("", handleListProducts(db)).Methods("GET")
	productRoutes.HandleFunc("/seller", authed(requireSeller(handleSellerProducts(db)))).Methods("GET")
	productRoutes.HandleFunc("/{id:[0-9]+}", handleGetProduct(db)).Methods("GET")
	productRoutes.HandleFunc("/{id:[0-9]+}", authed(handleUpdateProduct(db))).Methods("PUT")
	productRoutes.HandleFunc("/{id:[0-9]+}", authed(handleDeleteProduct(db))).Methods("DELETE")
	productRoutes.HandleFunc("/{id:[0-9]+}/buy", authed(handleBuyProduct(db))).Methods("POST")

	orderRoutes := api.PathPrefix("/orders").Subrouter()
	orderRoutes.HandleFunc("", authed(handlePlaceOrder(db))).Methods("POST")
	orderRoutes.HandleFunc("/customer", authed(handleCustomerOrders(db))).Methods("GET")
	orderRoutes.HandleFunc("/seller", authed(requireSeller(handleSellerOrders(db)))).Methods("GET")
	orderRoutes.HandleFunc("/seller-sales", authed(requireSeller(handleSellerSales(db)))).Methods("GET")
	orderRoutes.HandleFunc("/seller-sales/reconcile", authed(requireSeller(handleReconcileSellerSales(db)))).Methods("POST")
	orderRoutes.HandleFunc("/seller-stats", authed(requireSeller(handleSellerStats(db)))).Methods("GET")
	orderRoutes.HandleFunc("/{id:[0-9]+}/complete", authed(handleCompleteOrder(db))).Methods("POST")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
