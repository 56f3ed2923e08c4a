package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Account routes
	api.HandleFunc("/register", handler.Register).Methods("POST")
	api.HandleFunc("/login", handler.Login).Methods("POST")
	api.HandleFunc("/logout", handler.Logout).Methods("POST")
	api.HandleFunc("/account/password", handler.RequireAuth(handler.ChangePassword)).Methods("PUT")

	// Trading routes
	api.HandleFunc("/quote/{symbol}", handler.RequireAuth(handler.GetQuote)).Methods("GET")
	api.HandleFunc("/buy", handler.RequireAuth(handler.Buy)).Methods("POST")
	api.HandleFunc("/sell", handler.RequireAuth(handler.Sell)).Methods("POST")
	api.HandleFunc("/portfolio", handler.RequireAuth(handler.GetPortfolio)).Methods("GET")
	api.HandleFunc("/history", handler.RequireAuth(handler.GetHistory)).Methods("GET")

	return r
}
