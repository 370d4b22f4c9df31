package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/caferp/database"
	"github.com/ray-remotestate/caferp/handlers"
	"github.com/ray-remotestate/caferp/middlewares"
	"github.com/ray-remotestate/caferp/service/analytics"
	"github.com/ray-remotestate/caferp/service/menu"
	"github.com/ray-remotestate/caferp/service/order"
	"github.com/ray-remotestate/caferp/service/user"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes() *Server {
	db := database.CafeERP

	orderHandler := handlers.NewOrderHandler(order.NewService(order.NewRepo(db)))
	analyticsHandler := handlers.NewAnalyticsHandler(analytics.NewService(analytics.NewRepo(db)))
	menuHandler := handlers.NewMenuHandler(menu.NewService(db))
	userHandler := handlers.NewUserHandler(user.NewService(db))

	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"status": "ok", "timestamp": "`+time.Now().UTC().Format(time.RFC3339)+`"}`)
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users", userHandler.Create).Methods("POST")
	api.HandleFunc("/users", userHandler.List).Methods("GET")
	api.HandleFunc("/users/{id}/role", userHandler.ChangeRole).Methods("PATCH")

	api.HandleFunc("/menu-items", menuHandler.Create).Methods("POST")
	api.HandleFunc("/menu-items", menuHandler.List).Methods("GET")
	api.HandleFunc("/menu-items/{id}", menuHandler.Update).Methods("PATCH")

	api.HandleFunc("/orders", orderHandler.Create).Methods("POST")
	api.HandleFunc("/orders", orderHandler.List).Methods("GET")

	// Analytics routes go before /orders/{id} so "summary" is not read
	// as an order id.
	api.HandleFunc("/orders/summary", analyticsHandler.Summary).Methods("GET")
	api.HandleFunc("/orders/stats/intervals", analyticsHandler.StatsByInterval).Methods("GET")
	api.HandleFunc("/orders/stats/top-items", analyticsHandler.TopMenuItems).Methods("GET")
	api.HandleFunc("/orders/stats/top-users", analyticsHandler.TopUsers).Methods("GET")
	api.HandleFunc("/orders/stats/by-dimension", analyticsHandler.StatsByDimension).Methods("GET")
	api.HandleFunc("/orders/stats/hours", analyticsHandler.HourOfDayStats).Methods("GET")
	api.HandleFunc("/orders/stats/weekdays", analyticsHandler.WeekdayStats).Methods("GET")
	api.HandleFunc("/orders/stats/completion-time", analyticsHandler.CompletionTimeStats).Methods("GET")

	api.HandleFunc("/orders/{id}", orderHandler.Get).Methods("GET")
	api.HandleFunc("/orders/{id}", orderHandler.Update).Methods("PATCH")
	api.HandleFunc("/orders/{id}", orderHandler.Delete).Methods("DELETE")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
