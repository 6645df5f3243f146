package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

func NewRouter(handlers *Handlers, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Products
	mux.HandleFunc("POST /products", handlers.CreateProduct)
	mux.HandleFunc("GET /products/{id}", handlers.GetProduct)
	mux.HandleFunc("PATCH /products/{id}", handlers.EditProduct)
	mux.HandleFunc("POST /products/{id}/stock", handlers.AdjustStock)
	mux.HandleFunc("PUT /products/{id}/price", handlers.ChangePrice)
	mux.HandleFunc("POST /products/{id}/discontinue", handlers.DiscontinueProduct)

	// Customers
	mux.HandleFunc("POST /customers", handlers.RegisterCustomer)
	mux.HandleFunc("GET /customers/{id}", handlers.GetCustomer)
	mux.HandleFunc("PUT /customers/{id}/addresses", handlers.UpdateCustomerAddresses)
	mux.HandleFunc("POST /customers/{id}/deactivate", handlers.DeactivateCustomer)
	mux.HandleFunc("POST /customers/{id}/password", handlers.ChangePassword)

	// Cart
	mux.HandleFunc("GET /customers/{id}/cart", handlers.GetCart)
	mux.HandleFunc("DELETE /customers/{id}/cart", handlers.ClearCart)
	mux.HandleFunc("POST /customers/{id}/cart/items", handlers.AddToCart)
	mux.HandleFunc("PUT /customers/{id}/cart/items/{productID}", handlers.UpdateCartItem)
	mux.HandleFunc("DELETE /customers/{id}/cart/items/{productID}", handlers.RemoveFromCart)
	mux.HandleFunc("POST /customers/{id}/cart/abandon", handlers.AbandonCart)

	// Orders
	mux.HandleFunc("POST /customers/{id}/checkout", handlers.PlaceOrder)
	mux.HandleFunc("GET /customers/{id}/orders", handlers.ListOrders)
	mux.HandleFunc("GET /orders/{id}", handlers.GetOrder)
	mux.HandleFunc("POST /orders/{id}/confirm", handlers.ConfirmOrder)
	mux.HandleFunc("POST /orders/{id}/process", handlers.StartProcessing)
	mux.HandleFunc("POST /orders/{id}/ship", handlers.ShipOrder)
	mux.HandleFunc("POST /orders/{id}/deliver", handlers.DeliverOrder)
	mux.HandleFunc("POST /orders/{id}/cancel", handlers.CancelOrder)
	mux.HandleFunc("PUT /orders/{id}/address", handlers.ChangeOrderAddress)
	mux.HandleFunc("POST /orders/{id}/payment/capture", handlers.CapturePayment)
	mux.HandleFunc("POST /orders/{id}/payment/fail", handlers.FailPayment)

	return withLogging(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
