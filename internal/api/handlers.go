package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/query"
	"go.uber.org/zap"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger,
	}
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateProduct
	if !h.decode(w, r, &cmd) {
		return
	}
	p, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	h.respond(w, r, http.StatusCreated, p, err)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queryHandler.GetProduct(r.Context(), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handlers) EditProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.EditProduct
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("id")
	p, err := h.cmdHandler.EditProduct(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handlers) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var cmd command.AdjustStock
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("id")
	p, err := h.cmdHandler.AdjustStock(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handlers) ChangePrice(w http.ResponseWriter, r *http.Request) {
	var cmd command.ChangePrice
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("id")
	p, err := h.cmdHandler.ChangePrice(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handlers) DiscontinueProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.cmdHandler.DiscontinueProduct(r.Context(), command.DiscontinueProduct{ProductID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, p, err)
}

// Customer Handlers

func (h *Handlers) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var cmd command.RegisterCustomer
	if !h.decode(w, r, &cmd) {
		return
	}
	c, err := h.cmdHandler.RegisterCustomer(r.Context(), cmd)
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.queryHandler.GetCustomer(r.Context(), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) UpdateCustomerAddresses(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateCustomerAddresses
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.CustomerID = r.PathValue("id")
	c, err := h.cmdHandler.UpdateCustomerAddresses(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.cmdHandler.DeactivateCustomer(r.Context(), command.DeactivateCustomer{CustomerID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var cmd command.ChangePassword
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.CustomerID = r.PathValue("id")
	err := h.cmdHandler.ChangePassword(r.Context(), cmd)
	h.respond(w, r, http.StatusNoContent, nil, err)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.queryHandler.GetCart(r.Context(), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddToCart
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.CustomerID = r.PathValue("id")
	c, err := h.cmdHandler.AddToCart(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.cmdHandler.UpdateCartItem(r.Context(), command.UpdateCartItem{
		CustomerID: r.PathValue("id"),
		ProductID:  r.PathValue("productID"),
		Quantity:   req.Quantity,
	})
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cmdHandler.RemoveFromCart(r.Context(), command.RemoveFromCart{
		CustomerID: r.PathValue("id"),
		ProductID:  r.PathValue("productID"),
	})
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{CustomerID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handlers) AbandonCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cmdHandler.AbandonCart(r.Context(), command.AbandonCart{CustomerID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, c, err)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.PlaceOrder
	if r.ContentLength != 0 && !h.decode(w, r, &cmd) {
		return
	}
	cmd.CustomerID = r.PathValue("id")
	o, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	h.respond(w, r, http.StatusCreated, o, err)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrders(r.Context(), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, orders, err)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queryHandler.GetOrder(r.Context(), r.PathValue("id"))
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.ConfirmOrder(r.Context(), command.AdvanceOrder{OrderID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) StartProcessing(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.StartProcessing(r.Context(), command.AdvanceOrder{OrderID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) ShipOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.AdvanceOrder
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")
	o, err := h.cmdHandler.ShipOrder(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.DeliverOrder(r.Context(), command.AdvanceOrder{OrderID: r.PathValue("id")})
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.CancelOrder
	if r.ContentLength != 0 && !h.decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")
	o, err := h.cmdHandler.CancelOrder(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) ChangeOrderAddress(w http.ResponseWriter, r *http.Request) {
	var cmd command.ChangeOrderAddress
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")
	o, err := h.cmdHandler.ChangeOrderAddress(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) CapturePayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.CapturePayment
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")
	o, err := h.cmdHandler.CapturePayment(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handlers) FailPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.FailPayment
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")
	o, err := h.cmdHandler.FailPayment(r.Context(), cmd)
	h.respond(w, r, http.StatusOK, o, err)
}

// Helper functions

type errorBody struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
	Requested *int64 `json:"requested,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, r, domainerr.Validationf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	respondJSON(w, status, data)
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerr.HTTPStatus(err)
	body := errorBody{Error: err.Error()}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body.Error = "internal error"
	}

	var stockErr *domainerr.InsufficientStockError
	if errors.As(err, &stockErr) {
		body.ProductID = stockErr.ProductID
		body.Requested = &stockErr.Requested
		body.Available = &stockErr.Available
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
