package handler

import (
	"net/http"

	"lms-backend/internal/middleware"
	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Please login to access this resource"))
		return
	}

	var payload model.CreateOrderRequest
	if err := decodeAndValidate(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.Create(r.Context(), user, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.OrderResponse{Success: true, Order: order})
}

func (h *OrderHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.OrdersResponse{Success: true, Orders: orders})
}
