package controllers

import (
	"net/http"

	"wearero-api/middleware"
	"wearero-api/services"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
)

// OrderController handles order-related requests
type OrderController struct {
	orders *services.OrderService
	log    logrus.FieldLogger
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService, log logrus.FieldLogger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

type statusRequest struct {
	Status string `json:"status"`
}

// CreateOrder places an order for the signed-in user and clears their cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	limitBody(w, r)
	var in services.PlaceOrderInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.Place(ctx, userID, in)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, order)
}

// GetMyOrders lists the signed-in user's orders
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.ListForUser(ctx, userID)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

// GetOrder returns one order to its owner or an admin
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	id, err := pathID(r, "id", "order")
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.Get(ctx, id, userID, middleware.IsAdmin(r.Context()))
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, order)
}

// GetOrders lists every order (Admin only)
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.ListAll(ctx)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus changes the delivery status of an order (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	limitBody(w, r)
	var req statusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, order)
}

// DeleteOrder removes an order (Admin only)
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "order")
	if err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := oc.orders.Delete(ctx, id); err != nil {
		utils.RespondError(w, oc.log, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Order removed")
}
