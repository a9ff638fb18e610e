package controllers

import (
	"net/http"

	"wearero-api/middleware"
	"wearero-api/services"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
)

// CartController handles cart-related requests. Cart routes accept both
// signed-in users and guests; the token wins when both are given.
type CartController struct {
	carts *services.CartService
	log   logrus.FieldLogger
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, log logrus.FieldLogger) *CartController {
	return &CartController{carts: carts, log: log}
}

type cartRequest struct {
	services.CartLine
	GuestID string `json:"guestId"`
}

type mergeRequest struct {
	GuestID string `json:"guestId"`
}

func owner(r *http.Request, guestID string) services.Owner {
	o := services.Owner{GuestID: guestID}
	if id, ok := middleware.UserID(r.Context()); ok {
		o.UserID = &id
	}
	return o
}

// GetCart returns the caller's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.Get(ctx, owner(r, r.URL.Query().Get("guestId")))
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	if cart == nil {
		utils.RespondMessage(w, http.StatusNotFound, "Cart not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// AddToCart adds a product to the caller's cart, creating it when needed
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req cartRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, created, err := cc.carts.AddItem(ctx, owner(r, req.GuestID), req.CartLine)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondJSON(w, status, cart)
}

// UpdateCart sets the quantity of a line; zero removes it
func (cc *CartController) UpdateCart(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req cartRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.UpdateItem(ctx, owner(r, req.GuestID), req.CartLine)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a line from the caller's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var req cartRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.RemoveItem(ctx, owner(r, req.GuestID), req.CartLine)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// MergeCart folds a guest cart into the signed-in user's cart
func (cc *CartController) MergeCart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	limitBody(w, r)
	var req mergeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.Merge(ctx, req.GuestID, userID)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	if cart == nil {
		utils.RespondMessage(w, http.StatusOK, "Nothing to merge")
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}
