package controllers

import (
	"context"
	"net/http"

	"wearero-api/services"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserController handles accounts, profiles and wishlists
type UserController struct {
	identity *services.IdentityService
	log      logrus.FieldLogger
}

// NewUserController creates a new UserController
func NewUserController(identity *services.IdentityService, log logrus.FieldLogger) *UserController {
	return &UserController{identity: identity, log: log}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var in services.RegisterInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := uc.identity.Register(ctx, in)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, res)
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var in services.LoginInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := uc.identity.Login(ctx, in)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}

// GetProfile returns the signed-in user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.identity.Profile(ctx, userID)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the signed-in user's name, email or password
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	limitBody(w, r)
	var in services.ProfileUpdate
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.identity.UpdateProfile(ctx, userID, in)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// GetWishlist returns the products on the signed-in user's wishlist
func (uc *UserController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := uc.identity.Wishlist(ctx, userID)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// AddToWishlist adds a product to the signed-in user's wishlist
func (uc *UserController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	uc.changeWishlist(w, r, uc.identity.AddToWishlist, "Added to wishlist")
}

// RemoveFromWishlist removes a product from the signed-in user's wishlist
func (uc *UserController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	uc.changeWishlist(w, r, uc.identity.RemoveFromWishlist, "Removed from wishlist")
}

func (uc *UserController) changeWishlist(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID, productID primitive.ObjectID) error, msg string) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := apply(ctx, userID, productID); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, msg)
}

// GetUsers lists every account (Admin only)
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	users, err := uc.identity.ListUsers(ctx)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}

// CreateUser adds an account with an explicit role (Admin only)
func (uc *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var in services.UserInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.identity.CreateUser(ctx, in)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser edits an account's name, email or role (Admin only)
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	limitBody(w, r)
	var in services.UserUpdate
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.identity.UpdateUser(ctx, id, in)
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser removes an account (Admin only)
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.identity.DeleteUser(ctx, id); err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "User deleted")
}
