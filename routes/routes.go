package routes

import (
	"net/http"

	"wearero-api/controllers"
	"wearero-api/middleware"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted by RegisterRoutes
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Checkout *controllers.CheckoutController
	Upload   *controllers.UploadController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, c Controllers) {
	router.HandleFunc("/healthz", c.Health.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// User routes
	api.HandleFunc("/users/register", c.User.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", c.User.Login).Methods(http.MethodPost)

	account := api.PathPrefix("/users").Subrouter()
	account.Use(auth.AuthMiddleware)
	account.HandleFunc("/profile", c.User.GetProfile).Methods(http.MethodGet)
	account.HandleFunc("/profile", c.User.UpdateProfile).Methods(http.MethodPut)
	account.HandleFunc("/wishlist", c.User.GetWishlist).Methods(http.MethodGet)
	account.HandleFunc("/wishlist/{productId}", c.User.AddToWishlist).Methods(http.MethodPost)
	account.HandleFunc("/wishlist/{productId}", c.User.RemoveFromWishlist).Methods(http.MethodDelete)

	adminUsers := account.NewRoute().Subrouter()
	adminUsers.Use(middleware.AdminMiddleware)
	adminUsers.HandleFunc("", c.User.GetUsers).Methods(http.MethodGet)
	adminUsers.HandleFunc("", c.User.CreateUser).Methods(http.MethodPost)
	adminUsers.HandleFunc("/{id}", c.User.UpdateUser).Methods(http.MethodPut)
	adminUsers.HandleFunc("/{id}", c.User.DeleteUser).Methods(http.MethodDelete)

	// Product routes. Fixed paths come before {id}.
	api.HandleFunc("/products", c.Product.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/best-seller", c.Product.GetBestSeller).Methods(http.MethodGet)
	api.HandleFunc("/products/new-arrivals", c.Product.GetNewArrivals).Methods(http.MethodGet)
	api.HandleFunc("/products/similar/{id}", c.Product.GetSimilarProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods(http.MethodGet)

	adminProducts := api.PathPrefix("/products").Subrouter()
	adminProducts.Use(auth.AuthMiddleware)
	adminProducts.Use(middleware.AdminMiddleware)
	adminProducts.HandleFunc("", c.Product.CreateProduct).Methods(http.MethodPost)
	adminProducts.HandleFunc("/{id}", c.Product.UpdateProduct).Methods(http.MethodPut)
	adminProducts.HandleFunc("/{id}", c.Product.DeleteProduct).Methods(http.MethodDelete)

	// Cart routes identify the shopper by token when present, else by guestId
	api.Handle("/cart/merge", auth.AuthMiddleware(http.HandlerFunc(c.Cart.MergeCart))).Methods(http.MethodPost)
	cart := api.Path("/cart").Subrouter()
	cart.Use(auth.OptionalAuthMiddleware)
	cart.Methods(http.MethodGet).HandlerFunc(c.Cart.GetCart)
	cart.Methods(http.MethodPost).HandlerFunc(c.Cart.AddToCart)
	cart.Methods(http.MethodPut).HandlerFunc(c.Cart.UpdateCart)
	cart.Methods(http.MethodDelete).HandlerFunc(c.Cart.RemoveFromCart)

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(auth.AuthMiddleware)
	orders.HandleFunc("", c.Order.CreateOrder).Methods(http.MethodPost)
	orders.HandleFunc("/my-orders", c.Order.GetMyOrders).Methods(http.MethodGet)

	adminOrders := orders.NewRoute().Subrouter()
	adminOrders.Use(middleware.AdminMiddleware)
	adminOrders.HandleFunc("", c.Order.GetOrders).Methods(http.MethodGet)
	adminOrders.HandleFunc("/{id}/status", c.Order.UpdateOrderStatus).Methods(http.MethodPut)
	adminOrders.HandleFunc("/{id}", c.Order.DeleteOrder).Methods(http.MethodDelete)

	orders.HandleFunc("/{id}", c.Order.GetOrder).Methods(http.MethodGet)

	// Checkout routes
	api.HandleFunc("/checkout/webhook", c.Checkout.Webhook).Methods(http.MethodPost)
	checkout := api.PathPrefix("/checkout").Subrouter()
	checkout.Use(auth.AuthMiddleware)
	checkout.HandleFunc("/create-payment-intent", c.Checkout.CreatePaymentIntent).Methods(http.MethodPost)

	// Upload
	api.HandleFunc("/upload", c.Upload.UploadImage).Methods(http.MethodPost)
}
