package controllers

import (
	"io"
	"net/http"
	"strconv"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/services"
	"wearero-api/store"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
)

// ProductController handles product-related requests
type ProductController struct {
	catalog *services.CatalogService
	log     logrus.FieldLogger
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService, log logrus.FieldLogger) *ProductController {
	return &ProductController{catalog: catalog, log: log}
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	adminID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	limitBody(w, r)
	var product models.Product
	if err := utils.DecodeJSON(r, &product); err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := pc.catalog.Create(ctx, adminID, &product)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

// GetProducts retrieves products matching the query string filters
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q, err := ParseProductQuery(r)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.catalog.List(ctx, q)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.Get(ctx, id)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

// GetBestSeller returns the highest rated product
func (pc *ProductController) GetBestSeller(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.BestSeller(ctx)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

// GetNewArrivals returns the latest products
func (pc *ProductController) GetNewArrivals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.catalog.NewArrivals(ctx)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// GetSimilarProducts returns products of the same gender and category
func (pc *ProductController) GetSimilarProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.catalog.Similar(ctx, id)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// UpdateProduct applies the fields present in the body (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	limitBody(w, r)
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondError(w, pc.log, apperr.Wrap(apperr.Validation, "Invalid input", err))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.Update(ctx, id, patch)
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.Delete(ctx, id); err != nil {
		utils.RespondError(w, pc.log, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Product removed")
}

// ParseProductQuery reads the listing filters from the query string
func ParseProductQuery(r *http.Request) (store.ProductQuery, error) {
	v := r.URL.Query()
	q := store.ProductQuery{
		Collection: v.Get("collection"),
		Category:   v.Get("category"),
		Size:       v.Get("size"),
		Color:      v.Get("color"),
		Gender:     v.Get("gender"),
		Material:   v.Get("material"),
		Brand:      v.Get("brand"),
		SortBy:     v.Get("sortBy"),
		Search:     v.Get("search"),
	}

	var err error
	if q.MinPrice, err = optionalFloat(v.Get("minPrice"), "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optionalFloat(v.Get("maxPrice"), "maxPrice"); err != nil {
		return q, err
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return q, apperr.Validationf("Invalid limit")
		}
		q.Limit = n
	}
	return q, nil
}

func optionalFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperr.Validationf("Invalid %s", name)
	}
	return &f, nil
}
