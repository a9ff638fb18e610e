package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	newArrivalsLimit = 8
	similarLimit     = 4
)

// CatalogService reads and administers products
type CatalogService struct {
	products store.ProductStore
	log      logrus.FieldLogger
}

// NewCatalogService creates a CatalogService
func NewCatalogService(products store.ProductStore, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{products: products, log: log}
}

// List returns products matching the query
func (s *CatalogService) List(ctx context.Context, q store.ProductQuery) ([]models.Product, error) {
	products, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

// Get returns a single product
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// BestSeller returns the highest rated product
func (s *CatalogService) BestSeller(ctx context.Context) (*models.Product, error) {
	p, err := s.products.BestSeller(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("No best seller found")
	}
	if err != nil {
		return nil, fmt.Errorf("find best seller: %w", err)
	}
	return p, nil
}

// NewArrivals returns the most recently added products
func (s *CatalogService) NewArrivals(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.NewArrivals(ctx, newArrivalsLimit)
	if err != nil {
		return nil, fmt.Errorf("find new arrivals: %w", err)
	}
	return products, nil
}

// Similar returns products sharing the gender and category of the given one
func (s *CatalogService) Similar(ctx context.Context, id primitive.ObjectID) ([]models.Product, error) {
	base, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Similar(ctx, base, similarLimit)
	if err != nil {
		return nil, fmt.Errorf("find similar products: %w", err)
	}
	return products, nil
}

// Create adds a product owned by the given admin
func (s *CatalogService) Create(ctx context.Context, adminID primitive.ObjectID, p *models.Product) (*models.Product, error) {
	p.ID = primitive.NilObjectID
	p.User = adminID
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	normalizeProduct(p)

	if err := s.products.Insert(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "A product with this SKU already exists")
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	s.log.WithFields(logrus.Fields{"productId": p.ID.Hex(), "sku": p.SKU}).Info("product created")
	return p, nil
}

// Update applies a partial JSON document to an existing product.
// Identity, owner and creation time cannot be changed this way.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, patch []byte) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, createdAt := p.User, p.CreatedAt
	if err := json.Unmarshal(patch, p); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "Invalid product data", err)
	}
	p.ID, p.User, p.CreatedAt = id, owner, createdAt

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	normalizeProduct(p)

	switch err := s.products.Update(ctx, p); {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFoundf("Product not found")
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.New(apperr.Conflict, "A product with this SKU already exists")
	case err != nil:
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product
func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("Product not found")
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.WithField("productId", id.Hex()).Info("product deleted")
	return nil
}

func validateProduct(p *models.Product) error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Description) == "" {
		missing = append(missing, "description")
	}
	if p.Price <= 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(p.SKU) == "" {
		missing = append(missing, "sku")
	}
	if len(missing) > 0 {
		return apperr.Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if p.DiscountPrice != nil && *p.DiscountPrice < 0 {
		return apperr.Validationf("Discount price cannot be negative")
	}
	if p.CountInStock < 0 {
		return apperr.Validationf("Stock cannot be negative")
	}
	return nil
}

func normalizeProduct(p *models.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Images == nil {
		p.Images = []models.ProductImage{}
	}
}
