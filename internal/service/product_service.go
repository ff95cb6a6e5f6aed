package service

import (
	"strings"
	"time"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// ProductService owns catalog management.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a product service.
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ProductInput is the create/update payload.
type ProductInput struct {
	CategoryID    uint
	Name          string
	Slug          string
	Description   string
	Unit          string
	Price         models.Money
	DiscountPrice *models.Money
	StockQuantity int
	Images        []string
	SortOrder     int
	Active        bool
}

// Create adds a product. Status is derived from the active flag and
// opening stock.
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	slug := normalizeSlug(input.Slug, input.Name)
	existing, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	status := models.DeriveStatus(activeToStatus(input.Active), input.StockQuantity)
	product := &models.Product{
		CategoryID:    input.CategoryID,
		Name:          strings.TrimSpace(input.Name),
		Slug:          slug,
		Description:   input.Description,
		Unit:          strings.TrimSpace(input.Unit),
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		StockQuantity: input.StockQuantity,
		Status:        status,
		Images:        models.StringArray(input.Images),
		SortOrder:     input.SortOrder,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_created", "product_id", product.ID, "slug", slug)
	return product, nil
}

// Update edits a product, re-deriving status from the new stock.
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	slug := normalizeSlug(input.Slug, input.Name)
	if slug != product.Slug {
		existing, err := s.productRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrSlugTaken
		}
	}

	product.CategoryID = input.CategoryID
	product.Name = strings.TrimSpace(input.Name)
	product.Slug = slug
	product.Description = input.Description
	product.Unit = strings.TrimSpace(input.Unit)
	product.Price = input.Price
	product.DiscountPrice = input.DiscountPrice
	product.StockQuantity = input.StockQuantity
	product.Images = models.StringArray(input.Images)
	product.SortOrder = input.SortOrder
	product.Status = models.DeriveStatus(activeToStatus(input.Active), input.StockQuantity)
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStock writes an absolute stock level and re-derives status, so a
// replenished product flips back from out_of_stock automatically.
func (s *ProductService) SetStock(id uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	status := models.DeriveStatus(product.Status, quantity)
	if err := s.productRepo.UpdateFields(id, map[string]interface{}{
		"stock_quantity": quantity,
		"status":         status,
		"updated_at":     time.Now(),
	}); err != nil {
		return nil, err
	}
	product.StockQuantity = quantity
	product.Status = status
	logger.Infow("product_stock_set", "product_id", id, "quantity", quantity, "status", status)
	return product, nil
}

// GetBySlug returns one storefront product.
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetByID returns one product for the back office.
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List returns products matching the filter.
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

// CategoryInput is the category create/update payload.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Image       string
	SortOrder   int
	IsActive    bool
}

// CreateCategory adds a category.
func (s *ProductService) CreateCategory(input CategoryInput) (*models.Category, error) {
	slug := normalizeSlug(input.Slug, input.Name)
	existing, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Image:       input.Image,
		SortOrder:   input.SortOrder,
		IsActive:    input.IsActive,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory edits a category.
func (s *ProductService) UpdateCategory(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	category.Name = strings.TrimSpace(input.Name)
	category.Slug = normalizeSlug(input.Slug, input.Name)
	category.Description = input.Description
	category.Image = input.Image
	category.SortOrder = input.SortOrder
	category.IsActive = input.IsActive
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns categories, optionally active only.
func (s *ProductService) ListCategories(onlyActive bool) ([]models.Category, error) {
	return s.categoryRepo.List(onlyActive)
}

// DeleteCategory soft-deletes a category.
func (s *ProductService) DeleteCategory(id uint) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return s.categoryRepo.Delete(id)
}

func activeToStatus(active bool) string {
	if active {
		return constants.ProductStatusActive
	}
	return constants.ProductStatusInactive
}

// normalizeSlug falls back to a slugified name when no slug is given.
func normalizeSlug(slug, name string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		slug = strings.TrimSpace(strings.ToLower(name))
	}
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
