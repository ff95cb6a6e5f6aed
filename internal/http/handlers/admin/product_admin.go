package admin

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

// ProductRequest is the product create/update payload.
type ProductRequest struct {
	CategoryID    uint          `json:"category_id" binding:"required"`
	Name          string        `json:"name" binding:"required"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description"`
	Unit          string        `json:"unit" binding:"required"`
	Price         models.Money  `json:"price"`
	DiscountPrice *models.Money `json:"discount_price"`
	StockQuantity int           `json:"stock_quantity"`
	Images        []string      `json:"images"`
	SortOrder     int           `json:"sort_order"`
	Active        bool          `json:"active"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:    r.CategoryID,
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		Unit:          r.Unit,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		StockQuantity: r.StockQuantity,
		Images:        r.Images,
		SortOrder:     r.SortOrder,
		Active:        r.Active,
	}
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "category not found", nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeBadRequest, "slug is already in use", nil)
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(c, response.CodeBadRequest, "invalid stock quantity", nil)
	default:
		respondError(c, response.CodeInternal, "product operation failed", err)
	}
}

// GetAdminProducts lists products, inactive ones included.
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := parsePagination(c)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   uint(categoryID),
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		WithCategory: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"products": products}, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct returns one product.
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(id)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// CreateProduct adds a catalog item.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// UpdateProduct edits a catalog item.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// SetProductStock writes an absolute stock level and re-derives the
// product status.
func (h *Handler) SetProductStock(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		StockQuantity int `json:"stock_quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.SetStock(id, req.StockQuantity)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// DeleteProduct removes a catalog item.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// CategoryRequest is the category create/update payload.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// GetAdminCategories lists all categories.
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories(false)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load categories", err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// CreateCategory adds a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category, err := h.ProductService.CreateCategory(service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"category": category})
}

// UpdateCategory edits a category.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category, err := h.ProductService.UpdateCategory(id, service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"category": category})
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.DeleteCategory(id); err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
